package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("some error"), false},
		{"ErrNotFound", ErrNotFound, true},
		{"wrapped ErrNotFound", fmt.Errorf("lookup: %w", ErrNotFound), true},
		{"ErrProjectNotFound", ErrProjectNotFound, true},
		{"ErrTaskNotFound in StoreError", NewStoreError("task", "get", "missing", ErrTaskNotFound), true},
		{"ErrDuplicate", ErrDuplicate, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	assert.True(t, IsDuplicateError(ErrEmailExists))
	assert.True(t, IsDuplicateError(fmt.Errorf("create: %w", ErrDuplicate)))
	assert.False(t, IsDuplicateError(ErrUserNotFound))
	assert.False(t, IsDuplicateError(nil))
}

func TestStoreError(t *testing.T) {
	inner := errors.New("connection reset")
	err := NewStoreError("project", "update", "progress write failed", inner)

	assert.Equal(t, "update operation on project failed: progress write failed: connection reset", err.Error())
	assert.ErrorIs(t, err, inner)

	bare := NewStoreError("task", "create", "invalid", nil)
	assert.Equal(t, "create operation on task failed: invalid", bare.Error())
}
