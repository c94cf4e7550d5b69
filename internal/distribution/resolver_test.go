package distribution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamai/teamai-api/internal/domain"
)

func TestNewAssignmentResolverRejectsEmptyRoster(t *testing.T) {
	r, err := NewAssignmentResolver(nil)
	assert.ErrorIs(t, err, ErrEmptyRoster)
	assert.Nil(t, r)

	_, err = NewAssignmentResolver([]domain.TeamMember{})
	assert.ErrorIs(t, err, ErrEmptyRoster)
}

func TestResolverMatch(t *testing.T) {
	roster := newTestRoster()
	r, err := NewAssignmentResolver(roster)
	require.NoError(t, err)

	tests := []struct {
		name    string
		input   string
		want    domain.TeamMember
		matched bool
	}{
		{"exact", "Анна", roster[0], true},
		{"lower case", "борис", roster[1], true},
		{"upper case", "ВЕРА", roster[2], true},
		{"surrounding spaces", "  Анна ", roster[0], true},
		{"unknown", "Дмитрий", domain.TeamMember{}, false},
		{"empty", "", domain.TeamMember{}, false},
		{"partial", "Ан", domain.TeamMember{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Match(tt.input)
			assert.Equal(t, tt.matched, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolverRoundRobin(t *testing.T) {
	roster := newTestRoster()
	r, err := NewAssignmentResolver(roster)
	require.NoError(t, err)

	for k := 0; k < 10; k++ {
		assert.Equal(t, roster[k%len(roster)], r.RoundRobin(k), "k=%d", k)
	}
	assert.Equal(t, roster[2], r.RoundRobin(-1))
	assert.Equal(t, 3, r.Size())
}

func TestResolverResolveNeverFailsOnGarbage(t *testing.T) {
	roster := newTestRoster()
	r, err := NewAssignmentResolver(roster)
	require.NoError(t, err)

	garbage := []string{"", "   ", "null", "{}", "Анна Петрова", "\x00\xff", "Team Lead"}
	for k, name := range garbage {
		assert.Equal(t, roster[k%len(roster)], r.Resolve(name, k), "name=%q", name)
	}

	assert.Equal(t, roster[1], r.Resolve("Борис", 0), "match wins over round-robin")
}

func TestResolverCopiesRoster(t *testing.T) {
	roster := newTestRoster()
	r, err := NewAssignmentResolver(roster)
	require.NoError(t, err)

	original := roster[0]
	roster[0] = domain.TeamMember{Name: "Подмена"}
	assert.Equal(t, original, r.RoundRobin(0))
}
