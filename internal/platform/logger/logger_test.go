package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamai/teamai-api/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestSetup(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	buf := &TestLogBuffer{}
	l, err := setup(config.ServerConfig{LogLevel: "warn"}, buf)
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Same(t, l, slog.Default())

	l.Info("dropped")
	l.Warn("kept", slog.String("component", "test"))

	entries := buf.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0]["msg"])
	assert.Equal(t, "test", entries[0]["component"])
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	_, err := setup(config.ServerConfig{LogLevel: "loud"}, &TestLogBuffer{})
	assert.Error(t, err)
}

func TestFromContextOrDefault(t *testing.T) {
	fallback, _ := NewTestLogger()
	scoped, _ := NewTestLogger()

	assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))
	assert.Same(t, scoped, FromContextOrDefault(WithLogger(context.Background(), scoped), fallback))
	assert.Same(t, slog.Default(), FromContextOrDefault(context.Background(), nil))
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}
