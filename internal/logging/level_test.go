package logging

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warning ", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseLevel("trace")
	assert.Error(t, err)
}

func TestControllerSetLevel(t *testing.T) {
	lv := new(slog.LevelVar)
	c := NewController(slog.New(slog.NewTextHandler(io.Discard, nil)), lv)
	assert.Equal(t, "info", c.Level())

	got, err := c.SetLevel("warning")
	require.NoError(t, err)
	assert.Equal(t, "warn", got)
	assert.Equal(t, slog.LevelWarn, lv.Level())

	_, err = c.SetLevel("loud")
	assert.Error(t, err)
	assert.Equal(t, "warn", c.Level())
}

func TestLevelToString(t *testing.T) {
	assert.Equal(t, "debug", LevelToString(slog.LevelDebug-4))
	assert.Equal(t, "error", LevelToString(slog.LevelError+4))
}
