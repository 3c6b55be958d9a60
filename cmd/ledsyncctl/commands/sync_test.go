package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncCommand(t *testing.T) {
	mock := &mockClient{}

	_, err := runCmd(NewSyncCommand(), mock, "on")
	require.NoError(t, err)
	assert.True(t, mock.sync)

	_, err = runCmd(NewSyncCommand(), mock, "toggle")
	require.NoError(t, err)
	assert.False(t, mock.sync)

	_, err = runCmd(NewSyncCommand(), mock)
	require.NoError(t, err)

	_, err = runCmd(NewSyncCommand(), mock, "sideways")
	assert.ErrorContains(t, err, "must be on, off or toggle")
}

func TestRefreshCommand(t *testing.T) {
	mock := &mockClient{}
	_, err := runCmd(newRefreshCommand(), mock)
	require.NoError(t, err)
	assert.Equal(t, []string{"refresh"}, mock.calls)
}

func TestLogLevelCommand(t *testing.T) {
	mock := &mockClient{}

	out, err := runCmd(NewLogCommand(), mock, "level")
	require.NoError(t, err)
	assert.Equal(t, "info\n", out)

	out, err = runCmd(NewLogCommand(), mock, "level", "debug")
	require.NoError(t, err)
	assert.Equal(t, "debug\n", out)
	assert.Equal(t, "debug", mock.level)
}

func TestVersionCommand(t *testing.T) {
	out, err := runCmd(newVersionCommand("1.0.0", "abc", "2026-01-01"), &mockClient{})
	require.NoError(t, err)
	assert.Contains(t, out, "ledsyncctl 1.0.0 (commit abc, built 2026-01-01)")
	assert.Contains(t, out, "ledsyncd   9.9.9 (commit deadbeef, built today)")
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	root := NewRootCommand(nil, "dev", "none", "unknown")
	for _, name := range []string{"device", "favorites", "scene", "sync", "refresh", "log", "version"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}
