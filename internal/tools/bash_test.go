package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnEntrypoint/sandboxbox/internal/procrun"
	"github.com/AnEntrypoint/sandboxbox/internal/safety"
)

func newBash() *Bash {
	return &Bash{
		Runner: procrun.New(0, nil),
		Safety: safety.NewChecker(),
	}
}

func TestBashRunsCommandsInOrder(t *testing.T) {
	raw, err := newBash().Handle(context.Background(), map[string]any{
		"commands": []any{"echo first", "echo second"},
	})
	require.NoError(t, err)

	content, ok := raw.(BashContent)
	require.True(t, ok)
	require.Len(t, content.Commands, 2)

	assert.Equal(t, "first\n", content.Commands[0].Stdout)
	assert.Equal(t, "second\n", content.Commands[1].Stdout)
	assert.True(t, content.Commands[0].Success)
}

func TestBashFailedCommandIsContent(t *testing.T) {
	raw, err := newBash().Handle(context.Background(), map[string]any{
		"commands": []any{"echo before", "exit 7", "echo after"},
	})
	require.NoError(t, err)

	content := raw.(BashContent)
	require.Len(t, content.Commands, 3)
	assert.True(t, content.Commands[0].Success)
	assert.False(t, content.Commands[1].Success)
	assert.Equal(t, 7, content.Commands[1].ExitCode)
	assert.True(t, content.Commands[2].Success)
}

func TestBashDeniesDestructiveCommands(t *testing.T) {
	_, err := newBash().Handle(context.Background(), map[string]any{
		"commands": []any{"echo ok", "rm -rf /"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "matches denied pattern")
}

func TestBashRejectsInvalidCommands(t *testing.T) {
	_, err := newBash().Handle(context.Background(), map[string]any{})
	require.Error(t, err)

	_, err = newBash().Handle(context.Background(), map[string]any{"commands": []any{}})
	require.Error(t, err)
}

func TestBashWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	raw, err := newBash().Handle(context.Background(), map[string]any{
		"commands":         "pwd",
		"workingDirectory": dir,
	})
	require.NoError(t, err)

	content := raw.(BashContent)
	require.Len(t, content.Commands, 1)
	assert.Contains(t, content.Commands[0].Stdout, dir)
}
