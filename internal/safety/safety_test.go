package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    []string
		wantErr string
	}{
		{name: "single string", input: "ls -la", want: []string{"ls -la"}},
		{name: "string slice", input: []string{"ls", "pwd"}, want: []string{"ls", "pwd"}},
		{name: "any slice", input: []any{"ls", "pwd"}, want: []string{"ls", "pwd"}},
		{name: "empty list", input: []any{}, wantErr: "commands must not be empty"},
		{name: "non-string element", input: []any{"ls", 42}, wantErr: "commands[1] must be a string"},
		{name: "blank command", input: []any{"ls", "   "}, wantErr: "commands[1] is empty"},
		{name: "wrong type", input: 42, wantErr: "commands must be a string or a list of strings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckDeniesDestructiveCommands(t *testing.T) {
	checker := NewChecker()

	denied := []string{
		"rm -rf / --no-preserve-root",
		"echo hi && sudo rm -r /etc",
		"mkfs.ext4 /dev/sda1",
		"DD if=/dev/zero of=/dev/sda",
		":(){ :|:& };:",
	}
	for _, cmd := range denied {
		err := checker.Check([]string{cmd})
		require.Error(t, err, "expected %q to be denied", cmd)
		assert.Contains(t, err.Error(), "matches denied pattern")
	}
}

func TestCheckAllowsOrdinaryCommands(t *testing.T) {
	checker := NewChecker()

	allowed := []string{
		"ls -la",
		"rm -rf ./build",
		"git status",
		"grep -r TODO .",
	}
	for _, cmd := range allowed {
		assert.NoError(t, checker.Check([]string{cmd}))
	}
}

func TestCheckFailsWholeSet(t *testing.T) {
	checker := NewChecker()

	err := checker.Check([]string{"ls", "rm -rf /", "pwd"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"rm -rf /"`)
}

func TestCheckExtraPatterns(t *testing.T) {
	checker := NewChecker("shutdown", "  ")

	require.Error(t, checker.Check([]string{"shutdown -h now"}))
	assert.NoError(t, checker.Check([]string{"echo ok"}))
}
