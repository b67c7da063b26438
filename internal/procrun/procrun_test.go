package procrun

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCapturesOutput(t *testing.T) {
	runner := New(0, nil)

	res := runner.Run(context.Background(), "bash", []string{"-c", "echo out; echo err >&2"}, Options{})

	assert.True(t, res.Success)
	assert.Equal(t, KindExit, res.Kind)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
	assert.Empty(t, res.ErrorMessage)
}

func TestRunNonZeroExit(t *testing.T) {
	runner := New(0, nil)

	res := runner.Run(context.Background(), "bash", []string{"-c", "exit 3"}, Options{})

	assert.False(t, res.Success)
	assert.Equal(t, KindExit, res.Kind)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "exit status 3", res.ErrorMessage)
}

func TestRunTimeoutKillsProcess(t *testing.T) {
	runner := New(0, nil)

	started := time.Now()
	res := runner.Run(context.Background(), "sleep", []string{"10"}, Options{Timeout: 100 * time.Millisecond})

	assert.False(t, res.Success)
	assert.Equal(t, KindTimeout, res.Kind)
	assert.Contains(t, res.ErrorMessage, "timed out after")
	assert.Less(t, time.Since(started), 5*time.Second)
}

func TestRunSpawnError(t *testing.T) {
	runner := New(0, nil)

	res := runner.Run(context.Background(), "definitely-not-a-real-binary", nil, Options{})

	assert.False(t, res.Success)
	assert.Equal(t, KindSpawn, res.Kind)
	assert.NotEmpty(t, res.ErrorMessage)
	assert.Equal(t, -1, res.ExitCode)
}

func TestRunStdin(t *testing.T) {
	runner := New(0, nil)

	res := runner.Run(context.Background(), "cat", nil, Options{Stdin: "hello"})

	require.True(t, res.Success)
	assert.Equal(t, "hello", res.Stdout)
}

func TestRunEnv(t *testing.T) {
	runner := New(0, nil)

	res := runner.Run(context.Background(), "bash", []string{"-c", "echo -n $EXTRA_VALUE"}, Options{
		Env: map[string]string{"EXTRA_VALUE": "wired"},
	})

	require.True(t, res.Success)
	assert.Equal(t, "wired", res.Stdout)
}

func TestRunContextCancellation(t *testing.T) {
	runner := New(0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	res := runner.Run(ctx, "sleep", []string{"10"}, Options{Timeout: time.Minute})

	assert.False(t, res.Success)
	assert.Equal(t, KindTimeout, res.Kind)
}
