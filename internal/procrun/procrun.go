// Package procrun spawns external processes with enforced timeouts and
// always resolves to a terminal result. Run never returns a Go error:
// every failure mode is folded into the Result classification so callers
// can report it without unwinding.
package procrun

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

// DefaultTimeout bounds processes whose caller did not set one.
const DefaultTimeout = 30 * time.Second

// Result kinds classify how the process terminated.
const (
	// KindExit means the process ran to completion (any exit code).
	KindExit = "exit"
	// KindTimeout means the process was killed after exceeding its timeout.
	KindTimeout = "timeout"
	// KindSpawn means the process could not be started at all.
	KindSpawn = "spawn_error"
)

// Options controls a single process invocation.
type Options struct {
	// Timeout bounds process lifetime; DefaultTimeout when zero.
	Timeout time.Duration
	// Dir is the working directory for the process.
	Dir string
	// Stdin is written to the process input, which is then closed.
	Stdin string
	// Env adds environment variables on top of the inherited environment.
	Env map[string]string
}

// Result is the terminal outcome of one process invocation.
// It is produced exactly once per Run call and never mutated afterwards.
type Result struct {
	// Success is true only for a clean zero exit.
	Success bool
	// Kind classifies the termination (exit, timeout, spawn_error).
	Kind string
	// Stdout is the captured standard output.
	Stdout string
	// Stderr is the captured standard error.
	Stderr string
	// ExitCode is the process exit code, -1 when unavailable.
	ExitCode int
	// Signal names the terminating signal, if any.
	Signal string
	// ErrorMessage describes the failure for non-success results.
	ErrorMessage string
	// Duration is the process wall time.
	Duration time.Duration
	// Command is the command line that was run.
	Command string
}

// Runner executes external processes. The zero value is usable; Logger
// and DefaultTimeout are optional overrides.
type Runner struct {
	// DefaultTimeout replaces the package default when set.
	DefaultTimeout time.Duration
	// Logger receives debug output for spawned processes.
	Logger *slog.Logger
}

// New returns a Runner with the given default timeout and logger.
func New(defaultTimeout time.Duration, logger *slog.Logger) *Runner {
	return &Runner{DefaultTimeout: defaultTimeout, Logger: logger}
}

// Run spawns command with args and resolves to a terminal Result.
// The process is killed when the timeout elapses or ctx is cancelled;
// captured output is preserved in every case.
func (r *Runner) Run(ctx context.Context, command string, args []string, opts Options) Result {
	start := time.Now()
	res := Result{
		Kind:     KindExit,
		ExitCode: -1,
		Command:  commandLine(command, args),
	}

	cmd := exec.Command(command, args...)
	cmd.Dir = opts.Dir
	if opts.Stdin != "" {
		cmd.Stdin = strings.NewReader(opts.Stdin)
	}
	if len(opts.Env) > 0 {
		cmd.Env = os.Environ()
		for key, value := range opts.Env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", key, value))
		}
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		res.Kind = KindSpawn
		res.ErrorMessage = err.Error()
		res.Duration = time.Since(start)
		r.log(ctx, "process spawn failed", "command", res.Command, "error", err)
		return res
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = r.DefaultTimeout
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var waitErr error
	select {
	case waitErr = <-done:
		// Normal completion; the deferred Stop prevents an orphan firing.
	case <-timer.C:
		_ = cmd.Process.Kill()
		waitErr = <-done
		res.Kind = KindTimeout
		res.ErrorMessage = fmt.Sprintf("timed out after %s", timeout)
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		waitErr = <-done
		res.Kind = KindTimeout
		res.ErrorMessage = ctx.Err().Error()
	}

	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	res.Duration = time.Since(start)

	if state := cmd.ProcessState; state != nil {
		res.ExitCode = state.ExitCode()
		if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			res.Signal = ws.Signal().String()
		}
	}

	if res.Kind == KindTimeout {
		r.log(ctx, "process timed out", "command", res.Command, "timeout", timeout)
		return res
	}

	switch {
	case waitErr == nil && res.ExitCode == 0:
		res.Success = true
	case res.ExitCode > 0:
		res.ErrorMessage = fmt.Sprintf("exit status %d", res.ExitCode)
	case waitErr != nil:
		res.ErrorMessage = waitErr.Error()
	default:
		res.ErrorMessage = fmt.Sprintf("exit status %d", res.ExitCode)
	}

	r.log(ctx, "process finished",
		"command", res.Command,
		"exit_code", res.ExitCode,
		"duration", res.Duration,
		"kind", res.Kind,
	)
	return res
}

func (r *Runner) log(_ context.Context, msg string, attrs ...any) {
	if r == nil || r.Logger == nil {
		return
	}
	r.Logger.Debug(msg, attrs...)
}

func commandLine(command string, args []string) string {
	if len(args) == 0 {
		return command
	}
	return command + " " + strings.Join(args, " ")
}
