package tools

import "github.com/AnEntrypoint/sandboxbox/internal/procrun"

// ProcessContent is the caller-facing payload for one spawned process.
type ProcessContent struct {
	// Command is the command line that was run.
	Command string `json:"command"`
	// Success is true only for a clean zero exit.
	Success bool `json:"success"`
	// Stdout is the captured standard output.
	Stdout string `json:"stdout"`
	// Stderr is the captured standard error.
	Stderr string `json:"stderr"`
	// ExitCode is the process exit code, -1 when unavailable.
	ExitCode int `json:"exitCode"`
	// Signal names the terminating signal, if any.
	Signal string `json:"signal,omitempty"`
	// Error describes the failure for non-success results.
	Error string `json:"error,omitempty"`
	// ExecutionTimeMs is the process wall time in milliseconds.
	ExecutionTimeMs int64 `json:"executionTimeMs"`
}

func processContent(res procrun.Result) ProcessContent {
	return ProcessContent{
		Command:         res.Command,
		Success:         res.Success,
		Stdout:          res.Stdout,
		Stderr:          res.Stderr,
		ExitCode:        res.ExitCode,
		Signal:          res.Signal,
		Error:           res.ErrorMessage,
		ExecutionTimeMs: res.Duration.Milliseconds(),
	}
}
