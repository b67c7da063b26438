package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/AnEntrypoint/sandboxbox/internal/procrun"
)

// Code runs an inline snippet with an interpreter such as node or deno.
type Code struct {
	// Runner spawns the interpreter process.
	Runner *procrun.Runner
	// Command is the interpreter executable.
	Command string
	// Args precede the code snippet on the command line (e.g. ["-e"]).
	Args []string
	// Timeout bounds execution when the operation sets none.
	Timeout time.Duration
}

// NewNode returns a handler that evaluates code with `node -e`.
func NewNode(runner *procrun.Runner, timeout time.Duration) *Code {
	return &Code{Runner: runner, Command: "node", Args: []string{"-e"}, Timeout: timeout}
}

// NewDeno returns a handler that evaluates code with `deno eval`.
func NewDeno(runner *procrun.Runner, timeout time.Duration) *Code {
	return &Code{Runner: runner, Command: "deno", Args: []string{"eval"}, Timeout: timeout}
}

// Handle evaluates the code argument. A missing interpreter is a handler
// error; a non-zero exit is reported as content so stdout/stderr reach
// the caller for diagnostics.
func (t *Code) Handle(ctx context.Context, args map[string]any) (any, error) {
	code, ok := stringArg(args, "code")
	if !ok {
		return nil, fmt.Errorf("code must be a non-empty string")
	}

	cmdArgs := make([]string, 0, len(t.Args)+1)
	cmdArgs = append(cmdArgs, t.Args...)
	cmdArgs = append(cmdArgs, code)

	res := t.Runner.Run(ctx, t.Command, cmdArgs, procrun.Options{
		Timeout: timeoutArg(args, t.Timeout),
		Dir:     workdir(args),
	})
	if res.Kind == procrun.KindSpawn {
		return nil, fmt.Errorf("failed to start %s: %s", t.Command, res.ErrorMessage)
	}
	return processContent(res), nil
}
