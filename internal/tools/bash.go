package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/AnEntrypoint/sandboxbox/internal/procrun"
	"github.com/AnEntrypoint/sandboxbox/internal/safety"
)

// Bash runs one or more shell command lines through the safety checker.
type Bash struct {
	// Runner spawns the shell processes.
	Runner *procrun.Runner
	// Safety rejects destructive command lines before anything spawns.
	Safety *safety.Checker
	// Timeout bounds each command when the operation sets none.
	Timeout time.Duration
}

// BashContent is the caller-facing payload for an executebash operation.
type BashContent struct {
	// Commands holds one process result per command, in input order.
	Commands []ProcessContent `json:"commands"`
}

// Handle validates the commands argument, fails closed on any denied
// pattern, then runs the commands sequentially with `bash -c`. Command
// failures are data in the content, not handler errors: the caller gets
// diagnostics for every command that ran.
func (t *Bash) Handle(ctx context.Context, args map[string]any) (any, error) {
	commands, err := safety.Normalize(args["commands"])
	if err != nil {
		return nil, err
	}
	if err := t.Safety.Check(commands); err != nil {
		return nil, err
	}

	dir := workdir(args)
	timeout := timeoutArg(args, t.Timeout)

	content := BashContent{Commands: make([]ProcessContent, 0, len(commands))}
	for _, cmd := range commands {
		res := t.Runner.Run(ctx, "bash", []string{"-c", cmd}, procrun.Options{
			Timeout: timeout,
			Dir:     dir,
		})
		if res.Kind == procrun.KindSpawn {
			return nil, fmt.Errorf("failed to start shell: %s", res.ErrorMessage)
		}
		content.Commands = append(content.Commands, processContent(res))
	}
	return content, nil
}
