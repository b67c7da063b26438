package startup

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AnEntrypoint/sandboxbox/internal/procrun"
	"github.com/AnEntrypoint/sandboxbox/internal/serverconf"
	"github.com/AnEntrypoint/sandboxbox/internal/timeutil"
)

// Run executes configured startup hooks sequentially. Any hook failure
// aborts startup: the server never comes up half-initialized.
func Run(ctx context.Context, hooks []serverconf.HookConfig, runner *procrun.Runner, logger *slog.Logger) error {
	for idx, hook := range hooks {
		if strings.TrimSpace(hook.Command) == "" {
			continue
		}

		command := hook.Command
		args := hook.Args
		if len(args) == 0 {
			// A bare command line goes through the shell, matching how
			// tools declared in YAML behave.
			command = "bash"
			args = []string{"-c", hook.Command}
		}

		if logger != nil {
			logger.Info("running startup hook", "index", idx)
		}

		res := runner.Run(ctx, command, args, procrun.Options{
			Timeout: timeutil.ParseDurationOrDefault(hook.Timeout, 0),
			Env:     hook.Env,
		})
		output := strings.TrimSpace(res.Stdout + res.Stderr)
		if !res.Success {
			if logger != nil && output != "" {
				logger.Error("startup hook failed", "index", idx, "output", output)
			}
			return fmt.Errorf("startup hook %d failed: %s", idx, res.ErrorMessage)
		}
		if logger != nil && output != "" {
			logger.Info("startup hook output", "index", idx, "output", output)
		}
	}
	return nil
}
