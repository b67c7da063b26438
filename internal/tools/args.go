package tools

import (
	"time"
)

// stringArg returns a non-empty string argument.
func stringArg(args map[string]any, key string) (string, bool) {
	raw, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// workdir returns the operation working directory defaulted by the executor.
func workdir(args map[string]any) string {
	dir, _ := stringArg(args, "workingDirectory")
	return dir
}

// timeoutArg reads an optional per-operation "timeout" in milliseconds.
// JSON numbers decode as float64; integers are accepted for direct callers.
func timeoutArg(args map[string]any, def time.Duration) time.Duration {
	raw, ok := args["timeout"]
	if !ok {
		return def
	}
	switch v := raw.(type) {
	case float64:
		if v > 0 {
			return time.Duration(v) * time.Millisecond
		}
	case int:
		if v > 0 {
			return time.Duration(v) * time.Millisecond
		}
	}
	return def
}
