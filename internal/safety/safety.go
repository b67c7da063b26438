package safety

import (
	"fmt"
	"strings"
)

// deniedPatterns are destructive command fragments rejected before any
// process is spawned. Matching is a case-insensitive substring check: this
// is a heuristic guard against obvious foot-guns, not a sandbox.
var deniedPatterns = []string{
	"rm -rf /",
	"rm -fr /",
	"sudo rm",
	"mkfs",
	"format c:",
	":(){",
	"dd if=/dev/zero",
	"> /dev/sda",
	"of=/dev/sda",
}

// Checker validates command strings against the denylist.
type Checker struct {
	patterns []string
}

// NewChecker returns a Checker with the built-in denylist plus any extra
// patterns from configuration.
func NewChecker(extra ...string) *Checker {
	patterns := make([]string, 0, len(deniedPatterns)+len(extra))
	patterns = append(patterns, deniedPatterns...)
	for _, p := range extra {
		if strings.TrimSpace(p) != "" {
			patterns = append(patterns, p)
		}
	}
	return &Checker{patterns: patterns}
}

// Normalize coerces a commands argument into a list of command strings.
// A single string becomes a one-element list. Empty lists, non-string
// elements and whitespace-only commands are rejected.
func Normalize(value any) ([]string, error) {
	var commands []string
	switch v := value.(type) {
	case string:
		commands = []string{v}
	case []string:
		commands = v
	case []any:
		commands = make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("commands[%d] must be a string, got %T", i, item)
			}
			commands = append(commands, s)
		}
	default:
		return nil, fmt.Errorf("commands must be a string or a list of strings, got %T", value)
	}

	if len(commands) == 0 {
		return nil, fmt.Errorf("commands must not be empty")
	}
	for i, cmd := range commands {
		if strings.TrimSpace(cmd) == "" {
			return nil, fmt.Errorf("commands[%d] is empty", i)
		}
	}
	return commands, nil
}

// Check rejects the whole command set if any element matches the denylist.
// Nothing is partially accepted: one offending command fails the batch.
func (c *Checker) Check(commands []string) error {
	for _, cmd := range commands {
		lower := strings.ToLower(cmd)
		for _, pattern := range c.patterns {
			if strings.Contains(lower, strings.ToLower(pattern)) {
				return fmt.Errorf("command %q matches denied pattern %q", cmd, pattern)
			}
		}
	}
	return nil
}
