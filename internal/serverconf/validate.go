package serverconf

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/AnEntrypoint/sandboxbox/internal/constants"
)

// maxWindowSize caps concurrent dispatch within one batch window.
const maxWindowSize = 64

// reservedToolNames are claimed by the built-in handlers and cannot be
// redeclared in YAML.
var reservedToolNames = map[string]struct{}{
	constants.ToolBatchExecute: {},
	constants.ToolExecuteBash:  {},
	constants.ToolExecuteNode:  {},
	constants.ToolExecuteDeno:  {},
	constants.ToolSearchCode:   {},
	constants.ToolFindFiles:    {},
}

// Validate applies defaults and verifies required fields.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Server.Name == "" {
		return fmt.Errorf("server.name is required")
	}
	if cfg.Server.Version == "" {
		return fmt.Errorf("server.version is required")
	}
	if cfg.Server.Transport == "" {
		cfg.Server.Transport = "stdio"
	}
	switch cfg.Server.Transport {
	case "stdio", "http":
	default:
		return fmt.Errorf("server.transport must be stdio or http")
	}
	if cfg.Server.Transport == "http" {
		if strings.TrimSpace(cfg.Server.HTTP.Listen) == "" {
			return fmt.Errorf("server.http.listen is required for http transport")
		}
		if cfg.Server.HTTP.Path == "" {
			cfg.Server.HTTP.Path = "/mcp"
		}
	}

	if cfg.Batch.WindowSize == 0 {
		cfg.Batch.WindowSize = 5
	}
	if cfg.Batch.WindowSize < 1 || cfg.Batch.WindowSize > maxWindowSize {
		return fmt.Errorf("batch.window_size must be between 1 and %d", maxWindowSize)
	}
	if cfg.Batch.DefaultTimeout == "" {
		cfg.Batch.DefaultTimeout = "30s"
	}
	if _, err := time.ParseDuration(cfg.Batch.DefaultTimeout); err != nil {
		return fmt.Errorf("batch.default_timeout is invalid: %w", err)
	}

	if cfg.Limits.MaxTotal < 0 {
		return fmt.Errorf("limits.max_total must be >= 0")
	}
	if cfg.Limits.RatePerMinute < 0 {
		return fmt.Errorf("limits.rate_per_minute must be >= 0")
	}

	if cfg.Server.Idempotency.Enabled {
		if cfg.Server.Idempotency.TTL == "" {
			cfg.Server.Idempotency.TTL = "1h"
		}
		if cfg.Server.Idempotency.MaxEntries == 0 {
			cfg.Server.Idempotency.MaxEntries = 1000
		}
		if cfg.Server.Idempotency.MaxEntries < 0 {
			return fmt.Errorf("server.idempotency_cache.max_entries must be >= 0")
		}
		if _, err := time.ParseDuration(cfg.Server.Idempotency.TTL); err != nil {
			return fmt.Errorf("server.idempotency_cache.ttl is invalid: %w", err)
		}
		if cfg.Server.Idempotency.KeyStrategy == "" {
			cfg.Server.Idempotency.KeyStrategy = constants.CacheKeyStrategyAuto
		}
		switch strings.ToLower(strings.TrimSpace(cfg.Server.Idempotency.KeyStrategy)) {
		case constants.CacheKeyStrategyAuto, constants.CacheKeyStrategyCorrelationID, constants.CacheKeyStrategyArgumentsHash:
		default:
			return fmt.Errorf("server.idempotency_cache.key_strategy must be auto, correlation_id, or arguments_hash")
		}
	}

	for i, hook := range cfg.Server.StartupHooks {
		if strings.TrimSpace(hook.Command) == "" {
			return fmt.Errorf("server.startup_hooks[%d].command is required", i)
		}
		if hook.Timeout != "" {
			if _, err := time.ParseDuration(hook.Timeout); err != nil {
				return fmt.Errorf("server.startup_hooks[%d].timeout is invalid: %w", i, err)
			}
		}
	}

	toolNames := map[string]struct{}{}
	for i, tool := range cfg.Tools {
		if tool.Name == "" {
			return fmt.Errorf("tools[%d].name is required", i)
		}
		if _, reserved := reservedToolNames[tool.Name]; reserved {
			return fmt.Errorf("tools[%d].name %q is reserved for a built-in tool", i, tool.Name)
		}
		if _, exists := toolNames[tool.Name]; exists {
			return fmt.Errorf("duplicate tool name: %s", tool.Name)
		}
		toolNames[tool.Name] = struct{}{}

		if tool.Kind == "" {
			cfg.Tools[i].Kind = constants.ToolKindShell
		}
		switch cfg.Tools[i].Kind {
		case constants.ToolKindShell:
			if strings.TrimSpace(tool.Command) == "" {
				return fmt.Errorf("tools[%d].command is required for shell tools", i)
			}
		case constants.ToolKindHTTP:
			if err := validateToolURL(tool.URL); err != nil {
				return fmt.Errorf("tools[%d].url is invalid: %w", i, err)
			}
		default:
			return fmt.Errorf("tools[%d].kind must be shell or http", i)
		}
		if tool.Timeout != "" {
			if _, err := time.ParseDuration(tool.Timeout); err != nil {
				return fmt.Errorf("tools[%d].timeout is invalid: %w", i, err)
			}
		}
	}

	resourceURIs := map[string]struct{}{}
	for i, res := range cfg.Resources {
		if res.URI == "" {
			return fmt.Errorf("resources[%d].uri is required", i)
		}
		if _, exists := resourceURIs[res.URI]; exists {
			return fmt.Errorf("duplicate resource uri: %s", res.URI)
		}
		resourceURIs[res.URI] = struct{}{}
	}

	return nil
}

func validateToolURL(raw string) error {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("url is invalid: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("url must be absolute")
	}
	return nil
}
