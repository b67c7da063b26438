package serverconf

// Config is the top-level YAML configuration.
type Config struct {
	// Server describes the MCP server settings.
	Server ServerConfig `yaml:"server"`
	// Batch configures the operation executor.
	Batch BatchConfig `yaml:"batch"`
	// Limits configures per-tool usage limits.
	Limits LimitsConfig `yaml:"limits"`
	// Safety extends the destructive-command denylist.
	Safety SafetyConfig `yaml:"safety"`
	// Tools lists extra tool declarations beyond the built-ins.
	Tools []ToolConfig `yaml:"tools"`
	// Resources lists static resources.
	Resources []ResourceConfig `yaml:"resources"`
}

// ServerConfig defines MCP server settings.
type ServerConfig struct {
	// Name is the MCP server name.
	Name string `yaml:"name"`
	// Version is the MCP server version.
	Version string `yaml:"version"`
	// Transport selects the server transport ("stdio" or "http").
	Transport string `yaml:"transport"`
	// ShutdownTimeout overrides graceful shutdown duration.
	ShutdownTimeout string `yaml:"shutdown_timeout"`
	// Idempotency configures optional response caching for batch calls.
	Idempotency IdempotencyConfig `yaml:"idempotency_cache"`
	// StartupHooks defines one-time commands executed on start.
	StartupHooks []HookConfig `yaml:"startup_hooks"`
	// HTTP configures HTTP transport.
	HTTP HTTPConfig `yaml:"http"`
}

// HTTPConfig configures the HTTP transport.
type HTTPConfig struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`
	// Path is the MCP HTTP endpoint path.
	Path string `yaml:"path"`
	// ReadTimeout limits request read time.
	ReadTimeout string `yaml:"read_timeout"`
	// WriteTimeout limits response write time.
	WriteTimeout string `yaml:"write_timeout"`
	// IdleTimeout controls idle connections.
	IdleTimeout string `yaml:"idle_timeout"`
	// Stateless disables session tracking.
	Stateless bool `yaml:"stateless"`
}

// BatchConfig configures the batch executor.
type BatchConfig struct {
	// WindowSize bounds concurrent dispatch within a batch.
	WindowSize int `yaml:"window_size"`
	// DefaultTimeout bounds each spawned process when the operation sets none.
	DefaultTimeout string `yaml:"default_timeout"`
}

// LimitsConfig configures per-tool usage limits.
type LimitsConfig struct {
	// MaxTotal limits total calls per tool; 0 disables.
	MaxTotal int `yaml:"max_total"`
	// RatePerMinute limits calls per tool per minute; 0 disables.
	RatePerMinute int `yaml:"rate_per_minute"`
}

// SafetyConfig extends command safety checking.
type SafetyConfig struct {
	// DeniedPatterns adds substring patterns to the built-in denylist.
	DeniedPatterns []string `yaml:"denied_patterns"`
}

// ToolConfig declares an extra tool exposed by the server.
type ToolConfig struct {
	// Name is the tool name.
	Name string `yaml:"name"`
	// Title is the human-friendly tool title.
	Title string `yaml:"title"`
	// Description explains the tool for the agent.
	Description string `yaml:"description"`
	// Kind selects the backing implementation ("shell" or "http").
	Kind string `yaml:"kind"`
	// Command is the shell command for shell tools.
	Command string `yaml:"command"`
	// Args contains command arguments.
	Args []string `yaml:"args"`
	// Env adds environment variables for execution.
	Env map[string]string `yaml:"env"`
	// URL is the endpoint for http tools.
	URL string `yaml:"url"`
	// Method overrides the HTTP method.
	Method string `yaml:"method"`
	// Headers adds HTTP headers.
	Headers map[string]string `yaml:"headers"`
	// Timeout is the tool execution timeout.
	Timeout string `yaml:"timeout"`
	// Required lists mandatory argument keys, merged into the
	// batch requirement table.
	Required []string `yaml:"required"`
	// InputSchema defines JSON Schema for tool input.
	InputSchema map[string]any `yaml:"input_schema"`
}

// HookConfig defines a startup hook command.
type HookConfig struct {
	// Command is the startup command to run.
	Command string `yaml:"command"`
	// Args are optional arguments.
	Args []string `yaml:"args"`
	// Env adds environment variables for the hook.
	Env map[string]string `yaml:"env"`
	// Timeout controls hook execution duration.
	Timeout string `yaml:"timeout"`
}

// ResourceConfig declares a static MCP resource.
type ResourceConfig struct {
	// Name is a human-friendly resource name.
	Name string `yaml:"name"`
	// URI is the resource identifier.
	URI string `yaml:"uri"`
	// Description explains the resource.
	Description string `yaml:"description"`
	// MIMEType sets the content type.
	MIMEType string `yaml:"mime_type"`
	// Text is the static resource content.
	Text string `yaml:"text"`
}

// IdempotencyConfig configures response caching for repeated batch calls.
type IdempotencyConfig struct {
	// Enabled toggles idempotency caching.
	Enabled bool `yaml:"enabled"`
	// TTL controls how long cached responses are kept.
	TTL string `yaml:"ttl"`
	// MaxEntries limits the cache size.
	MaxEntries int `yaml:"max_entries"`
	// KeyStrategy selects cache key strategy (correlation_id, arguments_hash, auto).
	KeyStrategy string `yaml:"key_strategy"`
}
