package constants

// Tool kind aliases for YAML-declared tools.
const (
	ToolKindShell = "shell"
	ToolKindHTTP  = "http"
)

// Built-in tool names.
const (
	ToolBatchExecute = "batch_execute"
	ToolExecuteBash  = "executebash"
	ToolExecuteNode  = "executenodejs"
	ToolExecuteDeno  = "executedeno"
	ToolSearchCode   = "searchcode"
	ToolFindFiles    = "findfiles"
)

// Idempotency cache key strategies.
const (
	CacheKeyStrategyAuto          = "auto"
	CacheKeyStrategyCorrelationID = "correlation_id"
	CacheKeyStrategyArgumentsHash = "arguments_hash"
)
