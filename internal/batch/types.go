package batch

// Operation is one tool invocation submitted for batched execution.
// Operations are owned by the caller and treated as immutable: the
// executor clones the argument map before applying defaults.
type Operation struct {
	// Tool is the handler registry key.
	Tool string `json:"tool"`
	// Arguments are passed to the handler.
	Arguments map[string]any `json:"arguments"`
}

// Requirements maps a tool name to its mandatory argument keys.
// The table is assembled once at startup and read-only afterwards.
type Requirements map[string][]string

// ValidationError aborts a batch call before any dispatch. Message is an
// aggregated, human-readable summary naming every offending operation;
// Details itemizes individual faults for the wire response.
type ValidationError struct {
	// Message is the aggregated validation failure text.
	Message string
	// Details lists individual validation faults.
	Details []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}
