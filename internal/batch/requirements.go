package batch

import "github.com/AnEntrypoint/sandboxbox/internal/constants"

// BuiltinRequirements returns the required-argument table for the built-in
// tools. Callers get a fresh copy so merged entries never leak between
// executor instances.
func BuiltinRequirements() Requirements {
	return Requirements{
		constants.ToolExecuteBash: {"commands"},
		constants.ToolExecuteNode: {"code"},
		constants.ToolExecuteDeno: {"code"},
		constants.ToolSearchCode:  {"pattern"},
		constants.ToolFindFiles:   {"pattern"},
	}
}

// Merge returns a copy of r extended with the entries of extra.
// Existing tools keep their requirement lists.
func (r Requirements) Merge(extra Requirements) Requirements {
	merged := make(Requirements, len(r)+len(extra))
	for tool, keys := range r {
		merged[tool] = keys
	}
	for tool, keys := range extra {
		if _, exists := merged[tool]; exists {
			continue
		}
		merged[tool] = keys
	}
	return merged
}
