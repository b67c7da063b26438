package runtime

import "github.com/AnEntrypoint/sandboxbox/internal/constants"

// batchInputSchema describes the batch_execute input.
func batchInputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"operations": map[string]any{
				"type":        "array",
				"description": "Operations to execute, each naming a tool and its arguments.",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"tool": map[string]any{
							"type":        "string",
							"description": "Registered tool name.",
						},
						"arguments": map[string]any{
							"type":        "object",
							"description": "Arguments passed to the tool.",
						},
					},
					"required": []any{"tool", "arguments"},
				},
			},
			"correlation_id": map[string]any{
				"type":        "string",
				"description": "Optional idempotency key; repeated calls with the same key return the cached response.",
			},
		},
		"required": []any{"operations"},
	}
}

// builtinMeta returns the registration metadata for a built-in tool.
func builtinMeta(name string) toolMeta {
	meta := toolMeta{name: name}
	switch name {
	case constants.ToolExecuteBash:
		meta.title = "Execute bash"
		meta.description = "Run one or more bash command lines sequentially and return stdout, stderr and exit codes."
		meta.schema = map[string]any{
			"type": "object",
			"properties": map[string]any{
				"commands": map[string]any{
					"description": "Command line, or array of command lines run in order.",
					"oneOf": []any{
						map[string]any{"type": "string"},
						map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					},
				},
				"workingDirectory": workingDirectorySchema(),
				"timeout":          timeoutSchema(),
			},
			"required": []any{"commands"},
		}
	case constants.ToolExecuteNode:
		meta.title = "Execute Node.js"
		meta.description = "Evaluate a JavaScript snippet with node -e."
		meta.schema = codeSchema()
	case constants.ToolExecuteDeno:
		meta.title = "Execute Deno"
		meta.description = "Evaluate a TypeScript/JavaScript snippet with deno eval."
		meta.schema = codeSchema()
	case constants.ToolSearchCode:
		meta.title = "Search code"
		meta.description = "Search file contents under the working directory with a regular expression."
		meta.schema = map[string]any{
			"type": "object",
			"properties": map[string]any{
				"pattern": map[string]any{
					"type":        "string",
					"description": "Regular expression matched against each line.",
				},
				"path": map[string]any{
					"type":        "string",
					"description": "Sub-directory to search, relative to the working directory.",
				},
				"workingDirectory": workingDirectorySchema(),
			},
			"required": []any{"pattern"},
		}
	case constants.ToolFindFiles:
		meta.title = "Find files"
		meta.description = "Find files by name under the working directory, using a glob or substring pattern."
		meta.schema = map[string]any{
			"type": "object",
			"properties": map[string]any{
				"pattern": map[string]any{
					"type":        "string",
					"description": "Glob pattern (*, ?, [) or case-insensitive substring matched against file names.",
				},
				"path": map[string]any{
					"type":        "string",
					"description": "Sub-directory to search, relative to the working directory.",
				},
				"workingDirectory": workingDirectorySchema(),
			},
			"required": []any{"pattern"},
		}
	}
	return meta
}

func codeSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"code": map[string]any{
				"type":        "string",
				"description": "Snippet to evaluate.",
			},
			"workingDirectory": workingDirectorySchema(),
			"timeout":          timeoutSchema(),
		},
		"required": []any{"code"},
	}
}

func workingDirectorySchema() map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "Working directory for the operation; defaults to the server working directory.",
	}
}

func timeoutSchema() map[string]any {
	return map[string]any{
		"type":        "number",
		"description": "Timeout in milliseconds; defaults to the server default timeout.",
	}
}
