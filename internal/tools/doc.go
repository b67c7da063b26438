// Package tools contains the built-in operation handlers: shell and
// interpreter execution backed by procrun, content search, filename
// search, and the shell/http handlers constructed from YAML tool
// declarations.
package tools
