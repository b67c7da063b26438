package tools

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// Find locates files whose names match a glob or substring pattern.
type Find struct {
	// MaxResults caps the number of reported paths.
	MaxResults int
}

// FindContent is the caller-facing payload for a findfiles operation.
type FindContent struct {
	// Pattern is the name pattern that was matched.
	Pattern string `json:"pattern"`
	// Files lists matching paths relative to the search root.
	Files []string `json:"files"`
	// Count is the number of paths reported.
	Count int `json:"count"`
	// Truncated is true when MaxResults stopped the walk early.
	Truncated bool `json:"truncated"`
}

// Handle walks the working directory (or its "path" sub-directory)
// matching base names against the pattern argument. Patterns with glob
// metacharacters use filepath.Match; plain patterns match as
// case-insensitive substrings.
func (t *Find) Handle(ctx context.Context, args map[string]any) (any, error) {
	pattern, ok := stringArg(args, "pattern")
	if !ok {
		return nil, fmt.Errorf("pattern must be a non-empty string")
	}
	if strings.ContainsAny(pattern, "*?[") {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
	}

	root := workdir(args)
	if root == "" {
		root = "."
	}
	if sub, ok := stringArg(args, "path"); ok {
		root = filepath.Join(root, sub)
	}

	maxResults := t.MaxResults
	if maxResults <= 0 {
		maxResults = 500
	}

	content := FindContent{Pattern: pattern, Files: []string{}}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if _, skip := skipDirs[d.Name()]; skip {
				return filepath.SkipDir
			}
			return nil
		}
		if !matchName(pattern, d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		content.Files = append(content.Files, rel)
		if len(content.Files) >= maxResults {
			content.Truncated = true
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	content.Count = len(content.Files)
	return content, nil
}

func matchName(pattern, name string) bool {
	if strings.ContainsAny(pattern, "*?[") {
		ok, err := filepath.Match(pattern, name)
		return err == nil && ok
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(pattern))
}
