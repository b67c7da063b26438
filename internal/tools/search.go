package tools

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Search scans file contents under a directory for a regular expression.
type Search struct {
	// MaxMatches caps the number of reported matches.
	MaxMatches int
	// MaxFileBytes skips files larger than this.
	MaxFileBytes int64
}

// SearchMatch is one matching line.
type SearchMatch struct {
	// File is the path relative to the search root.
	File string `json:"file"`
	// Line is the 1-based line number.
	Line int `json:"line"`
	// Text is the matching line, trimmed.
	Text string `json:"text"`
}

// SearchContent is the caller-facing payload for a searchcode operation.
type SearchContent struct {
	// Pattern is the compiled expression.
	Pattern string `json:"pattern"`
	// Matches lists matching lines in walk order.
	Matches []SearchMatch `json:"matches"`
	// Count is the number of matches reported.
	Count int `json:"count"`
	// Truncated is true when MaxMatches stopped the scan early.
	Truncated bool `json:"truncated"`
}

// skipDirs are never descended into.
var skipDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
	"vendor":       {},
}

// Handle compiles the pattern argument and walks the working directory
// (or its "path" sub-directory) collecting matching lines. Binary files
// and oversized files are skipped.
func (t *Search) Handle(ctx context.Context, args map[string]any) (any, error) {
	pattern, ok := stringArg(args, "pattern")
	if !ok {
		return nil, fmt.Errorf("pattern must be a non-empty string")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}

	root := workdir(args)
	if root == "" {
		root = "."
	}
	if sub, ok := stringArg(args, "path"); ok {
		root = filepath.Join(root, sub)
	}

	maxMatches := t.MaxMatches
	if maxMatches <= 0 {
		maxMatches = 100
	}
	maxFileBytes := t.MaxFileBytes
	if maxFileBytes <= 0 {
		maxFileBytes = 1 << 20
	}

	content := SearchContent{Pattern: pattern, Matches: []SearchMatch{}}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil // unreadable entries are skipped, not fatal
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
		info, err := d.Info()
		if err != nil || info.Size() > maxFileBytes {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		if bytes.IndexByte(data, 0) >= 0 {
			return nil // binary
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}

		scanner := bufio.NewScanner(bytes.NewReader(data))
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		line := 0
		for scanner.Scan() {
			line++
			text := scanner.Text()
			if !re.MatchString(text) {
				continue
			}
			content.Matches = append(content.Matches, SearchMatch{
				File: rel,
				Line: line,
				Text: strings.TrimSpace(text),
			})
			if len(content.Matches) >= maxMatches {
				content.Truncated = true
				return filepath.SkipAll
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	content.Count = len(content.Matches)
	return content, nil
}
