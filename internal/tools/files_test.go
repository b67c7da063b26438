package tools

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindGlobPattern(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "")
	writeFile(t, dir, "main_test.go", "")
	writeFile(t, dir, "sub/util.go", "")
	writeFile(t, dir, "readme.md", "")

	raw, err := (&Find{}).Handle(context.Background(), map[string]any{
		"pattern":          "*.go",
		"workingDirectory": dir,
	})
	require.NoError(t, err)

	content := raw.(FindContent)
	assert.Equal(t, 3, content.Count)
	assert.Contains(t, content.Files, "main.go")
	assert.Contains(t, content.Files, filepath.Join("sub", "util.go"))
	assert.NotContains(t, content.Files, "readme.md")
}

func TestFindSubstringPattern(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "README.md", "")
	writeFile(t, dir, "notes.txt", "")

	raw, err := (&Find{}).Handle(context.Background(), map[string]any{
		"pattern":          "readme",
		"workingDirectory": dir,
	})
	require.NoError(t, err)

	content := raw.(FindContent)
	require.Equal(t, 1, content.Count)
	assert.Equal(t, "README.md", content.Files[0])
}

func TestFindSkipsIgnoredDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.js", "")
	writeFile(t, dir, "node_modules/skip.js", "")

	raw, err := (&Find{}).Handle(context.Background(), map[string]any{
		"pattern":          "*.js",
		"workingDirectory": dir,
	})
	require.NoError(t, err)

	content := raw.(FindContent)
	require.Equal(t, 1, content.Count)
	assert.Equal(t, "keep.js", content.Files[0])
}

func TestFindTruncatesAtMaxResults(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "c.txt", "d.txt"} {
		writeFile(t, dir, name, "")
	}

	raw, err := (&Find{MaxResults: 2}).Handle(context.Background(), map[string]any{
		"pattern":          "*.txt",
		"workingDirectory": dir,
	})
	require.NoError(t, err)

	content := raw.(FindContent)
	assert.Equal(t, 2, content.Count)
	assert.True(t, content.Truncated)
}

func TestFindRequiresPattern(t *testing.T) {
	_, err := (&Find{}).Handle(context.Background(), map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pattern must be a non-empty string")
}
