package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestFileSource_ReadSources(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mercadona_2025-03-15.json", `[]`)
	writeFile(t, dir, "dia_2025-03-15.json", `[{"titulo":"Leche"}]`)
	writeFile(t, dir, "carrefour.jsonl", `{"titulo":"Pan"}`)
	writeFile(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.json"), 0o755))

	src := NewFileSource(dir, []string{"*.json", "*.jsonl", "*.json"})
	files, err := src.ReadSources(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
		assert.NoError(t, f.Err)
	}
	assert.Equal(t, []string{"carrefour.jsonl", "dia_2025-03-15.json", "mercadona_2025-03-15.json"}, names)
	assert.Equal(t, `[{"titulo":"Leche"}]`, string(files[1].Content))
}

func TestFileSource_PatternSubstring(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "dia_2025-03-15.json", `[]`)
	writeFile(t, dir, "dia_2025-03-16.json", `[]`)

	files, err := NewFileSource(dir, []string{"*2025-03-15.json"}).ReadSources(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "dia_2025-03-15.json", files[0].Name)
}

func TestFileSource_MissingDirectory(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "missing"), []string{"*.json"})
	_, err := src.ReadSources(context.Background())
	assert.Error(t, err)
}

func TestFileSource_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "file.json", `[]`)

	_, err := NewFileSource(filepath.Join(dir, "file.json"), []string{"*.json"}).ReadSources(context.Background())
	assert.Error(t, err)
}

func TestFileSource_InvalidPattern(t *testing.T) {
	_, err := NewFileSource(t.TempDir(), []string{"["}).ReadSources(context.Background())
	assert.Error(t, err)
}

func TestFileSource_NoMatches(t *testing.T) {
	files, err := NewFileSource(t.TempDir(), []string{"*.json"}).ReadSources(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFileSource_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "dia.json", `[]`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFileSource(dir, []string{"*.json"}).ReadSources(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
