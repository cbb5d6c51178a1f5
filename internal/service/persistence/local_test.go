package persistence

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Taichi-iskw/yt-scribe/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalWriter_WriteMarkdown(t *testing.T) {
	dir := t.TempDir()
	w := NewLocalWriter(dir, "")

	loc, err := w.Write(context.Background(), "Learning Go", "", "first")
	require.NoError(t, err)

	assert.Equal(t, "local", loc.Backend)
	assert.Equal(t, filepath.Join(dir, "Learning Go.md"), loc.Path)
	assert.False(t, loc.Raw)

	// Same name overwrites
	_, err = w.Write(context.Background(), "Learning Go", "", "second")
	require.NoError(t, err)

	data, err := os.ReadFile(loc.Path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestLocalWriter_CategorySubdirectory(t *testing.T) {
	dir := t.TempDir()
	w := NewLocalWriter(dir, FormatMarkdown)

	loc, err := w.Write(context.Background(), "note", "Tech/News", "body")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "TechNews", "note.md"), loc.Path)
	assert.FileExists(t, loc.Path)
}

func TestLocalWriter_WriteDocx(t *testing.T) {
	dir := t.TempDir()
	w := NewLocalWriter(dir, FormatDocx)

	markdown := "---\nStatus:\nSource: https://youtu.be/x\n---\n## Summary\nSome **bold** text.\n\n- a bullet\n1. numbered\n"
	loc, err := w.Write(context.Background(), "Doc", "", markdown)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Doc.docx"), loc.Path)

	// A docx file is a zip archive with a main document part
	zr, err := zip.OpenReader(loc.Path)
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "word/document.xml")
}

func TestLocalWriter_Errors(t *testing.T) {
	t.Run("empty name", func(t *testing.T) {
		_, err := NewLocalWriter(t.TempDir(), FormatMarkdown).Write(context.Background(), " ", "", "x")
		assert.Equal(t, errors.CodeInvalidArg, errors.CodeOf(err))
	})

	t.Run("unwritable directory", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

		_, err := NewLocalWriter(blocker, FormatMarkdown).Write(context.Background(), "n", "", "x")
		assert.Equal(t, errors.CodeStorage, errors.CodeOf(err))
	})
}
