package persistence

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Taichi-iskw/yt-scribe/internal/errors"
	"github.com/Taichi-iskw/yt-scribe/internal/model"
	"github.com/Taichi-iskw/yt-scribe/internal/storage"
)

// LocalFormat selects the local file format
type LocalFormat string

const (
	FormatMarkdown LocalFormat = "markdown"
	FormatDocx     LocalFormat = "docx"
)

// LocalWriter writes notes into a directory such as an Obsidian vault
type LocalWriter struct {
	dir    string
	format LocalFormat
}

var _ DocumentWriter = (*LocalWriter)(nil)

// NewLocalWriter creates a writer rooted at dir. An unknown format falls back to markdown.
func NewLocalWriter(dir string, format LocalFormat) *LocalWriter {
	if format != FormatDocx {
		format = FormatMarkdown
	}
	return &LocalWriter{dir: dir, format: format}
}

func (w *LocalWriter) Backend() Backend {
	return BackendLocal
}

// Path returns the file path used for name and category
func (w *LocalWriter) Path(name, category string) string {
	dir := w.dir
	if c := SanitizeTitle(category, ""); c != "" {
		dir = filepath.Join(dir, c)
	}
	ext := ".md"
	if w.format == FormatDocx {
		ext = ".docx"
	}
	return filepath.Join(dir, name+ext)
}

func (w *LocalWriter) Write(ctx context.Context, name, category, markdown string) (model.Location, error) {
	if strings.TrimSpace(name) == "" {
		return model.Location{}, errors.New(errors.CodeInvalidArg, "document name is required")
	}
	if err := ctx.Err(); err != nil {
		return model.Location{}, err
	}

	path := w.Path(name, category)
	var err error
	if w.format == FormatDocx {
		err = writeDocx(path, name, markdown)
	} else {
		err = storage.WriteFile(path, []byte(markdown))
	}
	if err != nil {
		return model.Location{}, errors.Wrap(err, errors.CodeStorage, fmt.Sprintf("failed to write %s", path))
	}

	return model.Location{Backend: BackendLocal.String(), Path: path}, nil
}

// writeDocx renders into a temp file beside path and renames it into place
func writeDocx(path, title, markdown string) error {
	w, err := storage.NewAtomicWriter(path)
	if err != nil {
		return err
	}
	if err := markdownToDocx(title, markdown, w.TempPath()); err != nil {
		w.Abort()
		return fmt.Errorf("render docx: %w", err)
	}
	if !storage.NonEmptyFile(w.TempPath()) {
		w.Abort()
		return fmt.Errorf("render docx: empty output")
	}
	return w.Commit()
}
