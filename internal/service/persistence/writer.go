package persistence

import (
	"context"

	"github.com/Taichi-iskw/yt-scribe/internal/model"
)

// DocumentWriter stores a rendered markdown document under name.
// Writing the same name twice replaces the first document.
type DocumentWriter interface {
	Write(ctx context.Context, name, category, markdown string) (model.Location, error)
	Backend() Backend
}
