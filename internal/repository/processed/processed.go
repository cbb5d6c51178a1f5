// Package processed records which playlist videos have been fully handled.
package processed

import (
	"context"

	"github.com/Taichi-iskw/yt-scribe/internal/model"
)

// Store is the durable set of processed video IDs.
// MarkProcessed must not return until the ID is durably recorded; on error the ID is not considered processed.
type Store interface {
	// Load reads prior state, returning an empty set when nothing was stored yet
	Load(ctx context.Context) (model.ProcessedSet, error)

	// Contains reports whether id was loaded or marked
	Contains(id string) bool

	// MarkProcessed adds id and persists the set before returning
	MarkProcessed(ctx context.Context, id string) error

	// List returns the known IDs in sorted order
	List() []string
}
