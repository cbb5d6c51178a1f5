package persistence

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Taichi-iskw/yt-scribe/internal/errors"
	"github.com/Taichi-iskw/yt-scribe/internal/model"
)

// RawSuffix is appended to the name of the fallback raw transcript
const RawSuffix = "-raw"

// Persister writes the enriched note, or the raw transcript when that fails
type Persister interface {
	Persist(ctx context.Context, item model.WorkItem, transcript string, enrichment model.Enrichment) (model.Location, error)
}

// persister implements Persister over one DocumentWriter
type persister struct {
	writer DocumentWriter
	logger *slog.Logger
	now    func() time.Time
}

// NewPersister creates a new Persister
func NewPersister(writer DocumentWriter, logger *slog.Logger) Persister {
	return newPersister(writer, logger, time.Now)
}

func newPersister(writer DocumentWriter, logger *slog.Logger, now func() time.Time) *persister {
	if logger == nil {
		logger = slog.Default()
	}
	return &persister{writer: writer, logger: logger, now: now}
}

func (p *persister) Persist(ctx context.Context, item model.WorkItem, transcript string, enrichment model.Enrichment) (model.Location, error) {
	name := SanitizeTitle(item.Title, item.ID)
	createdAt := p.now()

	doc := model.Document{
		Title:      name,
		CreatedAt:  createdAt,
		Item:       item,
		Summary:    enrichment.Summary,
		Body:       enrichment.Formatted,
		Highlights: enrichment.Highlights,
		Category:   enrichment.Category,
	}
	if doc.Body == "" {
		doc.Body = transcript
	}

	loc, err := p.writer.Write(ctx, name, enrichment.Category, RenderNote(doc))
	if err == nil {
		return loc, nil
	}

	p.logger.Warn("failed to write enriched document, writing raw transcript",
		"video_id", item.ID, "backend", p.writer.Backend(), "error", err)

	rawLoc, rawErr := p.writer.Write(ctx, name+RawSuffix, enrichment.Category, RenderRaw(item, transcript, createdAt))
	if rawErr != nil {
		return model.Location{}, errors.Wrap(stderrors.Join(err, rawErr), errors.CodePersistence,
			fmt.Sprintf("failed to persist %s to %s", item.ID, p.writer.Backend()))
	}

	rawLoc.Raw = true
	return rawLoc, nil
}
