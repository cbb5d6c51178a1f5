package persistence

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/Taichi-iskw/yt-scribe/internal/errors"
	"github.com/Taichi-iskw/yt-scribe/internal/logging"
	"github.com/Taichi-iskw/yt-scribe/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWriter records writes and fails for names listed in failFor
type fakeWriter struct {
	failFor map[string]error
	writes  map[string]string
}

func (f *fakeWriter) Backend() Backend { return BackendLocal }

func (f *fakeWriter) Write(ctx context.Context, name, category, markdown string) (model.Location, error) {
	if err, ok := f.failFor[name]; ok {
		return model.Location{}, err
	}
	if f.writes == nil {
		f.writes = map[string]string{}
	}
	f.writes[name] = markdown
	return model.Location{Backend: "local", Path: "/notes/" + name + ".md"}, nil
}

func TestPersister_Persist(t *testing.T) {
	item := model.WorkItem{ID: "abc123", Title: "Learning Go: part 1", Channel: "Gopher TV"}
	enrichment := model.Enrichment{Formatted: "Formatted body.", Summary: "Summary.", Category: "Tech"}
	now := func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name     string
		failFor  map[string]error
		wantPath string
		wantRaw  bool
		wantCode string
		check    func(t *testing.T, w *fakeWriter)
	}{
		{
			name:     "enriched note written",
			wantPath: "/notes/Learning Go part 1.md",
			check: func(t *testing.T, w *fakeWriter) {
				note := w.writes["Learning Go part 1"]
				assert.Contains(t, note, "## Summary\nSummary.")
				assert.Contains(t, note, "Formatted body.")
				assert.Contains(t, note, "Category: Tech")
			},
		},
		{
			name:     "raw fallback when enriched write fails",
			failFor:  map[string]error{"Learning Go part 1": stderrors.New("disk full")},
			wantPath: "/notes/Learning Go part 1-raw.md",
			wantRaw:  true,
			check: func(t *testing.T, w *fakeWriter) {
				raw := w.writes["Learning Go part 1-raw"]
				assert.Contains(t, raw, "raw transcript text")
				assert.NotContains(t, raw, "Formatted body.")
			},
		},
		{
			name: "both writes fail",
			failFor: map[string]error{
				"Learning Go part 1":     stderrors.New("disk full"),
				"Learning Go part 1-raw": stderrors.New("still full"),
			},
			wantCode: errors.CodePersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &fakeWriter{failFor: tt.failFor}
			p := newPersister(w, logging.Discard(), now)

			loc, err := p.Persist(context.Background(), item, "raw transcript text", enrichment)

			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, errors.CodeOf(err))
				assert.True(t, strings.Contains(err.Error(), "disk full") && strings.Contains(err.Error(), "still full"))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, loc.Path)
			assert.Equal(t, tt.wantRaw, loc.Raw)
			tt.check(t, w)
		})
	}
}

func TestPersister_UntitledItemUsesID(t *testing.T) {
	w := &fakeWriter{}
	p := NewPersister(w, logging.Discard())

	loc, err := p.Persist(context.Background(), model.WorkItem{ID: "abc123", Title: "???"}, "text", model.Enrichment{})
	require.NoError(t, err)

	assert.Equal(t, "/notes/abc123.md", loc.Path)
	// Missing formatted text falls back to the transcript
	assert.Contains(t, w.writes["abc123"], "text")
}

func TestPersister_LocalRawFallback(t *testing.T) {
	dir := t.TempDir()
	local := NewLocalWriter(dir, FormatMarkdown)
	p := NewPersister(local, logging.Discard())

	loc, err := p.Persist(context.Background(), model.WorkItem{ID: "x", Title: "Note"}, "words", model.Enrichment{Summary: "s"})
	require.NoError(t, err)
	assert.FileExists(t, loc.Path)
	assert.False(t, loc.Raw)
}
