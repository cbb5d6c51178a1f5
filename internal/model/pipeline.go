package model

import "time"

// ItemState is a step of the per-item pipeline
type ItemState string

const (
	StatePending      ItemState = "pending"
	StateAcquiring    ItemState = "acquiring"
	StateTranscribing ItemState = "transcribing"
	StateEnriching    ItemState = "enriching"
	StatePersisting   ItemState = "persisting"
	StateCleaningUp   ItemState = "cleaning_up"
	StateMarked       ItemState = "marked"
	StateFailed       ItemState = "failed"
)

// Enrichment holds language-model output for one transcript.
// The Degraded flags record which fallbacks were used.
type Enrichment struct {
	Formatted  string `json:"formatted"`
	Summary    string `json:"summary"`
	Highlights string `json:"highlights,omitempty"`
	Category   string `json:"category,omitempty"`

	FormatDegraded     bool `json:"format_degraded"`
	SummaryDegraded    bool `json:"summary_degraded"`
	HighlightsDegraded bool `json:"highlights_degraded"`
}

// Document is the note assembled from a transcript and its enrichment
type Document struct {
	Title      string
	CreatedAt  time.Time
	Item       WorkItem
	Summary    string
	Body       string
	Highlights string
	Category   string
}

// Location identifies where a document was written
type Location struct {
	Backend string `json:"backend"`
	Path    string `json:"path,omitempty"`
	URL     string `json:"url,omitempty"`
	Raw     bool   `json:"raw"`
}

// String returns the URL when set, otherwise the path
func (l Location) String() string {
	if l.URL != "" {
		return l.URL
	}
	return l.Path
}

// ItemResult is the outcome of running the pipeline for one item
type ItemResult struct {
	Item     WorkItem
	State    ItemState
	FailedAt ItemState
	Err      error
	Location Location
	Elapsed  time.Duration
}

// Succeeded reports whether the item reached the marked state
func (r ItemResult) Succeeded() bool {
	return r.State == StateMarked
}
