package model

import (
	"sort"
	"time"
)

// WorkItem represents one playlist entry pending processing
type WorkItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
	Channel     string    `json:"channel"`
}

// WatchURL returns the item URL, falling back to the canonical watch URL
func (w WorkItem) WatchURL() string {
	if w.URL != "" {
		return w.URL
	}
	return "https://www.youtube.com/watch?v=" + w.ID
}

// WhisperResult represents the JSON document written by the whisper CLI
type WhisperResult struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Segments []WhisperSegment `json:"segments"`
}

// WhisperSegment represents a timed segment from whisper output
type WhisperSegment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// ProcessedSet is the set of video IDs that were fully handled
type ProcessedSet map[string]struct{}

// NewProcessedSet builds a set from a list of IDs
func NewProcessedSet(ids ...string) ProcessedSet {
	s := make(ProcessedSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether id is in the set
func (s ProcessedSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id into the set
func (s ProcessedSet) Add(id string) {
	s[id] = struct{}{}
}

// IDs returns the set members in sorted order
func (s ProcessedSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns an independent copy of the set
func (s ProcessedSet) Clone() ProcessedSet {
	c := make(ProcessedSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}
