package pipeline

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Taichi-iskw/yt-scribe/internal/model"
)

// Reporter receives progress events from the orchestrator
type Reporter interface {
	CycleStarted(cycleID string, pending int)
	ItemStarted(index, total int, item model.WorkItem)
	ItemFinished(index, total int, result model.ItemResult)
	CycleFinished(summary CycleSummary)
}

// NopReporter discards all events
type NopReporter struct{}

func (NopReporter) CycleStarted(string, int)                {}
func (NopReporter) ItemStarted(int, int, model.WorkItem)    {}
func (NopReporter) ItemFinished(int, int, model.ItemResult) {}
func (NopReporter) CycleFinished(CycleSummary)              {}

// LineReporter prints one status line per event
type LineReporter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLineReporter creates a reporter writing to w
func NewLineReporter(w io.Writer) *LineReporter {
	return &LineReporter{w: w}
}

func (r *LineReporter) CycleStarted(cycleID string, pending int) {
	if pending == 0 {
		return
	}
	r.printf("Found %d new video(s)\n", pending)
}

func (r *LineReporter) ItemStarted(index, total int, item model.WorkItem) {
	r.printf("[%d/%d] Processing: %s\n", index, total, item.Title)
}

func (r *LineReporter) ItemFinished(index, total int, result model.ItemResult) {
	r.printf("%s\n", FormatResult(result))
}

func (r *LineReporter) CycleFinished(summary CycleSummary) {
	if summary.Discovered == 0 {
		return
	}
	r.printf("Cycle complete: %d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
}

func (r *LineReporter) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, format, args...)
}

// FormatResult renders the success or failure line for an item
func FormatResult(result model.ItemResult) string {
	if result.Succeeded() {
		line := fmt.Sprintf("✓ %s (%s) -> %s", result.Item.Title, result.Elapsed.Round(time.Second), result.Location)
		if result.Location.Raw {
			line += " [raw]"
		}
		return line
	}
	return fmt.Sprintf("✗ %s failed at %s: %v", result.Item.Title, result.FailedAt, result.Err)
}
