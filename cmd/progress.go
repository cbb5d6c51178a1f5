package cmd

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/Taichi-iskw/yt-scribe/internal/model"
	"github.com/Taichi-iskw/yt-scribe/internal/service/pipeline"
)

// isTerminal reports whether out is an interactive terminal
func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// progressReporter shows a bar per cycle and prints result lines above it
type progressReporter struct {
	mu  sync.Mutex
	out io.Writer
	bar *progressbar.ProgressBar
}

func newProgressReporter(out io.Writer) *progressReporter {
	return &progressReporter{out: out}
}

func (r *progressReporter) CycleStarted(cycleID string, pending int) {
	if pending == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.out, "Found %d new video(s)\n", pending)
	r.bar = progressbar.NewOptions(pending,
		progressbar.OptionSetWriter(r.out),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

func (r *progressReporter) ItemStarted(index, total int, item model.WorkItem) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar != nil {
		r.bar.Describe(fmt.Sprintf("Processing: %s", item.Title))
	}
}

func (r *progressReporter) ItemFinished(index, total int, result model.ItemResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar == nil {
		fmt.Fprintln(r.out, pipeline.FormatResult(result))
		return
	}
	r.bar.Clear()
	fmt.Fprintf(r.out, "[%d/%d] %s\n", index, total, pipeline.FormatResult(result))
	r.bar.Add(1)
}

func (r *progressReporter) CycleFinished(summary pipeline.CycleSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar != nil {
		r.bar.Finish()
		r.bar = nil
	}
	if summary.Discovered > 0 {
		fmt.Fprintf(r.out, "Cycle complete: %d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}
}
