// Package pipeline drives playlist items through download, transcription,
// enrichment and persistence, one item at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	apperrors "github.com/Taichi-iskw/yt-scribe/internal/errors"
	"github.com/Taichi-iskw/yt-scribe/internal/model"
	"github.com/Taichi-iskw/yt-scribe/internal/repository/processed"
	"github.com/Taichi-iskw/yt-scribe/internal/service/acquisition"
	"github.com/Taichi-iskw/yt-scribe/internal/service/discovery"
	"github.com/Taichi-iskw/yt-scribe/internal/service/enrichment"
	"github.com/Taichi-iskw/yt-scribe/internal/service/persistence"
	"github.com/Taichi-iskw/yt-scribe/internal/service/transcription"
	"github.com/google/uuid"
)

// Options configures polling and item handling
type Options struct {
	PollInterval    time.Duration
	ErrorBackoff    time.Duration
	MaxErrorBackoff time.Duration
	KeepAudio       bool
}

// DefaultOptions returns the standard polling schedule
func DefaultOptions() Options {
	return Options{
		PollInterval:    5 * time.Minute,
		ErrorBackoff:    60 * time.Second,
		MaxErrorBackoff: time.Hour,
	}
}

// Dependencies are the stages wired into the orchestrator
type Dependencies struct {
	Store       processed.Store
	Discovery   discovery.Service
	Downloader  acquisition.AudioDownloadService
	Transcriber transcription.Service
	Enricher    enrichment.Enricher
	Persister   persistence.Persister
	Reporter    Reporter
	Logger      *slog.Logger
}

// CycleSummary describes one discovery-and-process pass
type CycleSummary struct {
	CycleID     string
	Discovered  int
	Succeeded   int
	Failed      int
	Interrupted bool
	Elapsed     time.Duration
	Results     []model.ItemResult
}

// Orchestrator runs the polling loop
type Orchestrator struct {
	deps  Dependencies
	opts  Options
	sleep func(ctx context.Context, d time.Duration) bool
}

// New creates a new Orchestrator. Zero option fields take their defaults.
func New(deps Dependencies, opts Options) *Orchestrator {
	def := DefaultOptions()
	if opts.PollInterval <= 0 {
		opts.PollInterval = def.PollInterval
	}
	if opts.ErrorBackoff <= 0 {
		opts.ErrorBackoff = def.ErrorBackoff
	}
	if opts.MaxErrorBackoff < opts.ErrorBackoff {
		opts.MaxErrorBackoff = max(def.MaxErrorBackoff, opts.ErrorBackoff)
	}
	if deps.Reporter == nil {
		deps.Reporter = NopReporter{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Orchestrator{deps: deps, opts: opts, sleep: sleepContext}
}

// Run loads the processed set and polls until ctx is cancelled.
// Cancellation is a normal shutdown and returns nil.
func (o *Orchestrator) Run(ctx context.Context) error {
	if _, err := o.deps.Store.Load(ctx); err != nil {
		return err
	}

	backoff := newCycleBackoff(o.opts.ErrorBackoff, o.opts.MaxErrorBackoff)
	o.deps.Logger.Info("watching playlist", "poll_interval", o.opts.PollInterval)

	for {
		if ctx.Err() != nil {
			return nil
		}

		summary, err := o.RunCycle(ctx)

		wait := o.opts.PollInterval
		if err != nil {
			wait = backoff.Next()
			o.deps.Logger.Error("cycle failed", "cycle_id", summary.CycleID, "error", err, "retry_in", wait)
		} else {
			backoff.Reset()
		}

		if summary.Interrupted || !o.sleep(ctx, wait) {
			o.deps.Logger.Info("shutting down")
			return nil
		}
	}
}

// RunOnce loads state and runs a single cycle
func (o *Orchestrator) RunOnce(ctx context.Context) (CycleSummary, error) {
	if _, err := o.deps.Store.Load(ctx); err != nil {
		return CycleSummary{}, err
	}
	return o.RunCycle(ctx)
}

// RunCycle discovers pending items and processes them sequentially.
// Cancellation is observed between items only. A panic outside item
// processing is returned as a CodeInternal error.
func (o *Orchestrator) RunCycle(ctx context.Context) (summary CycleSummary, err error) {
	start := time.Now()
	summary = CycleSummary{CycleID: uuid.NewString()}
	logger := o.deps.Logger.With("cycle_id", summary.CycleID)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("cycle panicked", "panic", r, "stack", string(debug.Stack()))
			summary.Elapsed = time.Since(start)
			err = apperrors.New(apperrors.CodeInternal, fmt.Sprintf("cycle panicked: %v", r))
		}
	}()

	items, err := o.deps.Discovery.ListPending(ctx)
	if err != nil {
		summary.Elapsed = time.Since(start)
		return summary, err
	}

	summary.Discovered = len(items)
	logger.Info("discovery finished", "pending", len(items))
	o.deps.Reporter.CycleStarted(summary.CycleID, len(items))

	for i, item := range items {
		if ctx.Err() != nil {
			logger.Info("cancellation requested, stopping before next item", "remaining", len(items)-i)
			summary.Interrupted = true
			break
		}

		o.deps.Reporter.ItemStarted(i+1, len(items), item)
		result := o.ProcessItem(context.WithoutCancel(ctx), item)
		o.deps.Reporter.ItemFinished(i+1, len(items), result)

		summary.Results = append(summary.Results, result)
		if result.Succeeded() {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}

	summary.Elapsed = time.Since(start)
	o.deps.Reporter.CycleFinished(summary)
	logger.Info("cycle finished",
		"succeeded", summary.Succeeded, "failed", summary.Failed, "elapsed", summary.Elapsed.Round(time.Millisecond))
	return summary, nil
}

// ProcessItem moves one item through every stage. The item is marked processed
// only after its document was persisted. A panicking stage fails the item at that stage.
func (o *Orchestrator) ProcessItem(ctx context.Context, item model.WorkItem) (result model.ItemResult) {
	start := time.Now()
	logger := o.deps.Logger.With("video_id", item.ID)
	result = model.ItemResult{Item: item, State: model.StatePending}

	advance := func(state model.ItemState) {
		result.State = state
		logger.Debug("item state", "state", state)
	}
	fail := func(err error) model.ItemResult {
		result.FailedAt = result.State
		result.State = model.StateFailed
		result.Err = err
		result.Elapsed = time.Since(start)
		logger.Error("item failed", "stage", result.FailedAt, "error", err)
		return result
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("stage panicked", "stage", result.State, "panic", r, "stack", string(debug.Stack()))
			result = fail(apperrors.New(apperrors.CodeInternal, fmt.Sprintf("panic during %s: %v", result.State, r)))
		}
	}()

	advance(model.StateAcquiring)
	audioPath, err := o.deps.Downloader.DownloadAudio(ctx, item)
	if err != nil {
		return fail(err)
	}

	advance(model.StateTranscribing)
	transcript, err := o.deps.Transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return fail(err)
	}

	advance(model.StateEnriching)
	enriched := o.deps.Enricher.Enrich(ctx, item, transcript)

	advance(model.StatePersisting)
	location, err := o.deps.Persister.Persist(ctx, item, transcript, enriched)
	if err != nil {
		return fail(err)
	}
	result.Location = location

	advance(model.StateCleaningUp)
	if !o.opts.KeepAudio {
		if err := os.Remove(audioPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("failed to remove audio file", "path", audioPath, "error", err)
		}
	}

	advance(model.StateMarked)
	if err := o.deps.Store.MarkProcessed(ctx, item.ID); err != nil {
		return fail(err)
	}

	result.Elapsed = time.Since(start)
	logger.Info("item processed", "location", location.String(), "raw", location.Raw, "elapsed", result.Elapsed.Round(time.Millisecond))
	return result
}

// cycleBackoff doubles the wait after each failed cycle up to max
type cycleBackoff struct {
	initial time.Duration
	max     time.Duration
	current time.Duration
}

func newCycleBackoff(initial, limit time.Duration) *cycleBackoff {
	return &cycleBackoff{initial: initial, max: limit}
}

func (b *cycleBackoff) Next() time.Duration {
	if b.current == 0 {
		b.current = b.initial
	} else {
		b.current *= 2
	}
	if b.current > b.max {
		b.current = b.max
	}
	return b.current
}

func (b *cycleBackoff) Reset() {
	b.current = 0
}

// sleepContext waits for d and reports false if ctx ended first
func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
