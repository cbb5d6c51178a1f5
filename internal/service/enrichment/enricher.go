package enrichment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Taichi-iskw/yt-scribe/internal/model"
)

const (
	// SummaryUnavailable replaces the summary when no chunk could be summarized
	SummaryUnavailable = "Summary unavailable."
	// HighlightsUnavailable replaces highlights when no chunk produced any
	HighlightsUnavailable = "Highlights unavailable."
	// Unsorted is the category used when nothing matches
	Unsorted = "Unsorted"

	// DefaultExcerptRunes bounds the transcript excerpt sent for categorization
	DefaultExcerptRunes = 2000
)

// Category is a named bucket matched by keywords in the model's answer
type Category struct {
	Name     string
	Keywords []string
}

// Options configures the enricher
type Options struct {
	MaxTokens    int
	Highlights   bool
	Categories   []Category // Empty disables categorization
	ExcerptRunes int
}

// Enricher turns a raw transcript into formatted text, summary, highlights and category
type Enricher interface {
	// Enrich never fails; degraded steps are flagged on the result
	Enrich(ctx context.Context, item model.WorkItem, transcript string) model.Enrichment
}

// enricher implements Enricher over an LLMClient
type enricher struct {
	llm     LLMClient
	chunker Chunker
	opts    Options
	logger  *slog.Logger
}

// NewEnricher creates a new Enricher
func NewEnricher(llm LLMClient, opts Options, logger *slog.Logger) Enricher {
	return NewEnricherWithChunker(llm, NewChunker(opts.MaxTokens), opts, logger)
}

// NewEnricherWithChunker creates a new Enricher with a custom Chunker
func NewEnricherWithChunker(llm LLMClient, chunker Chunker, opts Options, logger *slog.Logger) Enricher {
	if opts.ExcerptRunes <= 0 {
		opts.ExcerptRunes = DefaultExcerptRunes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &enricher{llm: llm, chunker: chunker, opts: opts, logger: logger}
}

func (e *enricher) Enrich(ctx context.Context, item model.WorkItem, transcript string) model.Enrichment {
	logger := e.logger.With("video_id", item.ID)
	chunks := e.chunker.Chunk(transcript)
	logger.Info("enriching transcript", "chunks", len(chunks), "chars", len(transcript))

	var result model.Enrichment
	result.Formatted, result.FormatDegraded = e.format(ctx, logger, chunks)
	result.Summary, result.SummaryDegraded = e.reduce(ctx, logger, "summarize", chunks,
		summarySystemPrompt, summaryUserPrompt,
		consolidateSystemPrompt, consolidateUserPrompt,
		SummaryUnavailable)

	if e.opts.Highlights {
		result.Highlights, result.HighlightsDegraded = e.reduce(ctx, logger, "highlights", chunks,
			highlightsSystemPrompt, highlightsUserPrompt,
			highlightsConsolidateSystemPrompt, highlightsConsolidateUserPrompt,
			HighlightsUnavailable)
	}

	if len(e.opts.Categories) > 0 {
		result.Category = e.categorize(ctx, logger, item.Title, transcript)
	}

	return result
}

// format formats every chunk independently; a failed chunk keeps its text verbatim.
// Adjacent failed chunks rejoin exactly as in the transcript, so a run where every
// call fails returns the transcript unchanged.
func (e *enricher) format(ctx context.Context, logger *slog.Logger, chunks []Chunk) (string, bool) {
	degraded := false
	prevFailed := false
	var out strings.Builder

	for i, chunk := range chunks {
		logger.Debug("formatting chunk", "chunk", i+1, "total", len(chunks))
		op := fmt.Sprintf("format chunk %d/%d", i+1, len(chunks))
		text, failed := WithFallback(ctx, logger, op, func(ctx context.Context) (string, error) {
			return e.llm.Complete(ctx, formatSystemPrompt, fmt.Sprintf(formatUserPrompt, chunk.Text))
		}, chunk.Text)

		if !failed {
			text = strings.TrimSpace(text)
		}
		if i > 0 {
			if failed && prevFailed {
				out.WriteString(chunkJoiner)
			} else {
				out.WriteString("\n\n")
			}
		}
		out.WriteString(text)

		degraded = degraded || failed
		prevFailed = failed
	}

	return out.String(), degraded
}

// reduce maps each chunk through the model and consolidates the outputs.
// Failed chunks are skipped; a failed consolidation concatenates.
func (e *enricher) reduce(ctx context.Context, logger *slog.Logger, name string, chunks []Chunk, system, userFmt, mergeSystem, mergeUserFmt, unavailable string) (string, bool) {
	degraded := false
	outputs := make([]string, 0, len(chunks))

	for i, chunk := range chunks {
		op := fmt.Sprintf("%s chunk %d/%d", name, i+1, len(chunks))
		text, failed := WithFallback(ctx, logger, op, func(ctx context.Context) (string, error) {
			return e.llm.Complete(ctx, system, fmt.Sprintf(userFmt, chunk.Text))
		}, "")

		if failed || strings.TrimSpace(text) == "" {
			degraded = true
			continue
		}
		outputs = append(outputs, strings.TrimSpace(text))
	}

	switch len(outputs) {
	case 0:
		return unavailable, true
	case 1:
		return outputs[0], degraded
	}

	combined := strings.Join(outputs, "\n\n")
	merged, failed := WithFallback(ctx, logger, name+" consolidate", func(ctx context.Context) (string, error) {
		return e.llm.Complete(ctx, mergeSystem, fmt.Sprintf(mergeUserFmt, combined))
	}, combined)

	return strings.TrimSpace(merged), degraded || failed
}

// categorize asks for a category and matches the answer against keywords in order
func (e *enricher) categorize(ctx context.Context, logger *slog.Logger, title, transcript string) string {
	excerpt := truncateRunes(transcript, e.opts.ExcerptRunes)

	answer, _ := WithFallback(ctx, logger, "categorize", func(ctx context.Context) (string, error) {
		return e.llm.Complete(ctx, categorizeSystemPrompt, categorizeUserPrompt(title, excerpt, e.opts.Categories))
	}, "")

	return MatchCategory(answer, e.opts.Categories)
}

// MatchCategory returns the first category whose name or keyword appears in answer
func MatchCategory(answer string, categories []Category) string {
	answer = strings.ToLower(answer)
	if strings.TrimSpace(answer) == "" {
		return Unsorted
	}

	for _, c := range categories {
		candidates := append([]string{c.Name}, c.Keywords...)
		for _, kw := range candidates {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" && strings.Contains(answer, kw) {
				return c.Name
			}
		}
	}
	return Unsorted
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
