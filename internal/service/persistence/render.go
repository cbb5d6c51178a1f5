package persistence

import (
	"fmt"
	"strings"
	"time"

	"github.com/Taichi-iskw/yt-scribe/internal/model"
)

const dateLayout = "2006-01-02 15:04:05"

// RenderNote renders a document as an Obsidian-style markdown note
func RenderNote(doc model.Document) string {
	var sb strings.Builder
	writeFrontMatter(&sb, doc.Item, doc.CreatedAt, doc.Category)

	sb.WriteString("## Summary\n")
	sb.WriteString(strings.TrimSpace(doc.Summary))
	sb.WriteString("\n\n")

	sb.WriteString("## Notes\n### Transcript\n\n")
	sb.WriteString(strings.TrimSpace(doc.Body))
	sb.WriteString("\n")

	if h := strings.TrimSpace(doc.Highlights); h != "" {
		sb.WriteString("\n## Highlights\n")
		sb.WriteString(h)
		sb.WriteString("\n")
	}

	return sb.String()
}

// RenderRaw renders the unenriched transcript
func RenderRaw(item model.WorkItem, transcript string, createdAt time.Time) string {
	var sb strings.Builder
	writeFrontMatter(&sb, item, createdAt, "")

	sb.WriteString("## Notes\n### Transcript\n\n")
	sb.WriteString(strings.TrimSpace(transcript))
	sb.WriteString("\n")
	return sb.String()
}

func writeFrontMatter(sb *strings.Builder, item model.WorkItem, createdAt time.Time, category string) {
	sb.WriteString("---\n")
	sb.WriteString("Status:\n")
	sb.WriteString("tags: input/videos\n")
	sb.WriteString("Links:\n")
	fmt.Fprintf(sb, "Created: %s\n", createdAt.Format(dateLayout))
	fmt.Fprintf(sb, "Source: %s\n", item.WatchURL())
	fmt.Fprintf(sb, "Author: %s\n", item.Channel)
	sb.WriteString("Collection: YouTube\n")
	if category != "" {
		fmt.Fprintf(sb, "Category: %s\n", category)
	}
	sb.WriteString("Finished:\n")
	sb.WriteString("Rating:\n")
	sb.WriteString("---\n")
}
