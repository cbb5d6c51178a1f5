package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Taichi-iskw/yt-scribe/internal/model"
)

// ItemFormatter renders discovered work items
type ItemFormatter interface {
	Format(items []model.WorkItem) (string, error)
}

// TextFormatter prints one line per item
type TextFormatter struct{}

// Format formats items as plain text
func (f *TextFormatter) Format(items []model.WorkItem) (string, error) {
	if len(items) == 0 {
		return "No new videos\n", nil
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("%d pending video(s):\n", len(items)))
	for i, item := range items {
		output.WriteString(fmt.Sprintf("[%d] %s  %s", i+1, item.ID, item.Title))
		if !item.PublishedAt.IsZero() {
			output.WriteString(fmt.Sprintf("  (%s)", item.PublishedAt.Format(time.DateOnly)))
		}
		output.WriteString("\n")
	}
	return output.String(), nil
}

// JSONFormatter formats items as an indented JSON array
type JSONFormatter struct{}

// Format formats items as JSON
func (f *JSONFormatter) Format(items []model.WorkItem) (string, error) {
	if items == nil {
		items = []model.WorkItem{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}

func newItemFormatter(format string) (ItemFormatter, error) {
	switch format {
	case "", "text":
		return &TextFormatter{}, nil
	case "json":
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (use text or json)", format)
	}
}
