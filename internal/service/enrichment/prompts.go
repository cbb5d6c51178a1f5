package enrichment

import (
	"fmt"
	"strings"
)

const (
	formatSystemPrompt = "You are a helpful assistant that formats text into clear, readable paragraphs. " +
		"Format the text with proper paragraph breaks by adding two newlines (\\n\\n) between paragraphs. " +
		"Each paragraph should be a cohesive group of related sentences. " +
		"Keep the original content intact but make it more readable with appropriate paragraph structure."
	formatUserPrompt = "Please format this transcript into clear paragraphs with proper spacing (double newlines between paragraphs):\n\n%s"

	summarySystemPrompt     = "You are a helpful assistant that creates concise summaries of video transcripts."
	summaryUserPrompt       = "Please provide a concise summary of the following transcript section:\n\n%s"
	consolidateSystemPrompt = "You are a helpful assistant that creates concise summaries."
	consolidateUserPrompt   = "Please create a cohesive, condensed summary from these section summaries:\n\n%s"

	highlightsSystemPrompt            = "You are a helpful assistant that extracts the key takeaways from video transcripts."
	highlightsUserPrompt              = "List the most important points of this transcript section as short markdown bullet points (\"- \"):\n\n%s"
	highlightsConsolidateSystemPrompt = "You are a helpful assistant that merges bullet point lists."
	highlightsConsolidateUserPrompt   = "Merge these bullet point lists into one list of at most ten bullets, removing duplicates:\n\n%s"

	categorizeSystemPrompt = "You classify videos into exactly one category. Answer with the category name only."
)

func categorizeUserPrompt(title, excerpt string, categories []Category) string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}
	return fmt.Sprintf("Categories: %s\n\nVideo title: %s\n\nTranscript excerpt:\n%s",
		strings.Join(names, ", "), title, excerpt)
}
