package enrichment

import (
	"strings"
)

// SentenceTerminator ends every chunk text except the last
const SentenceTerminator = "."

// SentenceSeparator is the boundary used to split transcripts into sentences.
// Abbreviations and decimals may be split; chunk texts still rejoin to the original.
const SentenceSeparator = SentenceTerminator + " "

// chunkJoiner separates consecutive chunk texts in the original text
const chunkJoiner = " "

// DefaultMaxTokens is the default per-chunk token budget
const DefaultMaxTokens = 4000

// Chunk is a run of consecutive sentences sent to the model in one request
type Chunk struct {
	Sentences []string
	Text      string
	Tokens    int
}

// Splitter breaks text into sentences
type Splitter interface {
	Split(text string) []string
}

// Chunker groups text into chunks that fit a token budget
type Chunker interface {
	Chunk(text string) []Chunk
}

// SentenceSplitter splits on SentenceSeparator
type SentenceSplitter struct{}

// Split returns the pieces between separators; empty text yields no sentences
func (SentenceSplitter) Split(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, SentenceSeparator)
}

// EstimateTokens approximates token count with the ~4 chars per token rule
func EstimateTokens(text string) int {
	return len(text) / 4
}

// tokenChunker implements Chunker with greedy packing
type tokenChunker struct {
	splitter  Splitter
	maxTokens int
	estimate  func(string) int
}

// NewChunker creates a greedy sentence chunker. maxTokens <= 0 uses DefaultMaxTokens.
func NewChunker(maxTokens int) Chunker {
	return NewChunkerWithSplitter(SentenceSplitter{}, maxTokens)
}

// NewChunkerWithSplitter creates a chunker with a custom splitter
func NewChunkerWithSplitter(splitter Splitter, maxTokens int) Chunker {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &tokenChunker{
		splitter:  splitter,
		maxTokens: maxTokens,
		estimate:  EstimateTokens,
	}
}

// Chunk packs sentences in order. A sentence larger than the budget gets a chunk of its own.
func (c *tokenChunker) Chunk(text string) []Chunk {
	sentences := c.splitter.Split(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []Chunk
	current := Chunk{}

	for _, sentence := range sentences {
		tokens := c.estimate(sentence)

		// Start a new chunk only when the current one already holds something
		if current.Tokens+tokens > c.maxTokens && len(current.Sentences) > 0 {
			chunks = append(chunks, finalizeChunk(current, false))
			current = Chunk{}
		}

		current.Sentences = append(current.Sentences, sentence)
		current.Tokens += tokens
	}

	return append(chunks, finalizeChunk(current, true))
}

// finalizeChunk builds the chunk text. Every chunk but the last keeps the
// terminator its boundary separator carried.
func finalizeChunk(c Chunk, last bool) Chunk {
	c.Text = strings.Join(c.Sentences, SentenceSeparator)
	if !last {
		c.Text += SentenceTerminator
	}
	return c
}

// JoinChunks reassembles chunk texts into the original text
func JoinChunks(chunks []Chunk) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return strings.Join(texts, chunkJoiner)
}
