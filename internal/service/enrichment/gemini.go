package enrichment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiClient implements LLMClient with the Gemini API.
// Requests rotate to the next key when one is rate limited.
type GeminiClient struct {
	apiKeys     []string
	model       string
	httpOptions genai.HTTPOptions
	logger      *slog.Logger

	mu         sync.Mutex
	currentKey int
}

// NewGeminiClient creates a Gemini client over one or more API keys
func NewGeminiClient(apiKeys []string, model string, logger *slog.Logger) (*GeminiClient, error) {
	keys := make([]string, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("at least one Gemini API key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GeminiClient{apiKeys: keys, model: model, logger: logger}, nil
}

// WithBaseURL points the client at a different endpoint
func (c *GeminiClient) WithBaseURL(baseURL string) *GeminiClient {
	c.httpOptions.BaseURL = baseURL
	return c
}

func (c *GeminiClient) Complete(ctx context.Context, system, user string) (string, error) {
	var cfg *genai.GenerateContentConfig
	if system != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		}
	}

	var lastErr error
	for range c.apiKeys {
		keyIndex, key := c.key()

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:      key,
			Backend:     genai.BackendGeminiAPI,
			HTTPOptions: c.httpOptions,
		})
		if err != nil {
			lastErr = fmt.Errorf("create client: %w", err)
			c.rotateKey(keyIndex)
			continue
		}

		result, err := client.Models.GenerateContent(ctx, c.model, genai.Text(user), cfg)
		if err != nil {
			if isRateLimited(err) {
				c.logger.Warn("gemini key rate limited, rotating", "key", keyIndex+1)
				c.rotateKey(keyIndex)
				lastErr = err
				continue
			}
			return "", fmt.Errorf("generate content: %w", err)
		}

		if text := strings.TrimSpace(responseText(result)); text != "" {
			return text, nil
		}
		return "", fmt.Errorf("empty response from Gemini")
	}

	return "", fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (c *GeminiClient) key() (int, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentKey, c.apiKeys[c.currentKey]
}

// rotateKey advances past from unless another caller already did
func (c *GeminiClient) rotateKey(from int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentKey == from {
		c.currentKey = (c.currentKey + 1) % len(c.apiKeys)
	}
}

func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func responseText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
