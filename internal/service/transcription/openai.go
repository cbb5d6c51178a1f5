package transcription

import (
	"context"
	"os"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// openAIEngine implements Engine with the OpenAI audio transcription API
type openAIEngine struct {
	client   openai.Client
	model    string
	language string
}

// NewOpenAIEngine creates an engine for the hosted whisper model.
// Extra request options are applied after the API key (tests pass option.WithBaseURL).
func NewOpenAIEngine(apiKey, model, language string, opts ...option.RequestOption) Engine {
	if model == "" {
		model = string(openai.AudioModelWhisper1)
	}
	clientOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &openAIEngine{
		client:   openai.NewClient(clientOpts...),
		model:    model,
		language: language,
	}
}

func (e *openAIEngine) Name() string {
	return "openai-" + e.model
}

func (e *openAIEngine) Transcribe(ctx context.Context, audioPath string) (string, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	params := openai.AudioTranscriptionNewParams{
		File:  file,
		Model: openai.AudioModel(e.model),
	}
	if e.language != "" && e.language != "auto" {
		params.Language = openai.String(e.language)
	}

	resp, err := e.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
