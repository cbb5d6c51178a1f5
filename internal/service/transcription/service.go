package transcription

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Taichi-iskw/yt-scribe/internal/errors"
)

// Engine turns an audio file into text
type Engine interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
	Name() string
}

// Service defines the transcription stage
type Service interface {
	// Transcribe validates the artifact, runs the engine and rejects empty output
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// transcriptionService implements Service around an Engine
type transcriptionService struct {
	engine Engine
	logger *slog.Logger
}

// NewService creates a new transcription Service
func NewService(engine Engine, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &transcriptionService{engine: engine, logger: logger}
}

// Transcribe runs the engine once; there is no retry at this layer
func (s *transcriptionService) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if audioPath == "" {
		return "", errors.New(errors.CodeInvalidArg, "audio path is required")
	}

	info, err := os.Stat(audioPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.New(errors.CodeInvalidArg, fmt.Sprintf("audio file not found: %s", audioPath))
		}
		return "", errors.Wrap(err, errors.CodeInvalidArg, fmt.Sprintf("cannot access audio file: %s", audioPath))
	}
	if !info.Mode().IsRegular() {
		return "", errors.New(errors.CodeInvalidArg, fmt.Sprintf("audio path is not a regular file: %s", audioPath))
	}
	if info.Size() == 0 {
		return "", errors.New(errors.CodeInvalidArg, fmt.Sprintf("audio file is empty: %s", audioPath))
	}

	start := time.Now()
	text, err := s.engine.Transcribe(ctx, audioPath)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeTranscription, fmt.Sprintf("%s transcription failed", s.engine.Name()))
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New(errors.CodeTranscription, fmt.Sprintf("%s returned an empty transcript", s.engine.Name()))
	}

	s.logger.Debug("transcription finished",
		"engine", s.engine.Name(), "chars", len(text), "elapsed", time.Since(start).Round(time.Millisecond))
	return text, nil
}
