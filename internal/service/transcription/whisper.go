package transcription

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Taichi-iskw/yt-scribe/internal/errors"
	"github.com/Taichi-iskw/yt-scribe/internal/model"
	"github.com/Taichi-iskw/yt-scribe/internal/service/common"
)

// WhisperOptions represents configuration for the whisper CLI
type WhisperOptions struct {
	Binary   string // Executable name or path
	Model    string // Model size: tiny, base, small, medium, large
	Language string // Language code: en, ja, ...; empty or "auto" detects
}

// whisperEngine implements Engine using the whisper CLI
type whisperEngine struct {
	cmdRunner common.CmdRunner
	opts      WhisperOptions
}

// NewWhisperEngine creates a whisper CLI engine with default CmdRunner
func NewWhisperEngine(opts WhisperOptions) Engine {
	return NewWhisperEngineWithCmdRunner(common.NewCmdRunner(), opts)
}

// NewWhisperEngineWithCmdRunner creates a whisper CLI engine with custom CmdRunner (for testing)
func NewWhisperEngineWithCmdRunner(cmdRunner common.CmdRunner, opts WhisperOptions) Engine {
	if opts.Binary == "" {
		opts.Binary = "whisper"
	}
	if opts.Model == "" {
		opts.Model = "base"
	}
	return &whisperEngine{cmdRunner: cmdRunner, opts: opts}
}

func (e *whisperEngine) Name() string {
	return "whisper-cli"
}

// Transcribe runs whisper with JSON output into a temp directory and returns the text
func (e *whisperEngine) Transcribe(ctx context.Context, audioPath string) (string, error) {
	tempDir, err := os.MkdirTemp("", "yt-scribe-whisper-*")
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "failed to create temp directory")
	}
	defer os.RemoveAll(tempDir)

	// Prepare whisper command arguments
	args := []string{
		audioPath,
		"--model", e.opts.Model,
		"--output_format", "json",
		"--output_dir", tempDir,
		"--temperature", "0",
		"--verbose", "False",
	}

	// Add language parameter only if not auto-detection
	if e.opts.Language != "" && e.opts.Language != "auto" {
		args = append(args, "--language", e.opts.Language)
	}

	if _, err := e.cmdRunner.Run(ctx, e.opts.Binary, args...); err != nil {
		return "", errors.Wrap(err, errors.CodeExternal, e.formatWhisperError(err, audioPath))
	}

	// Read the output JSON file
	baseName := filepath.Base(audioPath)
	baseName = strings.TrimSuffix(baseName, filepath.Ext(baseName))
	jsonPath := filepath.Join(tempDir, baseName+".json")

	jsonData, err := os.ReadFile(jsonPath)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "failed to read whisper output")
	}

	var result model.WhisperResult
	if err := json.Unmarshal(jsonData, &result); err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "failed to parse whisper output")
	}

	if text := strings.TrimSpace(result.Text); text != "" {
		return text, nil
	}

	// Older whisper builds leave "text" empty and only fill segments
	parts := make([]string, 0, len(result.Segments))
	for _, seg := range result.Segments {
		if t := strings.TrimSpace(seg.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " "), nil
}

// formatWhisperError provides user-friendly error messages for Whisper failures
func (e *whisperEngine) formatWhisperError(err error, audioPath string) string {
	errMsg := err.Error()

	switch {
	case strings.Contains(errMsg, "executable file not found"):
		return "Whisper is not installed. Please install OpenAI Whisper: pip install openai-whisper"
	case strings.Contains(errMsg, "No module named"):
		return "Whisper dependencies missing. Please reinstall: pip install --upgrade openai-whisper"
	case strings.Contains(errMsg, "not enough memory") || strings.Contains(errMsg, "OutOfMemoryError"):
		return fmt.Sprintf("insufficient memory for model '%s'. Try using a smaller model (tiny, base, small)", e.opts.Model)
	case strings.Contains(errMsg, "Invalid language") || strings.Contains(errMsg, "Unsupported language"):
		return fmt.Sprintf("unsupported language '%s'", e.opts.Language)
	case strings.Contains(errMsg, "Could not load model") || strings.Contains(errMsg, "invalid choice"):
		return fmt.Sprintf("failed to load Whisper model '%s'", e.opts.Model)
	case strings.Contains(errMsg, "ffmpeg"):
		return fmt.Sprintf("ffmpeg failed to decode %s", filepath.Base(audioPath))
	default:
		return fmt.Sprintf("transcription failed with model '%s'", e.opts.Model)
	}
}
