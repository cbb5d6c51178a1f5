package acquisition

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Taichi-iskw/yt-scribe/internal/errors"
	"github.com/Taichi-iskw/yt-scribe/internal/model"
	"github.com/Taichi-iskw/yt-scribe/internal/retry"
	"github.com/Taichi-iskw/yt-scribe/internal/service/common"
	"github.com/Taichi-iskw/yt-scribe/internal/storage"
)

// AudioDownloadService defines operations for obtaining a local audio artifact
type AudioDownloadService interface {
	// DownloadAudio returns the artifact path for item, downloading it only when not cached
	DownloadAudio(ctx context.Context, item model.WorkItem) (string, error)

	// AudioPath returns the deterministic artifact path for a video ID
	AudioPath(videoID string) string
}

// Options configures the downloader
type Options struct {
	OutputDir   string
	Binary      string
	AudioFormat string
	Retry       retry.Config
}

// audioDownloadService implements AudioDownloadService using yt-dlp
type audioDownloadService struct {
	cmdRunner common.CmdRunner
	opts      Options
	logger    *slog.Logger
}

// NewAudioDownloadService creates a new AudioDownloadService with default CmdRunner
func NewAudioDownloadService(opts Options, logger *slog.Logger) AudioDownloadService {
	return NewAudioDownloadServiceWithCmdRunner(common.NewCmdRunner(), opts, logger)
}

// NewAudioDownloadServiceWithCmdRunner creates a new AudioDownloadService with custom CmdRunner (for testing)
func NewAudioDownloadServiceWithCmdRunner(cmdRunner common.CmdRunner, opts Options, logger *slog.Logger) AudioDownloadService {
	if opts.Binary == "" {
		opts.Binary = "yt-dlp"
	}
	if opts.AudioFormat == "" {
		opts.AudioFormat = "mp3"
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &audioDownloadService{
		cmdRunner: cmdRunner,
		opts:      opts,
		logger:    logger,
	}
}

func (s *audioDownloadService) AudioPath(videoID string) string {
	return filepath.Join(s.opts.OutputDir, videoID+"."+s.opts.AudioFormat)
}

// DownloadAudio returns the cached artifact when present; otherwise downloads with retry.
// Each attempt works in its own temp directory and the result is renamed into place only
// after it was verified non-empty.
func (s *audioDownloadService) DownloadAudio(ctx context.Context, item model.WorkItem) (string, error) {
	// Validate input
	if item.ID == "" {
		return "", errors.New(errors.CodeInvalidArg, "video ID is required")
	}
	if s.opts.OutputDir == "" {
		return "", errors.New(errors.CodeInvalidArg, "output directory is required")
	}
	if strings.ContainsAny(item.ID, `/\`) || item.ID == "." || item.ID == ".." {
		return "", errors.New(errors.CodeInvalidArg, fmt.Sprintf("invalid video ID %q", item.ID))
	}

	target := s.AudioPath(item.ID)
	if storage.NonEmptyFile(target) {
		s.logger.Debug("audio cache hit", "video_id", item.ID, "path", target)
		return target, nil
	}

	if err := os.MkdirAll(s.opts.OutputDir, 0755); err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "failed to create output directory")
	}
	// A zero-byte leftover is never a valid artifact
	os.Remove(target)

	cfg := s.opts.Retry
	cfg.OnRetry = func(attempt int, wait time.Duration, err error) {
		s.logger.Warn("audio download attempt failed, retrying",
			"video_id", item.ID, "attempt", attempt, "wait", wait, "err", err)
	}

	err := retry.Do(ctx, cfg, isRetryableDownloadError, func(ctx context.Context, attempt int) error {
		return s.downloadOnce(ctx, item, target)
	})
	if err != nil {
		os.Remove(target)
		return "", errors.Wrap(err, errors.CodeAcquisition, s.formatYtDlpError(err, item.ID))
	}

	return target, nil
}

// downloadOnce runs yt-dlp into a temp directory and moves the verified file to target
func (s *audioDownloadService) downloadOnce(ctx context.Context, item model.WorkItem, target string) error {
	tempDir, err := os.MkdirTemp(s.opts.OutputDir, "."+item.ID+"-*")
	if err != nil {
		return retry.Permanent(fmt.Errorf("failed to create temp directory: %w", err))
	}
	defer os.RemoveAll(tempDir)

	// Prepare yt-dlp command arguments for audio-only download
	args := []string{
		"-f", "bestaudio/best",
		"-x",
		"--audio-format", s.opts.AudioFormat,
		"--audio-quality", "0",
		"--no-playlist",
		"--no-progress",
		"--output", filepath.Join(tempDir, item.ID+".%(ext)s"),
		item.WatchURL(),
	}

	if _, err := s.cmdRunner.Run(ctx, s.opts.Binary, args...); err != nil {
		return err
	}

	produced := filepath.Join(tempDir, item.ID+"."+s.opts.AudioFormat)
	if !storage.NonEmptyFile(produced) {
		return fmt.Errorf("yt-dlp reported success but %s is missing or empty", filepath.Base(produced))
	}

	if err := os.Rename(produced, target); err != nil {
		return fmt.Errorf("failed to move audio into place: %w", err)
	}
	return nil
}

// permanentMarkers are yt-dlp messages that no amount of retrying will fix
var permanentMarkers = []string{
	"Private video",
	"Video unavailable",
	"Video removed",
	"This video is not available",
	"members-only",
	"Sign in to confirm your age",
}

// isRetryableDownloadError stops retrying for cancellation, missing binaries and unavailable videos
func isRetryableDownloadError(err error) bool {
	if !retry.IsRetryable(err) {
		return false
	}
	if stderrors.Is(err, os.ErrNotExist) {
		return false
	}
	msg := err.Error()
	if strings.Contains(msg, "executable file not found") {
		return false
	}
	for _, marker := range permanentMarkers {
		if strings.Contains(msg, marker) {
			return false
		}
	}
	return true
}

// formatYtDlpError provides user-friendly error messages for yt-dlp failures
func (s *audioDownloadService) formatYtDlpError(err error, videoID string) string {
	errMsg := err.Error()

	// Check for common yt-dlp error patterns
	switch {
	case strings.Contains(errMsg, "Private video"):
		return "video is private and cannot be downloaded"
	case strings.Contains(errMsg, "Video removed"):
		return "video has been removed by the uploader"
	case strings.Contains(errMsg, "Video unavailable"), strings.Contains(errMsg, "This video is not available"):
		return "video is not available (may be private, deleted, or region-blocked)"
	case strings.Contains(errMsg, "members-only"):
		return "video is restricted to channel members"
	case strings.Contains(errMsg, "Sign in to confirm your age"):
		return "video is age-restricted and requires login"
	case strings.Contains(errMsg, "executable file not found"):
		return fmt.Sprintf("%s is not installed or not found in PATH. Please install yt-dlp", s.opts.Binary)
	case strings.Contains(errMsg, "ffmpeg") || strings.Contains(errMsg, "ffprobe"):
		return "audio extraction failed - ffmpeg is required for yt-dlp audio conversion"
	case strings.Contains(errMsg, "HTTP Error 404"):
		return "video not found - please check the video ID"
	case strings.Contains(errMsg, "403"):
		return "access denied - video may be region-blocked or require login"
	case strings.Contains(errMsg, "429"):
		return "rate limited by YouTube - please try again later"
	case strings.Contains(errMsg, "missing or empty"):
		return fmt.Sprintf("download of video '%s' produced no audio", videoID)
	default:
		return fmt.Sprintf("failed to download audio from video '%s'", videoID)
	}
}
