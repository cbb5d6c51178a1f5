package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Taichi-iskw/yt-scribe/internal/errors"
	"github.com/Taichi-iskw/yt-scribe/internal/service/persistence"
)

// Recognized option values
const (
	SourceYouTubeAPI = "youtube_api"
	SourceYtDlp      = "ytdlp"

	StoreFile     = "file"
	StorePostgres = "postgres"

	EngineWhisperCLI = "whisper_cli"
	EngineOpenAI     = "openai"

	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Validate fills defaults, resolves the persistence backend and reports
// missing credentials as CodeConfig errors
func (c *Config) Validate() error {
	c.applyDefaults()

	var problems []string
	require := func(ok bool, msg string) {
		if !ok {
			problems = append(problems, msg)
		}
	}

	require(c.PlaylistID != "", "playlist_id is required (or set PLAYLIST_ID)")

	switch c.Source {
	case SourceYouTubeAPI:
		require(c.YouTube.APIKey != "", "youtube.api_key is required for source youtube_api (or set YOUTUBE_API_KEY)")
	case SourceYtDlp:
	default:
		problems = append(problems, fmt.Sprintf("unknown source %q", c.Source))
	}

	switch c.Store.Type {
	case StoreFile:
	case StorePostgres:
		require(c.DatabaseURL != "", "database_url is required for the postgres store (or set DATABASE_URL)")
	default:
		problems = append(problems, fmt.Sprintf("unknown store type %q", c.Store.Type))
	}

	switch c.Transcription.Engine {
	case EngineWhisperCLI:
	case EngineOpenAI:
		require(c.Enrichment.OpenAIAPIKey != "", "an OpenAI API key is required for the openai transcription engine")
	default:
		problems = append(problems, fmt.Sprintf("unknown transcription engine %q", c.Transcription.Engine))
	}

	switch c.Enrichment.Provider {
	case ProviderOpenAI:
		require(c.Enrichment.OpenAIAPIKey != "", "enrichment.openai_api_key is required (or set OPENAI_API_KEY)")
	case ProviderGemini:
		require(len(c.Enrichment.GeminiAPIKeys) > 0, "enrichment.gemini_api_keys is required (or set GEMINI_API_KEYS)")
	case "":
		problems = append(problems, "an OpenAI or Gemini API key is required for enrichment")
	default:
		problems = append(problems, fmt.Sprintf("unknown enrichment provider %q", c.Enrichment.Provider))
	}

	backend, err := persistence.ParseBackend(c.Persistence.Backend)
	if err != nil {
		problems = append(problems, err.Error())
	} else {
		c.Persistence.Backend = string(c.resolveBackend(backend))
	}
	if c.Persistence.Backend == string(persistence.BackendCloudDocument) {
		require(c.Persistence.DriveFolderID != "", "persistence.drive_folder_id is required for cloud_document (or set GOOGLE_DRIVE_FOLDER_ID)")
		require(c.Persistence.CredentialsFile != "", "persistence.credentials_file is required for cloud_document (or set GOOGLE_CREDENTIALS_FILE)")
	}

	if len(problems) > 0 {
		return errors.New(errors.CodeConfig, "invalid configuration:\n  - "+strings.Join(problems, "\n  - "))
	}
	return nil
}

// resolveBackend picks cloud_document for an unset backend only when Drive is fully configured
func (c *Config) resolveBackend(b persistence.Backend) persistence.Backend {
	if b != "" {
		return b
	}
	if c.Persistence.DriveFolderID != "" && c.Persistence.CredentialsFile != "" {
		return persistence.BackendCloudDocument
	}
	return persistence.BackendLocal
}

// PersistenceBackend returns the resolved backend
func (c *Config) PersistenceBackend() persistence.Backend {
	return persistence.Backend(c.Persistence.Backend)
}

func (c *Config) applyDefaults() {
	data := dataDir()

	if c.Source == "" {
		c.Source = SourceYtDlp
		if c.YouTube.APIKey != "" {
			c.Source = SourceYouTubeAPI
		}
	}
	if c.YouTube.PageSize <= 0 {
		c.YouTube.PageSize = 50
	}

	if c.Store.Type == "" {
		c.Store.Type = StoreFile
	}
	if c.Store.Path == "" {
		c.Store.Path = filepath.Join(data, "processed_videos.json")
	}

	if c.Audio.Dir == "" {
		c.Audio.Dir = filepath.Join(data, "audio")
	}
	if c.Audio.Format == "" {
		c.Audio.Format = "mp3"
	}
	if c.Audio.YtDlpBinary == "" {
		c.Audio.YtDlpBinary = "yt-dlp"
	}
	if c.Audio.MaxAttempts <= 0 {
		c.Audio.MaxAttempts = 3
	}
	if c.Audio.InitialBackoff <= 0 {
		c.Audio.InitialBackoff = 5 * time.Second
	}
	if c.Audio.MaxBackoff <= 0 {
		c.Audio.MaxBackoff = 20 * time.Second
	}

	if c.Transcription.Engine == "" {
		c.Transcription.Engine = EngineWhisperCLI
	}
	if c.Transcription.WhisperBinary == "" {
		c.Transcription.WhisperBinary = "whisper"
	}
	if c.Transcription.Model == "" && c.Transcription.Engine == EngineWhisperCLI {
		c.Transcription.Model = "base"
	}

	if c.Enrichment.Provider == "" {
		switch {
		case c.Enrichment.OpenAIAPIKey != "":
			c.Enrichment.Provider = ProviderOpenAI
		case len(c.Enrichment.GeminiAPIKeys) > 0:
			c.Enrichment.Provider = ProviderGemini
		}
	}
	if c.Enrichment.MaxTokens <= 0 {
		c.Enrichment.MaxTokens = 4000
	}
	if c.Enrichment.ExcerptRunes <= 0 {
		c.Enrichment.ExcerptRunes = 2000
	}

	if c.Persistence.LocalDir == "" {
		c.Persistence.LocalDir = filepath.Join(data, "notes")
	}
	if c.Persistence.LocalFormat == "" {
		c.Persistence.LocalFormat = "markdown"
	}
	if c.Persistence.TokenFile == "" {
		if dir, err := getConfigDir(); err == nil {
			c.Persistence.TokenFile = filepath.Join(dir, "google_token.json")
		}
	}

	if c.Pipeline.PollInterval <= 0 {
		c.Pipeline.PollInterval = 5 * time.Minute
	}
	if c.Pipeline.ErrorBackoff <= 0 {
		c.Pipeline.ErrorBackoff = 60 * time.Second
	}
	if c.Pipeline.MaxErrorBackoff <= 0 {
		c.Pipeline.MaxErrorBackoff = time.Hour
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Masked returns a copy with secrets replaced, for display
func (c *Config) Masked() Config {
	m := *c
	m.YouTube.APIKey = mask(c.YouTube.APIKey)
	m.Enrichment.OpenAIAPIKey = mask(c.Enrichment.OpenAIAPIKey)

	m.Enrichment.GeminiAPIKeys = make([]string, len(c.Enrichment.GeminiAPIKeys))
	for i, k := range c.Enrichment.GeminiAPIKeys {
		m.Enrichment.GeminiAPIKeys[i] = mask(k)
	}

	if c.DatabaseURL != "" {
		if db, err := parseDatabaseURL(c.DatabaseURL); err == nil {
			m.DatabaseURL = db.Redacted()
		}
	}
	return m
}

// mask keeps the last four characters of long secrets
func mask(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "****"
	default:
		return "****" + s[len(s)-4:]
	}
}
