package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Taichi-iskw/yt-scribe/internal/config"
	"github.com/Taichi-iskw/yt-scribe/internal/repository/processed"
	"github.com/Taichi-iskw/yt-scribe/internal/retry"
	"github.com/Taichi-iskw/yt-scribe/internal/service/acquisition"
	"github.com/Taichi-iskw/yt-scribe/internal/service/common"
	"github.com/Taichi-iskw/yt-scribe/internal/service/discovery"
	"github.com/Taichi-iskw/yt-scribe/internal/service/enrichment"
	"github.com/Taichi-iskw/yt-scribe/internal/service/persistence"
	"github.com/Taichi-iskw/yt-scribe/internal/service/pipeline"
	"github.com/Taichi-iskw/yt-scribe/internal/service/transcription"
)

// ServiceFactory creates services from configuration
type ServiceFactory struct {
	cfg       *config.Config
	logger    *slog.Logger
	cmdRunner common.CmdRunner
	cleanups  []func()
}

// NewServiceFactory creates a new service factory
func NewServiceFactory(cfg *config.Config, logger *slog.Logger) *ServiceFactory {
	return &ServiceFactory{
		cfg:       cfg,
		logger:    logger,
		cmdRunner: common.NewCmdRunner(),
	}
}

// Close releases resources opened by the factory
func (f *ServiceFactory) Close() {
	for i := len(f.cleanups) - 1; i >= 0; i-- {
		f.cleanups[i]()
	}
	f.cleanups = nil
}

// CreateStore creates the processed-set store selected by store.type
func (f *ServiceFactory) CreateStore(ctx context.Context) (processed.Store, error) {
	if f.cfg.Store.Type != config.StorePostgres {
		return processed.NewFileStore(f.cfg.Store.Path), nil
	}

	// Create database connection
	dbPool, err := config.NewDatabasePool(ctx, f.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	f.cleanups = append(f.cleanups, func() { config.CloseDatabasePool(dbPool) })

	return processed.NewPostgresStore(dbPool), nil
}

// CreateLister creates the playlist lister selected by source
func (f *ServiceFactory) CreateLister(ctx context.Context) (discovery.PlaylistLister, error) {
	if f.cfg.Source == config.SourceYouTubeAPI {
		return discovery.NewYouTubeAPILister(ctx, f.cfg.YouTube.APIKey, int(f.cfg.YouTube.PageSize))
	}
	return discovery.NewYtDlpLister(f.cmdRunner, f.cfg.Audio.YtDlpBinary), nil
}

// CreateDiscovery creates the discovery service over store
func (f *ServiceFactory) CreateDiscovery(ctx context.Context, store processed.Store) (discovery.Service, error) {
	lister, err := f.CreateLister(ctx)
	if err != nil {
		return nil, err
	}
	return discovery.NewService(lister, store, f.cfg.PlaylistID), nil
}

// CreateDownloader creates the yt-dlp audio downloader
func (f *ServiceFactory) CreateDownloader() acquisition.AudioDownloadService {
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = f.cfg.Audio.MaxAttempts
	retryCfg.InitialBackoff = f.cfg.Audio.InitialBackoff
	retryCfg.MaxBackoff = f.cfg.Audio.MaxBackoff

	return acquisition.NewAudioDownloadServiceWithCmdRunner(f.cmdRunner, acquisition.Options{
		OutputDir:   f.cfg.Audio.Dir,
		Binary:      f.cfg.Audio.YtDlpBinary,
		AudioFormat: f.cfg.Audio.Format,
		Retry:       retryCfg,
	}, f.logger)
}

// CreateTranscriber creates the transcription service for the configured engine
func (f *ServiceFactory) CreateTranscriber() transcription.Service {
	tc := f.cfg.Transcription

	var engine transcription.Engine
	switch tc.Engine {
	case config.EngineOpenAI:
		engine = transcription.NewOpenAIEngine(f.cfg.Enrichment.OpenAIAPIKey, tc.Model, tc.Language)
	default:
		engine = transcription.NewWhisperEngineWithCmdRunner(f.cmdRunner, transcription.WhisperOptions{
			Binary:   tc.WhisperBinary,
			Model:    tc.Model,
			Language: tc.Language,
		})
	}
	return transcription.NewService(engine, f.logger)
}

// CreateEnricher creates the enricher for the configured provider
func (f *ServiceFactory) CreateEnricher() (enrichment.Enricher, error) {
	ec := f.cfg.Enrichment

	var llm enrichment.LLMClient
	switch ec.Provider {
	case config.ProviderGemini:
		client, err := enrichment.NewGeminiClient(ec.GeminiAPIKeys, ec.GeminiModel, f.logger)
		if err != nil {
			return nil, err
		}
		llm = client
	default:
		llm = enrichment.NewOpenAIClient(ec.OpenAIAPIKey, ec.OpenAIModel)
	}

	categories := make([]enrichment.Category, 0, len(ec.Categories))
	for _, c := range ec.Categories {
		categories = append(categories, enrichment.Category{Name: c.Name, Keywords: c.Keywords})
	}

	return enrichment.NewEnricher(llm, enrichment.Options{
		MaxTokens:    ec.MaxTokens,
		Highlights:   ec.HighlightsEnabled(),
		Categories:   categories,
		ExcerptRunes: ec.ExcerptRunes,
	}, f.logger), nil
}

// CreateWriter creates the document writer for the resolved backend
func (f *ServiceFactory) CreateWriter(ctx context.Context) (persistence.DocumentWriter, error) {
	pc := f.cfg.Persistence

	switch f.cfg.PersistenceBackend() {
	case persistence.BackendCloudDocument:
		httpClient, err := persistence.NewOAuthHTTPClient(ctx, pc.CredentialsFile, pc.TokenFile)
		if err != nil {
			return nil, err
		}
		return persistence.NewGoogleDocsWriter(ctx, httpClient, pc.DriveFolderID)
	default:
		return persistence.NewLocalWriter(pc.LocalDir, persistence.LocalFormat(pc.LocalFormat)), nil
	}
}

// CreateOrchestrator wires every stage into a pipeline orchestrator
func (f *ServiceFactory) CreateOrchestrator(ctx context.Context, reporter pipeline.Reporter, keepAudio bool) (*pipeline.Orchestrator, error) {
	store, err := f.CreateStore(ctx)
	if err != nil {
		return nil, err
	}

	disc, err := f.CreateDiscovery(ctx, store)
	if err != nil {
		return nil, err
	}

	enricher, err := f.CreateEnricher()
	if err != nil {
		return nil, err
	}

	writer, err := f.CreateWriter(ctx)
	if err != nil {
		return nil, err
	}

	f.logger.Info("pipeline configured",
		"playlist_id", f.cfg.PlaylistID,
		"source", f.cfg.Source,
		"store", f.cfg.Store.Type,
		"engine", f.cfg.Transcription.Engine,
		"provider", f.cfg.Enrichment.Provider,
		"backend", writer.Backend())

	return pipeline.New(pipeline.Dependencies{
		Store:       store,
		Discovery:   disc,
		Downloader:  f.CreateDownloader(),
		Transcriber: f.CreateTranscriber(),
		Enricher:    enricher,
		Persister:   persistence.NewPersister(writer, f.logger),
		Reporter:    reporter,
		Logger:      f.logger,
	}, pipeline.Options{
		PollInterval:    f.cfg.Pipeline.PollInterval,
		ErrorBackoff:    f.cfg.Pipeline.ErrorBackoff,
		MaxErrorBackoff: f.cfg.Pipeline.MaxErrorBackoff,
		KeepAudio:       keepAudio || f.cfg.Pipeline.KeepAudio,
	}), nil
}

// newReporter picks a progress bar on terminals and plain lines otherwise
func newReporter(out io.Writer) pipeline.Reporter {
	if isTerminal(out) {
		return newProgressReporter(out)
	}
	return pipeline.NewLineReporter(out)
}
