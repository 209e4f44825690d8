package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/markdave123-py/weddingkb/internal/api/handlers"
	"github.com/markdave123-py/weddingkb/internal/config"
	"github.com/markdave123-py/weddingkb/internal/core"
	db "github.com/markdave123-py/weddingkb/internal/core/database"
	"github.com/markdave123-py/weddingkb/internal/core/ingestion_engine"
	"github.com/markdave123-py/weddingkb/internal/core/llm"
	objectclient "github.com/markdave123-py/weddingkb/internal/core/object-client"
	"github.com/markdave123-py/weddingkb/internal/services"
)

const (
	openAIGenModel   = "gpt-4o-mini"
	openAIEmbedModel = "text-embedding-3-small"
)

type App struct {
	DBClient  core.DbClient
	Documents *services.DocumentService
	Ingestor  *ingestion_engine.DocumentIngestor
	Server    *Server

	closers []func() error
	logger  *slog.Logger
}

// NewApp connects the database, the AI provider and optional object storage, and wires
// the ingestion pipeline and HTTP server on top.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	a := &App{logger: logger}

	dbClient, err := db.NewDatabaseClient(appCtx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.DBClient = dbClient
	a.closers = append(a.closers, dbClient.Close)
	logger.Info("database initialized and ready")

	var storage core.ObjectClient
	if cfg.ArchiveUploads {
		storage, err = objectclient.NewS3Client(appCtx, cfg, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("object storage: %w", err)
		}
	}
	a.Documents = services.NewDocumentService(dbClient, storage, cfg.BucketName)

	embedder, generator, err := a.newProviders(appCtx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	embedder = llm.WithRateLimit(embedder, cfg.EmbedRateLimit, cfg.EmbedRateBurst)

	profiles, err := ingestion_engine.LoadProfiles()
	if err != nil {
		a.Close()
		return nil, err
	}

	extractors := ingestion_engine.DefaultExtractorRegistry(cfg.DefaultPDFParser)
	if !extractors.Has("") {
		a.Close()
		return nil, fmt.Errorf("DEFAULT_PDF_PARSER %q is not one of %s",
			cfg.DefaultPDFParser, strings.Join(extractors.Names(), ", "))
	}

	a.Ingestor = ingestion_engine.NewDocumentIngestor(
		dbClient,
		embedder,
		ingestion_engine.NewMetadataGenerator(generator, profiles, logger),
		extractors,
		a.Documents,
		profiles,
		&ingestion_engine.IngestConfig{
			BatchSize: cfg.BatchSize,
			EmbedDim:  cfg.EmbedDim,
			DefaultOptions: ingestion_engine.ChunkOptions{
				Strategy: ingestion_engine.StrategyRecursive,
				Size:     cfg.DefaultChunkSize,
				Overlap:  cfg.DefaultChunkOverlap,
			},
		},
		logger,
	)

	a.Server = NewServer(cfg,
		handlers.NewIngestHandler(a.Ingestor, cfg, logger),
		handlers.NewDocumentHandler(a.Documents, logger),
		logger)

	logger.Info("ingestion pipeline ready",
		"ai_provider", cfg.AIProvider,
		"embed_dim", cfg.EmbedDim,
		"batch_size", cfg.BatchSize,
		"pdf_parser", cfg.DefaultPDFParser,
		"archive_uploads", a.Documents.ArchiveEnabled())
	return a, nil
}

func (a *App) newProviders(ctx context.Context, cfg *config.Config) (core.EmbeddingProvider, core.LLMProvider, error) {
	switch cfg.AIProvider {
	case "openai":
		genModel, embedModel := cfg.GenModel, cfg.EmbedModel
		if strings.HasPrefix(genModel, "gemini") {
			genModel = openAIGenModel
		}
		if embedModel == "text-embedding-004" {
			embedModel = openAIEmbedModel
		}
		client, err := llm.NewOpenAIClient(cfg.OpenAIAPIKey, genModel, embedModel)
		if err != nil {
			return nil, nil, fmt.Errorf("couldn't initialize openai client: %w", err)
		}
		return client, client, nil

	default:
		embedder, err := llm.NewGeminiEmbedder(ctx, cfg.AIAPIKey, cfg.EmbedModel)
		if err != nil {
			return nil, nil, fmt.Errorf("couldn't initialize the embedder: %w", err)
		}
		a.closers = append(a.closers, embedder.Close)

		generator, err := llm.NewGeminiLLM(ctx, cfg.AIAPIKey, cfg.GenModel)
		if err != nil {
			return nil, nil, fmt.Errorf("couldn't initialize the llm: %w", err)
		}
		a.closers = append(a.closers, generator.Close)
		return embedder, generator, nil
	}
}

// Close releases clients in reverse order of creation.
func (a *App) Close() {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("close app", "error", err)
	}
}
