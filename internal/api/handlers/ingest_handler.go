package handlers

import (
	"log/slog"

	"github.com/markdave123-py/weddingkb/internal/config"
	"github.com/markdave123-py/weddingkb/internal/core/ingestion_engine"
)

// IngestHandler serves the upload, metadata and extraction endpoints.
type IngestHandler struct {
	ingestor       ingestion_engine.Ingestor
	defaults       ingestion_engine.ChunkOptions
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewIngestHandler(ing ingestion_engine.Ingestor, cfg *config.Config, logger *slog.Logger) *IngestHandler {
	return &IngestHandler{
		ingestor: ing,
		defaults: ingestion_engine.ChunkOptions{
			Strategy: ingestion_engine.StrategyRecursive,
			Size:     cfg.DefaultChunkSize,
			Overlap:  cfg.DefaultChunkOverlap,
		},
		maxUploadBytes: int64(cfg.MaxUploadSizeMB) << 20,
		logger:         logger,
	}
}
