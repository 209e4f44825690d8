package ingestion_engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/markdave123-py/weddingkb/internal/core"
	"github.com/markdave123-py/weddingkb/internal/models"
)

// IngestConfig holds the orchestrator's tunables.
type IngestConfig struct {
	BatchSize      int          // parallel embed+insert calls per batch
	EmbedDim       int          // expected embedding dimension, 0 disables the check
	DefaultOptions ChunkOptions // used for fields a request leaves unset
}

// Archiver copies raw uploads to object storage. services.DocumentService implements it.
type Archiver interface {
	ArchiveEnabled() bool
	Archive(ctx context.Context, sourceType, documentID string, file *models.UploadedFile) (string, error)
}

// DocumentIngestor runs uploads through extract, metadata, chunk, embed and store.
type DocumentIngestor struct {
	db         core.DbClient
	embedder   core.EmbeddingProvider
	metadata   *MetadataGenerator
	extractors *ExtractorRegistry
	archive    Archiver // may be nil
	profiles   Profiles
	cfg        *IngestConfig
	logger     *slog.Logger
}

var _ Ingestor = (*DocumentIngestor)(nil)

func NewDocumentIngestor(
	db core.DbClient,
	emb core.EmbeddingProvider,
	metadata *MetadataGenerator,
	extractors *ExtractorRegistry,
	archive Archiver,
	profiles Profiles,
	cfg *IngestConfig,
	logger *slog.Logger,
) *DocumentIngestor {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	return &DocumentIngestor{
		db:         db,
		embedder:   emb,
		metadata:   metadata,
		extractors: extractors,
		archive:    archive,
		profiles:   profiles,
		cfg:        cfg,
		logger:     logger,
	}
}

// log prefers the request-scoped logger carried by ctx.
func (i *DocumentIngestor) log(ctx context.Context) *slog.Logger {
	return core.LoggerFrom(ctx, i.logger)
}

// embed returns the vector for text, checking it against the configured dimension.
func (i *DocumentIngestor) embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := i.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("%w: empty vector", core.ErrEmbedding)
	}
	if i.cfg.EmbedDim > 0 && len(vec) != i.cfg.EmbedDim {
		return nil, fmt.Errorf("%w: got %d dimensions, want %d", core.ErrEmbedding, len(vec), i.cfg.EmbedDim)
	}
	return vec, nil
}

// newDocumentID builds "<prefix>_<unix millis>_<random>".
func newDocumentID(prefix string) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), random)
}
