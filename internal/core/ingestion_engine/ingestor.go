package ingestion_engine

import (
	"context"

	"github.com/markdave123-py/weddingkb/internal/models"
)

// Ingestor is what the HTTP handlers and the CLI drive.
type Ingestor interface {
	IngestPodcasts(ctx context.Context, req PodcastRequest) (*PodcastSummary, error)
	IngestVendors(ctx context.Context, files []*models.UploadedFile) (*VendorSummary, error)
	Extract(ctx context.Context, file *models.UploadedFile, parser string) (*models.ExtractedContent, error)
	GenerateMetadata(ctx context.Context, text, filename string, ct ContentType) GeneratedMetadata
}
