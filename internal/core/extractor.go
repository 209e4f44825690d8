package core

import (
	"context"

	"github.com/markdave123-py/weddingkb/internal/models"
)

// DocumentExtractor defines the interface for extracting text from uploaded documents.
type DocumentExtractor interface {
	// Name identifies the parser in logs and persisted metadata.
	Name() string
	// Extract parses data according to contentType. Unparsable input yields an error wrapping
	// ErrExtraction; parsable input with no text yields an empty Text and a nil error.
	Extract(ctx context.Context, data []byte, contentType string) (*models.ExtractedContent, error)
}
