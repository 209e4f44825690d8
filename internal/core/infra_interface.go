package core

import (
	"context"

	"github.com/markdave123-py/weddingkb/internal/models"
)

// DbClient defines all persistence operations the ingestion pipeline needs.
// It abstracts Postgres/pgvector so higher layers never depend on a specific DB.
// Every insert is independent: there is no transaction spanning rows.
type DbClient interface {
	InsertDocumentRow(ctx context.Context, row *models.DocumentRow) error
	InsertVendor(ctx context.Context, vendor *models.VendorRow) error

	ListParentDocuments(ctx context.Context, sourceType string, limit int) ([]models.DocumentRow, error)
	GetDocumentRows(ctx context.Context, documentID string) ([]models.DocumentRow, error)

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (url string, err error)
}
