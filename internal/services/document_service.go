package services

import (
	"context"
	"path"
	"strings"

	"github.com/markdave123-py/weddingkb/internal/core"
	"github.com/markdave123-py/weddingkb/internal/models"
)

// DocumentService archives raw uploads and serves read access to ingested documents.
type DocumentService struct {
	db      core.DbClient
	storage core.ObjectClient // nil when archiving is disabled
	bucket  string
}

func NewDocumentService(db core.DbClient, storage core.ObjectClient, bucket string) *DocumentService {
	return &DocumentService{db: db, storage: storage, bucket: bucket}
}

// ArchiveEnabled reports whether raw uploads are copied to object storage.
func (s *DocumentService) ArchiveEnabled() bool {
	return s != nil && s.storage != nil
}

// Archive stores the original upload under a per-document key and returns its URL.
func (s *DocumentService) Archive(ctx context.Context, sourceType, documentID string, file *models.UploadedFile) (string, error) {
	key := s.objectKey(sourceType, documentID, file.Name)
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return s.storage.UploadFile(ctx, s.bucket, key, file.Data, contentType)
}

func (s *DocumentService) ListParents(ctx context.Context, sourceType string, limit int) ([]models.DocumentRow, error) {
	return s.db.ListParentDocuments(ctx, sourceType, limit)
}

func (s *DocumentService) Get(ctx context.Context, documentID string) ([]models.DocumentRow, error) {
	return s.db.GetDocumentRows(ctx, documentID)
}

// objectKey creates a consistent S3 key layout.
func (s *DocumentService) objectKey(sourceType, documentID, filename string) string {
	filename = path.Base(strings.TrimSpace(filename))
	filename = strings.ReplaceAll(filename, " ", "_")
	return path.Join("uploads", sourceType, documentID, filename)
}
