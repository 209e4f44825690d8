package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/markdave123-py/weddingkb/internal/config"
	"github.com/markdave123-py/weddingkb/internal/core"
	"github.com/markdave123-py/weddingkb/internal/models"
)

var _ core.DbClient = (*DatabaseClient)(nil)

type DatabaseClient struct {
	db *sql.DB
}

// NewDatabaseClient opens the pool, pings it and makes sure the schema exists.
func NewDatabaseClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	dsn, err := buildDSN(cfg.DatabaseURL, cfg.SslCertPath)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Upload handlers run up to BATCH_SIZE inserts at once per request.
	db.SetMaxOpenConns(40)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

// NewDatabaseClientFromDB wraps an already opened handle.
func NewDatabaseClientFromDB(db *sql.DB) *DatabaseClient {
	return &DatabaseClient{db: db}
}

// buildDSN appends certificate verification parameters when a root cert is configured.
func buildDSN(databaseURL, sslCertPath string) (string, error) {
	if sslCertPath == "" {
		return databaseURL, nil
	}
	if _, err := os.Stat(sslCertPath); err != nil {
		return "", fmt.Errorf("ssl cert not accessible at %q: %w", sslCertPath, err)
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	q := u.Query()
	q.Set("sslmode", "verify-ca")
	q.Set("sslrootcert", sslCertPath)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// InsertDocumentRow writes one parent or chunk row. Rows are never updated afterwards.
func (c *DatabaseClient) InsertDocumentRow(ctx context.Context, row *models.DocumentRow) error {
	if row == nil {
		return errors.New("nil document row")
	}
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	metadata := row.Metadata
	if len(metadata) == 0 {
		metadata = []byte("{}")
	}

	const q = `
		INSERT INTO documents_enhanced
			(id, document_id, content, metadata, embedding, title, author, doc_type, genre, topic,
			 difficulty, tags, source_type, summary, chunk_id, total_chunks, source, category)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err := c.db.ExecContext(ctx, q,
		row.ID, row.DocumentID, row.Content, string(metadata), vectorOrNull(row.Embedding),
		row.Title, row.Author, row.DocType, row.Genre, row.Topic,
		row.Difficulty, row.Tags, row.SourceType, row.Summary, row.ChunkID, row.TotalChunks, row.Source, row.Category,
	)
	if err != nil {
		return fmt.Errorf("%w: insert document row %s/%d: %v", core.ErrPersistence, row.DocumentID, row.ChunkID, err)
	}
	return nil
}

// InsertVendor writes one vendor row. Empty optional fields are stored as NULL.
func (c *DatabaseClient) InsertVendor(ctx context.Context, v *models.VendorRow) error {
	if v == nil {
		return errors.New("nil vendor")
	}
	if v.ID == "" {
		v.ID = uuid.NewString()
	}

	const q = `
		INSERT INTO wedding_vendors
			(id, supplier, category, county, email, website, status, embedding, source_file, row_index)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := c.db.ExecContext(ctx, q,
		v.ID, v.Supplier, v.Category, nullIfEmpty(v.County), nullIfEmpty(v.Email), nullIfEmpty(v.Website),
		nullIfEmpty(v.Status), vectorOrNull(v.Embedding), v.SourceFile, v.RowIndex,
	)
	if err != nil {
		return fmt.Errorf("%w: insert vendor %q (row %d): %v", core.ErrPersistence, v.Supplier, v.RowIndex, err)
	}
	return nil
}

// ListParentDocuments returns the newest parent rows, optionally filtered by source type.
func (c *DatabaseClient) ListParentDocuments(ctx context.Context, sourceType string, limit int) ([]models.DocumentRow, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
		SELECT id, document_id, content, metadata, title, author, doc_type, genre, topic, difficulty,
		       tags, source_type, summary, chunk_id, total_chunks, source, category, created_at
		FROM documents_enhanced
		WHERE chunk_id = 0 AND ($1 = '' OR source_type = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := c.db.QueryContext(ctx, q, sourceType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocumentRows(rows)
}

// GetDocumentRows returns the parent and chunk rows of one document ordered by chunk_id.
func (c *DatabaseClient) GetDocumentRows(ctx context.Context, documentID string) ([]models.DocumentRow, error) {
	const q = `
		SELECT id, document_id, content, metadata, title, author, doc_type, genre, topic, difficulty,
		       tags, source_type, summary, chunk_id, total_chunks, source, category, created_at
		FROM documents_enhanced
		WHERE document_id = $1
		ORDER BY chunk_id ASC
	`
	rows, err := c.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out, err := scanDocumentRows(rows)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("document %s: %w", documentID, core.ErrNotFound)
	}
	return out, nil
}

func scanDocumentRows(rows *sql.Rows) ([]models.DocumentRow, error) {
	var out []models.DocumentRow
	for rows.Next() {
		var (
			d    models.DocumentRow
			meta []byte
		)
		if err := rows.Scan(
			&d.ID, &d.DocumentID, &d.Content, &meta, &d.Title, &d.Author, &d.DocType, &d.Genre, &d.Topic, &d.Difficulty,
			&d.Tags, &d.SourceType, &d.Summary, &d.ChunkID, &d.TotalChunks, &d.Source, &d.Category, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		d.Metadata = meta
		out = append(out, d)
	}
	return out, rows.Err()
}

func vectorOrNull(v []float32) any {
	if len(v) == 0 {
		return nil
	}
	return pgvector.NewVector(v)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
