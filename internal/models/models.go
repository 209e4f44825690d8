package models

import (
	"encoding/json"
	"time"
)

// UploadedFile is one file from a multipart upload. It only lives for the request.
type UploadedFile struct {
	Name        string
	Size        int64
	ContentType string
	Data        []byte
}

// ExtractedContent is the plain text of one uploaded file plus where it came from.
type ExtractedContent struct {
	Text     string
	Source   string            // original filename
	Method   string            // parser that produced Text
	Duration time.Duration     // extraction time
	Meta     map[string]string // parser-reported document metadata (may be nil)
}

// MetadataRecord is the fixed-shape metadata attached to every stored row.
// After ParseOrDefault every field is non-empty.
type MetadataRecord struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Summary  string `json:"summary"`
	Tags     string `json:"tags"`
	Tone     string `json:"tone"`
	Audience string `json:"audience"`
	Category string `json:"category"`
}

// Fields returns the record as a key/value map, used to build the JSON metadata blob.
func (m MetadataRecord) Fields() map[string]any {
	return map[string]any{
		"title":    m.Title,
		"author":   m.Author,
		"summary":  m.Summary,
		"tags":     m.Tags,
		"tone":     m.Tone,
		"audience": m.Audience,
		"category": m.Category,
	}
}

// DocumentRow is one row of documents_enhanced: either the parent row of an uploaded
// file (ChunkID == 0, no embedding) or one of its chunks (ChunkID == index+1).
type DocumentRow struct {
	ID          string          `db:"id" json:"id"`
	DocumentID  string          `db:"document_id" json:"document_id"`
	Content     string          `db:"content" json:"content"`
	Metadata    json.RawMessage `db:"metadata" json:"metadata"`
	Embedding   []float32       `db:"embedding" json:"-"` // pgvector column
	Title       string          `db:"title" json:"title"`
	Author      string          `db:"author" json:"author"`
	DocType     string          `db:"doc_type" json:"doc_type"`
	Genre       string          `db:"genre" json:"genre"`
	Topic       string          `db:"topic" json:"topic"`
	Difficulty  string          `db:"difficulty" json:"difficulty"`
	Tags        string          `db:"tags" json:"tags"`
	SourceType  string          `db:"source_type" json:"source_type"`
	Summary     string          `db:"summary" json:"summary"`
	ChunkID     int             `db:"chunk_id" json:"chunk_id"`
	TotalChunks int             `db:"total_chunks" json:"total_chunks"`
	Source      string          `db:"source" json:"source"`
	Category    string          `db:"category" json:"category"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// IsParent reports whether the row is the aggregate row of its document.
func (r *DocumentRow) IsParent() bool { return r.ChunkID == 0 }

// VendorRow is one supplier from a vendor CSV.
type VendorRow struct {
	ID         string    `db:"id" json:"id"`
	Supplier   string    `db:"supplier" json:"supplier"`
	Category   string    `db:"category" json:"category"`
	County     string    `db:"county" json:"county,omitempty"`
	Email      string    `db:"email" json:"email,omitempty"`
	Website    string    `db:"website" json:"website,omitempty"`
	Status     string    `db:"status" json:"status,omitempty"`
	Embedding  []float32 `db:"embedding" json:"-"`
	SourceFile string    `db:"source_file" json:"source_file"`
	RowIndex   int       `db:"row_index" json:"row_index"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
