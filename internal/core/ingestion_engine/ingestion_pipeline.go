package ingestion_engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/markdave123-py/weddingkb/internal/core"
	"github.com/markdave123-py/weddingkb/internal/models"
)

// PodcastRequest is one podcast upload: the files plus how to parse and chunk them.
type PodcastRequest struct {
	Files   []*models.UploadedFile
	Options ChunkOptions
	Parser  string
}

// FileResult is the outcome of one uploaded file. Items counts chunks for podcasts and
// rows for vendor CSVs; Stored counts the ones that reached the database.
type FileResult struct {
	Filename     string `json:"filename"`
	DocumentID   string `json:"documentId,omitempty"`
	Stage        Stage  `json:"stage"`
	Parser       string `json:"parser,omitempty"`
	TextLength   int    `json:"textLength,omitempty"`
	Items        int    `json:"items"`
	Stored       int    `json:"stored"`
	ParentStored bool   `json:"parentStored,omitempty"`
	AIGenerated  bool   `json:"aiGenerated,omitempty"`
	StorageURL   string `json:"storageUrl,omitempty"`
	Error        string `json:"error,omitempty"`
	Err          error  `json:"-"`
}

// PodcastSummary aggregates a podcast upload.
type PodcastSummary struct {
	Files               []FileResult
	DocumentsCount      int // files that reached StageDone
	ChunksCount         int // chunk rows stored across all files
	AIMetadataGenerated int // files whose metadata came from the model
}

// Skipped counts files dropped for having no text.
func (s *PodcastSummary) Skipped() int { return countStage(s.Files, StageSkipped) }

// Failed returns the files that ended in StageError or StageSkipped.
func (s *PodcastSummary) Failed() []FileResult { return unsuccessful(s.Files) }

// Err is nil when at least one file was ingested. Otherwise it is ErrNoTextContent when a
// file was skipped for lack of text, or the first file error.
func (s *PodcastSummary) Err() error { return summaryErr(s.Files, s.DocumentsCount) }

// IngestPodcasts runs every file through the pipeline, one file at a time. A failing file
// never affects its siblings.
func (i *DocumentIngestor) IngestPodcasts(ctx context.Context, req PodcastRequest) (*PodcastSummary, error) {
	if len(req.Files) == 0 {
		return nil, fmt.Errorf("%w: no files provided", core.ErrValidation)
	}
	opts := req.Options.withDefaults(i.cfg.DefaultOptions)
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if !i.extractors.Has(req.Parser) {
		return nil, fmt.Errorf("%w: unknown pdf parser %q (available: %s)",
			core.ErrValidation, req.Parser, strings.Join(i.extractors.Names(), ", "))
	}

	i.log(ctx).Info("ingest: podcast upload",
		"files", len(req.Files),
		"splitter", opts.Strategy,
		"chunk_size", opts.Size,
		"chunk_overlap", opts.Overlap,
		"parser", req.Parser)

	summary := &PodcastSummary{Files: make([]FileResult, 0, len(req.Files))}
	for _, f := range req.Files {
		res := i.ingestPodcast(ctx, f, opts, req.Parser)
		if res.Stage == StageDone {
			summary.DocumentsCount++
			summary.ChunksCount += res.Stored
			if res.AIGenerated {
				summary.AIMetadataGenerated++
			}
		}
		summary.Files = append(summary.Files, res)
	}
	return summary, nil
}

func (i *DocumentIngestor) ingestPodcast(ctx context.Context, file *models.UploadedFile, opts ChunkOptions, parser string) FileResult {
	start := time.Now()
	res := FileResult{Filename: file.Name}
	logger := i.log(ctx)
	track := newFileTracker(logger, &res)
	profile := i.profiles[ContentPodcast]

	content, err := i.Extract(ctx, file, parser)
	if err != nil {
		if errors.Is(err, core.ErrNoTextContent) {
			track.skip(err)
		} else {
			track.fail(err)
		}
		return res
	}
	res.Parser = content.Method
	res.TextLength = len([]rune(content.Text))
	track.advance(StageExtracted, "parser", content.Method, "chars", res.TextLength, "took", content.Duration)

	meta := i.metadata.Generate(ctx, content.Text, file.Name, ContentPodcast)
	res.AIGenerated = meta.AIGenerated
	track.advance(StageMetadataReady, "title", meta.Metadata.Title, "ai_generated", meta.AIGenerated)

	chunks, err := Split(content.Text, opts)
	if err != nil {
		track.fail(err)
		return res
	}
	if len(chunks) == 0 {
		track.skip(fmt.Errorf("%w: %s produced no chunks", core.ErrNoTextContent, file.Name))
		return res
	}
	res.Items = len(chunks)
	res.DocumentID = newDocumentID(profile.IDPrefix)
	track.advance(StageChunked, "chunks", len(chunks), "document_id", res.DocumentID)

	if i.archive != nil && i.archive.ArchiveEnabled() {
		url, err := i.archive.Archive(ctx, profile.SourceType, res.DocumentID, file)
		if err != nil {
			logger.Warn("ingest: archive upload failed", "file", file.Name, "error", err)
		} else {
			res.StorageURL = url
		}
	}

	base := baseMetadata(meta.Metadata)
	track.advance(StageStoring, "batch_size", i.cfg.BatchSize)
	res.Stored = runBatches(ctx, len(chunks), i.cfg.BatchSize, func(ctx context.Context, n int) bool {
		c := chunks[n]
		row, err := i.chunkRow(ctx, profile, meta, content, file.Name, res.DocumentID, c, len(chunks), base)
		if err == nil {
			err = i.db.InsertDocumentRow(ctx, row)
		}
		if err != nil {
			logger.Error("ingest: chunk not stored",
				"file", file.Name, "document_id", res.DocumentID, "chunk", c.Pos, "error", err)
			return false
		}
		return true
	})

	parent, err := i.parentRow(profile, meta, content, file.Name, res, time.Since(start), base)
	if err == nil {
		err = i.db.InsertDocumentRow(ctx, parent)
	}
	if err != nil {
		// Chunk rows stay in place.
		logger.Error("ingest: parent row not stored", "file", file.Name, "document_id", res.DocumentID, "error", err)
	} else {
		res.ParentStored = true
		track.advance(StageParentStored)
	}

	track.advance(StageDone,
		"chunks_stored", res.Stored,
		"chunks_failed", res.Items-res.Stored,
		"took", time.Since(start))
	return res
}

// Extract turns one upload into text with the selected parser. Empty output is reported as
// ErrNoTextContent.
func (i *DocumentIngestor) Extract(ctx context.Context, file *models.UploadedFile, parser string) (*models.ExtractedContent, error) {
	contentType := DetectContentType(file.Name, file.ContentType)
	ex, err := i.extractors.For(parser, contentType)
	if err != nil {
		return nil, err
	}
	content, err := ex.Extract(ctx, file.Data, contentType)
	if err != nil {
		return nil, err
	}
	content.Source = file.Name
	if strings.TrimSpace(content.Text) == "" {
		return nil, fmt.Errorf("%w: %s", core.ErrNoTextContent, file.Name)
	}
	return content, nil
}

// GenerateMetadata exposes the metadata generator on its own.
func (i *DocumentIngestor) GenerateMetadata(ctx context.Context, text, filename string, ct ContentType) GeneratedMetadata {
	return i.metadata.Generate(ctx, text, filename, ct)
}

func (i *DocumentIngestor) chunkRow(
	ctx context.Context,
	p Profile,
	meta GeneratedMetadata,
	content *models.ExtractedContent,
	filename, documentID string,
	c chunk,
	total int,
	base map[string]any,
) (*models.DocumentRow, error) {
	m := meta.Metadata
	vec, err := i.embed(ctx, podcastEmbedText(p, m, c.Text))
	if err != nil {
		return nil, err
	}

	extra := map[string]any{
		"chunk_index":       c.Pos,
		"total_chunks":      total,
		"filename":          filename,
		"parser_used":       content.Method,
		"parse_time":        content.Duration.Milliseconds(),
		"ai_generated":      meta.AIGenerated,
		"transcript_length": meta.TextLength,
	}
	if len(content.Meta) > 0 {
		extra["pdf_metadata"] = content.Meta
	}
	blob, err := marshalMetadata(base, extra)
	if err != nil {
		return nil, err
	}

	return &models.DocumentRow{
		DocumentID:  documentID,
		Content:     c.Text,
		Metadata:    blob,
		Embedding:   vec,
		Title:       m.Title,
		Author:      m.Author,
		DocType:     p.DocType,
		Genre:       p.Genre,
		Topic:       m.Category,
		Difficulty:  p.Difficulty,
		Tags:        m.Tags,
		SourceType:  p.SourceType,
		Summary:     m.Summary,
		ChunkID:     c.Pos + 1,
		TotalChunks: total,
		Source:      filename,
		Category:    m.Category,
	}, nil
}

func (i *DocumentIngestor) parentRow(
	p Profile,
	meta GeneratedMetadata,
	content *models.ExtractedContent,
	filename string,
	res FileResult,
	took time.Duration,
	base map[string]any,
) (*models.DocumentRow, error) {
	m := meta.Metadata
	extra := map[string]any{
		"is_parent_document":    true,
		"chunk_count":           res.Items,
		"chunks_stored":         res.Stored,
		"processing_time":       took.Milliseconds(),
		"parse_time":            content.Duration.Milliseconds(),
		"text_length":           meta.TextLength,
		"ai_generated_metadata": meta.AIGenerated,
		"original_filename":     filename,
	}
	if res.StorageURL != "" {
		extra["storage_url"] = res.StorageURL
	}
	blob, err := marshalMetadata(base, extra)
	if err != nil {
		return nil, err
	}

	return &models.DocumentRow{
		DocumentID:  res.DocumentID,
		Content:     fmt.Sprintf("%s: %s - %d chunks", p.Label, m.Title, res.Items),
		Metadata:    blob,
		Title:       m.Title,
		Author:      m.Author,
		DocType:     p.DocType,
		Genre:       p.Genre,
		Topic:       m.Category,
		Difficulty:  p.Difficulty,
		Tags:        m.Tags,
		SourceType:  p.SourceType,
		Summary:     m.Summary,
		ChunkID:     0,
		TotalChunks: res.Items,
		Source:      fmt.Sprintf("%s (%s)", m.Title, p.Label),
		Category:    m.Category,
	}, nil
}

// podcastEmbedText prefixes a chunk with the document context it is embedded under.
func podcastEmbedText(p Profile, m models.MetadataRecord, text string) string {
	return strings.TrimSpace(fmt.Sprintf("%s: %s\nHost/Expert: %s\nCategory: %s\nAudience: %s\nContent: %s",
		p.Label, m.Title, m.Author, m.Category, m.Audience, text))
}

func baseMetadata(m models.MetadataRecord) map[string]any {
	return m.Fields()
}

// marshalMetadata merges extra over base into a JSON object. base is not modified.
func marshalMetadata(base, extra map[string]any) (json.RawMessage, error) {
	out := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	blob, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("%w: encode metadata: %v", core.ErrPersistence, err)
	}
	return blob, nil
}

// withDefaults fills an unset strategy, and an unset size together with its overlap.
func (o ChunkOptions) withDefaults(d ChunkOptions) ChunkOptions {
	if o.Strategy == "" {
		o.Strategy = d.Strategy
	}
	if o.Size == 0 {
		o.Size = d.Size
		if o.Overlap == 0 {
			o.Overlap = d.Overlap
		}
	}
	return o
}

func countStage(files []FileResult, s Stage) int {
	n := 0
	for _, f := range files {
		if f.Stage == s {
			n++
		}
	}
	return n
}

func unsuccessful(files []FileResult) []FileResult {
	out := []FileResult{}
	for _, f := range files {
		if f.Stage != StageDone {
			out = append(out, f)
		}
	}
	return out
}

func summaryErr(files []FileResult, succeeded int) error {
	if succeeded > 0 || len(files) == 0 {
		return nil
	}
	var first error
	for _, f := range files {
		if f.Stage == StageSkipped {
			return fmt.Errorf("%w: no file produced any text", core.ErrNoTextContent)
		}
		if first == nil && f.Err != nil {
			first = f.Err
		}
	}
	if first == nil {
		first = errors.New("no file was ingested")
	}
	return first
}
