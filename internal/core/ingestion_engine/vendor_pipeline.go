package ingestion_engine

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/markdave123-py/weddingkb/internal/core"
	"github.com/markdave123-py/weddingkb/internal/models"
)

// VendorSummary aggregates a vendor CSV upload.
type VendorSummary struct {
	Files          []FileResult
	TotalProcessed int // data rows read, including rows skipped for missing fields
	TotalStored    int // vendor rows inserted
	FilesProcessed int // CSV files that reached StageDone
}

// SuccessRate is TotalStored/TotalProcessed as a rounded percentage, e.g. "85%".
func (s *VendorSummary) SuccessRate() string {
	if s.TotalProcessed == 0 {
		return "0%"
	}
	return fmt.Sprintf("%d%%", int(math.Round(float64(s.TotalStored)/float64(s.TotalProcessed)*100)))
}

// Failed returns the files that ended in StageError or StageSkipped.
func (s *VendorSummary) Failed() []FileResult { return unsuccessful(s.Files) }

// Err is nil when at least one file was processed.
func (s *VendorSummary) Err() error { return summaryErr(s.Files, s.FilesProcessed) }

// IsCSV reports whether an upload is a CSV by MIME type or extension.
func IsCSV(filename, declared string) bool {
	return declared == "text/csv" || strings.EqualFold(filepath.Ext(filename), ".csv")
}

// IngestVendors embeds and stores every vendor row of every CSV upload. Non-CSV files are
// ignored; a request without any CSV is a validation error.
func (i *DocumentIngestor) IngestVendors(ctx context.Context, files []*models.UploadedFile) (*VendorSummary, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: No CSV files provided", core.ErrValidation)
	}
	logger := i.log(ctx)
	var csvFiles []*models.UploadedFile
	for _, f := range files {
		if IsCSV(f.Name, f.ContentType) {
			csvFiles = append(csvFiles, f)
		} else {
			logger.Warn("ingest: ignoring non-csv upload", "file", f.Name, "content_type", f.ContentType)
		}
	}
	if len(csvFiles) == 0 {
		return nil, fmt.Errorf("%w: Please provide valid CSV files", core.ErrValidation)
	}

	logger.Info("ingest: vendor upload", "files", len(csvFiles))

	summary := &VendorSummary{Files: make([]FileResult, 0, len(csvFiles))}
	for _, f := range csvFiles {
		res := i.ingestVendorFile(ctx, f)
		if res.Stage == StageDone {
			summary.FilesProcessed++
			summary.TotalProcessed += res.Items
			summary.TotalStored += res.Stored
		}
		summary.Files = append(summary.Files, res)
	}

	logger.Info("ingest: vendor upload finished",
		"processed", summary.TotalProcessed,
		"stored", summary.TotalStored,
		"success_rate", summary.SuccessRate())
	return summary, nil
}

func (i *DocumentIngestor) ingestVendorFile(ctx context.Context, file *models.UploadedFile) FileResult {
	start := time.Now()
	res := FileResult{Filename: file.Name, Parser: "csv"}
	logger := i.log(ctx)
	track := newFileTracker(logger, &res)
	profile := i.profiles[ContentVendor]

	if strings.TrimSpace(string(file.Data)) == "" {
		track.skip(fmt.Errorf("%w: %s is empty", core.ErrNoTextContent, file.Name))
		return res
	}
	rows, err := ParseVendorCSV(file.Data)
	if err != nil {
		track.fail(err)
		return res
	}
	if len(rows) == 0 {
		track.skip(fmt.Errorf("%w: %s has no vendor rows", core.ErrNoTextContent, file.Name))
		return res
	}
	res.Items = len(rows)
	res.TextLength = len(file.Data)
	track.advance(StageExtracted, "rows", len(rows))

	if i.archive != nil && i.archive.ArchiveEnabled() {
		res.DocumentID = newDocumentID(profile.IDPrefix)
		url, err := i.archive.Archive(ctx, profile.SourceType, res.DocumentID, file)
		if err != nil {
			logger.Warn("ingest: archive upload failed", "file", file.Name, "error", err)
		} else {
			res.StorageURL = url
		}
	}

	track.advance(StageStoring, "batch_size", i.cfg.BatchSize)
	res.Stored = runBatches(ctx, len(rows), i.cfg.BatchSize, func(ctx context.Context, n int) bool {
		v := vendorFromRow(rows[n], file.Name, n)
		if v.Supplier == "" || v.Category == "" {
			logger.Warn("ingest: vendor row skipped, missing supplier name or category",
				"file", file.Name, "row", n)
			return false
		}
		vec, err := i.embed(ctx, vendorEmbedText(v))
		if err == nil {
			v.Embedding = vec
			err = i.db.InsertVendor(ctx, v)
		}
		if err != nil {
			logger.Error("ingest: vendor not stored", "file", file.Name, "row", n, "supplier", v.Supplier, "error", err)
			return false
		}
		return true
	})

	if res.Stored == 0 {
		logger.Warn("ingest: no vendors stored, check CSV headers and data", "file", file.Name)
	}
	track.advance(StageDone, "rows", res.Items, "stored", res.Stored, "took", time.Since(start))
	return res
}

func vendorFromRow(row map[string]string, sourceFile string, index int) *models.VendorRow {
	return &models.VendorRow{
		Supplier:   vendorField(row, "supplier"),
		Category:   vendorField(row, "category"),
		County:     vendorField(row, "county"),
		Email:      vendorField(row, "email"),
		Website:    vendorField(row, "website"),
		Status:     vendorField(row, "status"),
		SourceFile: sourceFile,
		RowIndex:   index,
	}
}

// vendorEmbedText is the context text a vendor is embedded under.
func vendorEmbedText(v *models.VendorRow) string {
	return fmt.Sprintf("Wedding Vendor: %s\nCategory: %s\nLocation: %s\nEmail: %s\nWebsite: %s\nStatus: %s",
		v.Supplier,
		v.Category,
		orDefault(v.County, "Available"),
		orDefault(v.Email, "Available on request"),
		orDefault(v.Website, "Contact for details"),
		orDefault(v.Status, "Active"))
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
