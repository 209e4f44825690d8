package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/markdave123-py/weddingkb/internal/core"
	"github.com/markdave123-py/weddingkb/internal/core/ingestion_engine"
)

type podcastProcessingInfo struct {
	AIMetadataGenerated bool                          `json:"aiMetadataGenerated"`
	ContentType         string                        `json:"contentType"`
	TotalFiles          int                           `json:"totalFiles"`
	SuccessfulFiles     int                           `json:"successfulFiles"`
	SkippedFiles        int                           `json:"skippedFiles"`
	FailedFiles         []ingestion_engine.FileResult `json:"failedFiles"`
}

type podcastUploadResponse struct {
	Success        bool                  `json:"success"`
	DocumentsCount int                   `json:"documentsCount"`
	ChunksCount    int                   `json:"chunksCount"`
	Message        string                `json:"message"`
	ProcessingInfo podcastProcessingInfo `json:"processingInfo"`
}

// UploadPodcasts ingests podcast transcript PDFs.
// Form fields: files, splitterType, chunkSize, chunkOverlap, pdfParser.
func (h *IngestHandler) UploadPodcasts(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r, h.maxUploadBytes); err != nil {
		writeValidation(w, err)
		return
	}
	files, err := formFiles(r, "files", "files[]")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read uploaded files", err.Error())
		return
	}
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "No files provided", "")
		return
	}
	opts, err := h.chunkOptions(r)
	if err != nil {
		writeValidation(w, err)
		return
	}

	// The pipeline finishes even if the client goes away.
	ctx := context.WithoutCancel(r.Context())
	summary, err := h.ingestor.IngestPodcasts(ctx, ingestion_engine.PodcastRequest{
		Files:   files,
		Options: opts,
		Parser:  r.FormValue("pdfParser"),
	})
	if err != nil {
		if isValidation(err) {
			writeValidation(w, err)
			return
		}
		requestLogger(r, h.logger).Error("podcast upload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to process wedding podcasts", err.Error())
		return
	}

	if err := summary.Err(); err != nil {
		if errors.Is(err, core.ErrNoTextContent) {
			writeError(w, http.StatusBadRequest, "no text content", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to process wedding podcasts", err.Error())
		return
	}

	requestLogger(r, h.logger).Info("podcast upload finished",
		"files", len(files),
		"documents", summary.DocumentsCount,
		"chunks", summary.ChunksCount,
		"skipped", summary.Skipped())
	writeJSON(w, http.StatusOK, podcastUploadResponse{
		Success:        true,
		DocumentsCount: summary.DocumentsCount,
		ChunksCount:    summary.ChunksCount,
		Message: fmt.Sprintf("Successfully processed %d wedding podcast(s) with %d chunks",
			summary.DocumentsCount, summary.ChunksCount),
		ProcessingInfo: podcastProcessingInfo{
			AIMetadataGenerated: summary.AIMetadataGenerated > 0,
			ContentType:         "wedding_podcasts",
			TotalFiles:          len(files),
			SuccessfulFiles:     summary.DocumentsCount,
			SkippedFiles:        summary.Skipped(),
			FailedFiles:         summary.Failed(),
		},
	})
}

// chunkOptions reads the chunking fields, falling back to the configured defaults.
func (h *IngestHandler) chunkOptions(r *http.Request) (ingestion_engine.ChunkOptions, error) {
	opts := h.defaults
	if v := strings.TrimSpace(r.FormValue("splitterType")); v != "" {
		opts.Strategy = ingestion_engine.Strategy(strings.ToLower(v))
	}
	var err error
	if opts.Size, err = formInt(r, "chunkSize", opts.Size); err != nil {
		return opts, err
	}
	if opts.Overlap, err = formInt(r, "chunkOverlap", opts.Overlap); err != nil {
		return opts, err
	}
	return opts, opts.Validate()
}

func formInt(r *http.Request, field string, fallback int) (int, error) {
	v := strings.TrimSpace(r.FormValue(field))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", core.ErrValidation, field, v)
	}
	return n, nil
}
