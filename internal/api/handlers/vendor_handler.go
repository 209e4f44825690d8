package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/markdave123-py/weddingkb/internal/core"
	"github.com/markdave123-py/weddingkb/internal/core/ingestion_engine"
)

type vendorProcessingInfo struct {
	TotalProcessed int                           `json:"totalProcessed"`
	TotalStored    int                           `json:"totalStored"`
	FilesProcessed int                           `json:"filesProcessed"`
	SuccessRate    string                        `json:"successRate"`
	FailedFiles    []ingestion_engine.FileResult `json:"failedFiles"`
}

type vendorUploadResponse struct {
	Success        bool                 `json:"success"`
	DocumentsCount int                  `json:"documentsCount"`
	VendorsCount   int                  `json:"vendorsCount"`
	Message        string               `json:"message"`
	ProcessingInfo vendorProcessingInfo `json:"processingInfo"`
}

// UploadVendors ingests supplier CSV files into wedding_vendors.
func (h *IngestHandler) UploadVendors(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r, h.maxUploadBytes); err != nil {
		writeValidation(w, err)
		return
	}
	files, err := formFiles(r, "files", "files[]")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read uploaded files", err.Error())
		return
	}

	ctx := context.WithoutCancel(r.Context())
	summary, err := h.ingestor.IngestVendors(ctx, files)
	if err != nil {
		if isValidation(err) {
			writeValidation(w, err)
			return
		}
		requestLogger(r, h.logger).Error("vendor upload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Wedding vendor upload failed", err.Error())
		return
	}
	if err := summary.Err(); err != nil {
		if errors.Is(err, core.ErrNoTextContent) {
			writeError(w, http.StatusBadRequest, "No vendor rows found in the uploaded CSV files", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Wedding vendor upload failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, vendorUploadResponse{
		Success:        true,
		DocumentsCount: summary.FilesProcessed,
		VendorsCount:   summary.TotalStored,
		Message:        fmt.Sprintf("Successfully uploaded %d wedding vendors", summary.TotalStored),
		ProcessingInfo: vendorProcessingInfo{
			TotalProcessed: summary.TotalProcessed,
			TotalStored:    summary.TotalStored,
			FilesProcessed: summary.FilesProcessed,
			SuccessRate:    summary.SuccessRate(),
			FailedFiles:    summary.Failed(),
		},
	})
}
