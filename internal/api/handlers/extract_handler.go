package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/markdave123-py/weddingkb/internal/core"
	"github.com/markdave123-py/weddingkb/internal/core/ingestion_engine"
)

type extractMetadata struct {
	Filename        string `json:"filename"`
	FileSize        int64  `json:"fileSize"`
	ExtractedLength int    `json:"extractedLength"`
	ParserUsed      string `json:"parserUsed"`
	ParseTime       int64  `json:"parseTime"` // milliseconds
}

type extractResponse struct {
	Success  bool            `json:"success"`
	Content  string          `json:"content"`
	Metadata extractMetadata `json:"metadata"`
}

// ExtractPDF returns the plain text of one uploaded PDF.
func (h *IngestHandler) ExtractPDF(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r, h.maxUploadBytes); err != nil {
		writeValidation(w, err)
		return
	}
	files, err := formFiles(r, "file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read uploaded file", err.Error())
		return
	}
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "No PDF file provided", "")
		return
	}
	file := files[0]
	if !ingestion_engine.IsPDF(file.Name, file.ContentType) {
		writeError(w, http.StatusBadRequest, "File must be a PDF", "")
		return
	}

	content, err := h.ingestor.Extract(r.Context(), file, r.FormValue("pdfParser"))
	switch {
	case err == nil:
	case errors.Is(err, core.ErrNoTextContent):
		writeError(w, http.StatusBadRequest, "No text content could be extracted from this PDF", "")
		return
	case isValidation(err):
		writeValidation(w, err)
		return
	default:
		requestLogger(r, h.logger).Error("pdf extraction failed", "file", file.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to extract PDF content", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, extractResponse{
		Success: true,
		Content: strings.TrimSpace(content.Text),
		Metadata: extractMetadata{
			Filename:        file.Name,
			FileSize:        file.Size,
			ExtractedLength: len([]rune(content.Text)),
			ParserUsed:      content.Method,
			ParseTime:       content.Duration.Milliseconds(),
		},
	})
}
