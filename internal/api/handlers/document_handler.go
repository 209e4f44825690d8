package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/markdave123-py/weddingkb/internal/core"
	"github.com/markdave123-py/weddingkb/internal/models"
)

// DocumentReader is the read side of services.DocumentService.
type DocumentReader interface {
	ListParents(ctx context.Context, sourceType string, limit int) ([]models.DocumentRow, error)
	Get(ctx context.Context, documentID string) ([]models.DocumentRow, error)
}

type DocumentHandler struct {
	docs   DocumentReader
	logger *slog.Logger
}

func NewDocumentHandler(docs DocumentReader, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{docs: docs, logger: logger}
}

type documentResponse struct {
	Parent *models.DocumentRow  `json:"parent,omitempty"`
	Chunks []models.DocumentRow `json:"chunks"`
}

// GetDocuments lists parent rows, newest first. Query: sourceType, limit.
func (h *DocumentHandler) GetDocuments(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500", "")
			return
		}
		limit = n
	}

	documents, err := h.docs.ListParents(r.Context(), r.URL.Query().Get("sourceType"), limit)
	if err != nil {
		requestLogger(r, h.logger).Error("list documents", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list documents", err.Error())
		return
	}
	if documents == nil {
		documents = []models.DocumentRow{}
	}
	writeJSON(w, http.StatusOK, documents)
}

// GetDocument returns the parent row and chunk rows of one document.
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "documentID")

	rows, err := h.docs.Get(r.Context(), documentID)
	if errors.Is(err, core.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Document not found", documentID)
		return
	}
	if err != nil {
		requestLogger(r, h.logger).Error("get document", "document_id", documentID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load document", err.Error())
		return
	}

	resp := documentResponse{Chunks: []models.DocumentRow{}}
	for i := range rows {
		if rows[i].IsParent() {
			resp.Parent = &rows[i]
			continue
		}
		resp.Chunks = append(resp.Chunks, rows[i])
	}
	writeJSON(w, http.StatusOK, resp)
}
