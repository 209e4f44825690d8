package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/markdave123-py/weddingkb/internal/core/ingestion_engine"
	"github.com/markdave123-py/weddingkb/internal/models"
)

type metadataRequest struct {
	FullTranscript string `json:"fullTranscript"`
	Filename       string `json:"filename"`
	ContentType    string `json:"contentType"`
}

type metadataResponse struct {
	Metadata           models.MetadataRecord `json:"metadata"`
	TranscriptAnalyzed bool                  `json:"transcriptAnalyzed"`
	TranscriptLength   int                   `json:"transcriptLength"`
	Truncated          bool                  `json:"truncated"`
	AIGenerated        bool                  `json:"aiGenerated"`
}

// GenerateMetadata returns the metadata record for a transcript without storing anything.
func (h *IngestHandler) GenerateMetadata(w http.ResponseWriter, r *http.Request) {
	var req metadataRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxUploadBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err.Error())
		return
	}
	if strings.TrimSpace(req.FullTranscript) == "" {
		writeError(w, http.StatusBadRequest, "Full transcript is required", "")
		return
	}

	ct := ingestion_engine.ContentPodcast
	switch strings.ToLower(strings.TrimSpace(req.ContentType)) {
	case "", string(ingestion_engine.ContentPodcast):
	case string(ingestion_engine.ContentVendor):
		ct = ingestion_engine.ContentVendor
	default:
		writeError(w, http.StatusBadRequest, "Unknown content type", req.ContentType)
		return
	}

	out := h.ingestor.GenerateMetadata(r.Context(), req.FullTranscript, req.Filename, ct)
	writeJSON(w, http.StatusOK, metadataResponse{
		Metadata:           out.Metadata,
		TranscriptAnalyzed: true,
		TranscriptLength:   out.TextLength,
		Truncated:          out.Truncated,
		AIGenerated:        out.AIGenerated,
	})
}
