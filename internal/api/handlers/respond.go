package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	middleware "github.com/markdave123-py/weddingkb/internal/api/middlewares"
	"github.com/markdave123-py/weddingkb/internal/core"
)

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, errorResponse{Error: msg, Details: details})
}

// writeValidation replies 400 with the message a core.ErrValidation wraps.
func writeValidation(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, validationMessage(err), "")
}

func validationMessage(err error) string {
	return strings.TrimPrefix(err.Error(), core.ErrValidation.Error()+": ")
}

func isValidation(err error) bool {
	return errors.Is(err, core.ErrValidation)
}

// requestLogger prefers the logger tagged with the request id.
func requestLogger(r *http.Request, fallback *slog.Logger) *slog.Logger {
	l := middleware.Logger(r.Context(), fallback)
	if sub := middleware.Subject(r.Context()); sub != "" {
		l = l.With("subject", sub)
	}
	return l
}
