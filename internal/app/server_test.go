package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/weddingkb/internal/api/handlers"
	"github.com/markdave123-py/weddingkb/internal/config"
)

func testServer(t *testing.T, jwtSecret string) http.Handler {
	t.Helper()
	cfg := &config.Config{
		Port:                "0",
		DefaultChunkSize:    5000,
		DefaultChunkOverlap: 500,
		MaxUploadSizeMB:     1,
		JWTSecret:           jwtSecret,
		CORSOrigins:         []string{"http://localhost:3000"},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	// Only request paths that fail validation are exercised, so no ingestor is needed.
	s := NewServer(cfg,
		handlers.NewIngestHandler(nil, cfg, logger),
		handlers.NewDocumentHandler(nil, logger),
		logger)
	return s.Handler()
}

func TestServer_Healthz(t *testing.T) {
	w := httptest.NewRecorder()
	testServer(t, "").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("Content-Type"))
}

func TestServer_Routes(t *testing.T) {
	h := testServer(t, "")

	tests := []struct {
		method, path, contentType, body string
		want                            int
	}{
		{http.MethodPost, "/api/upload-wedding-podcasts", "multipart/form-data; boundary=x", "--x--\r\n", http.StatusBadRequest},
		{http.MethodPost, "/api/upload-csv-vendors", "text/plain", "nope", http.StatusBadRequest},
		{http.MethodPost, "/api/generate-wedding-podcast-metadata", "application/json", `{}`, http.StatusBadRequest},
		{http.MethodPost, "/api/extract-pdf-content", "multipart/form-data; boundary=x", "--x--\r\n", http.StatusBadRequest},
		{http.MethodGet, "/api/documents?limit=-1", "", "", http.StatusBadRequest},
		{http.MethodGet, "/api/unknown", "", "", http.StatusNotFound},
		{http.MethodDelete, "/api/documents", "", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestServer_JWTGuardsAPI(t *testing.T) {
	const secret = "s3cret"
	h := testServer(t, secret)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/documents?limit=-1", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "planner"}).SignedString([]byte(secret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/documents?limit=-1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/upload-csv-vendors", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	w := httptest.NewRecorder()
	testServer(t, "").ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
