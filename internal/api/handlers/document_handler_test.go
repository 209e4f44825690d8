package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/weddingkb/internal/api/handlers"
	"github.com/markdave123-py/weddingkb/internal/core"
	"github.com/markdave123-py/weddingkb/internal/models"
)

type MockDocumentReader struct{ mock.Mock }

func (m *MockDocumentReader) ListParents(ctx context.Context, sourceType string, limit int) ([]models.DocumentRow, error) {
	args := m.Called(ctx, sourceType, limit)
	rows, _ := args.Get(0).([]models.DocumentRow)
	return rows, args.Error(1)
}

func (m *MockDocumentReader) Get(ctx context.Context, documentID string) ([]models.DocumentRow, error) {
	args := m.Called(ctx, documentID)
	rows, _ := args.Get(0).([]models.DocumentRow)
	return rows, args.Error(1)
}

func documentRouter(h *handlers.DocumentHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/documents", h.GetDocuments)
	r.Get("/api/documents/{documentID}", h.GetDocument)
	return r
}

func TestGetDocuments(t *testing.T) {
	docs := new(MockDocumentReader)
	docs.On("ListParents", mock.Anything, "pdf_podcasts", 10).
		Return([]models.DocumentRow{{DocumentID: "wedding_podcast_1_a", Title: "Venues"}}, nil)

	w := httptest.NewRecorder()
	documentRouter(handlers.NewDocumentHandler(docs, discardLogger())).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/documents?sourceType=pdf_podcasts&limit=10", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Venues"`)
	docs.AssertExpectations(t)
}

func TestGetDocuments_EmptyListAndBadLimit(t *testing.T) {
	docs := new(MockDocumentReader)
	docs.On("ListParents", mock.Anything, "", 50).Return(nil, nil)
	router := documentRouter(handlers.NewDocumentHandler(docs, discardLogger()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/documents", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/documents?limit=0", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetDocument(t *testing.T) {
	docs := new(MockDocumentReader)
	docs.On("Get", mock.Anything, "doc-1").Return([]models.DocumentRow{
		{DocumentID: "doc-1", ChunkID: 0, Content: "Wedding Podcast: T - 2 chunks"},
		{DocumentID: "doc-1", ChunkID: 1, Content: "first"},
		{DocumentID: "doc-1", ChunkID: 2, Content: "second"},
	}, nil)
	docs.On("Get", mock.Anything, "missing").Return(nil, core.ErrNotFound)
	docs.On("Get", mock.Anything, "broken").Return(nil, errors.New("connection reset"))
	router := documentRouter(handlers.NewDocumentHandler(docs, discardLogger()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/documents/doc-1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	assert.Equal(t, "Wedding Podcast: T - 2 chunks", out["parent"].(map[string]any)["content"])
	assert.Len(t, out["chunks"], 2)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/documents/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/documents/broken", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
