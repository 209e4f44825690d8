package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestJWTMiddleware(t *testing.T) {
	const secret = "test-secret"
	var gotSubject string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject = Subject(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := JWTMiddleware(secret)(next)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantSub    string
	}{
		{"missing header", "", http.StatusUnauthorized, ""},
		{"not bearer", "Basic abc", http.StatusUnauthorized, ""},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized, ""},
		{"wrong secret", "Bearer " + signed(t, "other", jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"}),
			http.StatusUnauthorized, ""},
		{"expired", "Bearer " + signed(t, secret, jwt.SigningMethodHS256,
			jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Hour).Unix()}), http.StatusUnauthorized, ""},
		{"no subject", "Bearer " + signed(t, secret, jwt.SigningMethodHS256, jwt.MapClaims{"role": "admin"}),
			http.StatusUnauthorized, ""},
		{"sub claim", "Bearer " + signed(t, secret, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "planner-1"}),
			http.StatusNoContent, "planner-1"},
		{"legacy user_id claim", "Bearer " + signed(t, secret, jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "u-9"}),
			http.StatusNoContent, "u-9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSubject = ""
			req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantSub, gotSubject)
		})
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	var scoped *slog.Logger
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scoped = Logger(r.Context(), nil)
		w.WriteHeader(http.StatusTeapot)
	})
	h := chimw.RequestID(RequestLogger(base)(next))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/upload-csv-vendors", nil))

	require.NotNil(t, scoped)
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Contains(t, buf.String(), "request completed")
	assert.Contains(t, buf.String(), "status=418")
	assert.Contains(t, buf.String(), "path=/api/upload-csv-vendors")
	assert.Contains(t, buf.String(), "request_id=")
}

func TestLogger_Fallback(t *testing.T) {
	fallback := slog.Default()
	assert.Same(t, fallback, Logger(httptest.NewRequest(http.MethodGet, "/", nil).Context(), fallback))
}
