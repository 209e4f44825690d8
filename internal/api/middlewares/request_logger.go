package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/markdave123-py/weddingkb/internal/core"
)

// RequestLogger logs each request through logger, tagged with chi's request id. The
// tagged logger is available to handlers via Logger.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLogger := logger.With("request_id", chimw.GetReqID(r.Context()))
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			ctx := core.WithLogger(r.Context(), reqLogger)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			reqLogger.Info("request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start))
		})
	}
}

// Logger returns the request-scoped logger, or fallback outside RequestLogger.
func Logger(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	return core.LoggerFrom(ctx, fallback)
}
