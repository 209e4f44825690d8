package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/markdave123-py/weddingkb/internal/core"
)

// RateLimitedEmbedder throttles calls to an upstream embedder on the client side.
// A call that cannot acquire a token (e.g. its context ended) fails like any other embedding error.
type RateLimitedEmbedder struct {
	next    core.EmbeddingProvider
	limiter *rate.Limiter
}

// WithRateLimit wraps emb when perSecond > 0 and returns emb unchanged otherwise.
func WithRateLimit(emb core.EmbeddingProvider, perSecond float64, burst int) core.EmbeddingProvider {
	if perSecond <= 0 {
		return emb
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedEmbedder{next: emb, limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (r *RateLimitedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", core.ErrEmbedding, err)
	}
	return r.next.EmbedText(ctx, text)
}
