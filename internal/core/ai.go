package core

import "context"

// EmbeddingProvider turns one text into one fixed-dimension vector.
type EmbeddingProvider interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// LLMProvider runs a single system+user completion.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string, maxTokens int) (string, error)
}
