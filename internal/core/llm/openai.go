package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/markdave123-py/weddingkb/internal/core"
)

// OpenAIClient serves both completions and embeddings through langchaingo.
type OpenAIClient struct {
	llm *openai.LLM
}

func NewOpenAIClient(apiKey, genModel, embedModel string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: api key is empty")
	}
	if genModel == "" {
		genModel = "gpt-4o-mini"
	}
	if embedModel == "" {
		embedModel = "text-embedding-3-small"
	}

	cl, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(genModel),
		openai.WithEmbeddingModel(embedModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize openai client: %w", err)
	}
	return &OpenAIClient{llm: cl}, nil
}

func (o *OpenAIClient) Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	var opts []llms.CallOption
	if maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(maxTokens))
	}

	resp, err := o.llm.GenerateContent(ctx, content, opts...)
	if err != nil {
		return "", fmt.Errorf("openai generate: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", nil
	}
	return resp.Choices[0].Content, nil
}

func (o *OpenAIClient) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vecs, err := o.llm.CreateEmbedding(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("%w: openai embed: %v", core.ErrEmbedding, err)
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		return nil, fmt.Errorf("%w: openai embed: empty embedding", core.ErrEmbedding)
	}
	return vecs[0], nil
}

var (
	_ core.LLMProvider       = (*OpenAIClient)(nil)
	_ core.EmbeddingProvider = (*OpenAIClient)(nil)
)
