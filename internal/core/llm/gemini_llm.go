package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/markdave123-py/weddingkb/internal/core"
)

const (
	defaultGenModel = "gemini-1.5-flash"
	genTemperature  = 0.2
)

var errNoCandidates = errors.New("gemini returned no candidates")

// GeminiLLM answers a system + user prompt pair with a single text completion.
type GeminiLLM struct {
	client    *genai.Client
	modelName string
}

func NewGeminiLLM(ctx context.Context, apiKey, modelName string) (*GeminiLLM, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini llm: api key is empty")
	}
	if modelName == "" {
		modelName = defaultGenModel
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini llm: %w", err)
	}
	return &GeminiLLM{client: cl, modelName: modelName}, nil
}

func (g *GeminiLLM) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func (g *GeminiLLM) Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	model := g.client.GenerativeModel(g.modelName)
	model.SetTemperature(genTemperature)
	if systemPrompt != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(systemPrompt))
	}
	if maxTokens > 0 {
		model.SetMaxOutputTokens(int32(maxTokens))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate (%s): %w", g.modelName, err)
	}
	return replyText(resp)
}

// replyText joins the text parts of the first candidate. A reply cut off by the token limit
// is returned as is.
func replyText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errNoCandidates
	}
	cand := resp.Candidates[0]
	if cand.Content == nil {
		return "", fmt.Errorf("gemini candidate has no content (finish reason %s)", cand.FinishReason)
	}

	var b strings.Builder
	for _, p := range cand.Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String(), nil
}

var _ core.LLMProvider = (*GeminiLLM)(nil)
