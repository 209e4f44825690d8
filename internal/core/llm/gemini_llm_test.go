package llm

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeminiLLM_RequiresKey(t *testing.T) {
	_, err := NewGeminiLLM(context.Background(), "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key is empty")
}

func TestReplyText(t *testing.T) {
	t.Run("joins text parts of the first candidate", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
			{Content: genai.NewUserContent(genai.Text("Title: Vows\n"), genai.Blob{MIMEType: "image/png"}, genai.Text("Tone: warm"))},
			{Content: genai.NewUserContent(genai.Text("ignored"))},
		}}
		got, err := replyText(resp)
		require.NoError(t, err)
		assert.Equal(t, "Title: Vows\nTone: warm", got)
	})

	t.Run("no candidates", func(t *testing.T) {
		_, err := replyText(&genai.GenerateContentResponse{})
		assert.ErrorIs(t, err, errNoCandidates)

		_, err = replyText(nil)
		assert.ErrorIs(t, err, errNoCandidates)
	})

	t.Run("candidate without content", func(t *testing.T) {
		_, err := replyText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{
			{FinishReason: genai.FinishReasonSafety},
		}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no content")
	})
}
