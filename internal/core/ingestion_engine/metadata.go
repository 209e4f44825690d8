package ingestion_engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tmc/langchaingo/prompts"

	"github.com/markdave123-py/weddingkb/internal/core"
	"github.com/markdave123-py/weddingkb/internal/models"
)

const (
	// MaxMetadataChars bounds the text sent to the model.
	MaxMetadataChars = 15000
	// metadataMaxTokens bounds the model reply.
	metadataMaxTokens = 3000
)

const systemTemplate = `You are a wedding planning expert who analyzes {{.subject}} to generate accurate metadata for a wedding planning knowledge base.

You will analyze the full text of a {{.item}} and extract relevant metadata that will help engaged couples find the right advice and information for their wedding planning.

Based on the text provided, generate metadata in this EXACT format:

Title: [Generate a clear, descriptive title for this {{.item}}]
Author: [Host or author name(s), or "{{.defaultAuthor}}" if unclear]
Summary: [2-3 sentence summary of the main topics and key takeaways]
Tags: [Relevant wedding planning tags, comma-separated]
Tone: [One of: {{.tones}}]
Audience: [One of: {{.audiences}}]
Category: [One of: {{.categories}}]

Guidelines:
- Focus on actionable wedding planning advice and information
- Include specific wedding-related keywords in tags
- Keep tone accurate to the actual style of the text
- Make the summary helpful for couples searching for specific advice
- Choose the most relevant category that represents the main focus
- Extract the actual host/expert name if mentioned in the text
- Reply with the seven lines only, one "Key: value" per line`

const userTemplate = `Analyze this {{.item}} and generate metadata:

TEXT:
{{.text}}

FILENAME: {{.filename}}

Generate the metadata following the exact format specified.`

// GeneratedMetadata is the outcome of one metadata generation.
type GeneratedMetadata struct {
	Metadata    models.MetadataRecord
	TextLength  int  // characters in the full input text
	Truncated   bool // input was cut to MaxMetadataChars before submission
	AIGenerated bool // false when the model call failed and only fallbacks were used
}

// MetadataGenerator produces a MetadataRecord for extracted text. It never fails outward.
type MetadataGenerator struct {
	llm      core.LLMProvider
	profiles Profiles
	logger   *slog.Logger
	system   prompts.PromptTemplate
	user     prompts.PromptTemplate
}

func NewMetadataGenerator(llm core.LLMProvider, profiles Profiles, logger *slog.Logger) *MetadataGenerator {
	return &MetadataGenerator{
		llm:      llm,
		profiles: profiles,
		logger:   logger,
		system: prompts.NewPromptTemplate(systemTemplate,
			[]string{"subject", "item", "defaultAuthor", "tones", "audiences", "categories"}),
		user: prompts.NewPromptTemplate(userTemplate, []string{"item", "text", "filename"}),
	}
}

// Generate asks the model for metadata about text. Upstream or prompt failures are logged
// and absorbed: the result then carries the profile's fallback record.
func (g *MetadataGenerator) Generate(ctx context.Context, text, filename string, ct ContentType) GeneratedMetadata {
	profile := g.profiles[ct]
	logger := core.LoggerFrom(ctx, g.logger)
	truncated, wasTruncated := truncateRunes(text, MaxMetadataChars)
	out := GeneratedMetadata{
		TextLength: len([]rune(text)),
		Truncated:  wasTruncated,
	}

	system, user, err := g.buildPrompts(profile, truncated, filename)
	if err != nil {
		logger.Error("metadata: prompt build failed", "file", filename, "error", err)
		out.Metadata = ParseOrDefault("", filename, profile)
		return out
	}

	start := time.Now()
	reply, err := g.llm.Generate(ctx, system, user, metadataMaxTokens)
	if err == nil && strings.TrimSpace(reply) == "" {
		err = fmt.Errorf("empty completion")
	}
	if err != nil {
		logger.Warn("metadata: using fallback metadata",
			"file", filename, "error", fmt.Errorf("%w: %v", core.ErrUpstreamMetadata, err))
		out.Metadata = ParseOrDefault("", filename, profile)
		return out
	}

	out.Metadata = ParseOrDefault(reply, filename, profile)
	out.AIGenerated = true
	logger.Info("metadata: generated",
		"file", filename,
		"title", out.Metadata.Title,
		"author", out.Metadata.Author,
		"category", out.Metadata.Category,
		"tags", len(strings.Split(out.Metadata.Tags, ",")),
		"truncated", out.Truncated,
		"took", time.Since(start))
	return out
}

func (g *MetadataGenerator) buildPrompts(p Profile, text, filename string) (string, string, error) {
	if filename == "" {
		filename = p.Fallback.Title
	}
	system, err := g.system.Format(map[string]any{
		"subject":       p.Subject,
		"item":          p.Item,
		"defaultAuthor": p.Fallback.Author,
		"tones":         strings.Join(p.Tones, ", "),
		"audiences":     strings.Join(p.Audiences, ", "),
		"categories":    strings.Join(p.Categories, ", "),
	})
	if err != nil {
		return "", "", fmt.Errorf("format system prompt: %w", err)
	}
	user, err := g.user.Format(map[string]any{
		"item":     p.Item,
		"text":     text,
		"filename": filename,
	})
	if err != nil {
		return "", "", fmt.Errorf("format user prompt: %w", err)
	}
	return system, user, nil
}

// ParseOrDefault parses a line-oriented "Key: value" reply into a MetadataRecord.
// Every line containing ':' is split on its first colon; keys are matched case-insensitively
// against the seven field names and anything else is ignored. Fields left unset take the
// profile's fallback value; the title falls back to the filename first.
func ParseOrDefault(raw, filename string, p Profile) models.MetadataRecord {
	var m models.MetadataRecord
	for _, line := range strings.Split(raw, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "title":
			m.Title = value
		case "author":
			m.Author = value
		case "summary":
			m.Summary = value
		case "tags":
			m.Tags = value
		case "tone":
			m.Tone = value
		case "audience":
			m.Audience = value
		case "category":
			m.Category = value
		}
	}

	if m.Title == "" {
		m.Title = strings.TrimSpace(filename)
	}
	fillDefault(&m.Title, p.Fallback.Title)
	fillDefault(&m.Author, p.Fallback.Author)
	fillDefault(&m.Summary, p.Fallback.Summary)
	fillDefault(&m.Tags, p.Fallback.Tags)
	fillDefault(&m.Tone, p.Fallback.Tone)
	fillDefault(&m.Audience, p.Fallback.Audience)
	fillDefault(&m.Category, p.Fallback.Category)
	return m
}

func fillDefault(field *string, fallback string) {
	if *field == "" {
		*field = fallback
	}
}

// truncateRunes cuts s to at most limit characters.
func truncateRunes(s string, limit int) (string, bool) {
	r := []rune(s)
	if len(r) <= limit {
		return s, false
	}
	return string(r[:limit]), true
}
