package ingestion_engine

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/markdave123-py/weddingkb/internal/core"
)

// Strategy names a chunking strategy.
type Strategy string

const (
	// StrategyRecursive prefers paragraph, then line, then word boundaries before a hard cut.
	StrategyRecursive Strategy = "recursive"
	// StrategyCharacter always cuts at fixed character offsets.
	StrategyCharacter Strategy = "character"
)

// recursiveSeparators are tried in order; "" means a hard character cut.
var recursiveSeparators = []string{"\n\n", "\n", " ", ""}

// ChunkOptions configures Split. Size and Overlap are in characters.
type ChunkOptions struct {
	Strategy Strategy
	Size     int
	Overlap  int
}

// Validate checks Size > 0, 0 <= Overlap < Size and a known strategy.
func (o ChunkOptions) Validate() error {
	switch o.Strategy {
	case StrategyRecursive, StrategyCharacter:
	default:
		return fmt.Errorf("%w: unknown splitter type %q", core.ErrValidation, o.Strategy)
	}
	if o.Size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", core.ErrValidation, o.Size)
	}
	if o.Overlap < 0 || o.Overlap >= o.Size {
		return fmt.Errorf("%w: chunk overlap must be non-negative and less than chunk size (%d), got %d",
			core.ErrValidation, o.Size, o.Overlap)
	}
	return nil
}

// chunk is the internal representation passed through the pipeline.
//
// Pos:  stable, zero-based position of the chunk inside the document.
// Text: chunk content.
type chunk struct {
	Pos  int
	Text string
}

// Split cuts text into ordered, overlapping chunks. Whitespace-only text yields no chunks.
func Split(text string, opts ChunkOptions) ([]chunk, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var parts []string
	switch opts.Strategy {
	case StrategyRecursive:
		splitter := textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(opts.Size),
			textsplitter.WithChunkOverlap(opts.Overlap),
			textsplitter.WithSeparators(recursiveSeparators),
		)
		out, err := splitter.SplitText(text)
		if err != nil {
			return nil, fmt.Errorf("recursive split: %w", err)
		}
		for _, p := range out {
			if strings.TrimSpace(p) != "" {
				parts = append(parts, p)
			}
		}
	case StrategyCharacter:
		parts = splitFixed(text, opts.Size, opts.Overlap)
	}

	chunks := make([]chunk, 0, len(parts))
	for i, p := range parts {
		chunks = append(chunks, chunk{Pos: i, Text: p})
	}
	return chunks, nil
}

// splitFixed cuts text every size-overlap characters; each chunk repeats the last overlap
// characters of its predecessor. Chunk 0 plus the non-overlap tail of every later chunk
// reproduces text exactly.
func splitFixed(text string, size, overlap int) []string {
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "\uFFFD")
	}
	runes := []rune(text)
	step := size - overlap

	var out []string
	for start := 0; start < len(runes); start += step {
		end := min(start+size, len(runes))
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}
