package ingestion_engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/weddingkb/internal/core"
)

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		filename, declared, want string
	}{
		{"ep.pdf", "application/pdf", "application/pdf"},
		{"ep.pdf", "", "application/pdf"},
		{"ep.PDF", "application/octet-stream", "application/pdf"},
		{"notes.txt", "text/plain; charset=utf-8", "text/plain"},
		{"vendors.csv", "", "text/csv"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectContentType(tt.filename, tt.declared), tt.filename)
	}
	assert.True(t, IsPDF("a.pdf", ""))
	assert.False(t, IsPDF("a.docx", ""))
}

func TestExtractorRegistry_For(t *testing.T) {
	reg := DefaultExtractorRegistry(ParserDocconv)

	assert.Equal(t, []string{ParserDocconv, ParserNative}, reg.Names())

	tests := []struct {
		selector, contentType, want string
	}{
		{"", "application/pdf", ParserDocconv},
		{"pdf-parse", "application/pdf", ParserDocconv},
		{" Native ", "application/pdf", ParserNative},
		{"native", "text/plain", ParserPlain},
	}
	for _, tt := range tests {
		ex, err := reg.For(tt.selector, tt.contentType)
		require.NoError(t, err)
		assert.Equal(t, tt.want, ex.Name(), tt.selector)
	}

	_, err := reg.For("tesseract", "application/pdf")
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.False(t, reg.Has("tesseract"))
	assert.True(t, reg.Has(""))
}

func TestPlainTextExtractor(t *testing.T) {
	ex := &PlainTextExtractor{}

	out, err := ex.Extract(context.Background(), []byte("\xef\xbb\xbfHello couples"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "Hello couples", out.Text)
	assert.Equal(t, ParserPlain, out.Method)

	_, err = ex.Extract(context.Background(), []byte{0xff, 0xfe, 0xfd}, "text/plain")
	assert.ErrorIs(t, err, core.ErrExtraction)
}

func TestNativePDFExtractor_RejectsGarbage(t *testing.T) {
	_, err := NewNativePDFExtractor().Extract(context.Background(), []byte("this is not a pdf"), "application/pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrExtraction)
}
