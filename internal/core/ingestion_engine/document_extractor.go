package ingestion_engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"

	"github.com/markdave123-py/weddingkb/internal/core"
	"github.com/markdave123-py/weddingkb/internal/models"
)

const (
	ParserDocconv = "docconv"
	ParserNative  = "native"
	ParserPlain   = "plain"

	// parserAliasPDFParse is the selector the original upload form sends.
	parserAliasPDFParse = "pdf-parse"

	mimePDF   = "application/pdf"
	mimePlain = "text/plain"
)

var (
	_ core.DocumentExtractor = (*DocconvExtractor)(nil)
	_ core.DocumentExtractor = (*NativePDFExtractor)(nil)
	_ core.DocumentExtractor = (*PlainTextExtractor)(nil)
)

// DocconvExtractor implements core.DocumentExtractor using sajari/docconv.
// PDF conversion shells out to poppler's pdftotext.
type DocconvExtractor struct {
	useReadability bool
}

func NewDocconvExtractor(useReadability bool) *DocconvExtractor {
	return &DocconvExtractor{useReadability: useReadability}
}

func (e *DocconvExtractor) Name() string { return ParserDocconv }

// Extract converts data with docconv based on the content type.
func (e *DocconvExtractor) Extract(ctx context.Context, data []byte, contentType string) (*models.ExtractedContent, error) {
	start := time.Now()
	res, err := docconv.Convert(bytes.NewReader(data), contentType, e.useReadability)
	if err != nil {
		return nil, fmt.Errorf("%w: docconv (%s): %v", core.ErrExtraction, contentType, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &models.ExtractedContent{
		Text:     res.Body,
		Method:   ParserDocconv,
		Duration: time.Since(start),
		Meta:     res.Meta,
	}, nil
}

// NativePDFExtractor reads PDFs in-process with ledongthuc/pdf; no external binaries needed.
type NativePDFExtractor struct{}

func NewNativePDFExtractor() *NativePDFExtractor { return &NativePDFExtractor{} }

func (e *NativePDFExtractor) Name() string { return ParserNative }

func (e *NativePDFExtractor) Extract(ctx context.Context, data []byte, contentType string) (out *models.ExtractedContent, err error) {
	start := time.Now()

	// The reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: native pdf: %v", core.ErrExtraction, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: native pdf: %v", core.ErrExtraction, err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("%w: native pdf: %v", core.ErrExtraction, err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return nil, fmt.Errorf("%w: native pdf read: %v", core.ErrExtraction, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &models.ExtractedContent{
		Text:     buf.String(),
		Method:   ParserNative,
		Duration: time.Since(start),
		Meta:     map[string]string{"pages": fmt.Sprint(reader.NumPage())},
	}, nil
}

// PlainTextExtractor passes UTF-8 text uploads through unchanged.
type PlainTextExtractor struct{}

func (e *PlainTextExtractor) Name() string { return ParserPlain }

func (e *PlainTextExtractor) Extract(_ context.Context, data []byte, _ string) (*models.ExtractedContent, error) {
	start := time.Now()
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: text upload is not valid UTF-8", core.ErrExtraction)
	}
	return &models.ExtractedContent{
		Text:     string(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))),
		Method:   ParserPlain,
		Duration: time.Since(start),
	}, nil
}

// ExtractorRegistry resolves a parser selector and content type to an extractor.
type ExtractorRegistry struct {
	byName      map[string]core.DocumentExtractor
	defaultName string
	plain       core.DocumentExtractor
}

// NewExtractorRegistry registers extractors by their Name. defaultName is used when a request
// does not select a parser.
func NewExtractorRegistry(defaultName string, extractors ...core.DocumentExtractor) *ExtractorRegistry {
	r := &ExtractorRegistry{
		byName:      make(map[string]core.DocumentExtractor, len(extractors)),
		defaultName: defaultName,
		plain:       &PlainTextExtractor{},
	}
	for _, e := range extractors {
		r.byName[e.Name()] = e
	}
	return r
}

// DefaultExtractorRegistry wires the docconv and native PDF parsers.
func DefaultExtractorRegistry(defaultName string) *ExtractorRegistry {
	return NewExtractorRegistry(defaultName, NewDocconvExtractor(false), NewNativePDFExtractor())
}

// Names lists the registered parser selectors.
func (r *ExtractorRegistry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Has reports whether selector names a known parser ("" selects the default).
func (r *ExtractorRegistry) Has(selector string) bool {
	_, ok := r.byName[r.resolveName(selector)]
	return ok
}

// For picks the extractor for one file. Plain-text uploads bypass the PDF parsers.
func (r *ExtractorRegistry) For(selector, contentType string) (core.DocumentExtractor, error) {
	if contentType == mimePlain {
		return r.plain, nil
	}
	name := r.resolveName(selector)
	e, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown pdf parser %q (available: %s)",
			core.ErrValidation, selector, strings.Join(r.Names(), ", "))
	}
	return e, nil
}

func (r *ExtractorRegistry) resolveName(selector string) string {
	selector = strings.ToLower(strings.TrimSpace(selector))
	if selector == "" || selector == parserAliasPDFParse {
		return r.defaultName
	}
	return selector
}

// DetectContentType normalises the declared MIME type of an upload, falling back to the
// file extension when the client sent nothing useful.
func DetectContentType(filename, declared string) string {
	if declared != "" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "application/octet-stream" {
			return mt
		}
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return mimePDF
	case ".txt":
		return mimePlain
	case ".csv":
		return "text/csv"
	}
	return docconv.MimeTypeByExtension(filename)
}

// IsPDF reports whether the upload is a PDF by MIME type or extension.
func IsPDF(filename, declared string) bool {
	return DetectContentType(filename, declared) == mimePDF
}
