package core

import "errors"

// Ingestion error taxonomy. Callers wrap these with fmt.Errorf("...: %w", err)
// and classify with errors.Is.
var (
	// ErrValidation marks a bad request: missing files, wrong type, bad chunk options.
	ErrValidation = errors.New("validation failed")

	// ErrExtraction marks a file whose bytes could not be parsed as the declared format.
	// It aborts that file only.
	ErrExtraction = errors.New("extraction failed")

	// ErrNoTextContent marks a file that parsed but produced no text. The file is skipped.
	ErrNoTextContent = errors.New("no text content")

	// ErrEmbedding marks a failed embedding call. The affected chunk or row is skipped.
	ErrEmbedding = errors.New("embedding failed")

	// ErrPersistence marks a failed insert. The affected row is skipped.
	ErrPersistence = errors.New("persistence failed")

	// ErrUpstreamMetadata marks a failed metadata completion; it is absorbed into fallback metadata.
	ErrUpstreamMetadata = errors.New("metadata generation failed")

	// ErrNotFound is returned by lookups that match no rows.
	ErrNotFound = errors.New("not found")
)
