package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/markdave123-py/weddingkb/internal/core"
	"github.com/markdave123-py/weddingkb/internal/models"
)

// parseMultipart bounds the body and parses the form. Files above the in-memory limit
// spill to temp files that are removed when the request ends.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: upload exceeds %d MB", core.ErrValidation, maxBytes>>20)
		}
		return fmt.Errorf("%w: invalid multipart form: %v", core.ErrValidation, err)
	}
	return nil
}

// formFiles reads every file sent under any of the given field names.
func formFiles(r *http.Request, fields ...string) ([]*models.UploadedFile, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	var out []*models.UploadedFile
	for _, field := range fields {
		for _, fh := range r.MultipartForm.File[field] {
			f, err := readFileHeader(fh)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		}
	}
	return out, nil
}

func readFileHeader(fh *multipart.FileHeader) (*models.UploadedFile, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return &models.UploadedFile{
		Name:        filepath.Base(fh.Filename),
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
