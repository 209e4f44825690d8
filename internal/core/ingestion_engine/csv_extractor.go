package ingestion_engine

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/markdave123-py/weddingkb/internal/core"
)

// ParseVendorCSV reads a header-first CSV into one map per data row. Header names are
// lower-cased and trimmed and values are trimmed. Blank lines are skipped, but a line of
// empty fields such as ",," is a row. Rows shorter than the header simply lack the missing
// columns.
func ParseVendorCSV(data []byte) ([]map[string]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: csv header: %v", core.ErrExtraction, err)
	}
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var rows []map[string]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: csv: %v", core.ErrExtraction, err)
		}

		row := make(map[string]string, len(header))
		for i, v := range rec {
			if i >= len(header) || header[i] == "" {
				continue
			}
			row[header[i]] = strings.TrimSpace(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// vendorColumns lists accepted header names per vendor field, most specific first.
var vendorColumns = map[string][]string{
	"supplier": {"supplier name", "supplier", "vendor name", "vendor"},
	"category": {"category", "vendor category"},
	"county":   {"counties", "county", "location"},
	"email":    {"contact mail", "email", "contact email"},
	"website":  {"website", "url", "rmw url"},
	"status":   {"status"},
}

func vendorField(row map[string]string, field string) string {
	for _, col := range vendorColumns[field] {
		if v := row[col]; v != "" {
			return v
		}
	}
	return ""
}
