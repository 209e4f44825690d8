package ingestion_engine

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/weddingkb/internal/core"
	"github.com/markdave123-py/weddingkb/internal/models"
)

func csvFile(name, body string) *models.UploadedFile {
	return &models.UploadedFile{Name: name, ContentType: "text/csv", Size: int64(len(body)), Data: []byte(body)}
}

func TestIngestVendors_CountsProcessedAndStored(t *testing.T) {
	f := newIngestorFixture(t, 2)

	body := "supplier name,category,counties,contact mail,website,status\n" +
		"Bloom,Florists,Kent,a@b.test,,\n" +
		",Venues,Devon,,,\n" +
		"Snap Studio,,Surrey,,,\n" +
		"Hall Farm,Venues,,,https://hall.test,Active\n" +
		"FAIL Band,Music,,,,\n" +
		",,,,,\n"

	summary, err := f.ing.IngestVendors(context.Background(), []*models.UploadedFile{csvFile("vendors.csv", body)})
	require.NoError(t, err)
	require.NoError(t, summary.Err())

	assert.Equal(t, 6, summary.TotalProcessed)
	assert.Equal(t, 2, summary.TotalStored)
	assert.Equal(t, 1, summary.FilesProcessed)
	assert.Equal(t, "33%", summary.SuccessRate())

	require.Len(t, f.db.vendors, 2)
	byName := map[string]models.VendorRow{}
	for _, v := range f.db.vendors {
		byName[v.Supplier] = v
	}
	bloom := byName["Bloom"]
	assert.Equal(t, "Florists", bloom.Category)
	assert.Equal(t, "Kent", bloom.County)
	assert.Equal(t, "vendors.csv", bloom.SourceFile)
	assert.Equal(t, 0, bloom.RowIndex)
	assert.Len(t, bloom.Embedding, 4)
	assert.Equal(t, 3, byName["Hall Farm"].RowIndex)
}

func TestIngestVendors_BlankFieldRowsCountAsProcessed(t *testing.T) {
	f := newIngestorFixture(t, 20)

	body := "Supplier Name,Category,Counties\nRose Hall,Venues,Kent\n,,\n,,Surrey\n"
	summary, err := f.ing.IngestVendors(context.Background(), []*models.UploadedFile{csvFile("venues.csv", body)})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalProcessed)
	assert.Equal(t, 1, summary.TotalStored)
	assert.Equal(t, "33%", summary.SuccessRate())
	require.Len(t, f.db.vendors, 1)
	assert.Equal(t, "Rose Hall", f.db.vendors[0].Supplier)
}

func TestIngestVendors_LogsThroughContextLogger(t *testing.T) {
	f := newIngestorFixture(t, 20)

	var buf bytes.Buffer
	reqLogger := slog.New(slog.NewTextHandler(&buf, nil)).With("request_id", "req-42")
	ctx := core.WithLogger(context.Background(), reqLogger)

	_, err := f.ing.IngestVendors(ctx, []*models.UploadedFile{
		csvFile("venues.csv", "supplier,category\nHall,Venues\n,\n"),
	})
	require.NoError(t, err)

	out := strings.TrimSpace(buf.String())
	require.NotEmpty(t, out)
	assert.Contains(t, out, "ingest: done")
	assert.Contains(t, out, "vendor row skipped")
	for _, line := range strings.Split(out, "\n") {
		assert.Contains(t, line, "request_id=req-42")
	}
}

func TestIngestVendors_EmbedText(t *testing.T) {
	v := &models.VendorRow{Supplier: "Bloom", Category: "Florists"}
	assert.Equal(t,
		"Wedding Vendor: Bloom\nCategory: Florists\nLocation: Available\nEmail: Available on request\n"+
			"Website: Contact for details\nStatus: Active",
		vendorEmbedText(v))
}

func TestIngestVendors_Validation(t *testing.T) {
	f := newIngestorFixture(t, 20)

	_, err := f.ing.IngestVendors(context.Background(), nil)
	require.ErrorIs(t, err, core.ErrValidation)
	assert.Contains(t, err.Error(), "No CSV files provided")

	_, err = f.ing.IngestVendors(context.Background(), []*models.UploadedFile{pdfUpload("notes.pdf", "x")})
	require.ErrorIs(t, err, core.ErrValidation)
	assert.Contains(t, err.Error(), "Please provide valid CSV files")
}

func TestIngestVendors_EmptyFileSkipped(t *testing.T) {
	f := newIngestorFixture(t, 20)

	summary, err := f.ing.IngestVendors(context.Background(), []*models.UploadedFile{
		csvFile("empty.csv", " \n"),
		{Name: "list.CSV", ContentType: "application/vnd.ms-excel", Data: []byte("supplier,category\nHall,Venues\n")},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.FilesProcessed)
	assert.Equal(t, 1, summary.TotalStored)
	require.Len(t, summary.Failed(), 1)
	assert.Equal(t, StageSkipped, summary.Failed()[0].Stage)
}

func TestVendorSummary_SuccessRate(t *testing.T) {
	assert.Equal(t, "0%", (&VendorSummary{}).SuccessRate())
	assert.Equal(t, "67%", (&VendorSummary{TotalProcessed: 3, TotalStored: 2}).SuccessRate())
	assert.Equal(t, "100%", (&VendorSummary{TotalProcessed: 4, TotalStored: 4}).SuccessRate())
}
