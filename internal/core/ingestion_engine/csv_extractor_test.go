package ingestion_engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVendorCSV(t *testing.T) {
	data := "\xef\xbb\xbf Supplier Name ,Category,Counties,Contact Mail,Website,Status\n" +
		"Bloom & Co, Florists ,Kent,hi@bloom.test,https://bloom.test,Active\n" +
		"\n" +
		",,,,,\n" +
		"\"Smith, Photography\",Photography,\"Surrey, Sussex\"\n"

	rows, err := ParseVendorCSV([]byte(data))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Bloom & Co", rows[0]["supplier name"])
	assert.Equal(t, "Florists", rows[0]["category"])
	assert.Equal(t, "hi@bloom.test", rows[0]["contact mail"])

	assert.Empty(t, rows[1]["supplier name"])
	assert.Empty(t, rows[1]["category"])

	assert.Equal(t, "Smith, Photography", rows[2]["supplier name"])
	assert.Equal(t, "Surrey, Sussex", rows[2]["counties"])
	_, ok := rows[2]["website"]
	assert.False(t, ok)
}

func TestParseVendorCSV_Empty(t *testing.T) {
	rows, err := ParseVendorCSV(nil)
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = ParseVendorCSV([]byte("supplier name,category\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParseVendorCSV_BareQuotesTolerated(t *testing.T) {
	rows, err := ParseVendorCSV([]byte("supplier name,category\nThe \"Best\" Band,Music\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, `The "Best" Band`, rows[0]["supplier name"])
}

func TestVendorField_Aliases(t *testing.T) {
	row := map[string]string{"supplier": "Hall", "vendor category": "Venues", "county": "Devon"}
	assert.Equal(t, "Hall", vendorField(row, "supplier"))
	assert.Equal(t, "Venues", vendorField(row, "category"))
	assert.Equal(t, "Devon", vendorField(row, "county"))
	assert.Empty(t, vendorField(row, "email"))
}
