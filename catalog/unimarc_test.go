package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexandrebha/cybook/catalog"
	"github.com/alexandrebha/cybook/circulation"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)

	return data
}

func Test_ParseRecords_ExtractsUnimarcFields(t *testing.T) {
	// act
	records, err := catalog.ParseRecords(loadFixture(t, "sru_two_records.xml"))

	// assert
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, circulation.Metadata{
		ISBN:            "978-2-07-036822-8",
		Title:           "L'étranger",
		Author:          "Camus",
		PublicationDate: "1972",
		Edition:         "Nouvelle édition",
		Collection:      "Folio",
	}, records[0])
	assert.Equal(t, "978-2-00-000000-0", records[1].ISBN)
	assert.False(t, records[1].HasTitle())
}

func Test_ParseRecords_WithoutRecords(t *testing.T) {
	// act
	records, err := catalog.ParseRecords(loadFixture(t, "sru_no_records.xml"))

	// assert
	require.NoError(t, err)
	assert.Empty(t, records)
}

func Test_ParseRecords_RejectsGarbage(t *testing.T) {
	// act
	_, err := catalog.ParseRecords([]byte("<html><body>maintenance"))

	// assert
	assert.ErrorIs(t, err, catalog.ErrInvalidXML)
}
