package frame

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeWorkbook(t *testing.T) string {
	t.Helper()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Houses")
	require.NoError(t, err)

	header := sheet.AddRow()
	header.AddCell().Value = "price"
	header.AddCell().Value = "name"

	r1 := sheet.AddRow()
	r1.AddCell().SetFloat(100)
	r1.AddCell().Value = "North"

	r2 := sheet.AddRow()
	r2.AddCell().SetFloat(250.5)
	r2.AddCell().Value = "South"

	_, err = f.AddSheet("Empty")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "houses.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadXLSX(t *testing.T) {
	path := writeWorkbook(t)

	ds, err := ReadXLSX(path, "")
	require.NoError(t, err)

	assert.Equal(t, 2, ds.Len())
	prices, err := ds.Numeric("price")
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 250.5}, prices)

	names, err := ds.Strings("name")
	require.NoError(t, err)
	assert.Equal(t, []string{"North", "South"}, names)
}

func TestReadXLSX_NamedSheet(t *testing.T) {
	path := writeWorkbook(t)

	ds, err := ReadXLSX(path, "Houses")
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
}

func TestReadXLSX_Errors(t *testing.T) {
	path := writeWorkbook(t)

	_, err := ReadXLSX(path, "Nope")
	assert.Error(t, err)

	_, err = ReadXLSX(path, "Empty")
	assert.Error(t, err)

	_, err = ReadXLSX(filepath.Join(t.TempDir(), "missing.xlsx"), "")
	assert.Error(t, err)
}
