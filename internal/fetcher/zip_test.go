package fetcher

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestZIP(t *testing.T, files map[string]string) string {
	t.Helper()
	zipPath := filepath.Join(t.TempDir(), "test.zip")
	f, err := os.Create(zipPath)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return zipPath
}

func TestExtractZIP_MultiFile(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{
		"file1.txt": "content one",
		"file2.txt": "content two",
		"file3.csv": "a,b,c",
	})

	destDir := t.TempDir()
	extracted, err := ExtractZIP(zipPath, destDir)
	require.NoError(t, err)
	assert.Len(t, extracted, 3)

	// Verify file contents
	for _, path := range extracted {
		_, err := os.Stat(path)
		require.NoError(t, err)
	}

	data, err := os.ReadFile(filepath.Join(destDir, "file1.txt"))
	require.NoError(t, err)
	assert.Equal(t, "content one", string(data))

	data, err = os.ReadFile(filepath.Join(destDir, "file2.txt"))
	require.NoError(t, err)
	assert.Equal(t, "content two", string(data))
}

func TestExtractZIP_WithSubdirectory(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{
		"top.txt":              "top level",
		"nested/inner.geojson": `{"type":"FeatureCollection","features":[]}`,
	})

	destDir := t.TempDir()
	extracted, err := ExtractZIP(zipPath, destDir)
	require.NoError(t, err)
	assert.Len(t, extracted, 2)

	data, err := os.ReadFile(filepath.Join(destDir, "nested", "inner.geojson"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "FeatureCollection")
}

func TestExtractZIP_ZipSlipPrevention(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{
		"../evil.txt": "escape attempt",
	})

	destDir := t.TempDir()
	_, err := ExtractZIP(zipPath, destDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zip slip")

	// Nothing should have landed outside the destination.
	_, err = os.Stat(filepath.Join(filepath.Dir(destDir), "evil.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestExtractZIP_InvalidArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.zip")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))

	_, err := ExtractZIP(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open archive")
}

func TestExtractBoundary_GeoJSON(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{
		"zipcodes.geojson": `{"type":"FeatureCollection","features":[]}`,
		"README.txt":       "metadata",
	})

	path, err := ExtractBoundary(zipPath, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "zipcodes.geojson", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "FeatureCollection")
}

func TestExtractBoundary_Shapefile(t *testing.T) {
	// Census archives ship the .shp with its sidecar files.
	zipPath := createTestZIP(t, map[string]string{
		"cb_zcta.shp":     "shp bytes",
		"cb_zcta.shx":     "shx bytes",
		"cb_zcta.dbf":     "dbf bytes",
		"cb_zcta.prj":     "prj text",
		"cb_zcta.shp.xml": "metadata",
	})

	destDir := t.TempDir()
	path, err := ExtractBoundary(zipPath, destDir)
	require.NoError(t, err)
	assert.Equal(t, "cb_zcta.shp", filepath.Base(path))

	// Sidecars must be extracted next to the .shp for readers to find them.
	_, err = os.Stat(filepath.Join(destDir, "cb_zcta.dbf"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(destDir, "cb_zcta.shx"))
	require.NoError(t, err)
}

func TestExtractBoundary_NoGeometryFile(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{
		"README.txt": "nothing useful",
	})

	_, err := ExtractBoundary(zipPath, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no geometry file")
}

func TestExtractBoundary_MultipleGeometryFiles(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{
		"a.geojson": "{}",
		"b.geojson": "{}",
	})

	_, err := ExtractBoundary(zipPath, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple geometry files")
}
