package main

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/housing-eda/internal/store"
)

// scriptedFetcher serves DownloadIfChanged from canned values and records
// how it was called.
type scriptedFetcher struct {
	body    []byte
	etag    string
	changed bool
	err     error

	calls   int
	gotETag string
}

func (f *scriptedFetcher) Download(_ context.Context, _ string) (io.ReadCloser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(bytes.NewReader(f.body)), nil
}

func (f *scriptedFetcher) DownloadToFile(_ context.Context, _, _ string) (int64, error) {
	return 0, f.err
}

func (f *scriptedFetcher) HeadETag(_ context.Context, _ string) (string, error) {
	return f.etag, f.err
}

func (f *scriptedFetcher) DownloadIfChanged(_ context.Context, _, etag string) (io.ReadCloser, string, bool, error) {
	f.calls++
	f.gotETag = etag
	if f.err != nil {
		return nil, "", false, f.err
	}
	if !f.changed {
		return nil, etag, false, nil
	}
	return io.NopCloser(bytes.NewReader(f.body)), f.etag, true, nil
}

func newFetchTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestRunFetch_DownloadsToDerivedPath(t *testing.T) {
	f := &scriptedFetcher{body: []byte(`{"type":"FeatureCollection"}`), etag: `"e1"`, changed: true}
	dir := t.TempDir()

	artifacts, err := runFetch(context.Background(), f, nil, "https://example.com/boundaries/zcta.geojson",
		fetchOptions{Dir: dir, TTL: time.Hour})
	require.NoError(t, err)

	dest := filepath.Join(dir, "zcta.geojson")
	require.Equal(t, []string{dest}, artifacts)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"FeatureCollection"}`, string(data))
	assert.Equal(t, 1, f.calls)
	assert.Empty(t, f.gotETag, "first fetch sends no etag")
}

func TestRunFetch_ExplicitOut(t *testing.T) {
	f := &scriptedFetcher{body: []byte("data"), changed: true}
	out := filepath.Join(t.TempDir(), "nested", "custom.geojson")

	artifacts, err := runFetch(context.Background(), f, nil, "https://example.com/src.geojson",
		fetchOptions{Out: out, TTL: time.Hour})
	require.NoError(t, err)

	assert.Equal(t, []string{out}, artifacts)
	assert.FileExists(t, out)
}

func TestRunFetch_CacheHitSkipsDownload(t *testing.T) {
	st := newFetchTestStore(t)
	ctx := context.Background()

	cachedPath := filepath.Join(t.TempDir(), "zcta.geojson")
	require.NoError(t, os.WriteFile(cachedPath, []byte("cached"), 0o644))
	url := "https://example.com/zcta.geojson"
	require.NoError(t, st.PutBoundary(ctx, url, cachedPath, `"e1"`, time.Hour))

	f := &scriptedFetcher{changed: true}
	artifacts, err := runFetch(ctx, f, st, url, fetchOptions{Dir: t.TempDir(), TTL: time.Hour})
	require.NoError(t, err)

	assert.Equal(t, []string{cachedPath}, artifacts)
	assert.Zero(t, f.calls, "cache hit must not touch the network")
}

func TestRunFetch_ForceNotModified(t *testing.T) {
	st := newFetchTestStore(t)
	ctx := context.Background()

	dir := t.TempDir()
	cachedPath := filepath.Join(dir, "zcta.geojson")
	require.NoError(t, os.WriteFile(cachedPath, []byte("v1"), 0o644))
	url := "https://example.com/zcta.geojson"
	require.NoError(t, st.PutBoundary(ctx, url, cachedPath, `"e1"`, time.Hour))

	f := &scriptedFetcher{changed: false}
	artifacts, err := runFetch(ctx, f, st, url, fetchOptions{Dir: dir, Force: true, TTL: time.Hour})
	require.NoError(t, err)

	assert.Equal(t, []string{cachedPath}, artifacts)
	assert.Equal(t, 1, f.calls)
	assert.Equal(t, `"e1"`, f.gotETag, "revalidation sends the stored etag")

	data, err := os.ReadFile(cachedPath)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(data), "cached copy survives a 304")
}

func TestRunFetch_ForceChangedRewrites(t *testing.T) {
	st := newFetchTestStore(t)
	ctx := context.Background()

	dir := t.TempDir()
	dest := filepath.Join(dir, "zcta.geojson")
	require.NoError(t, os.WriteFile(dest, []byte("v1"), 0o644))
	url := "https://example.com/zcta.geojson"
	require.NoError(t, st.PutBoundary(ctx, url, dest, `"e1"`, time.Hour))

	f := &scriptedFetcher{body: []byte("v2"), etag: `"e2"`, changed: true}
	artifacts, err := runFetch(ctx, f, st, url, fetchOptions{Dir: dir, Force: true, TTL: time.Hour})
	require.NoError(t, err)
	require.Equal(t, []string{dest}, artifacts)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))

	b, err := st.GetBoundary(ctx, url)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, `"e2"`, b.ETag)
}

func TestRunFetch_MissingCachedFileRedownloads(t *testing.T) {
	st := newFetchTestStore(t)
	ctx := context.Background()

	url := "https://example.com/zcta.geojson"
	require.NoError(t, st.PutBoundary(ctx, url, filepath.Join(t.TempDir(), "gone.geojson"), `"e1"`, time.Hour))

	f := &scriptedFetcher{body: []byte("fresh"), etag: `"e2"`, changed: true}
	artifacts, err := runFetch(ctx, f, st, url, fetchOptions{Dir: t.TempDir(), TTL: time.Hour})
	require.NoError(t, err)

	assert.Equal(t, 1, f.calls)
	assert.Empty(t, f.gotETag, "a lost file forces a full download")
	require.Len(t, artifacts, 1)
	assert.FileExists(t, artifacts[0])
}

func TestRunFetch_DownloadError(t *testing.T) {
	f := &scriptedFetcher{err: eris.New("boom")}

	_, err := runFetch(context.Background(), f, nil, "https://example.com/x.geojson",
		fetchOptions{Dir: t.TempDir(), TTL: time.Hour})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestRunFetch_ExtractsArchive(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	geo, err := zw.Create("cb_2018_us_zcta510_500k.geojson")
	require.NoError(t, err)
	_, err = geo.Write([]byte(`{"type":"FeatureCollection","features":[]}`))
	require.NoError(t, err)
	readme, err := zw.Create("README.txt")
	require.NoError(t, err)
	_, err = readme.Write([]byte("boundary notes"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	f := &scriptedFetcher{body: buf.Bytes(), changed: true}
	dir := t.TempDir()

	artifacts, err := runFetch(context.Background(), f, nil, "https://example.com/cb_2018_us_zcta510_500k.zip",
		fetchOptions{Dir: dir, Extract: true, TTL: time.Hour})
	require.NoError(t, err)

	require.Len(t, artifacts, 2)
	assert.Equal(t, filepath.Join(dir, "cb_2018_us_zcta510_500k.zip"), artifacts[0])
	assert.Equal(t, filepath.Join(dir, "cb_2018_us_zcta510_500k.geojson"), artifacts[1])
	assert.FileExists(t, artifacts[1])
}

func TestFileNameFromURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "plain", in: "https://example.com/data/zcta.geojson", want: "zcta.geojson"},
		{name: "query ignored", in: "https://example.com/parks.zip?version=2", want: "parks.zip"},
		{name: "no path", in: "https://example.com/", wantErr: true},
		{name: "bad url", in: "://nope", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fileNameFromURL(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
