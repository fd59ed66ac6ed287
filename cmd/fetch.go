package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/housing-eda/internal/fetcher"
	"github.com/sells-group/housing-eda/internal/store"
)

var (
	fetchOut     string
	fetchExtract bool
	fetchForce   bool
	fetchTTL     time.Duration
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Download a boundary archive or dataset into the data directory",
	Long: `Downloads a remote file with per-host rate limiting and retries, keeping
a TTL + ETag cache so repeated fetches of an unchanged source cost nothing.

A fresh cache entry short-circuits without a request; --force revalidates
against the origin with the stored ETag instead.

Examples:
  # Census ZCTA boundaries, unzipped in place
  housing-eda fetch https://www2.census.gov/geo/tiger/GENZ2018/shp/cb_2018_us_zcta510_500k.zip --extract

  # Re-check a cached file against the origin
  housing-eda fetch https://example.org/parks.geojson --force`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st := openRunStore(ctx)
		if st != nil {
			defer st.Close() //nolint:errcheck
		}
		run := recordStart(ctx, st, "fetch", argsFromCommandLine())

		client := fetcher.NewClient(fetcher.Options{
			UserAgent:  cfg.Fetch.UserAgent,
			Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
			MaxRetries: cfg.Fetch.MaxRetries,
		})

		ttl := fetchTTL
		if ttl == 0 {
			ttl = time.Duration(cfg.Fetch.CacheTTLHours) * time.Hour
		}

		artifacts, err := runFetch(ctx, client, st, args[0], fetchOptions{
			Dir:     filepath.Join(cfg.Data.Dir, "boundaries"),
			Out:     fetchOut,
			Extract: fetchExtract,
			Force:   fetchForce,
			TTL:     ttl,
		})
		recordOutcome(ctx, st, run, artifacts, err)
		if err != nil {
			return err
		}

		for _, a := range artifacts {
			fmt.Println(a)
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchOut, "out", "", "destination path (default <data dir>/boundaries/<url file name>)")
	fetchCmd.Flags().BoolVar(&fetchExtract, "extract", false, "unzip a boundary archive after download")
	fetchCmd.Flags().BoolVar(&fetchForce, "force", false, "revalidate against the origin even if the cache entry is fresh")
	fetchCmd.Flags().DurationVar(&fetchTTL, "ttl", 0, "cache lifetime (default from config, e.g. 24h)")
	rootCmd.AddCommand(fetchCmd)
}

// fetchOptions shapes one download.
type fetchOptions struct {
	Dir     string
	Out     string
	Extract bool
	Force   bool
	TTL     time.Duration
}

// runFetch resolves the destination, consults the boundary cache, and
// downloads only when needed. Cache failures degrade to warnings; the
// download itself proceeds regardless.
func runFetch(ctx context.Context, f fetcher.Fetcher, st store.Store, rawURL string, opts fetchOptions) ([]string, error) {
	dest := opts.Out
	if dest == "" {
		name, err := fileNameFromURL(rawURL)
		if err != nil {
			return nil, err
		}
		dest = filepath.Join(opts.Dir, name)
	}

	var cached *store.Boundary
	if st != nil {
		if n, err := st.DeleteExpired(ctx); err == nil && n > 0 {
			zap.L().Debug("pruned expired cache entries", zap.Int("count", n))
		}
		b, err := st.GetBoundary(ctx, rawURL)
		if err != nil {
			zap.L().Warn("boundary cache read failed", zap.Error(err))
		} else {
			cached = b
		}
	}

	switch {
	case cached != nil && fileExists(cached.Path) && !opts.Force:
		zap.L().Info("cache hit", zap.String("url", rawURL), zap.String("path", cached.Path))
		dest = cached.Path

	case cached != nil && fileExists(cached.Path) && opts.Force:
		body, etag, changed, err := f.DownloadIfChanged(ctx, rawURL, cached.ETag)
		if err != nil {
			return nil, err
		}
		if !changed {
			zap.L().Info("not modified, cached copy is current", zap.String("url", rawURL))
			dest = cached.Path
		} else {
			saveErr := saveStream(dest, body)
			_ = body.Close()
			if saveErr != nil {
				return nil, saveErr
			}
		}
		putBoundary(ctx, st, rawURL, dest, etag, opts.TTL)

	default:
		body, etag, _, err := f.DownloadIfChanged(ctx, rawURL, "")
		if err != nil {
			return nil, err
		}
		saveErr := saveStream(dest, body)
		_ = body.Close()
		if saveErr != nil {
			return nil, saveErr
		}
		putBoundary(ctx, st, rawURL, dest, etag, opts.TTL)
	}

	artifacts := []string{dest}
	if opts.Extract && strings.EqualFold(filepath.Ext(dest), ".zip") {
		geomPath, err := fetcher.ExtractBoundary(dest, filepath.Dir(dest))
		if err != nil {
			return artifacts, err
		}
		artifacts = append(artifacts, geomPath)
		zap.L().Info("extracted boundary", zap.String("path", geomPath))
	}
	return artifacts, nil
}

// fileNameFromURL derives the destination file name from the URL path.
func fileNameFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", eris.Wrapf(err, "fetch: parse url %s", rawURL)
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "", eris.Errorf("fetch: cannot derive a file name from %s; pass --out", rawURL)
	}
	return name, nil
}

// saveStream writes a download through a temp file so a failed copy never
// leaves a truncated artifact behind.
func saveStream(dest string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return eris.Wrapf(err, "fetch: create directory %s", filepath.Dir(dest))
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".tmp*")
	if err != nil {
		return eris.Wrap(err, "fetch: create temp file")
	}
	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return eris.Wrapf(err, "fetch: write %s", dest)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		_ = os.Remove(tmp.Name())
		return eris.Wrap(err, "fetch: move temp file")
	}
	zap.L().Debug("saved download", zap.String("path", dest), zap.Int64("bytes", n))
	return nil
}

// putBoundary refreshes the cache row, warn-only.
func putBoundary(ctx context.Context, st store.Store, rawURL, dest, etag string, ttl time.Duration) {
	if st == nil {
		return
	}
	if err := st.PutBoundary(ctx, rawURL, dest, etag, ttl); err != nil {
		zap.L().Warn("boundary cache write failed", zap.Error(err))
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
