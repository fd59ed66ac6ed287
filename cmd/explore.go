package main

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/housing-eda/internal/eda"
	"github.com/sells-group/housing-eda/internal/frame"
)

var (
	exploreHTML    string
	exploreHist    string
	exploreHistOut string
)

var exploreCmd = &cobra.Command{
	Use:   "explore <dataset>",
	Short: "Profile a housing dataset",
	Long: `Prints a text report with shape, column structure, head rows, summary
statistics, duplicate count, and per-column missing data.

Dataset sources:
  houses.csv                     CSV file
  houses.xlsx#Sheet1             XLSX file, optional sheet after '#'
  houses.db#SELECT * FROM t      SQLite file, query after '#'
  postgres://dsn#SELECT ...      PostgreSQL DSN, query after '#'

Examples:
  # Text report only
  housing-eda explore houses.csv

  # Also write the chart report and a price histogram
  housing-eda explore houses.csv --html report.html --hist price`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st := openRunStore(ctx)
		if st != nil {
			defer st.Close() //nolint:errcheck
		}
		run := recordStart(ctx, st, "explore", argsFromCommandLine())

		opts := exploreOptions{
			HTMLPath:   exploreHTML,
			HistColumn: exploreHist,
			HistPath:   exploreHistOut,
		}
		if opts.HistColumn != "" && opts.HistPath == "" {
			opts.HistPath = filepath.Join(cfg.Data.Dir, opts.HistColumn+"_hist.png")
		}

		artifacts, err := runExplore(ctx, args[0], opts, os.Stdout)
		recordOutcome(ctx, st, run, artifacts, err)
		return err
	},
}

func init() {
	exploreCmd.Flags().StringVar(&exploreHTML, "html", "", "write the chart report (missing-data matrix + histograms) to this path")
	exploreCmd.Flags().StringVar(&exploreHist, "hist", "", "render a PNG histogram of this numeric column")
	exploreCmd.Flags().StringVar(&exploreHistOut, "hist-out", "", "histogram output path (default <data dir>/<column>_hist.png)")
	rootCmd.AddCommand(exploreCmd)
}

// exploreOptions selects the optional artifacts of an explore run.
type exploreOptions struct {
	HTMLPath   string
	HistColumn string
	HistPath   string
}

// runExplore loads the dataset, writes the text report to out, and emits
// the requested artifacts. It returns whatever artifacts were written,
// even when a later one fails.
func runExplore(ctx context.Context, src string, opts exploreOptions, out io.Writer) ([]string, error) {
	ds, err := frame.Load(ctx, src)
	if err != nil {
		return nil, eris.Wrap(err, "explore")
	}

	report := eda.Explore(ds)
	report.WriteText(out)

	var artifacts []string
	if opts.HTMLPath != "" {
		if err := ensureParentDir(opts.HTMLPath); err != nil {
			return artifacts, err
		}
		if err := report.WriteHTML(opts.HTMLPath); err != nil {
			return artifacts, eris.Wrap(err, "explore")
		}
		artifacts = append(artifacts, opts.HTMLPath)
		zap.L().Info("wrote chart report", zap.String("path", opts.HTMLPath))
	}
	if opts.HistColumn != "" {
		if err := ensureParentDir(opts.HistPath); err != nil {
			return artifacts, err
		}
		if err := eda.HistogramPNG(ds, opts.HistColumn, opts.HistPath); err != nil {
			return artifacts, eris.Wrap(err, "explore")
		}
		artifacts = append(artifacts, opts.HistPath)
		zap.L().Info("wrote histogram", zap.String("column", opts.HistColumn), zap.String("path", opts.HistPath))
	}
	return artifacts, nil
}

// ensureParentDir creates the directory an artifact will land in.
func ensureParentDir(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "create directory %s", dir)
		}
	}
	return nil
}
