package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/housing-eda/internal/corrgrid"
	"github.com/sells-group/housing-eda/internal/frame"
)

var (
	corrColumns string
	corrOut     string
)

var corrCmd = &cobra.Command{
	Use:   "corr <dataset>",
	Short: "Render a pairwise correlation grid",
	Long: `Computes Pearson correlations with two-tailed p-values over the chosen
columns and renders a pair grid: correlation dots above the diagonal,
distribution histograms on it, scatter plots with trend lines below.

Examples:
  # All numeric columns
  housing-eda corr houses.csv

  # A chosen subset
  housing-eda corr houses.csv --columns price,house_quality,bedrooms`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st := openRunStore(ctx)
		if st != nil {
			defer st.Close() //nolint:errcheck
		}
		run := recordStart(ctx, st, "corr", argsFromCommandLine())

		outPath := corrOut
		if outPath == "" {
			outPath = filepath.Join(cfg.Data.Dir, "corr.html")
		}

		artifacts, err := runCorr(ctx, args[0], splitAndTrim(corrColumns), outPath)
		recordOutcome(ctx, st, run, artifacts, err)
		return err
	},
}

func init() {
	corrCmd.Flags().StringVar(&corrColumns, "columns", "", "comma-separated columns (default: all numeric columns)")
	corrCmd.Flags().StringVar(&corrOut, "out", "", "output HTML path (default <data dir>/corr.html)")
	rootCmd.AddCommand(corrCmd)
}

// runCorr loads the dataset, computes the grid over the columns (all
// numeric columns when none are named), and writes the HTML page.
func runCorr(ctx context.Context, src string, columns []string, outPath string) ([]string, error) {
	ds, err := frame.Load(ctx, src)
	if err != nil {
		return nil, eris.Wrap(err, "corr")
	}

	if len(columns) == 0 {
		columns = numericColumns(ds)
	}
	if len(columns) < 2 {
		return nil, eris.New("corr: need at least two numeric columns")
	}

	grid, err := corrgrid.Compute(ds, columns)
	if err != nil {
		return nil, eris.Wrap(err, "corr")
	}

	if err := ensureParentDir(outPath); err != nil {
		return nil, err
	}
	if err := grid.WriteHTML(outPath); err != nil {
		return nil, eris.Wrap(err, "corr")
	}

	zap.L().Info("wrote correlation grid",
		zap.String("path", outPath),
		zap.Int("columns", len(columns)),
	)
	return []string{outPath}, nil
}

// numericColumns returns the dataset's numeric columns in order.
func numericColumns(ds *frame.Dataset) []string {
	var cols []string
	for _, name := range ds.Columns() {
		if kind, err := ds.ColumnKind(name); err == nil && kind == frame.KindNumeric {
			cols = append(cols, name)
		}
	}
	return cols
}

// splitAndTrim splits a comma-separated flag value, dropping empty parts.
func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
