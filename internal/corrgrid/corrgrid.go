// Package corrgrid computes pairwise Pearson correlations with two-tailed
// significance and renders them as a pair grid: correlation dots above the
// diagonal, distributions on it, scatter plots with a trend line below.
package corrgrid

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sells-group/housing-eda/internal/frame"
)

// Cell is one pairwise result: the correlation, its two-tailed p-value,
// and how many complete pairs fed it.
type Cell struct {
	R float64
	P float64
	N int
}

// Grid is the pairwise correlation matrix over the selected columns.
type Grid struct {
	Columns []string
	Cells   [][]Cell

	values [][]float64
}

// Compute builds the grid over the named numeric columns; with no names it
// takes every numeric column of the dataset. Column checks run before any
// computation.
func Compute(ds *frame.Dataset, columns []string) (*Grid, error) {
	if len(columns) == 0 {
		for _, name := range ds.Columns() {
			if kind, err := ds.ColumnKind(name); err == nil && kind == frame.KindNumeric {
				columns = append(columns, name)
			}
		}
	}
	if len(columns) < 2 {
		return nil, eris.New("corrgrid: need at least two numeric columns")
	}

	values := make([][]float64, len(columns))
	for i, name := range columns {
		v, err := ds.Numeric(name)
		if err != nil {
			return nil, eris.Wrap(err, "corrgrid: select columns")
		}
		values[i] = v
	}

	g := &Grid{Columns: columns, values: values}
	g.Cells = make([][]Cell, len(columns))
	for i := range columns {
		g.Cells[i] = make([]Cell, len(columns))
		for j := range columns {
			xs, ys := completePairs(values[i], values[j])
			r := PearsonR(xs, ys)
			g.Cells[i][j] = Cell{R: r, P: PValue(r, len(xs)), N: len(xs)}
		}
	}
	return g, nil
}

// completePairs keeps the rows where both columns have a value.
func completePairs(x, y []float64) (xs, ys []float64) {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}

// PearsonR is the sample Pearson correlation; NaN below two pairs.
func PearsonR(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}

// PValue is the two-tailed significance of r over n pairs, from the
// Student's t distribution with n-2 degrees of freedom. Fewer than three
// pairs carry no evidence and score 1; a perfect correlation scores 0.
func PValue(r float64, n int) float64 {
	if n < 3 || math.IsNaN(r) {
		return 1
	}
	if math.Abs(r) >= 1 {
		return 0
	}
	t := r * math.Sqrt(float64(n-2)/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
	return 2 * (1 - dist.CDF(math.Abs(t)))
}

// Stars maps a p-value to its significance tier.
func Stars(p float64) string {
	switch {
	case p <= 0.001:
		return "***"
	case p <= 0.01:
		return "**"
	case p <= 0.05:
		return "*"
	default:
		return ""
	}
}

// FormatR renders a correlation to two decimals with the leading zero
// stripped: 0.78 renders ".78", -0.5 renders "-.50".
func FormatR(r float64) string {
	if math.IsNaN(r) {
		return "n/a"
	}
	return strings.Replace(fmt.Sprintf("%.2f", r), "0.", ".", 1)
}
