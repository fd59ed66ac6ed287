package corrgrid

import (
	"fmt"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/stat"

	"github.com/sells-group/housing-eda/internal/eda"
)

const (
	cellWidth  = "320px"
	cellHeight = "260px"
)

// WriteHTML renders the grid as a pair-grid page: row-major cells, the
// upper triangle as correlation dots with the r value and significance
// stars, the diagonal as distribution histograms, the lower triangle as
// scatter plots with a least-squares trend line.
func (g *Grid) WriteHTML(path string) error {
	page := components.NewPage()
	page.PageTitle = "Correlation grid"
	page.SetLayout(components.PageFlexLayout)

	for i := range g.Columns {
		for j := range g.Columns {
			switch {
			case i == j:
				page.AddCharts(g.histogramCell(i))
			case i < j:
				page.AddCharts(g.dotCell(i, j))
			default:
				page.AddCharts(g.scatterCell(i, j))
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "corrgrid: create %s", path)
	}
	defer func() { _ = f.Close() }()

	if err := page.Render(f); err != nil {
		return eris.Wrap(err, "corrgrid: render grid page")
	}
	return nil
}

// dotCell is one upper-triangle cell: a single dot sized and colored by
// the correlation, annotated with the formatted r and its stars.
func (g *Grid) dotCell(i, j int) *charts.Scatter {
	cell := g.Cells[i][j]
	text := FormatR(cell.R) + Stars(cell.P)

	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: cellWidth, Height: cellHeight}),
		charts.WithTitleOpts(opts.Title{
			Title:    text,
			Subtitle: g.Columns[i] + " / " + g.Columns[j],
			Left:     "center",
		}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Show: opts.Bool(false), Min: 0, Max: 1}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Show: opts.Bool(false), Min: 0, Max: 1}),
	)

	size := 8
	if !math.IsNaN(cell.R) {
		size += int(math.Round(math.Abs(cell.R) * 40))
	}
	sc.AddSeries("r", []opts.ScatterData{{
		Value:      []interface{}{0.5, 0.5},
		SymbolSize: size,
	}}, charts.WithItemStyleOpts(opts.ItemStyle{Color: coolwarmHex(cell.R), Opacity: 0.6}))
	return sc
}

func (g *Grid) histogramCell(i int) *charts.Bar {
	h := eda.NewHistogram(g.Columns[i], g.values[i])

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: cellWidth, Height: cellHeight}),
		charts.WithTitleOpts(opts.Title{Title: g.Columns[i], Left: "center"}),
	)

	data := make([]opts.BarData, len(h.Counts))
	for k, count := range h.Counts {
		data[k] = opts.BarData{Value: count}
	}
	bar.SetXAxis(h.Labels).AddSeries("count", data)
	return bar
}

// scatterCell is one lower-triangle cell: the complete pairs of the two
// columns with a least-squares trend line over them.
func (g *Grid) scatterCell(i, j int) *charts.Scatter {
	xs, ys := completePairs(g.values[j], g.values[i])

	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: cellWidth, Height: cellHeight}),
		charts.WithTitleOpts(opts.Title{
			Title: g.Columns[j] + " / " + g.Columns[i],
			Left:  "center",
		}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Scale: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Scale: opts.Bool(true)}),
	)

	points := make([]opts.ScatterData, len(xs))
	for k := range xs {
		points[k] = opts.ScatterData{Value: []interface{}{xs[k], ys[k]}, SymbolSize: 5}
	}
	sc.AddSeries("points", points)

	if trend := trendLine(xs, ys); trend != nil {
		sc.Overlap(trend)
	}
	return sc
}

// trendLine fits ordinary least squares and draws it across the x range;
// nil when the fit is degenerate.
func trendLine(xs, ys []float64) *charts.Line {
	if len(xs) < 2 {
		return nil
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) {
		return nil
	}

	lo, hi := xs[0], xs[0]
	for _, x := range xs {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}

	line := charts.NewLine()
	line.AddSeries("trend", []opts.LineData{
		{Value: []interface{}{lo, alpha + beta*lo}},
		{Value: []interface{}{hi, alpha + beta*hi}},
	}, charts.WithLineStyleOpts(opts.LineStyle{Color: "black", Width: 2}))
	return line
}

// coolwarmHex maps r in [-1, 1] onto a diverging blue-white-red scale.
func coolwarmHex(r float64) string {
	if math.IsNaN(r) {
		return "#dddddd"
	}
	if r < -1 {
		r = -1
	}
	if r > 1 {
		r = 1
	}

	neg := [3]float64{59, 76, 192}
	mid := [3]float64{221, 221, 221}
	pos := [3]float64{180, 4, 38}

	var from, to [3]float64
	var t float64
	if r < 0 {
		from, to, t = neg, mid, r+1
	} else {
		from, to, t = mid, pos, r
	}

	var rgb [3]int
	for k := 0; k < 3; k++ {
		rgb[k] = int(math.Round(from[k] + (to[k]-from[k])*t))
	}
	return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2])
}
