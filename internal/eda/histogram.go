package eda

import (
	"bytes"
	"math"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/sells-group/housing-eda/internal/frame"
)

// Histogram is the binned distribution of one numeric column.
type Histogram struct {
	Column string
	Labels []string
	Counts []int
}

// binCount follows the square-root rule, clamped to a readable range.
func binCount(n int) int {
	bins := int(math.Ceil(math.Sqrt(float64(n))))
	if bins < 5 {
		bins = 5
	}
	if bins > 20 {
		bins = 20
	}
	return bins
}

// NewHistogram bins the non-missing values of one column.
func NewHistogram(column string, values []float64) Histogram {
	h := Histogram{Column: column}

	present := make([]float64, 0, len(values))
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		present = append(present, v)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if len(present) == 0 {
		return h
	}
	if lo == hi {
		h.Labels = []string{frame.FormatCell(lo)}
		h.Counts = []int{len(present)}
		return h
	}

	bins := binCount(len(present))
	width := (hi - lo) / float64(bins)
	h.Counts = make([]int, bins)
	h.Labels = make([]string, bins)
	for i := range h.Labels {
		h.Labels[i] = strconv.FormatFloat(lo+width*float64(i), 'g', 4, 64)
	}
	for _, v := range present {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		h.Counts[idx]++
	}
	return h
}

// HistogramPNG renders the distribution of one numeric column as a static
// bar chart.
func HistogramPNG(ds *frame.Dataset, column, path string) error {
	values, err := ds.Numeric(column)
	if err != nil {
		return eris.Wrap(err, "eda: histogram column")
	}

	h := NewHistogram(column, values)
	if len(h.Counts) == 0 {
		return eris.Errorf("eda: column %q has no values to plot", column)
	}

	bars := make([]chart.Value, len(h.Counts))
	for i, count := range h.Counts {
		bars[i] = chart.Value{Value: float64(count), Label: h.Labels[i]}
	}

	bc := chart.BarChart{
		Title:      column,
		Width:      1024,
		Height:     512,
		BarWidth:   900 / len(bars),
		BarSpacing: 4,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 24}},
		Bars:       bars,
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return eris.Wrap(err, "eda: render histogram")
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return eris.Wrapf(err, "eda: write %s", path)
	}
	return nil
}
