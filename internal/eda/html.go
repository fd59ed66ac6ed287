package eda

import (
	"math"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/rotisserie/eris"
)

// maxMatrixRows caps how many dataset rows the missing-data matrix draws;
// taller datasets are sampled evenly so the heatmap stays renderable.
const maxMatrixRows = 200

// WriteHTML renders the report as a chart page: the missing-data matrix
// followed by one distribution histogram per numeric column.
func (r *Report) WriteHTML(path string) error {
	page := components.NewPage()
	page.PageTitle = "EDA report"
	page.AddCharts(r.missingMatrixChart())
	for _, h := range r.Histograms {
		page.AddCharts(histogramChart(h))
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "eda: create %s", path)
	}
	defer func() { _ = f.Close() }()

	if err := page.Render(f); err != nil {
		return eris.Wrap(err, "eda: render report page")
	}
	return nil
}

func (r *Report) missingMatrixChart() *charts.HeatMap {
	rows := sampleRows(len(r.MissingMask), maxMatrixRows)

	labels := make([]string, len(rows))
	data := make([]opts.HeatMapData, 0, len(rows)*len(r.Columns))
	for yi, row := range rows {
		labels[yi] = strconv.Itoa(row)
		for xi := range r.Columns {
			v := 0
			if r.MissingMask[row][xi] {
				v = 1
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{xi, yi, v}})
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Missing data by column"}),
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "500px"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: r.Columns}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: labels}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Min: 0,
			Max: 1,
			InRange: &opts.VisualMapInRange{
				Color: []string{"#2c3e50", "#ecf0f1"},
			},
		}),
	)
	hm.AddSeries("missing", data)
	return hm
}

func histogramChart(h Histogram) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: h.Column}),
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "300px"}),
	)

	data := make([]opts.BarData, len(h.Counts))
	for i, count := range h.Counts {
		data[i] = opts.BarData{Value: count}
	}
	bar.SetXAxis(h.Labels).AddSeries("count", data)
	return bar
}

// sampleRows picks up to limit row indices spread evenly across n rows.
func sampleRows(n, limit int) []int {
	if n <= limit {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
	out := make([]int, limit)
	step := float64(n-1) / float64(limit-1)
	for i := range out {
		out[i] = int(math.Round(float64(i) * step))
	}
	return out
}
