// Package eda summarizes a dataset the way an exploratory first pass does:
// structure, head, descriptive statistics, shape, duplicates, and missing
// values, with text and chart renderings.
package eda

import (
	"math"
	"sort"
	"strings"

	"github.com/sells-group/housing-eda/internal/frame"
)

// headRows is how many leading rows the head section shows.
const headRows = 5

// ColumnInfo is one structure-table entry.
type ColumnInfo struct {
	Name    string
	Kind    frame.Kind
	NonNull int
}

// Stats holds the descriptive statistics of one numeric column. Quartiles
// interpolate linearly between order statistics. Std is the sample standard
// deviation and is NaN below two observations.
type Stats struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	P25    float64
	Median float64
	P75    float64
	Max    float64
}

// MissingInfo is one missing-value table entry.
type MissingInfo struct {
	Column  string
	Count   int
	Percent float64
}

// Report is the computed exploration of one dataset.
type Report struct {
	Rows int
	Cols int

	Columns   []string
	Structure []ColumnInfo
	Head      [][]string
	Describe  []Stats

	Duplicates int
	Missing    []MissingInfo

	// MissingMask marks missing cells per [row][column], feeding the
	// missing-data matrix.
	MissingMask [][]bool

	Histograms []Histogram
}

// Explore computes the full report for a dataset.
func Explore(ds *frame.Dataset) *Report {
	cols := ds.Columns()
	r := &Report{
		Rows:    ds.Len(),
		Cols:    len(cols),
		Columns: cols,
	}

	cells := make(map[string][]string, len(cols))
	for _, name := range cols {
		text, err := ds.Strings(name)
		if err != nil {
			continue
		}
		cells[name] = text

		nonNull := 0
		for row := 0; row < ds.Len(); row++ {
			if !ds.Missing(name, row) {
				nonNull++
			}
		}
		kind, _ := ds.ColumnKind(name)
		r.Structure = append(r.Structure, ColumnInfo{Name: name, Kind: kind, NonNull: nonNull})

		missing := ds.Len() - nonNull
		percent := 0.0
		if ds.Len() > 0 {
			percent = float64(missing) / float64(ds.Len()) * 100
		}
		r.Missing = append(r.Missing, MissingInfo{Column: name, Count: missing, Percent: percent})
	}

	for row := 0; row < ds.Len() && row < headRows; row++ {
		line := make([]string, len(cols))
		for i, name := range cols {
			line[i] = cells[name][row]
		}
		r.Head = append(r.Head, line)
	}

	for _, name := range cols {
		kind, _ := ds.ColumnKind(name)
		if kind != frame.KindNumeric {
			continue
		}
		values, err := ds.Numeric(name)
		if err != nil {
			continue
		}
		r.Describe = append(r.Describe, describe(name, values))
		r.Histograms = append(r.Histograms, NewHistogram(name, values))
	}

	r.Duplicates = countDuplicates(ds, cells)
	r.MissingMask = missingMask(ds)
	return r
}

func describe(name string, values []float64) Stats {
	s := Stats{Column: name}
	s.Mean, s.Std, s.Count = welford(values)

	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	sort.Float64s(present)

	if len(present) == 0 {
		s.Min, s.P25, s.Median, s.P75, s.Max = nan, nan, nan, nan, nan
		return s
	}
	s.Min = present[0]
	s.Max = present[len(present)-1]
	s.P25 = percentile(present, 0.25)
	s.Median = percentile(present, 0.5)
	s.P75 = percentile(present, 0.75)
	return s
}

var nan = math.NaN()

// welford computes mean and sample standard deviation in one pass,
// skipping missing cells.
func welford(values []float64) (mean, std float64, count int) {
	var m, m2 float64
	n := 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		n++
		delta := v - m
		m += delta / float64(n)
		m2 += delta * (v - m)
	}
	switch {
	case n == 0:
		return nan, nan, 0
	case n == 1:
		return m, nan, 1
	}
	return m, math.Sqrt(m2 / float64(n-1)), n
}

// percentile interpolates linearly between order statistics; the input
// must be sorted and free of NaN.
func percentile(sorted []float64, q float64) float64 {
	n := len(sorted)
	switch n {
	case 0:
		return nan
	case 1:
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// countDuplicates counts rows identical to an earlier row across every
// column, matching the duplicated-rows sum of the classic flow.
func countDuplicates(ds *frame.Dataset, cells map[string][]string) int {
	seen := make(map[string]bool, ds.Len())
	dups := 0
	var key strings.Builder
	for row := 0; row < ds.Len(); row++ {
		key.Reset()
		for _, name := range ds.Columns() {
			key.WriteString(cells[name][row])
			key.WriteByte(0x1f)
		}
		k := key.String()
		if seen[k] {
			dups++
			continue
		}
		seen[k] = true
	}
	return dups
}

func missingMask(ds *frame.Dataset) [][]bool {
	cols := ds.Columns()
	mask := make([][]bool, ds.Len())
	for row := 0; row < ds.Len(); row++ {
		mask[row] = make([]bool, len(cols))
		for i, name := range cols {
			mask[row][i] = ds.Missing(name, row)
		}
	}
	return mask
}
