// Package encode maps numeric data columns onto visual properties.
package encode

import (
	"math"

	"github.com/rotisserie/eris"
)

// Marker size scaling applied on top of the normalized value. The +1 shift
// keeps the cheapest house visible; the *10 scale exaggerates the spread.
const (
	markerSizeShift = 1.0
	markerSizeScale = 10.0
)

// Normalize rescales values to [0,1] as (v - min) / (max - min).
// The input slice is never modified. NaN values pass through as NaN and do
// not participate in the min/max. A constant column (max == min) maps every
// value to 0 rather than dividing by zero.
func Normalize(values []float64) ([]float64, error) {
	if len(values) == 0 {
		return nil, eris.New("encode: normalize of empty column")
	}

	lo := math.Inf(1)
	hi := math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo > hi {
		return nil, eris.New("encode: normalize of all-missing column")
	}

	out := make([]float64, len(values))
	span := hi - lo
	for i, v := range values {
		if math.IsNaN(v) {
			out[i] = math.NaN()
			continue
		}
		if span == 0 {
			out[i] = 0
			continue
		}
		out[i] = (v - lo) / span
	}
	return out, nil
}

// MarkerSizes converts a numeric column into marker pixel sizes:
// (normalized + 1) * 10, so the minimum renders at 10 and the maximum at 20.
func MarkerSizes(values []float64) ([]float64, error) {
	norm, err := Normalize(values)
	if err != nil {
		return nil, eris.Wrap(err, "encode: marker sizes")
	}
	sizes := make([]float64, len(norm))
	for i, v := range norm {
		if math.IsNaN(v) {
			sizes[i] = markerSizeShift * markerSizeScale
			continue
		}
		sizes[i] = (v + markerSizeShift) * markerSizeScale
	}
	return sizes, nil
}
