// Package plotly models the subset of the plotly.js figure schema this
// toolkit emits: scattermapbox and choroplethmapbox traces over a mapbox
// layout. The structs marshal to exactly the JSON the browser library
// expects; rendering happens client-side.
package plotly

import (
	"encoding/json"

	"github.com/rotisserie/eris"
)

// Trace types.
const (
	TypeScatterMapbox    = "scattermapbox"
	TypeChoroplethMapbox = "choroplethmapbox"
)

// Figure is a complete plotly figure document.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one data trace. Lat and Lon hold []float64 for point traces and
// []any{nil} for legend-only stubs, mirroring the null-coordinate idiom.
type Trace struct {
	Type       string   `json:"type"`
	Name       string   `json:"name,omitempty"`
	ShowLegend *bool    `json:"showlegend,omitempty"`
	Mode       string   `json:"mode,omitempty"`
	Lat        any      `json:"lat,omitempty"`
	Lon        any      `json:"lon,omitempty"`
	Text       []string `json:"text,omitempty"`
	HoverInfo  string   `json:"hoverinfo,omitempty"`
	Marker     *Marker  `json:"marker,omitempty"`
	Line       *Line    `json:"line,omitempty"`

	// Choropleth fields.
	GeoJSON      any       `json:"geojson,omitempty"`
	Locations    []string  `json:"locations,omitempty"`
	Z            []float64 `json:"z,omitempty"`
	Colorscale   string    `json:"colorscale,omitempty"`
	ShowScale    *bool     `json:"showscale,omitempty"`
	FeatureIDKey string    `json:"featureidkey,omitempty"`
}

// Marker styles point markers. Size holds a float64 or a []float64.
type Marker struct {
	Size    any     `json:"size,omitempty"`
	Color   string  `json:"color,omitempty"`
	Opacity float64 `json:"opacity,omitempty"`
	Symbol  string  `json:"symbol,omitempty"`
}

// Line styles line traces.
type Line struct {
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width,omitempty"`
}

// Layout is the figure-level configuration.
type Layout struct {
	Mapbox Mapbox  `json:"mapbox"`
	Margin Margin  `json:"margin"`
	Legend *Legend `json:"legend,omitempty"`
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
}

// Mapbox configures the base map and its background layers.
type Mapbox struct {
	Style  string        `json:"style,omitempty"`
	Center Center        `json:"center"`
	Zoom   float64       `json:"zoom,omitempty"`
	Layers []MapboxLayer `json:"layers,omitempty"`
}

// Center is the map center.
type Center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// MapboxLayer is a layout-level overlay rendered beneath the trace stack.
type MapboxLayer struct {
	SourceType string     `json:"sourcetype"`
	Source     any        `json:"source"`
	Type       string     `json:"type"`
	Color      string     `json:"color,omitempty"`
	Line       *LayerLine `json:"line,omitempty"`
}

// LayerLine styles a line overlay.
type LayerLine struct {
	Width float64 `json:"width,omitempty"`
}

// Margin is the figure margin. Zeros must serialize, so no omitempty.
type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	T int `json:"t"`
	B int `json:"b"`
}

// Legend places and titles the legend block.
type Legend struct {
	Title       *LegendTitle `json:"title,omitempty"`
	Orientation string       `json:"orientation,omitempty"`
	X           float64      `json:"x"`
	Y           float64      `json:"y"`
	XAnchor     string       `json:"xanchor,omitempty"`
	YAnchor     string       `json:"yanchor,omitempty"`
}

// LegendTitle is the legend title text.
type LegendTitle struct {
	Text string `json:"text,omitempty"`
}

// Bool returns a pointer for the optional boolean fields.
func Bool(v bool) *bool { return &v }

// NullCoords is the coordinate list of a legend-only stub trace.
func NullCoords() any { return []any{nil} }

// JSON marshals the figure.
func (f *Figure) JSON() ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, eris.Wrap(err, "plotly: marshal figure")
	}
	return data, nil
}
