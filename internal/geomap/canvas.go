// Package geomap composes layered housing maps: point markers, choropleth
// regions, and polygon outlines stacked on one shared canvas.
package geomap

import (
	"github.com/paulmach/orb/geojson"

	"github.com/sells-group/housing-eda/internal/geoio"
)

// LayerKind discriminates the renderable layer types.
type LayerKind int

const (
	// KindPointMarker renders per-point markers with hover text.
	KindPointMarker LayerKind = iota
	// KindChoroplethRegion renders value-colored boundary polygons.
	KindChoroplethRegion
	// KindPolygonOutline renders the legend-bearing unit of an outline
	// overlay; the geometry itself travels as an Overlay.
	KindPolygonOutline
)

func (k LayerKind) String() string {
	switch k {
	case KindPointMarker:
		return "point-marker"
	case KindChoroplethRegion:
		return "choropleth-region"
	case KindPolygonOutline:
		return "polygon-outline"
	default:
		return "unknown"
	}
}

// LegendEntry registers one named, colored entry in the map legend. Legend
// registration is decoupled from geometry: any layer kind may carry one,
// including layers whose geometry renders through another mechanism.
type LegendEntry struct {
	Name  string
	Color string
}

// Marker styles a point layer. Sizes carries per-point pixel sizes; when
// nil, Size applies uniformly.
type Marker struct {
	Sizes   []float64
	Size    float64
	Color   string
	Opacity float64
	Symbol  string
}

// Choropleth is the region-fill payload of a KindChoroplethRegion layer.
// Keys and Values hold only the rows whose join key matched a boundary
// feature; unmatched rows are dropped at build time.
type Choropleth struct {
	Collection   *geoio.Collection
	Keys         []string
	Values       []float64
	Colorscale   string
	Opacity      float64
	FeatureIDKey string
}

// MatchedRegions returns how many dataset rows found a boundary feature.
func (ch *Choropleth) MatchedRegions() int { return len(ch.Keys) }

// Layer is one renderable unit. Built and owned by its builder until
// appended; never mutated after insertion.
type Layer struct {
	Kind LayerKind

	// Point geometry and per-point hover text (KindPointMarker); hover is
	// also set per matched region for choropleths.
	Lats  []float64
	Lons  []float64
	Hover []string

	Marker Marker

	// Line style of the legend-bearing outline unit (KindPolygonOutline).
	LineColor string
	LineWidth float64

	Choropleth *Choropleth

	Legend *LegendEntry
}

// Overlay is a layout-level background overlay: outline geometry rendered
// beneath the interactive trace stack.
type Overlay struct {
	Geometry *geojson.FeatureCollection
	Color    string
	Width    float64
}

// Layout is the resolved global canvas configuration.
type Layout struct {
	Style       string
	Zoom        float64
	CenterLat   float64
	CenterLon   float64
	Margin      int
	LegendTitle string
	LegendX     float64
	LegendY     float64
	Vertical    bool
	Width       int
	Height      int
}

// Canvas accumulates layers, overlays, and layout for one visualization
// request. It is request-scoped and not safe for concurrent use; concurrent
// requests must each construct their own.
type Canvas struct {
	layers    []Layer
	overlays  []Overlay
	layout    Layout
	finalized bool
}

// NewCanvas returns an empty canvas.
func NewCanvas() *Canvas {
	return &Canvas{}
}

func (c *Canvas) appendLayer(l Layer) {
	c.layers = append(c.layers, l)
}

func (c *Canvas) appendOverlay(o Overlay) {
	c.overlays = append(c.overlays, o)
}

// LayerCount returns the number of appended layers.
func (c *Canvas) LayerCount() int { return len(c.layers) }

// OverlayCount returns the number of registered overlays.
func (c *Canvas) OverlayCount() int { return len(c.overlays) }

// Layers returns the layers in insertion order, which is render order.
// Callers must treat the result as read-only.
func (c *Canvas) Layers() []Layer { return c.layers }

// Overlays returns the registered overlays. Read-only.
func (c *Canvas) Overlays() []Overlay { return c.overlays }

// Layout returns the layout configuration; meaningful once Finalized.
func (c *Canvas) Layout() Layout { return c.layout }

// Finalized reports whether FinalizeLayout has run.
func (c *Canvas) Finalized() bool { return c.finalized }
