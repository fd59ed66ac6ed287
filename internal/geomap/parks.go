package geomap

import (
	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
)

// Default park outline configuration. The legend line renders wider than
// the outlines themselves so the entry stays readable.
const (
	DefaultParkColor           = "green"
	DefaultParkLegendLineWidth = 3.0
	DefaultParkOutlineWidth    = 1.5
	DefaultParkLegend          = "Park outlines"
)

// ParkOptions overrides the styling of the park outline layer.
type ParkOptions struct {
	Color           string
	LegendLineWidth float64
	OutlineWidth    float64
	Legend          string
}

func (o ParkOptions) withDefaults() ParkOptions {
	if o.Color == "" {
		o.Color = DefaultParkColor
	}
	if o.LegendLineWidth == 0 {
		o.LegendLineWidth = DefaultParkLegendLineWidth
	}
	if o.OutlineWidth == 0 {
		o.OutlineWidth = DefaultParkOutlineWidth
	}
	if o.Legend == "" {
		o.Legend = DefaultParkLegend
	}
	return o
}

// AddParkOutlines appends the legend-bearing outline layer and registers
// the geometry as a background overlay: one layer plus one overlay per
// call. Outline geometry renders beneath the marker traces, so this runs
// after the region layer and before the point layers. Layer and overlay
// share name and color.
func AddParkOutlines(c *Canvas, fc *geojson.FeatureCollection, opts ParkOptions) error {
	if fc == nil {
		return eris.New("geomap: nil park geometry")
	}
	o := opts.withDefaults()

	c.appendLayer(Layer{
		Kind:      KindPolygonOutline,
		LineColor: o.Color,
		LineWidth: o.LegendLineWidth,
		Legend:    &LegendEntry{Name: o.Legend, Color: o.Color},
	})
	c.appendOverlay(Overlay{
		Geometry: fc,
		Color:    o.Color,
		Width:    o.OutlineWidth,
	})
	return nil
}
