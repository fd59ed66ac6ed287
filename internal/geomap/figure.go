package geomap

import (
	"strings"

	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"

	"github.com/sells-group/housing-eda/pkg/plotly"
)

// Figure translates a finalized canvas into a plotly figure document.
// Canvas layer order becomes trace order, so stacking and hover priority
// survive the translation. Newlines in hover text and legend names become
// <br> here, at the rendering boundary and nowhere earlier.
func Figure(c *Canvas) (*plotly.Figure, error) {
	if !c.Finalized() {
		return nil, eris.New("geomap: canvas not finalized")
	}

	fig := &plotly.Figure{}
	for _, l := range c.Layers() {
		switch l.Kind {
		case KindPointMarker:
			fig.Data = append(fig.Data, markerTrace(l))
		case KindChoroplethRegion:
			fig.Data = append(fig.Data, choroplethTrace(l))
		case KindPolygonOutline:
			fig.Data = append(fig.Data, outlineStubTrace(l))
		default:
			return nil, eris.Errorf("geomap: unknown layer kind %d", l.Kind)
		}
	}
	fig.Layout = figureLayout(c)
	return fig, nil
}

func markerTrace(l Layer) plotly.Trace {
	m := &plotly.Marker{
		Color:   l.Marker.Color,
		Opacity: l.Marker.Opacity,
		Symbol:  l.Marker.Symbol,
	}
	if l.Marker.Sizes != nil {
		m.Size = l.Marker.Sizes
	} else if l.Marker.Size > 0 {
		m.Size = l.Marker.Size
	}

	t := plotly.Trace{
		Type:       plotly.TypeScatterMapbox,
		Mode:       "markers",
		Lat:        l.Lats,
		Lon:        l.Lons,
		Text:       hoverText(l.Hover),
		HoverInfo:  "text",
		Marker:     m,
		ShowLegend: plotly.Bool(true),
	}
	applyLegend(&t, l.Legend)
	return t
}

func choroplethTrace(l Layer) plotly.Trace {
	ch := l.Choropleth
	t := plotly.Trace{
		Type:         plotly.TypeChoroplethMapbox,
		GeoJSON:      matchedFeatures(ch),
		Locations:    ch.Keys,
		Z:            ch.Values,
		Colorscale:   ch.Colorscale,
		ShowScale:    plotly.Bool(false),
		FeatureIDKey: ch.FeatureIDKey,
		Text:         hoverText(l.Hover),
		HoverInfo:    "text",
		Marker:       &plotly.Marker{Opacity: ch.Opacity},
		ShowLegend:   plotly.Bool(true),
	}
	applyLegend(&t, l.Legend)
	return t
}

// outlineStubTrace emits the legend-only line trace with null coordinates;
// the outline geometry itself travels as a mapbox layout layer.
func outlineStubTrace(l Layer) plotly.Trace {
	t := plotly.Trace{
		Type:       plotly.TypeScatterMapbox,
		Mode:       "lines",
		Lat:        plotly.NullCoords(),
		Lon:        plotly.NullCoords(),
		Line:       &plotly.Line{Color: l.LineColor, Width: l.LineWidth},
		ShowLegend: plotly.Bool(true),
	}
	applyLegend(&t, l.Legend)
	return t
}

func figureLayout(c *Canvas) plotly.Layout {
	lay := c.Layout()

	orientation := "h"
	if lay.Vertical {
		orientation = "v"
	}

	out := plotly.Layout{
		Mapbox: plotly.Mapbox{
			Style:  lay.Style,
			Center: plotly.Center{Lat: lay.CenterLat, Lon: lay.CenterLon},
			Zoom:   lay.Zoom,
		},
		Margin: plotly.Margin{L: lay.Margin, R: lay.Margin, T: lay.Margin, B: lay.Margin},
		Legend: &plotly.Legend{
			Title:       &plotly.LegendTitle{Text: lay.LegendTitle},
			Orientation: orientation,
			X:           lay.LegendX,
			Y:           lay.LegendY,
			XAnchor:     "left",
			YAnchor:     "top",
		},
		Width:  lay.Width,
		Height: lay.Height,
	}

	for _, o := range c.Overlays() {
		out.Mapbox.Layers = append(out.Mapbox.Layers, plotly.MapboxLayer{
			SourceType: "geojson",
			Source:     o.Geometry,
			Type:       "line",
			Color:      o.Color,
			Line:       &plotly.LayerLine{Width: o.Width},
		})
	}
	return out
}

// matchedFeatures narrows the boundary payload to the features the layer
// actually joins, keeping the emitted document small.
func matchedFeatures(ch *Choropleth) *geojson.FeatureCollection {
	out := geojson.NewFeatureCollection()
	for _, key := range ch.Keys {
		if f := ch.Collection.Feature(key); f != nil {
			out.Append(f)
		}
	}
	return out
}

func applyLegend(t *plotly.Trace, entry *LegendEntry) {
	if entry == nil {
		t.ShowLegend = plotly.Bool(false)
		return
	}
	t.Name = br(entry.Name)
}

func hoverText(hover []string) []string {
	if hover == nil {
		return nil
	}
	out := make([]string, len(hover))
	for i, h := range hover {
		out[i] = br(h)
	}
	return out
}

func br(s string) string {
	return strings.ReplaceAll(s, "\n", "<br>")
}
