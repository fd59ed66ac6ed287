package geomap

import (
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/housing-eda/internal/frame"
	"github.com/sells-group/housing-eda/internal/geoio"
)

// Default region layer configuration.
const (
	DefaultRegionJoinColumn  = "zipcode"
	DefaultRegionValueColumn = "house_quality"
	DefaultRegionColorscale  = "Hot"
	DefaultRegionOpacity     = 0.4
	DefaultRegionLegend      = "Average house quality \nlow (dark red) to high (bright yellow)"
)

// RegionOptions overrides the column names and styling of the choropleth
// layer.
type RegionOptions struct {
	JoinColumn  string
	ValueColumn string
	Colorscale  string
	Opacity     float64
	Legend      string
}

func (o RegionOptions) withDefaults() RegionOptions {
	if o.JoinColumn == "" {
		o.JoinColumn = DefaultRegionJoinColumn
	}
	if o.ValueColumn == "" {
		o.ValueColumn = DefaultRegionValueColumn
	}
	if o.Colorscale == "" {
		o.Colorscale = DefaultRegionColorscale
	}
	if o.Opacity == 0 {
		o.Opacity = DefaultRegionOpacity
	}
	if o.Legend == "" {
		o.Legend = DefaultRegionLegend
	}
	return o
}

// AddRegions appends one choropleth layer: boundary polygons from the
// collection, colored by the value column through the colorscale, joined on
// the join column. Color intensity maps the raw values, not a normalized
// range. The numeric colorbar stays hidden; meaning travels through the
// legend entry. Rows without a matching boundary are dropped with a warning
// rather than failing the build.
func AddRegions(c *Canvas, ds *frame.Dataset, col *geoio.Collection, opts RegionOptions) error {
	if col == nil {
		return eris.New("geomap: nil boundary collection")
	}
	o := opts.withDefaults()

	if err := requireColumns(ds, o.JoinColumn, o.ValueColumn); err != nil {
		return err
	}

	keys, err := ds.Strings(o.JoinColumn)
	if err != nil {
		return eris.Wrap(err, "geomap: region join keys")
	}
	values, err := ds.Numeric(o.ValueColumn)
	if err != nil {
		return eris.Wrap(err, "geomap: region values")
	}
	valueText, err := ds.Strings(o.ValueColumn)
	if err != nil {
		return eris.Wrap(err, "geomap: region value text")
	}

	matchedKeys := make([]string, 0, len(keys))
	matchedValues := make([]float64, 0, len(keys))
	hover := make([]string, 0, len(keys))
	unmatched := 0
	for i, key := range keys {
		if !col.Has(key) {
			unmatched++
			continue
		}
		matchedKeys = append(matchedKeys, key)
		matchedValues = append(matchedValues, values[i])
		hover = append(hover, fmt.Sprintf("Zipcode: %s\nQuality: %s", key, valueText[i]))
	}

	if unmatched > 0 {
		zap.L().Warn("geomap: region rows without boundary match",
			zap.String("column", o.JoinColumn),
			zap.Int("unmatched", unmatched),
			zap.Int("matched", len(matchedKeys)),
		)
	}

	c.appendLayer(Layer{
		Kind:  KindChoroplethRegion,
		Hover: hover,
		Choropleth: &Choropleth{
			Collection:   col,
			Keys:         matchedKeys,
			Values:       matchedValues,
			Colorscale:   o.Colorscale,
			Opacity:      o.Opacity,
			FeatureIDKey: "properties." + col.JoinProperty(),
		},
		Legend: &LegendEntry{Name: o.Legend},
	})
	return nil
}
