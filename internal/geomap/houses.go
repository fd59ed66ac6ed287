package geomap

import (
	"fmt"
	"math"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/housing-eda/internal/encode"
	"github.com/sells-group/housing-eda/internal/frame"
)

// Default house layer configuration.
const (
	DefaultHousePriceColumn    = "price"
	DefaultHouseQualityColumn  = "house_quality"
	DefaultHouseBedroomsColumn = "bedrooms"
	DefaultHouseLatColumn      = "lat"
	DefaultHouseLonColumn      = "long"
	DefaultHouseColor          = "blue"
	DefaultHouseLegend         = "Houses \ncheap (small) to expensive (large)"
)

// HouseOptions overrides the column names and styling of the house layer.
// Zero values fall back to the defaults above.
type HouseOptions struct {
	PriceColumn    string
	QualityColumn  string
	BedroomsColumn string
	LatColumn      string
	LonColumn      string
	Color          string
	Legend         string
}

func (o HouseOptions) withDefaults() HouseOptions {
	if o.PriceColumn == "" {
		o.PriceColumn = DefaultHousePriceColumn
	}
	if o.QualityColumn == "" {
		o.QualityColumn = DefaultHouseQualityColumn
	}
	if o.BedroomsColumn == "" {
		o.BedroomsColumn = DefaultHouseBedroomsColumn
	}
	if o.LatColumn == "" {
		o.LatColumn = DefaultHouseLatColumn
	}
	if o.LonColumn == "" {
		o.LonColumn = DefaultHouseLonColumn
	}
	if o.Color == "" {
		o.Color = DefaultHouseColor
	}
	if o.Legend == "" {
		o.Legend = DefaultHouseLegend
	}
	return o
}

// AddHouses appends one point-marker layer of houses: marker size encodes
// price, color is fixed, hover text carries price, quality, and bedrooms.
// On any missing column the canvas is left untouched.
func AddHouses(c *Canvas, ds *frame.Dataset, opts HouseOptions) error {
	o := opts.withDefaults()

	if err := requireColumns(ds, o.PriceColumn, o.QualityColumn, o.BedroomsColumn, o.LatColumn, o.LonColumn); err != nil {
		return err
	}

	prices, err := ds.Numeric(o.PriceColumn)
	if err != nil {
		return eris.Wrap(err, "geomap: house prices")
	}
	lats, err := ds.Numeric(o.LatColumn)
	if err != nil {
		return eris.Wrap(err, "geomap: house latitudes")
	}
	lons, err := ds.Numeric(o.LonColumn)
	if err != nil {
		return eris.Wrap(err, "geomap: house longitudes")
	}
	qualities, err := ds.Strings(o.QualityColumn)
	if err != nil {
		return eris.Wrap(err, "geomap: house qualities")
	}
	bedrooms, err := ds.Strings(o.BedroomsColumn)
	if err != nil {
		return eris.Wrap(err, "geomap: house bedrooms")
	}

	sizes, err := encode.MarkerSizes(prices)
	if err != nil {
		return eris.Wrap(err, "geomap: house marker sizes")
	}

	hover := make([]string, ds.Len())
	for i := range hover {
		hover[i] = fmt.Sprintf("Price: %s$\nQuality: %s\nBedrooms: %s",
			intText(prices[i]), qualities[i], bedrooms[i])
	}

	c.appendLayer(Layer{
		Kind:   KindPointMarker,
		Lats:   lats,
		Lons:   lons,
		Hover:  hover,
		Marker: Marker{Sizes: sizes, Color: o.Color},
		Legend: &LegendEntry{Name: o.Legend, Color: o.Color},
	})
	return nil
}

// intText renders a price as a whole number, "" when missing.
func intText(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatInt(int64(v), 10)
}
