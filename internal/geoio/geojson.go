// Package geoio loads the boundary inputs for map composition: GeoJSON
// feature collections and shapefiles converted to them.
package geoio

import (
	"os"
	"strconv"

	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
)

// LoadGeoJSON reads a GeoJSON FeatureCollection from disk.
func LoadGeoJSON(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geoio: read %s", path)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, eris.Wrapf(err, "geoio: parse %s", path)
	}
	return fc, nil
}

// Collection wraps a FeatureCollection with an index on one join property,
// e.g. the ZCTA5CE10 zipcode field of a census boundary file. Read-only.
type Collection struct {
	fc    *geojson.FeatureCollection
	prop  string
	index map[string]*geojson.Feature
	keys  []string
}

// NewCollection indexes the features by the given join property. Features
// without the property are excluded from the index (they still render as
// geometry, they just cannot be joined). On duplicate keys the first
// feature wins.
func NewCollection(fc *geojson.FeatureCollection, joinProperty string) *Collection {
	c := &Collection{
		fc:    fc,
		prop:  joinProperty,
		index: make(map[string]*geojson.Feature),
	}
	for _, feat := range fc.Features {
		v, ok := feat.Properties[joinProperty]
		if !ok {
			continue
		}
		key := propString(v)
		if key == "" {
			continue
		}
		if _, dup := c.index[key]; dup {
			continue
		}
		c.index[key] = feat
		c.keys = append(c.keys, key)
	}
	return c
}

// JoinProperty returns the property name the index is keyed on.
func (c *Collection) JoinProperty() string { return c.prop }

// FeatureCollection returns the underlying collection.
func (c *Collection) FeatureCollection() *geojson.FeatureCollection { return c.fc }

// Keys returns the indexed join keys in feature order.
func (c *Collection) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Has reports whether a feature is indexed under the given key.
func (c *Collection) Has(key string) bool {
	_, ok := c.index[key]
	return ok
}

// Feature returns the feature indexed under the given key, or nil.
func (c *Collection) Feature(key string) *geojson.Feature {
	return c.index[key]
}

// Len returns the number of indexed features.
func (c *Collection) Len() int { return len(c.index) }

// propString renders a GeoJSON property value as a join key. JSON numbers
// arrive as float64; integral ones must match their text form ("98001").
func propString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
