package geomap

import (
	"testing"

	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/housing-eda/internal/frame"
	"github.com/sells-group/housing-eda/internal/geoio"
)

func houseDataset(t *testing.T) *frame.Dataset {
	t.Helper()
	ds := frame.New()
	require.NoError(t, ds.AddNumeric("price", []float64{100, 200, 300}))
	require.NoError(t, ds.AddNumeric("house_quality", []float64{7, 6, 8}))
	require.NoError(t, ds.AddNumeric("bedrooms", []float64{3, 3, 2}))
	require.NoError(t, ds.AddNumeric("lat", []float64{47.51, 47.72, 47.73}))
	require.NoError(t, ds.AddNumeric("long", []float64{-122.25, -122.31, -122.23}))
	return ds
}

func schoolDataset(t *testing.T) *frame.Dataset {
	t.Helper()
	ds := frame.New()
	require.NoError(t, ds.AddNumeric("LAT_CEN", []float64{47.51, 47.72}))
	require.NoError(t, ds.AddNumeric("LONG_CEN", []float64{-122.25, -122.31}))
	require.NoError(t, ds.AddString("ABB_NAME", []string{"North High", "West Elementary"}))
	require.NoError(t, ds.AddString("FEATUREDES", []string{"School-Public", "school-Private "}))
	return ds
}

func regionDataset(t *testing.T) *frame.Dataset {
	t.Helper()
	ds := frame.New()
	require.NoError(t, ds.AddString("zipcode", []string{"98001", "98002"}))
	require.NoError(t, ds.AddNumeric("house_quality", []float64{6.5, 7.25}))
	return ds
}

const boundaryJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"ZCTA5CE10": "98001"},
      "geometry": {"type": "Polygon", "coordinates": [[[-122.3,47.3],[-122.3,47.4],[-122.2,47.4],[-122.2,47.3],[-122.3,47.3]]]}
    }
  ]
}`

const parksJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"NAME": "Green Lake"},
      "geometry": {"type": "Polygon", "coordinates": [[[-122.34,47.67],[-122.34,47.68],[-122.33,47.68],[-122.33,47.67],[-122.34,47.67]]]}
    }
  ]
}`

func boundaryCollection(t *testing.T) *geoio.Collection {
	t.Helper()
	fc, err := geojson.UnmarshalFeatureCollection([]byte(boundaryJSON))
	require.NoError(t, err)
	return geoio.NewCollection(fc, "ZCTA5CE10")
}

func parkGeometry(t *testing.T) *geojson.FeatureCollection {
	t.Helper()
	fc, err := geojson.UnmarshalFeatureCollection([]byte(parksJSON))
	require.NoError(t, err)
	return fc
}

func frameWithRenamedSchoolColumns(t *testing.T) *frame.Dataset {
	t.Helper()
	ds := frame.New()
	require.NoError(t, ds.AddNumeric("latitude", []float64{47.51}))
	require.NoError(t, ds.AddNumeric("longitude", []float64{-122.25}))
	require.NoError(t, ds.AddString("school", []string{"North High"}))
	require.NoError(t, ds.AddString("kind", []string{"School-Public"}))
	return ds
}

func dropColumn(t *testing.T, ds *frame.Dataset, skip string) *frame.Dataset {
	t.Helper()
	out := frame.New()
	for _, name := range ds.Columns() {
		if name == skip {
			continue
		}
		kind, err := ds.ColumnKind(name)
		require.NoError(t, err)
		if kind == frame.KindNumeric {
			vals, err := ds.Numeric(name)
			require.NoError(t, err)
			require.NoError(t, out.AddNumeric(name, vals))
			continue
		}
		vals, err := ds.Strings(name)
		require.NoError(t, err)
		require.NoError(t, out.AddString(name, vals))
	}
	return out
}
