package raster

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/housing-eda/internal/frame"
	"github.com/sells-group/housing-eda/internal/geoio"
	"github.com/sells-group/housing-eda/internal/geomap"
)

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

func houseCanvas(t *testing.T) *geomap.Canvas {
	t.Helper()
	ds := frame.New()
	require.NoError(t, ds.AddNumeric("price", []float64{100, 300}))
	require.NoError(t, ds.AddNumeric("house_quality", []float64{7, 8}))
	require.NoError(t, ds.AddNumeric("bedrooms", []float64{3, 2}))
	require.NoError(t, ds.AddNumeric("lat", []float64{47.51, 47.52}))
	require.NoError(t, ds.AddNumeric("long", []float64{-122.25, -122.26}))

	c, err := geomap.Compose(geomap.ComposeRequest{
		Houses: ds,
		Layout: geomap.LayoutOptions{
			CenterLat: 47.51,
			CenterLon: -122.25,
			Width:     200,
			Height:    150,
		},
	})
	require.NoError(t, err)
	return c
}

func regionCanvas(t *testing.T) *geomap.Canvas {
	t.Helper()
	fc, err := geojson.UnmarshalFeatureCollection([]byte(boundaryJSON))
	require.NoError(t, err)

	ds := frame.New()
	require.NoError(t, ds.AddString("zipcode", []string{"98001"}))
	require.NoError(t, ds.AddNumeric("house_quality", []float64{6.5}))

	c, err := geomap.Compose(geomap.ComposeRequest{
		Regions:    ds,
		Boundaries: geoio.NewCollection(fc, "ZCTA5CE10"),
		Layout: geomap.LayoutOptions{
			CenterLat: 47.35,
			CenterLon: -122.25,
			Width:     200,
			Height:    200,
		},
	})
	require.NoError(t, err)
	return c
}

func TestExportPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.png")
	require.NoError(t, ExportPNG(houseCanvas(t), path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())
}

func TestExportPNG_RejectsOtherFormats(t *testing.T) {
	for _, name := range []string{"map.jpg", "map.svg", "map"} {
		t.Run(name, func(t *testing.T) {
			err := ExportPNG(houseCanvas(t), filepath.Join(t.TempDir(), name))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "only .png")
		})
	}
}

func TestExportPNG_RequiresFinalizedCanvas(t *testing.T) {
	err := ExportPNG(geomap.NewCanvas(), filepath.Join(t.TempDir(), "map.png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not finalized")
}

func TestRender_PaintsMarkerAtCenter(t *testing.T) {
	img, err := render(houseCanvas(t))
	require.NoError(t, err)

	// The first house sits on the layout center, so the image center pixel
	// lands inside its disc.
	r, g, b, _ := img.At(100, 75).RGBA()
	assert.Equal(t, uint32(0), r>>8)
	assert.Equal(t, uint32(0), g>>8)
	assert.Equal(t, uint32(255), b>>8)
}

func TestRender_LeavesBackgroundUntouched(t *testing.T) {
	img, err := render(houseCanvas(t))
	require.NoError(t, err)

	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(baseColor.R), r>>8)
	assert.Equal(t, uint32(baseColor.G), g>>8)
	assert.Equal(t, uint32(baseColor.B), b>>8)
}

func TestRender_FillsChoroplethRegion(t *testing.T) {
	img, err := render(regionCanvas(t))
	require.NoError(t, err)

	// The boundary polygon covers the layout center; the fill blends over
	// the base, so the pixel must differ from an untouched corner.
	cr, cg, cb, _ := img.At(100, 100).RGBA()
	br, bg, bb, _ := img.At(0, 0).RGBA()
	assert.NotEqual(t, [3]uint32{br, bg, bb}, [3]uint32{cr, cg, cb})

	// A single region normalizes to 0, the dark end of the Hot ramp.
	assert.Less(t, cr, br)
}
