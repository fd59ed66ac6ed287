package geomap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRegions(t *testing.T) {
	c := NewCanvas()
	require.NoError(t, AddRegions(c, regionDataset(t), boundaryCollection(t), RegionOptions{}))

	require.Equal(t, 1, c.LayerCount())
	l := c.Layers()[0]

	assert.Equal(t, KindChoroplethRegion, l.Kind)
	require.NotNil(t, l.Choropleth)
	assert.Equal(t, "Hot", l.Choropleth.Colorscale)
	assert.Equal(t, 0.4, l.Choropleth.Opacity)
	assert.Equal(t, "properties.ZCTA5CE10", l.Choropleth.FeatureIDKey)
	require.NotNil(t, l.Legend)
	assert.Equal(t, DefaultRegionLegend, l.Legend.Name)
}

func TestAddRegions_UnmatchedKeysAreDropped(t *testing.T) {
	// The boundary collection only carries 98001; 98002 must contribute
	// no renderable region, and the build must not fail.
	c := NewCanvas()
	require.NoError(t, AddRegions(c, regionDataset(t), boundaryCollection(t), RegionOptions{}))

	ch := c.Layers()[0].Choropleth
	assert.Equal(t, 1, ch.MatchedRegions())
	assert.Equal(t, []string{"98001"}, ch.Keys)
	assert.Equal(t, []float64{6.5}, ch.Values)
}

func TestAddRegions_HoverText(t *testing.T) {
	c := NewCanvas()
	require.NoError(t, AddRegions(c, regionDataset(t), boundaryCollection(t), RegionOptions{}))

	hover := c.Layers()[0].Hover
	require.Len(t, hover, 1)
	assert.Equal(t, "Zipcode: 98001\nQuality: 6.5", hover[0])
}

func TestAddRegions_MissingColumn(t *testing.T) {
	required := []string{"zipcode", "house_quality"}

	for _, col := range required {
		t.Run(col, func(t *testing.T) {
			c := NewCanvas()
			err := AddRegions(c, dropColumn(t, regionDataset(t), col), boundaryCollection(t), RegionOptions{})

			var missing *MissingColumnError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, col, missing.Column)
			assert.Equal(t, 0, c.LayerCount())
		})
	}
}

func TestAddRegions_NilCollection(t *testing.T) {
	c := NewCanvas()
	err := AddRegions(c, regionDataset(t), nil, RegionOptions{})
	require.Error(t, err)
	assert.Equal(t, 0, c.LayerCount())
}

func TestAddRegions_ColumnOverrides(t *testing.T) {
	ds := regionDataset(t)
	c := NewCanvas()

	err := AddRegions(c, ds, boundaryCollection(t), RegionOptions{JoinColumn: "zip"})
	var missing *MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "zip", missing.Column)
	assert.Equal(t, 0, c.LayerCount())
}
