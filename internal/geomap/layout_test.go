package geomap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalizeLayout_Defaults(t *testing.T) {
	c := NewCanvas()
	FinalizeLayout(c, LayoutOptions{})

	require.True(t, c.Finalized())
	lay := c.Layout()
	assert.Equal(t, "open-street-map", lay.Style)
	assert.Equal(t, 9.0, lay.Zoom)
	assert.Equal(t, 47.3464, lay.CenterLat)
	assert.Equal(t, -121.9861, lay.CenterLon)
	assert.Equal(t, 0, lay.Margin)
	assert.Equal(t, "Legend", lay.LegendTitle)
	assert.Equal(t, 0.01, lay.LegendX)
	assert.Equal(t, 0.99, lay.LegendY)
	assert.True(t, lay.Vertical)
	assert.Equal(t, 1000, lay.Width)
	assert.Equal(t, 1000, lay.Height)
}

func TestFinalizeLayout_Overrides(t *testing.T) {
	c := NewCanvas()
	FinalizeLayout(c, LayoutOptions{
		Style:     "carto-positron",
		Zoom:      11,
		CenterLat: 47.6,
		CenterLon: -122.33,
		Width:     800,
		Height:    600,
	})

	lay := c.Layout()
	assert.Equal(t, "carto-positron", lay.Style)
	assert.Equal(t, 11.0, lay.Zoom)
	assert.Equal(t, 47.6, lay.CenterLat)
	assert.Equal(t, -122.33, lay.CenterLon)
	assert.Equal(t, 800, lay.Width)
	assert.Equal(t, 600, lay.Height)
}

func TestFinalizeLayout_Idempotent(t *testing.T) {
	c := NewCanvas()
	FinalizeLayout(c, LayoutOptions{Zoom: 12})
	first := c.Layout()

	FinalizeLayout(c, LayoutOptions{Zoom: 12})
	assert.Equal(t, first, c.Layout())
	assert.True(t, c.Finalized())
}

func TestFinalizeLayout_LastCallWins(t *testing.T) {
	c := NewCanvas()
	FinalizeLayout(c, LayoutOptions{Zoom: 12, Style: "carto-positron"})
	FinalizeLayout(c, LayoutOptions{})

	lay := c.Layout()
	assert.Equal(t, 9.0, lay.Zoom)
	assert.Equal(t, "open-street-map", lay.Style)
}
