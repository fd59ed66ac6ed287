package geomap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddSchools(t *testing.T) {
	c := NewCanvas()
	require.NoError(t, AddSchools(c, schoolDataset(t), SchoolOptions{}))

	require.Equal(t, 1, c.LayerCount())
	l := c.Layers()[0]

	assert.Equal(t, KindPointMarker, l.Kind)
	assert.Equal(t, DefaultSchoolSize, l.Marker.Size)
	assert.Equal(t, "darkred", l.Marker.Color)
	assert.Equal(t, DefaultSchoolOpacity, l.Marker.Opacity)
	assert.Equal(t, "circle", l.Marker.Symbol)
	require.NotNil(t, l.Legend)
	assert.Equal(t, "Schools", l.Legend.Name)
}

func TestAddSchools_HoverStripsSchoolPrefix(t *testing.T) {
	c := NewCanvas()
	require.NoError(t, AddSchools(c, schoolDataset(t), SchoolOptions{}))

	hover := c.Layers()[0].Hover
	assert.Equal(t, "North High\nPublic", hover[0])
	// Case-insensitive strip plus trailing-space trim.
	assert.Equal(t, "West Elementary\nPrivate", hover[1])
}

func TestCleanSchoolDesc(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{name: "exact prefix", in: "School-Elementary", expected: "Elementary"},
		{name: "lowercase prefix", in: "school-High", expected: "High"},
		{name: "mixed case", in: "SCHOOL-Middle", expected: "Middle"},
		{name: "mid-string occurrence", in: "Old School-House", expected: "Old House"},
		{name: "no prefix", in: "Community Center", expected: "Community Center"},
		{name: "surrounding space", in: "  School-Private  ", expected: "Private"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanSchoolDesc(tt.in))
		})
	}
}

func TestAddSchools_MissingColumn(t *testing.T) {
	required := []string{"LAT_CEN", "LONG_CEN", "ABB_NAME", "FEATUREDES"}

	for _, col := range required {
		t.Run(col, func(t *testing.T) {
			c := NewCanvas()
			err := AddSchools(c, dropColumn(t, schoolDataset(t), col), SchoolOptions{})

			var missing *MissingColumnError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, col, missing.Column)
			assert.Equal(t, 0, c.LayerCount())
		})
	}
}

func TestAddSchools_ColumnOverrides(t *testing.T) {
	ds := frameWithRenamedSchoolColumns(t)
	c := NewCanvas()

	opts := SchoolOptions{
		LatColumn:  "latitude",
		LonColumn:  "longitude",
		NameColumn: "school",
		DescColumn: "kind",
	}
	require.NoError(t, AddSchools(c, ds, opts))
	assert.Equal(t, 1, c.LayerCount())
}
