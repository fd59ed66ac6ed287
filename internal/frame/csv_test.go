package frame

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const housesCSV = `price,house_quality,bedrooms,lat,long,zipcode
221900,7,3,47.5112,-122.257,98178
538000,6,3,47.721,-122.319,98125
180000,8,2,47.7379,-122.233,98028
`

func TestReadCSV(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader(housesCSV))
	require.NoError(t, err)

	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, []string{"price", "house_quality", "bedrooms", "lat", "long", "zipcode"}, ds.Columns())

	prices, err := ds.Numeric("price")
	require.NoError(t, err)
	assert.Equal(t, []float64{221900, 538000, 180000}, prices)

	// Zipcodes are digits, so they sniff numeric; display still round-trips.
	zips, err := ds.Strings("zipcode")
	require.NoError(t, err)
	assert.Equal(t, []string{"98178", "98125", "98028"}, zips)
}

func TestReadCSV_TextColumn(t *testing.T) {
	in := "name,score\nNorth High,4\nSchool-West Elementary,7\n"
	ds, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)

	kind, err := ds.ColumnKind("name")
	require.NoError(t, err)
	assert.Equal(t, KindString, kind)

	kind, err = ds.ColumnKind("score")
	require.NoError(t, err)
	assert.Equal(t, KindNumeric, kind)
}

func TestReadCSV_MissingCellsBecomeNaN(t *testing.T) {
	in := "price,quality\n100,7\n,4\n300,\n"
	ds, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)

	prices, err := ds.Numeric("price")
	require.NoError(t, err)
	assert.Equal(t, 100.0, prices[0])
	assert.True(t, math.IsNaN(prices[1]))
	assert.Equal(t, 300.0, prices[2])
}

func TestReadCSV_MixedColumnStaysText(t *testing.T) {
	in := "code\n123\nabc\n"
	ds, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)

	kind, err := ds.ColumnKind("code")
	require.NoError(t, err)
	assert.Equal(t, KindString, kind)
}

func TestReadCSV_AllEmptyColumnStaysText(t *testing.T) {
	in := "a,b\n1,\n2,\n"
	ds, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)

	kind, err := ds.ColumnKind("b")
	require.NoError(t, err)
	assert.Equal(t, KindString, kind)
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "empty input", in: ""},
		{name: "ragged row", in: "a,b\n1,2\n3\n"},
		{name: "duplicate header", in: "a,a\n1,2\n"},
		{name: "blank header name", in: "a, \n1,2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.in))
			assert.Error(t, err)
		})
	}
}
