package geomap

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/housing-eda/internal/frame"
)

// Default school layer configuration. The column names match King County
// school facility exports.
const (
	DefaultSchoolLatColumn  = "LAT_CEN"
	DefaultSchoolLonColumn  = "LONG_CEN"
	DefaultSchoolNameColumn = "ABB_NAME"
	DefaultSchoolDescColumn = "FEATUREDES"
	DefaultSchoolColor      = "darkred"
	DefaultSchoolSize       = 4.0
	DefaultSchoolOpacity    = 0.8
	DefaultSchoolLegend     = "Schools"
)

// schoolPrefix strips the redundant "School-" tag from facility
// descriptions ("School-Elementary" renders as "Elementary").
var schoolPrefix = regexp.MustCompile(`(?i)school-`)

// SchoolOptions overrides the column names and styling of the school layer.
type SchoolOptions struct {
	LatColumn  string
	LonColumn  string
	NameColumn string
	DescColumn string
	Color      string
	Size       float64
	Opacity    float64
	Legend     string
}

func (o SchoolOptions) withDefaults() SchoolOptions {
	if o.LatColumn == "" {
		o.LatColumn = DefaultSchoolLatColumn
	}
	if o.LonColumn == "" {
		o.LonColumn = DefaultSchoolLonColumn
	}
	if o.NameColumn == "" {
		o.NameColumn = DefaultSchoolNameColumn
	}
	if o.DescColumn == "" {
		o.DescColumn = DefaultSchoolDescColumn
	}
	if o.Color == "" {
		o.Color = DefaultSchoolColor
	}
	if o.Size == 0 {
		o.Size = DefaultSchoolSize
	}
	if o.Opacity == 0 {
		o.Opacity = DefaultSchoolOpacity
	}
	if o.Legend == "" {
		o.Legend = DefaultSchoolLegend
	}
	return o
}

// AddSchools appends one point-marker layer of schools: fixed small
// markers, hover text of name plus cleaned description.
func AddSchools(c *Canvas, ds *frame.Dataset, opts SchoolOptions) error {
	o := opts.withDefaults()

	if err := requireColumns(ds, o.LatColumn, o.LonColumn, o.NameColumn, o.DescColumn); err != nil {
		return err
	}

	lats, err := ds.Numeric(o.LatColumn)
	if err != nil {
		return eris.Wrap(err, "geomap: school latitudes")
	}
	lons, err := ds.Numeric(o.LonColumn)
	if err != nil {
		return eris.Wrap(err, "geomap: school longitudes")
	}
	names, err := ds.Strings(o.NameColumn)
	if err != nil {
		return eris.Wrap(err, "geomap: school names")
	}
	descs, err := ds.Strings(o.DescColumn)
	if err != nil {
		return eris.Wrap(err, "geomap: school descriptions")
	}

	hover := make([]string, ds.Len())
	for i := range hover {
		hover[i] = names[i] + "\n" + cleanSchoolDesc(descs[i])
	}

	c.appendLayer(Layer{
		Kind:  KindPointMarker,
		Lats:  lats,
		Lons:  lons,
		Hover: hover,
		Marker: Marker{
			Size:    o.Size,
			Color:   o.Color,
			Opacity: o.Opacity,
			Symbol:  "circle",
		},
		Legend: &LegendEntry{Name: o.Legend, Color: o.Color},
	})
	return nil
}

func cleanSchoolDesc(desc string) string {
	return strings.TrimSpace(schoolPrefix.ReplaceAllString(desc, ""))
}
