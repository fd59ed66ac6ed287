package geoio

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	geomjson "github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/sells-group/housing-eda/internal/frame"
)

// ConvertShapefile reads a shapefile and converts it into a GeoJSON
// FeatureCollection. Every DBF attribute becomes a feature property; DBF
// text is Windows-1252, the usual encoding of census and county exports,
// and is decoded accordingly. Z and M variants are flattened to 2D.
// Records with unsupported or empty geometry are skipped.
func ConvertShapefile(shpPath string) (*geojson.FeatureCollection, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "geoio: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimRight(f.String(), "\x00")
	}

	decoder := charmap.Windows1252.NewDecoder()
	fc := geojson.NewFeatureCollection()
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()

		g, err := shapeGeometry(shape)
		if err != nil || g == nil {
			skipped++
			continue
		}

		feat := geojson.NewFeature(g)
		for i, name := range names {
			feat.Properties[name] = attributeValue(decoder, reader.Attribute(i))
		}
		fc.Append(feat)
	}

	if skipped > 0 {
		zap.L().Debug("geoio: skipped shapefile records",
			zap.String("path", shpPath),
			zap.Int("skipped", skipped),
		)
	}

	return fc, nil
}

// SchoolsFromShapefile reads a point shapefile into a Dataset: one column
// per DBF attribute plus lat/long columns derived from the point geometry
// when the attributes don't already carry them. School exports usually ship
// LAT_CEN/LONG_CEN attributes, which the school layer reads by default.
func SchoolsFromShapefile(shpPath string) (*frame.Dataset, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "geoio: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	header := make([]string, len(fields))
	for i, f := range fields {
		header[i] = strings.TrimRight(f.String(), "\x00")
	}

	addLat := !containsFold(header, "lat")
	addLon := !containsFold(header, "long")
	if addLat {
		header = append(header, "lat")
	}
	if addLon {
		header = append(header, "long")
	}

	decoder := charmap.Windows1252.NewDecoder()
	var rows [][]string
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()
		x, y, ok := pointCoords(shape)
		if !ok {
			skipped++
			continue
		}

		row := make([]string, 0, len(header))
		for i := range fields {
			row = append(row, attributeValue(decoder, reader.Attribute(i)))
		}
		if addLat {
			row = append(row, frame.FormatCell(y))
		}
		if addLon {
			row = append(row, frame.FormatCell(x))
		}
		rows = append(rows, row)
	}

	if skipped > 0 {
		zap.L().Debug("geoio: skipped non-point shapefile records",
			zap.String("path", shpPath),
			zap.Int("skipped", skipped),
		)
	}

	ds, err := frame.FromCells(header, rows)
	if err != nil {
		return nil, eris.Wrapf(err, "geoio: shapefile %s", shpPath)
	}
	return ds, nil
}

// shapeGeometry converts a go-shp shape to an orb geometry by way of
// go-geom and its GeoJSON encoding.
func shapeGeometry(shape shp.Shape) (orb.Geometry, error) {
	if shape == nil {
		return nil, nil
	}

	var g geom.T

	switch s := shape.(type) {
	case *shp.Point:
		g = geom.NewPointFlat(geom.XY, []float64{s.X, s.Y})
	case *shp.PointZ:
		g = geom.NewPointFlat(geom.XY, []float64{s.X, s.Y})
	case *shp.PointM:
		g = geom.NewPointFlat(geom.XY, []float64{s.X, s.Y})
	case *shp.PolyLine:
		g = multiLineString(s.Parts, s.Points)
	case *shp.PolyLineZ:
		g = multiLineString(s.Parts, s.Points)
	case *shp.PolyLineM:
		g = multiLineString(s.Parts, s.Points)
	case *shp.Polygon:
		g = multiPolygon(s.Parts, s.Points)
	case *shp.PolygonZ:
		g = multiPolygon(s.Parts, s.Points)
	case *shp.PolygonM:
		g = multiPolygon(s.Parts, s.Points)
	default:
		return nil, nil
	}

	if g == nil {
		return nil, nil
	}

	data, err := geomjson.Marshal(g)
	if err != nil {
		return nil, eris.Wrap(err, "geoio: encode geometry")
	}
	decoded, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, eris.Wrap(err, "geoio: decode geometry")
	}
	return decoded.Geometry(), nil
}

// pointCoords extracts coordinates from point-kind shapes.
func pointCoords(shape shp.Shape) (float64, float64, bool) {
	switch s := shape.(type) {
	case *shp.Point:
		return s.X, s.Y, true
	case *shp.PointZ:
		return s.X, s.Y, true
	case *shp.PointM:
		return s.X, s.Y, true
	default:
		return 0, 0, false
	}
}

// multiLineString assembles part-indexed shapefile points into a
// MultiLineString.
func multiLineString(parts []int32, points []shp.Point) geom.T {
	if len(parts) == 0 || len(points) == 0 {
		return nil
	}

	mls := geom.NewMultiLineString(geom.XY)
	for i := 0; i < len(parts); i++ {
		flat := partFlatCoords(parts, points, i)
		if len(flat) < 4 {
			continue
		}
		ls := geom.NewLineStringFlat(geom.XY, flat)
		if err := mls.Push(ls); err != nil {
			zap.L().Debug("geoio: skipping malformed linestring part", zap.Int("part", i), zap.Error(err))
		}
	}

	if mls.NumLineStrings() == 0 {
		return nil
	}
	return mls
}

// multiPolygon assembles part-indexed shapefile points into a MultiPolygon,
// one single-ring polygon per part.
func multiPolygon(parts []int32, points []shp.Point) geom.T {
	if len(parts) == 0 || len(points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY)
	for i := 0; i < len(parts); i++ {
		flat := partFlatCoords(parts, points, i)
		if len(flat) < 8 {
			continue
		}
		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("geoio: skipping malformed polygon ring", zap.Int("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("geoio: skipping malformed polygon part", zap.Int("part", i), zap.Error(err))
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// partFlatCoords returns the flat XY coordinates of one shapefile part.
func partFlatCoords(parts []int32, points []shp.Point, i int) []float64 {
	start := parts[i]
	end := int32(len(points))
	if i+1 < len(parts) {
		end = parts[i+1]
	}
	if start < 0 || end > int32(len(points)) || start >= end {
		return nil
	}

	flat := make([]float64, 0, (end-start)*2)
	for j := start; j < end; j++ {
		flat = append(flat, points[j].X, points[j].Y)
	}
	return flat
}

// attributeValue decodes one DBF attribute: Windows-1252 text, trailing
// NULs and surrounding space trimmed.
func attributeValue(decoder *encoding.Decoder, raw string) string {
	val := strings.TrimRight(raw, "\x00")
	if decoded, err := decoder.String(val); err == nil {
		val = decoded
	}
	return strings.TrimSpace(val)
}

func containsFold(names []string, target string) bool {
	for _, n := range names {
		if strings.EqualFold(n, target) {
			return true
		}
	}
	return false
}
