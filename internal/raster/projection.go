package raster

import (
	"math"

	"github.com/sells-group/housing-eda/internal/geomap"
)

// maxProjectionLat clamps latitude the way web maps do, keeping the
// longitude stretch factor finite near the poles.
const maxProjectionLat = 85.0

// projector maps geographic coordinates onto the output image: an
// equirectangular projection centered on the layout's center, scaled so a
// degree of longitude covers the same span it would on a web-map tile at
// the layout's zoom.
type projector struct {
	width, height        int
	centerLat, centerLon float64
	pxPerLon             float64
	pxPerLat             float64
}

func newProjector(lay geomap.Layout) projector {
	center := lay.CenterLat
	if center > maxProjectionLat {
		center = maxProjectionLat
	}
	if center < -maxProjectionLat {
		center = -maxProjectionLat
	}

	// 256 px per world tile, doubling per zoom level.
	perLon := 256 * math.Exp2(lay.Zoom) / 360
	return projector{
		width:     lay.Width,
		height:    lay.Height,
		centerLat: center,
		centerLon: lay.CenterLon,
		pxPerLon:  perLon,
		pxPerLat:  perLon / math.Cos(center*math.Pi/180),
	}
}

// point projects a coordinate to fractional pixel space. Points outside
// the image project fine; the drawing primitives clip.
func (p projector) point(lat, lon float64) (x, y float64) {
	x = float64(p.width)/2 + (lon-p.centerLon)*p.pxPerLon
	y = float64(p.height)/2 - (lat-p.centerLat)*p.pxPerLat
	return x, y
}
