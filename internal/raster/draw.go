package raster

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// blendPix writes one pixel with source-over alpha, clipping to the image.
func blendPix(img *image.RGBA, x, y int, c color.NRGBA, alpha float64) {
	b := img.Bounds()
	if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
		return
	}
	if alpha >= 1 {
		img.SetRGBA(x, y, color.RGBA{c.R, c.G, c.B, 255})
		return
	}
	if alpha <= 0 {
		return
	}
	off := img.PixOffset(x, y)
	mix := func(src, dst uint8) uint8 {
		return uint8(math.Round(float64(src)*alpha + float64(dst)*(1-alpha)))
	}
	img.Pix[off] = mix(c.R, img.Pix[off])
	img.Pix[off+1] = mix(c.G, img.Pix[off+1])
	img.Pix[off+2] = mix(c.B, img.Pix[off+2])
	img.Pix[off+3] = 255
}

type point struct{ x, y float64 }

// fillPolygon scanline-fills one polygon, treating all rings together with
// even-odd pairing so interior rings become holes.
func fillPolygon(img *image.RGBA, p projector, poly orb.Polygon, c color.NRGBA, alpha float64) {
	if len(poly) == 0 {
		return
	}

	rings := make([][]point, 0, len(poly))
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, ring := range poly {
		pts := make([]point, 0, len(ring))
		for _, coord := range ring {
			x, y := p.point(coord.Lat(), coord.Lon())
			pts = append(pts, point{x, y})
			minY = math.Min(minY, y)
			maxY = math.Max(maxY, y)
		}
		if len(pts) >= 3 {
			rings = append(rings, pts)
		}
	}
	if len(rings) == 0 {
		return
	}

	yStart := int(math.Max(minY, 0))
	yEnd := int(math.Min(maxY, float64(img.Bounds().Max.Y-1)))
	for y := yStart; y <= yEnd; y++ {
		fy := float64(y) + 0.5

		var nodes []float64
		for _, ring := range rings {
			for i := range ring {
				a, b := ring[i], ring[(i+1)%len(ring)]
				if (a.y < fy && b.y >= fy) || (b.y < fy && a.y >= fy) {
					nodes = append(nodes, a.x+(fy-a.y)/(b.y-a.y)*(b.x-a.x))
				}
			}
		}
		sort.Float64s(nodes)

		for i := 0; i+1 < len(nodes); i += 2 {
			xs := int(math.Max(nodes[i], 0))
			xe := int(math.Min(nodes[i+1], float64(img.Bounds().Max.X)))
			for x := xs; x < xe; x++ {
				blendPix(img, x, y, c, alpha)
			}
		}
	}
}

// strokeLine draws a straight segment with Bresenham stepping, stamping a
// disc per step when the width calls for more than one pixel.
func strokeLine(img *image.RGBA, x1, y1, x2, y2 int, c color.NRGBA, width float64) {
	dx := math.Abs(float64(x2 - x1))
	dy := math.Abs(float64(y2 - y1))
	sx, sy := -1, -1
	if x1 < x2 {
		sx = 1
	}
	if y1 < y2 {
		sy = 1
	}

	stamp := func(x, y int) {
		if width <= 1.5 {
			blendPix(img, x, y, c, 1)
			return
		}
		fillDisc(img, float64(x), float64(y), width/2, c, 1)
	}

	err := dx - dy
	for {
		stamp(x1, y1)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// strokePath draws a connected coordinate sequence.
func strokePath(img *image.RGBA, p projector, line orb.LineString, c color.NRGBA, width float64) {
	for i := 0; i+1 < len(line); i++ {
		x1, y1 := p.point(line[i].Lat(), line[i].Lon())
		x2, y2 := p.point(line[i+1].Lat(), line[i+1].Lon())
		strokeLine(img, int(x1), int(y1), int(x2), int(y2), c, width)
	}
}

// fillDisc paints a filled circle centered at fractional pixel (cx, cy).
func fillDisc(img *image.RGBA, cx, cy, r float64, c color.NRGBA, alpha float64) {
	if r <= 0 || math.IsNaN(cx) || math.IsNaN(cy) {
		return
	}
	r2 := r * r
	for y := int(cy - r); y <= int(cy+r)+1; y++ {
		for x := int(cx - r); x <= int(cx+r)+1; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			if dx*dx+dy*dy <= r2 {
				blendPix(img, x, y, c, alpha)
			}
		}
	}
}

// geometryPolygons flattens a geometry to its fillable polygons.
func geometryPolygons(g orb.Geometry) []orb.Polygon {
	switch geom := g.(type) {
	case orb.Polygon:
		return []orb.Polygon{geom}
	case orb.MultiPolygon:
		return geom
	case orb.Collection:
		var out []orb.Polygon
		for _, member := range geom {
			out = append(out, geometryPolygons(member)...)
		}
		return out
	default:
		return nil
	}
}

// geometryPaths flattens a geometry to its strokeable paths; polygon rings
// stroke as closed paths.
func geometryPaths(g orb.Geometry) []orb.LineString {
	switch geom := g.(type) {
	case orb.LineString:
		return []orb.LineString{geom}
	case orb.MultiLineString:
		return geom
	case orb.Polygon:
		out := make([]orb.LineString, 0, len(geom))
		for _, ring := range geom {
			out = append(out, orb.LineString(ring))
		}
		return out
	case orb.MultiPolygon:
		var out []orb.LineString
		for _, poly := range geom {
			out = append(out, geometryPaths(poly)...)
		}
		return out
	case orb.Collection:
		var out []orb.LineString
		for _, member := range geom {
			out = append(out, geometryPaths(member)...)
		}
		return out
	default:
		return nil
	}
}
