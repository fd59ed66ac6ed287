// Package raster renders a composed canvas to a static image without a
// browser: polygons scanline-filled through the layer colorscale, outlines
// stroked, markers stamped as discs, all under an equirectangular
// projection of the layout's viewport.
package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/housing-eda/internal/encode"
	"github.com/sells-group/housing-eda/internal/geomap"
)

// baseColor is the backdrop standing in for map tiles.
var baseColor = color.NRGBA{234, 231, 223, 255}

// ExportPNG writes the finalized canvas to a PNG at the given path. The
// format follows the extension and only .png is supported.
func ExportPNG(c *geomap.Canvas, path string) error {
	if !c.Finalized() {
		return eris.New("raster: canvas not finalized")
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".png" {
		return eris.Errorf("raster: unsupported image format %q, only .png", ext)
	}

	img, err := render(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return eris.Wrap(err, "raster: encode png")
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return eris.Wrapf(err, "raster: write %s", path)
	}

	zap.L().Info("raster: exported static map",
		zap.String("path", path),
		zap.Int("width", c.Layout().Width),
		zap.Int("height", c.Layout().Height),
	)
	return nil
}

// render paints bottom-up: region fill, then outline overlays, then point
// markers, matching the stacking order of the interactive figure.
func render(c *geomap.Canvas) (*image.RGBA, error) {
	lay := c.Layout()
	if lay.Width <= 0 || lay.Height <= 0 {
		return nil, eris.Errorf("raster: invalid dimensions %dx%d", lay.Width, lay.Height)
	}

	img := image.NewRGBA(image.Rect(0, 0, lay.Width, lay.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(baseColor), image.Point{}, draw.Src)

	p := newProjector(lay)

	for _, l := range c.Layers() {
		if l.Kind != geomap.KindChoroplethRegion {
			continue
		}
		if err := fillChoropleth(img, p, l); err != nil {
			return nil, err
		}
	}
	for _, o := range c.Overlays() {
		strokeOverlay(img, p, o)
	}
	for _, l := range c.Layers() {
		if l.Kind != geomap.KindPointMarker {
			continue
		}
		drawMarkers(img, p, l)
	}
	return img, nil
}

func fillChoropleth(img *image.RGBA, p projector, l geomap.Layer) error {
	ch := l.Choropleth
	if ch == nil || ch.MatchedRegions() == 0 {
		return nil
	}

	norm, err := encode.Normalize(ch.Values)
	if err != nil {
		return eris.Wrap(err, "raster: choropleth values")
	}

	for i, key := range ch.Keys {
		if math.IsNaN(norm[i]) {
			continue
		}
		feature := ch.Collection.Feature(key)
		if feature == nil {
			continue
		}
		fill := rampColor(ch.Colorscale, norm[i])
		for _, poly := range geometryPolygons(feature.Geometry) {
			fillPolygon(img, p, poly, fill, ch.Opacity)
		}
	}
	return nil
}

func strokeOverlay(img *image.RGBA, p projector, o geomap.Overlay) {
	if o.Geometry == nil {
		return
	}
	c := parseColor(o.Color)
	for _, feature := range o.Geometry.Features {
		if feature == nil {
			continue
		}
		for _, path := range geometryPaths(feature.Geometry) {
			strokePath(img, p, path, c, o.Width)
		}
	}
}

func drawMarkers(img *image.RGBA, p projector, l geomap.Layer) {
	c := parseColor(l.Marker.Color)
	alpha := l.Marker.Opacity
	if alpha <= 0 || alpha > 1 {
		alpha = 1
	}

	for i := range l.Lats {
		if math.IsNaN(l.Lats[i]) || math.IsNaN(l.Lons[i]) {
			continue
		}
		size := l.Marker.Size
		if i < len(l.Marker.Sizes) {
			size = l.Marker.Sizes[i]
		}
		x, y := p.point(l.Lats[i], l.Lons[i])
		fillDisc(img, x, y, size/2, c, alpha)
	}
}
