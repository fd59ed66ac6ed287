package raster

import (
	"image/color"
	"math"
	"strconv"
	"strings"
)

// cssColors names the palette the layer defaults and themes draw from.
// Unknown names fall back to a neutral gray rather than failing the export.
var cssColors = map[string]color.NRGBA{
	"black":       {0, 0, 0, 255},
	"white":       {255, 255, 255, 255},
	"red":         {255, 0, 0, 255},
	"green":       {0, 128, 0, 255},
	"blue":        {0, 0, 255, 255},
	"yellow":      {255, 255, 0, 255},
	"orange":      {255, 165, 0, 255},
	"purple":      {128, 0, 128, 255},
	"gray":        {128, 128, 128, 255},
	"grey":        {128, 128, 128, 255},
	"navy":        {0, 0, 128, 255},
	"maroon":      {128, 0, 0, 255},
	"crimson":     {220, 20, 60, 255},
	"darkred":     {139, 0, 0, 255},
	"darkgreen":   {0, 100, 0, 255},
	"forestgreen": {34, 139, 34, 255},
	"steelblue":   {70, 130, 180, 255},
}

var fallbackColor = color.NRGBA{128, 128, 128, 255}

// parseColor resolves a CSS color name or #rgb/#rrggbb hex string.
func parseColor(s string) color.NRGBA {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(s, "#") {
		if c, ok := parseHex(s[1:]); ok {
			return c
		}
		return fallbackColor
	}
	if c, ok := cssColors[s]; ok {
		return c
	}
	return fallbackColor
}

func parseHex(s string) (color.NRGBA, bool) {
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.NRGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}, true
}

type rampStop struct {
	pos float64
	c   color.NRGBA
}

// colorscales holds the value-to-color ramps the choropleth layer names.
// Stops match the plotly scales of the same name.
var colorscales = map[string][]rampStop{
	"hot": {
		{0, color.NRGBA{0, 0, 0, 255}},
		{1.0 / 3.0, color.NRGBA{230, 0, 0, 255}},
		{2.0 / 3.0, color.NRGBA{255, 210, 0, 255}},
		{1, color.NRGBA{255, 255, 255, 255}},
	},
	"viridis": {
		{0, color.NRGBA{68, 1, 84, 255}},
		{0.25, color.NRGBA{59, 82, 139, 255}},
		{0.5, color.NRGBA{33, 145, 140, 255}},
		{0.75, color.NRGBA{94, 201, 98, 255}},
		{1, color.NRGBA{253, 231, 37, 255}},
	},
}

// rampColor maps a normalized value through the named colorscale,
// interpolating linearly between stops. Unknown scales use Hot.
func rampColor(scale string, t float64) color.NRGBA {
	stops, ok := colorscales[strings.ToLower(scale)]
	if !ok {
		stops = colorscales["hot"]
	}

	switch {
	case math.IsNaN(t), t <= 0:
		return stops[0].c
	case t >= 1:
		return stops[len(stops)-1].c
	}

	for i := 1; i < len(stops); i++ {
		if t > stops[i].pos {
			continue
		}
		lo, hi := stops[i-1], stops[i]
		f := (t - lo.pos) / (hi.pos - lo.pos)
		return lerpColor(lo.c, hi.c, f)
	}
	return stops[len(stops)-1].c
}

func lerpColor(a, b color.NRGBA, f float64) color.NRGBA {
	return color.NRGBA{
		R: lerpChannel(a.R, b.R, f),
		G: lerpChannel(a.G, b.G, f),
		B: lerpChannel(a.B, b.B, f),
		A: 255,
	}
}

func lerpChannel(a, b uint8, f float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*f))
}
