package geomap

// Default layout configuration. The center is King County, WA.
const (
	DefaultStyle       = "open-street-map"
	DefaultZoom        = 9.0
	DefaultCenterLat   = 47.3464
	DefaultCenterLon   = -121.9861
	DefaultWidth       = 1000
	DefaultHeight      = 1000
	DefaultLegendTitle = "Legend"

	legendX = 0.01
	legendY = 0.99
)

// LayoutOptions configures the global canvas layout. Zero values fall back
// to the defaults above, so a center of exactly (0, 0) cannot be requested.
type LayoutOptions struct {
	Style       string
	Zoom        float64
	CenterLat   float64
	CenterLon   float64
	Width       int
	Height      int
	LegendTitle string
}

func (o LayoutOptions) withDefaults() LayoutOptions {
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Zoom == 0 {
		o.Zoom = DefaultZoom
	}
	if o.CenterLat == 0 {
		o.CenterLat = DefaultCenterLat
	}
	if o.CenterLon == 0 {
		o.CenterLon = DefaultCenterLon
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.LegendTitle == "" {
		o.LegendTitle = DefaultLegendTitle
	}
	return o
}

// FinalizeLayout applies the global configuration: projection style, zoom,
// center, zero margins, a vertical legend pinned top-left, and fixed
// dimensions. Idempotent; runs after every builder for the request.
func FinalizeLayout(c *Canvas, opts LayoutOptions) {
	o := opts.withDefaults()

	c.layout = Layout{
		Style:       o.Style,
		Zoom:        o.Zoom,
		CenterLat:   o.CenterLat,
		CenterLon:   o.CenterLon,
		Margin:      0,
		LegendTitle: o.LegendTitle,
		LegendX:     legendX,
		LegendY:     legendY,
		Vertical:    true,
		Width:       o.Width,
		Height:      o.Height,
	}
	c.finalized = true
}
