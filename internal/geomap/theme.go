package geomap

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Theme overrides the fixed visual constants from a YAML file. Zero-value
// fields keep their defaults, so a theme only needs the knobs it changes.
type Theme struct {
	HouseColor string `yaml:"house_color"`

	SchoolColor   string  `yaml:"school_color"`
	SchoolSize    float64 `yaml:"school_size"`
	SchoolOpacity float64 `yaml:"school_opacity"`

	ParkColor        string  `yaml:"park_color"`
	ParkOutlineWidth float64 `yaml:"park_outline_width"`

	RegionColorscale string  `yaml:"region_colorscale"`
	RegionOpacity    float64 `yaml:"region_opacity"`

	Style       string  `yaml:"style"`
	Zoom        float64 `yaml:"zoom"`
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	LegendTitle string  `yaml:"legend_title"`
}

// LoadTheme reads a theme from a YAML file.
func LoadTheme(path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geomap: read theme %s", path)
	}

	// The YAML has a top-level "theme" key.
	var wrapper struct {
		Theme Theme `yaml:"theme"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "geomap: parse theme")
	}
	return &wrapper.Theme, nil
}

// ApplyTo fills the unset option fields of a compose request from the
// theme. Explicitly set fields win over the theme.
func (t *Theme) ApplyTo(req *ComposeRequest) {
	if req.HouseOptions.Color == "" {
		req.HouseOptions.Color = t.HouseColor
	}

	if req.SchoolOptions.Color == "" {
		req.SchoolOptions.Color = t.SchoolColor
	}
	if req.SchoolOptions.Size == 0 {
		req.SchoolOptions.Size = t.SchoolSize
	}
	if req.SchoolOptions.Opacity == 0 {
		req.SchoolOptions.Opacity = t.SchoolOpacity
	}

	if req.ParkOptions.Color == "" {
		req.ParkOptions.Color = t.ParkColor
	}
	if req.ParkOptions.OutlineWidth == 0 {
		req.ParkOptions.OutlineWidth = t.ParkOutlineWidth
	}

	if req.RegionOptions.Colorscale == "" {
		req.RegionOptions.Colorscale = t.RegionColorscale
	}
	if req.RegionOptions.Opacity == 0 {
		req.RegionOptions.Opacity = t.RegionOpacity
	}

	if req.Layout.Style == "" {
		req.Layout.Style = t.Style
	}
	if req.Layout.Zoom == 0 {
		req.Layout.Zoom = t.Zoom
	}
	if req.Layout.Width == 0 {
		req.Layout.Width = t.Width
	}
	if req.Layout.Height == 0 {
		req.Layout.Height = t.Height
	}
	if req.Layout.LegendTitle == "" {
		req.Layout.LegendTitle = t.LegendTitle
	}
}
