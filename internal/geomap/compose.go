package geomap

import (
	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/housing-eda/internal/frame"
	"github.com/sells-group/housing-eda/internal/geoio"
)

// ComposeRequest names the optional dataset groups of one visualization.
// Every group is independently omittable; nil means skip that layer.
type ComposeRequest struct {
	Houses       *frame.Dataset
	HouseOptions HouseOptions

	Schools       *frame.Dataset
	SchoolOptions SchoolOptions

	Regions       *frame.Dataset
	Boundaries    *geoio.Collection
	RegionOptions RegionOptions

	Parks       *geojson.FeatureCollection
	ParkOptions ParkOptions

	Layout LayoutOptions
}

// Compose builds a finalized canvas from the supplied groups. The layer
// order is a contract: regions, then park outlines, then schools, then
// houses, so markers stack above outlines and outlines above region fill.
// Any builder error aborts the whole composition; nothing partial is
// returned.
func Compose(req ComposeRequest) (*Canvas, error) {
	c := NewCanvas()

	if req.Regions != nil && req.Boundaries != nil {
		if err := AddRegions(c, req.Regions, req.Boundaries, req.RegionOptions); err != nil {
			return nil, eris.Wrap(err, "geomap: region layer")
		}
	}
	if req.Parks != nil {
		if err := AddParkOutlines(c, req.Parks, req.ParkOptions); err != nil {
			return nil, eris.Wrap(err, "geomap: park outline layer")
		}
	}
	if req.Schools != nil {
		if err := AddSchools(c, req.Schools, req.SchoolOptions); err != nil {
			return nil, eris.Wrap(err, "geomap: school layer")
		}
	}
	if req.Houses != nil {
		if err := AddHouses(c, req.Houses, req.HouseOptions); err != nil {
			return nil, eris.Wrap(err, "geomap: house layer")
		}
	}

	FinalizeLayout(c, req.Layout)

	zap.L().Info("geomap: composed canvas",
		zap.Int("layers", c.LayerCount()),
		zap.Int("overlays", c.OverlayCount()),
	)
	return c, nil
}
