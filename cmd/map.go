package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/housing-eda/internal/config"
	"github.com/sells-group/housing-eda/internal/frame"
	"github.com/sells-group/housing-eda/internal/geoio"
	"github.com/sells-group/housing-eda/internal/geomap"
	"github.com/sells-group/housing-eda/internal/viz"
)

var (
	mapHouses     string
	mapSchools    string
	mapRegions    string
	mapBoundaries string
	mapParks      string
	mapJoinKey    string

	mapOut   string
	mapPNG   string
	mapOpen  bool
	mapTitle string

	mapCenter string
	mapZoom   float64
	mapStyle  string
	mapTheme  string

	mapPriceCol    string
	mapQualityCol  string
	mapBedroomsCol string
	mapLatCol      string
	mapLonCol      string
	mapValueCol    string
	mapLegendTitle string
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Compose a layered interactive map",
	Long: `Builds a single map from up to four dataset groups, each optional:
a region choropleth joined to boundary polygons, park outlines, school
markers, and house markers sized by price and colored by quality.

Layers stack in a fixed order: regions, park outlines, schools, houses.

Examples:
  # Houses only
  housing-eda map --houses houses.csv --out map.html

  # All four groups with a PNG export
  housing-eda map --houses houses.csv --schools schools.shp \
    --regions zips.csv --boundaries zcta.geojson --parks parks.geojson \
    --out map.html --png map.png --open`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st := openRunStore(ctx)
		if st != nil {
			defer st.Close() //nolint:errcheck
		}
		run := recordStart(ctx, st, "map", argsFromCommandLine())

		in := mapInputs{
			Houses:     mapHouses,
			Schools:    mapSchools,
			Regions:    mapRegions,
			Boundaries: mapBoundaries,
			Parks:      mapParks,
			JoinKey:    mapJoinKey,

			Title:       mapTitle,
			OutPath:     mapOut,
			PNGPath:     mapPNG,
			OpenBrowser: mapOpen,

			Center: mapCenter,
			Zoom:   mapZoom,
			Style:  mapStyle,
			Theme:  mapTheme,

			PriceCol:    mapPriceCol,
			QualityCol:  mapQualityCol,
			BedroomsCol: mapBedroomsCol,
			LatCol:      mapLatCol,
			LonCol:      mapLonCol,
			ValueCol:    mapValueCol,
			LegendTitle: mapLegendTitle,
		}

		req, err := buildMapRequest(ctx, in, cfg)
		if err != nil {
			recordOutcome(ctx, st, run, nil, err)
			return err
		}

		res, err := viz.Visualize(ctx, *req)
		if err != nil {
			recordOutcome(ctx, st, run, nil, err)
			return err
		}

		fmt.Println("map written to", res.HTMLPath)
		if res.PNGPath != "" {
			fmt.Println("png written to", res.PNGPath)
		}

		recordOutcome(ctx, st, run, res.Artifacts(), nil)
		return nil
	},
}

func init() {
	mapCmd.Flags().StringVar(&mapHouses, "houses", "", "house dataset (csv/xlsx/sqlite/postgres source)")
	mapCmd.Flags().StringVar(&mapSchools, "schools", "", "school dataset (tabular source or .shp shapefile)")
	mapCmd.Flags().StringVar(&mapRegions, "regions", "", "per-region dataset for the choropleth")
	mapCmd.Flags().StringVar(&mapBoundaries, "boundaries", "", "boundary polygons GeoJSON (required with --regions)")
	mapCmd.Flags().StringVar(&mapParks, "parks", "", "park polygons GeoJSON")
	mapCmd.Flags().StringVar(&mapJoinKey, "join-key", "", "join column / boundary property for the choropleth (default zipcode)")

	mapCmd.Flags().StringVar(&mapOut, "out", "", "output HTML path (default <data dir>/map.html)")
	mapCmd.Flags().StringVar(&mapPNG, "png", "", "also export a PNG snapshot to this path")
	mapCmd.Flags().BoolVar(&mapOpen, "open", false, "open the map in the default browser")
	mapCmd.Flags().StringVar(&mapTitle, "title", "", "HTML page title")

	mapCmd.Flags().StringVar(&mapCenter, "center", "", "map center as \"lat,lon\" (default from config)")
	mapCmd.Flags().Float64Var(&mapZoom, "zoom", 0, "initial zoom level (default from config)")
	mapCmd.Flags().StringVar(&mapStyle, "style", "", "base tile style, e.g. open-street-map, carto-positron")
	mapCmd.Flags().StringVar(&mapTheme, "theme", "", "YAML theme file overriding marker colors and layout")

	mapCmd.Flags().StringVar(&mapPriceCol, "price-col", "", "house price column (default price)")
	mapCmd.Flags().StringVar(&mapQualityCol, "quality-col", "", "house quality column (default house_quality)")
	mapCmd.Flags().StringVar(&mapBedroomsCol, "bedrooms-col", "", "house bedrooms column (default bedrooms)")
	mapCmd.Flags().StringVar(&mapLatCol, "lat-col", "", "house latitude column (default lat)")
	mapCmd.Flags().StringVar(&mapLonCol, "lon-col", "", "house longitude column (default long)")
	mapCmd.Flags().StringVar(&mapValueCol, "value-col", "", "region choropleth value column (default house_quality)")
	mapCmd.Flags().StringVar(&mapLegendTitle, "legend-title", "", "legend heading")

	rootCmd.AddCommand(mapCmd)
}

// mapInputs carries the sources and overrides of one map invocation.
// Empty strings and zeros mean "not set"; precedence is flag, then theme,
// then config, then the built-in defaults.
type mapInputs struct {
	Houses     string
	Schools    string
	Regions    string
	Boundaries string
	Parks      string
	JoinKey    string

	Title       string
	OutPath     string
	PNGPath     string
	OpenBrowser bool

	Center string
	Zoom   float64
	Style  string
	Theme  string

	PriceCol    string
	QualityCol  string
	BedroomsCol string
	LatCol      string
	LonCol      string
	ValueCol    string
	LegendTitle string
}

// buildMapRequest validates the inputs, loads every named dataset group
// concurrently, and assembles the visualization request.
func buildMapRequest(ctx context.Context, in mapInputs, c *config.Config) (*viz.Request, error) {
	if in.Houses == "" && in.Schools == "" && in.Regions == "" && in.Parks == "" {
		return nil, eris.New("map: nothing to draw; pass at least one of --houses, --schools, --regions, --parks")
	}
	if (in.Regions == "") != (in.Boundaries == "") {
		return nil, eris.New("map: --regions and --boundaries must be given together")
	}

	joinProp := in.JoinKey
	if joinProp == "" {
		joinProp = geomap.DefaultRegionJoinColumn
	}

	var (
		houses     *frame.Dataset
		schools    *frame.Dataset
		regions    *frame.Dataset
		boundaries *geoio.Collection
		parks      *geojson.FeatureCollection
	)

	// Each goroutine writes a distinct variable; g.Wait is the sync point.
	g, gCtx := errgroup.WithContext(ctx)

	if in.Houses != "" {
		g.Go(func() error {
			ds, err := frame.Load(gCtx, in.Houses)
			if err != nil {
				return eris.Wrap(err, "map: load houses")
			}
			houses = ds
			return nil
		})
	}
	if in.Schools != "" {
		g.Go(func() error {
			ds, err := loadSchools(gCtx, in.Schools)
			if err != nil {
				return eris.Wrap(err, "map: load schools")
			}
			schools = ds
			return nil
		})
	}
	if in.Regions != "" {
		g.Go(func() error {
			ds, err := frame.Load(gCtx, in.Regions)
			if err != nil {
				return eris.Wrap(err, "map: load regions")
			}
			regions = ds
			return nil
		})
		g.Go(func() error {
			fc, err := geoio.LoadGeoJSON(in.Boundaries)
			if err != nil {
				return eris.Wrap(err, "map: load boundaries")
			}
			boundaries = geoio.NewCollection(fc, joinProp)
			return nil
		})
	}
	if in.Parks != "" {
		g.Go(func() error {
			fc, err := geoio.LoadGeoJSON(in.Parks)
			if err != nil {
				return eris.Wrap(err, "map: load parks")
			}
			parks = fc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	compose := geomap.ComposeRequest{
		Houses: houses,
		HouseOptions: geomap.HouseOptions{
			PriceColumn:    in.PriceCol,
			QualityColumn:  in.QualityCol,
			BedroomsColumn: in.BedroomsCol,
			LatColumn:      in.LatCol,
			LonColumn:      in.LonCol,
		},
		Schools:    schools,
		Regions:    regions,
		Boundaries: boundaries,
		RegionOptions: geomap.RegionOptions{
			JoinColumn:  in.JoinKey,
			ValueColumn: in.ValueCol,
		},
		Parks: parks,
		Layout: geomap.LayoutOptions{
			Style:       in.Style,
			Zoom:        in.Zoom,
			LegendTitle: in.LegendTitle,
		},
	}

	if in.Center != "" {
		lat, lon, err := parseCenter(in.Center)
		if err != nil {
			return nil, err
		}
		compose.Layout.CenterLat = lat
		compose.Layout.CenterLon = lon
	}

	// Theme fills what the flags left unset, config what the theme left.
	themePath := in.Theme
	if themePath == "" {
		themePath = c.Map.Theme
	}
	if themePath != "" {
		theme, err := geomap.LoadTheme(themePath)
		if err != nil {
			return nil, err
		}
		theme.ApplyTo(&compose)
	}
	applyConfigLayout(&compose.Layout, c)

	outPath := in.OutPath
	if outPath == "" {
		outPath = filepath.Join(c.Data.Dir, "map.html")
	}

	return &viz.Request{
		Compose:     compose,
		Title:       in.Title,
		OutPath:     outPath,
		PNGPath:     in.PNGPath,
		OpenBrowser: in.OpenBrowser,
	}, nil
}

// loadSchools loads the school dataset, converting a shapefile when the
// source points at one.
func loadSchools(ctx context.Context, src string) (*frame.Dataset, error) {
	if strings.EqualFold(filepath.Ext(src), ".shp") {
		return geoio.SchoolsFromShapefile(src)
	}
	return frame.Load(ctx, src)
}

// applyConfigLayout fills unset layout fields from the configuration.
func applyConfigLayout(l *geomap.LayoutOptions, c *config.Config) {
	if l.Style == "" {
		l.Style = c.Map.Style
	}
	if l.Zoom == 0 {
		l.Zoom = c.Map.Zoom
	}
	if l.CenterLat == 0 {
		l.CenterLat = c.Map.CenterLat
	}
	if l.CenterLon == 0 {
		l.CenterLon = c.Map.CenterLon
	}
	if l.Width == 0 {
		l.Width = c.Map.Width
	}
	if l.Height == 0 {
		l.Height = c.Map.Height
	}
}

// parseCenter parses a "lat,lon" pair.
func parseCenter(s string) (lat, lon float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, eris.Errorf("map: center %q must be \"lat,lon\"", s)
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, eris.Errorf("map: bad center latitude %q", parts[0])
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, eris.Errorf("map: bad center longitude %q", parts[1])
	}
	return lat, lon, nil
}
