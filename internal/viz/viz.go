// Package viz drives the full map pipeline: compose the canvas, emit the
// interactive HTML figure, optionally open it in the browser, and
// optionally export a static PNG.
package viz

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/housing-eda/internal/geomap"
	"github.com/sells-group/housing-eda/internal/raster"
	"github.com/sells-group/housing-eda/internal/viewer"
	"github.com/sells-group/housing-eda/pkg/plotly"
)

// DefaultTitle is the HTML page title when the request leaves it empty.
const DefaultTitle = "Housing map"

// Request bundles the composition groups with output destinations.
type Request struct {
	Compose geomap.ComposeRequest

	// Title is the HTML page title.
	Title string
	// OutPath is where the interactive HTML lands; empty means a temp file.
	OutPath string
	// PNGPath, when set, additionally exports a static raster of the canvas.
	PNGPath string
	// OpenBrowser opens the written HTML with the OS default browser.
	OpenBrowser bool
}

// Result reports the composed canvas and where its artifacts were written.
type Result struct {
	Canvas   *geomap.Canvas
	HTMLPath string
	PNGPath  string
}

// Artifacts lists the files the visualization produced.
func (r *Result) Artifacts() []string {
	paths := []string{r.HTMLPath}
	if r.PNGPath != "" {
		paths = append(paths, r.PNGPath)
	}
	return paths
}

// Visualize builds the canvas and emits its artifacts. Any composition
// error aborts before anything is written.
func Visualize(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "viz: visualize")
	}

	c, err := geomap.Compose(req.Compose)
	if err != nil {
		return nil, err
	}

	fig, err := geomap.Figure(c)
	if err != nil {
		return nil, err
	}

	title := req.Title
	if title == "" {
		title = DefaultTitle
	}

	htmlPath, err := writeHTML(fig, title, req.OutPath)
	if err != nil {
		return nil, err
	}

	res := &Result{Canvas: c, HTMLPath: htmlPath}

	if req.OpenBrowser {
		// The artifact is already on disk; a headless environment should
		// not fail the run.
		if err := viewer.Open(htmlPath); err != nil {
			zap.L().Warn("open browser failed",
				zap.String("path", htmlPath),
				zap.Error(err),
			)
		}
	}

	if req.PNGPath != "" {
		if err := raster.ExportPNG(c, req.PNGPath); err != nil {
			return nil, err
		}
		res.PNGPath = req.PNGPath
	}

	zap.L().Info("visualization complete",
		zap.String("html", res.HTMLPath),
		zap.String("png", res.PNGPath),
		zap.Int("layers", c.LayerCount()),
	)

	return res, nil
}

func writeHTML(fig *plotly.Figure, title, outPath string) (string, error) {
	var f *os.File
	var err error
	if outPath == "" {
		f, err = os.CreateTemp("", "housing-map-*.html")
		if err != nil {
			return "", eris.Wrap(err, "viz: create temp html")
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return "", eris.Wrap(err, "viz: create output directory")
		}
		f, err = os.Create(outPath)
		if err != nil {
			return "", eris.Wrap(err, "viz: create html")
		}
	}
	defer f.Close() //nolint:errcheck

	if err := plotly.WriteHTML(f, fig, title); err != nil {
		return "", eris.Wrap(err, "viz: write html")
	}
	return f.Name(), nil
}
