package geomap

import (
	"fmt"

	"github.com/sells-group/housing-eda/internal/frame"
)

// MissingColumnError reports a required column absent from the dataset a
// layer builder was given. Builders check every required column before
// touching the canvas, so a failed build never leaves a partial layer.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("geomap: missing required column %q", e.Column)
}

// requireColumns returns a MissingColumnError for the first absent column.
func requireColumns(ds *frame.Dataset, names ...string) error {
	for _, name := range names {
		if !ds.Has(name) {
			return &MissingColumnError{Column: name}
		}
	}
	return nil
}
