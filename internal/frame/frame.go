// Package frame holds the column-oriented tabular dataset every command
// consumes, with loaders for CSV, XLSX, SQLite, and PostgreSQL sources.
package frame

import (
	"math"
	"strconv"

	"github.com/rotisserie/eris"
)

var nan = math.NaN()

// Kind tags a column as numeric or text.
type Kind int

const (
	// KindNumeric columns store float64 values; NaN marks a missing cell.
	KindNumeric Kind = iota
	// KindString columns store text; the empty string marks a missing cell.
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Column is one named column of a Dataset.
type Column struct {
	Kind    Kind
	Floats  []float64
	Strings []string
}

func (c *Column) len() int {
	if c.Kind == KindNumeric {
		return len(c.Floats)
	}
	return len(c.Strings)
}

// Dataset is an in-memory table of named columns. Column order is the
// insertion order. Builders treat it as read-only: nothing in this toolkit
// writes derived values back into a caller's Dataset.
type Dataset struct {
	names []string
	cols  map[string]*Column
	rows  int
}

// New returns an empty Dataset.
func New() *Dataset {
	return &Dataset{cols: make(map[string]*Column)}
}

func (d *Dataset) add(name string, col *Column) error {
	if name == "" {
		return eris.New("frame: empty column name")
	}
	if _, ok := d.cols[name]; ok {
		return eris.Errorf("frame: duplicate column %q", name)
	}
	if len(d.names) > 0 && col.len() != d.rows {
		return eris.Errorf("frame: column %q has %d rows, dataset has %d", name, col.len(), d.rows)
	}
	d.names = append(d.names, name)
	d.cols[name] = col
	d.rows = col.len()
	return nil
}

// AddNumeric appends a numeric column. The slice is retained, not copied.
func (d *Dataset) AddNumeric(name string, values []float64) error {
	return d.add(name, &Column{Kind: KindNumeric, Floats: values})
}

// AddString appends a text column. The slice is retained, not copied.
func (d *Dataset) AddString(name string, values []string) error {
	return d.add(name, &Column{Kind: KindString, Strings: values})
}

// Has reports whether a column with the given name exists.
func (d *Dataset) Has(name string) bool {
	_, ok := d.cols[name]
	return ok
}

// Columns returns the column names in insertion order.
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return d.rows
}

// ColumnKind returns the kind of the named column.
func (d *Dataset) ColumnKind(name string) (Kind, error) {
	col, ok := d.cols[name]
	if !ok {
		return 0, eris.Errorf("frame: no column %q", name)
	}
	return col.Kind, nil
}

// Numeric returns the float values of a numeric column.
func (d *Dataset) Numeric(name string) ([]float64, error) {
	col, ok := d.cols[name]
	if !ok {
		return nil, eris.Errorf("frame: no column %q", name)
	}
	if col.Kind != KindNumeric {
		return nil, eris.Errorf("frame: column %q is %s, not numeric", name, col.Kind)
	}
	return col.Floats, nil
}

// Strings returns the column rendered as display text. Numeric cells render
// through FormatFloat so integral values carry no decimal point; missing
// cells render as "".
func (d *Dataset) Strings(name string) ([]string, error) {
	col, ok := d.cols[name]
	if !ok {
		return nil, eris.Errorf("frame: no column %q", name)
	}
	if col.Kind == KindString {
		return col.Strings, nil
	}
	out := make([]string, len(col.Floats))
	for i, v := range col.Floats {
		out[i] = FormatCell(v)
	}
	return out, nil
}

// Missing reports whether the cell at (column, row) is missing.
func (d *Dataset) Missing(name string, row int) bool {
	col, ok := d.cols[name]
	if !ok || row < 0 || row >= col.len() {
		return true
	}
	if col.Kind == KindNumeric {
		return math.IsNaN(col.Floats[row])
	}
	return col.Strings[row] == ""
}

// FormatCell renders a numeric cell for display. NaN renders as "".
func FormatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
