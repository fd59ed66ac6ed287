package frame

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// ReadCSV parses a CSV stream into a Dataset. The first record is the
// header. A column whose every non-empty cell parses as a number becomes
// numeric (empty cells turn into NaN); anything else stays text.
func ReadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.New("frame: csv has no header row")
	}
	if err != nil {
		return nil, eris.Wrap(err, "frame: csv read header")
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "frame: csv read row")
		}
		records = append(records, record)
	}

	return FromCells(header, records)
}

// FromCells builds a Dataset from a header and string rows, sniffing the
// kind of each column. Rows shorter than the header are padded with missing
// cells; longer rows are an error in CSV (the reader rejects them) but are
// truncated here for sources without that guarantee.
func FromCells(header []string, rows [][]string) (*Dataset, error) {
	seen := make(map[string]bool, len(header))
	for _, name := range header {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return nil, eris.New("frame: blank column name in header")
		}
		if seen[trimmed] {
			return nil, eris.Errorf("frame: duplicate column %q in header", trimmed)
		}
		seen[trimmed] = true
	}

	ds := New()
	for j, name := range header {
		cells := make([]string, len(rows))
		for i, row := range rows {
			if j < len(row) {
				cells[i] = strings.TrimSpace(row[j])
			}
		}

		name = strings.TrimSpace(name)
		if floats, ok := sniffNumeric(cells); ok {
			if err := ds.AddNumeric(name, floats); err != nil {
				return nil, err
			}
			continue
		}
		if err := ds.AddString(name, cells); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// sniffNumeric converts cells to floats when every non-empty cell parses.
// An all-empty column is left as text (there is nothing to infer from).
func sniffNumeric(cells []string) ([]float64, bool) {
	floats := make([]float64, len(cells))
	any := false
	for i, cell := range cells {
		if cell == "" {
			floats[i] = nan
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, false
		}
		floats[i] = v
		any = true
	}
	return floats, any
}
