package frame

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// ReadXLSX parses one sheet of an XLSX workbook into a Dataset. An empty
// sheet name selects the first sheet. The first row is the header; kind
// sniffing matches ReadCSV.
func ReadXLSX(path string, sheetName string) (*Dataset, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "frame: xlsx open")
	}

	sheet, err := pickSheet(f, sheetName)
	if err != nil {
		return nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, eris.Errorf("frame: xlsx sheet %q is empty", sheet.Name)
	}

	header := rowCells(sheet.Rows[0])
	rows := make([][]string, 0, len(sheet.Rows)-1)
	for _, row := range sheet.Rows[1:] {
		rows = append(rows, rowCells(row))
	}

	ds, err := FromCells(header, rows)
	if err != nil {
		return nil, eris.Wrapf(err, "frame: xlsx sheet %q", sheet.Name)
	}
	return ds, nil
}

func pickSheet(f *xlsx.File, name string) (*xlsx.Sheet, error) {
	if name != "" {
		sheet, ok := f.Sheet[name]
		if !ok {
			return nil, eris.Errorf("frame: xlsx sheet %q not found", name)
		}
		return sheet, nil
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("frame: xlsx file has no sheets")
	}
	return f.Sheets[0], nil
}

func rowCells(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
