package frame

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/housing-eda/internal/db"
)

// ReadSQLite runs a query against a SQLite file and converts the result set
// into a Dataset.
func ReadSQLite(ctx context.Context, path string, query string) (*Dataset, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "frame: sqlite open")
	}
	defer conn.Close() //nolint:errcheck

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "frame: sqlite query")
	}
	defer rows.Close() //nolint:errcheck

	header, err := rows.Columns()
	if err != nil {
		return nil, eris.Wrap(err, "frame: sqlite columns")
	}

	var records [][]string
	for rows.Next() {
		values := make([]any, len(header))
		scans := make([]any, len(header))
		for i := range values {
			scans[i] = &values[i]
		}
		if err := rows.Scan(scans...); err != nil {
			return nil, eris.Wrap(err, "frame: sqlite scan")
		}
		records = append(records, cellsFromValues(values))
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "frame: sqlite iterate")
	}

	return FromCells(header, records)
}

// ReadPostgres runs a query through the shared pool abstraction and converts
// the result set into a Dataset.
func ReadPostgres(ctx context.Context, pool db.Pool, query string) (*Dataset, error) {
	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "frame: postgres query")
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	header := make([]string, len(fields))
	for i, f := range fields {
		header[i] = f.Name
	}

	var records [][]string
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, eris.Wrap(err, "frame: postgres row values")
		}
		records = append(records, cellsFromValues(values))
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "frame: postgres iterate")
	}

	return FromCells(header, records)
}

// cellsFromValues renders driver values as display cells so FromCells can
// re-sniff the column kinds uniformly across sources.
func cellsFromValues(values []any) []string {
	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = cellString(v)
	}
	return cells
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case float64:
		return FormatCell(t)
	case float32:
		return FormatCell(float64(t))
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int16:
		return strconv.FormatInt(int64(t), 10)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", t)
	}
}
