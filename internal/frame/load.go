package frame

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/housing-eda/internal/db"
)

// Load reads a Dataset from a source spec:
//
//	houses.csv                    CSV file
//	houses.xlsx#Sheet1            XLSX file, optional sheet after '#'
//	houses.db#SELECT * FROM t     SQLite file, query after '#'
//	postgres://dsn#SELECT ...     PostgreSQL DSN, query after '#'
func Load(ctx context.Context, spec string) (*Dataset, error) {
	if strings.HasPrefix(spec, "postgres://") || strings.HasPrefix(spec, "postgresql://") {
		dsn, query, ok := splitFragment(spec)
		if !ok || query == "" {
			return nil, eris.New("frame: postgres source needs a '#<query>' suffix")
		}
		pool, err := db.Connect(ctx, dsn)
		if err != nil {
			return nil, eris.Wrap(err, "frame: load postgres")
		}
		defer pool.Close()
		return ReadPostgres(ctx, pool, query)
	}

	path, fragment, _ := splitFragment(spec)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "frame: open csv")
		}
		defer f.Close() //nolint:errcheck
		ds, err := ReadCSV(f)
		if err != nil {
			return nil, eris.Wrapf(err, "frame: load %s", path)
		}
		return ds, nil
	case ".xlsx":
		return ReadXLSX(path, fragment)
	case ".db", ".sqlite", ".sqlite3":
		if fragment == "" {
			return nil, eris.Errorf("frame: sqlite source %s needs a '#<query>' suffix", path)
		}
		return ReadSQLite(ctx, path, fragment)
	default:
		return nil, eris.Errorf("frame: unsupported source %q", spec)
	}
}

// splitFragment splits a spec at the first '#', so queries containing '#'
// survive intact.
func splitFragment(spec string) (string, string, bool) {
	idx := strings.Index(spec, "#")
	if idx < 0 {
		return spec, "", false
	}
	return spec[:idx], spec[idx+1:], true
}
