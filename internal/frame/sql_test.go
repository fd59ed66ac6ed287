package frame

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSQLite(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "houses.db")
	conn, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer conn.Close() //nolint:errcheck

	_, err = conn.Exec(`CREATE TABLE houses (price REAL, zipcode TEXT, note TEXT)`)
	require.NoError(t, err)
	_, err = conn.Exec(`INSERT INTO houses VALUES (221900, '98178', 'corner lot'), (538000, '98125', NULL)`)
	require.NoError(t, err)
	return path
}

func TestReadSQLite(t *testing.T) {
	path := seedSQLite(t)

	ds, err := ReadSQLite(context.Background(), path, `SELECT price, zipcode, note FROM houses ORDER BY price`)
	require.NoError(t, err)

	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, []string{"price", "zipcode", "note"}, ds.Columns())

	prices, err := ds.Numeric("price")
	require.NoError(t, err)
	assert.Equal(t, []float64{221900, 538000}, prices)

	notes, err := ds.Strings("note")
	require.NoError(t, err)
	assert.Equal(t, []string{"corner lot", ""}, notes)
}

func TestReadSQLite_BadQuery(t *testing.T) {
	path := seedSQLite(t)

	_, err := ReadSQLite(context.Background(), path, `SELECT nope FROM houses`)
	assert.Error(t, err)
}

func TestReadPostgres(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"price", "zipcode"}).
		AddRow(float64(221900), "98178").
		AddRow(float64(538000), "98125")
	mock.ExpectQuery("SELECT price, zipcode FROM houses").WillReturnRows(rows)

	ds, err := ReadPostgres(context.Background(), mock, "SELECT price, zipcode FROM houses")
	require.NoError(t, err)

	assert.Equal(t, 2, ds.Len())
	prices, err := ds.Numeric("price")
	require.NoError(t, err)
	assert.Equal(t, []float64{221900, 538000}, prices)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadPostgres_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT").WillReturnError(assert.AnError)

	_, err = ReadPostgres(context.Background(), mock, "SELECT 1")
	assert.Error(t, err)
}

func TestLoad_CSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "houses.csv")
	require.NoError(t, os.WriteFile(path, []byte(housesCSV), 0o644))

	ds, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
}

func TestLoad_SQLiteFragment(t *testing.T) {
	path := seedSQLite(t)

	ds, err := Load(context.Background(), path+"#SELECT price FROM houses")
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		spec string
	}{
		{name: "unknown extension", spec: "houses.parquet"},
		{name: "sqlite without query", spec: "houses.db"},
		{name: "postgres without query", spec: "postgres://localhost/houses"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), tt.spec)
			assert.Error(t, err)
		})
	}
}
