package source

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/airport-atlas/pkg/models/domain"
	"github.com/de-tools/airport-atlas/pkg/services/config"
	"github.com/de-tools/airport-atlas/pkg/store/airports"
	"github.com/de-tools/airport-atlas/pkg/store/objectstore"
)

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	stub := func(context.Context, config.SourceConfig) (airports.Source, io.Closer, error) {
		return airports.NewMemory([]domain.Airport{{ID: "A", Country: "C"}}), nil, nil
	}

	r := NewRegistry(map[string]Factory{"memory": stub})

	require.NoError(t, r.Register("other", stub))
	assert.Error(t, r.Register("memory", stub))
	assert.Error(t, r.Register("", stub))
	assert.Error(t, r.Register("nil", nil))
	assert.Equal(t, []string{"memory", "other"}, r.ListTypes())

	src, _, err := r.Create(ctx, config.SourceConfig{Type: "memory"})
	require.NoError(t, err)
	countries, err := src.ListCountries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, countries)

	_, _, err = r.Create(ctx, config.SourceConfig{Type: "ftp"})
	assert.ErrorContains(t, err, "not registered")
}

func TestFileFactory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "airports.tsv")
	require.NoError(t, os.WriteFile(path, []byte("Code\tName\tLatitude\tLongitude\tCountry\nLHR\tHeathrow\t51.47\t-0.46\tUnited Kingdom\n"), 0o644))

	factory := FileFactory(objectstore.New(""))

	src, closer, err := factory(ctx, config.SourceConfig{Type: "csv", Path: path})
	require.NoError(t, err)
	assert.Nil(t, closer)

	uk, err := src.ListAirports(ctx, "United Kingdom")
	require.NoError(t, err)
	require.Len(t, uk, 1)
	assert.Equal(t, "Heathrow", uk[0].Name)

	_, _, err = factory(ctx, config.SourceConfig{Type: "csv"})
	assert.ErrorContains(t, err, "needs a path")

	_, _, err = factory(ctx, config.SourceConfig{Type: "csv", Path: filepath.Join(t.TempDir(), "nope.csv")})
	assert.Error(t, err)
}

func TestSQLFactory_DuckDB(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "atlas.db")

	src, closer, err := SQLFactory(ctx, config.SourceConfig{Type: "sql", Driver: "duckdb", DSN: dbPath})
	require.NoError(t, err)
	require.NotNil(t, closer)
	defer closer.Close()

	countries, err := src.ListCountries(ctx)
	require.NoError(t, err)
	assert.Empty(t, countries)
}

func TestSQLFactory_Profiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	ini := filepath.Join(dir, "profiles.ini")
	content := "[local]\ndriver = duckdb\ndsn = " + filepath.Join(dir, "atlas.db") + "\n"
	require.NoError(t, os.WriteFile(ini, []byte(content), 0o644))

	src, closer, err := SQLFactory(ctx, config.SourceConfig{Type: "sql", Profile: "local", ProfilesFile: ini})
	require.NoError(t, err)
	defer closer.Close()
	assert.NotNil(t, src)

	_, _, err = SQLFactory(ctx, config.SourceConfig{Type: "sql", Profile: "local"})
	assert.ErrorContains(t, err, "no profiles file")

	_, _, err = SQLFactory(ctx, config.SourceConfig{Type: "sql", Profile: "missing", ProfilesFile: ini})
	assert.ErrorContains(t, err, "not found")
}

func TestOpenDB_Errors(t *testing.T) {
	_, err := OpenDB(&config.Profile{})
	assert.ErrorContains(t, err, "no sql driver")

	_, err = OpenDB(&config.Profile{Driver: "postgres"})
	assert.ErrorContains(t, err, "needs a dsn")

	_, err = OpenDB(&config.Profile{Driver: "databricks", Params: map[string]string{"host": "h"}})
	assert.ErrorContains(t, err, "http_path")
}

func TestSnowflakeDSN(t *testing.T) {
	dsn, err := SnowflakeDSN(map[string]string{
		"account":   "acme",
		"user":      "atlas",
		"password":  "secret",
		"database":  "REF",
		"warehouse": "XS",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dsn, "atlas:secret@acme"), dsn)
	assert.Contains(t, dsn, "warehouse=XS")

	_, err = SnowflakeDSN(map[string]string{"user": "atlas"})
	assert.Error(t, err)
}

func TestDatabricksConnector(t *testing.T) {
	c, err := DatabricksConnector(map[string]string{
		"host":      "dbc-123.cloud.databricks.com",
		"token":     "dapi-token",
		"http_path": "/sql/1.0/warehouses/abc",
	})
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestLoadCenters(t *testing.T) {
	ctx := context.Background()
	store := objectstore.New("")

	table, err := LoadCenters(ctx, store, "")
	require.NoError(t, err)
	assert.Greater(t, table.Len(), 200)

	path := filepath.Join(t.TempDir(), "centers.tsv")
	require.NoError(t, os.WriteFile(path, []byte("XA\t0\t0\tCountry X\n"), 0o644))
	table, err = LoadCenters(ctx, store, path)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())

	_, err = LoadCenters(ctx, store, filepath.Join(t.TempDir(), "missing.tsv"))
	assert.Error(t, err)
}
