package duckdb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB_BootsSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "atlas.db")
	db, err := NewDB(Settings{
		DbPath: dbPath,
	})
	require.NoError(t, err)
	require.NotNil(t, db)

	defer func() {
		err := db.Close()
		if err != nil {
			t.Errorf("failed to close database connection: %v", err)
		}
	}()

	_, err = db.Exec(
		`INSERT INTO airports (code, name, latitude, longitude, country) VALUES (?, ?, ?, ?, ?)`,
		"LHR", "Heathrow", 51.4706, -0.461941, "United Kingdom",
	)
	require.NoError(t, err)

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM airports WHERE country = ?", "United Kingdom").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	for _, table := range []string{"outlier_runs", "outlier_groups", "outlier_verdicts"} {
		err = db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count)
		require.NoError(t, err, table)
		assert.Zero(t, count, table)
	}
}

func TestInTransaction(t *testing.T) {
	ctx := context.Background()
	db, err := NewDB(Settings{DbPath: filepath.Join(t.TempDir(), "atlas.db")})
	require.NoError(t, err)
	defer db.Close()

	insert := func(ctx context.Context, code string) error {
		_, err := Exec(ctx, db,
			`INSERT INTO airports (code, name, latitude, longitude, country) VALUES (?, ?, ?, ?, ?)`,
			code, "", 0.0, 0.0, "Country X")
		return err
	}
	count := func() int {
		var n int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM airports").Scan(&n))
		return n
	}

	t.Run("rolls back on error", func(t *testing.T) {
		err := InTransaction(ctx, db, func(ctx context.Context) error {
			require.NotNil(t, GetTransaction(ctx))
			require.NoError(t, insert(ctx, "X1"))
			return errors.New("boom")
		})
		assert.EqualError(t, err, "boom")
		assert.Zero(t, count())
	})

	t.Run("commits and joins an outer transaction", func(t *testing.T) {
		err := InTransaction(ctx, db, func(outer context.Context) error {
			return InTransaction(outer, db, func(inner context.Context) error {
				assert.Same(t, GetTransaction(outer), GetTransaction(inner))
				return insert(inner, "X2")
			})
		})
		require.NoError(t, err)
		assert.Equal(t, 1, count())
	})
}
