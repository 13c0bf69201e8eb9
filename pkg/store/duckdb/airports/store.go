package airports

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/airport-atlas/pkg/models/domain"
	"github.com/de-tools/airport-atlas/pkg/store/duckdb"
)

// Store loads airport records into the local airports table, which the SQL
// airport source can then read back.
type Store interface {
	Add(ctx context.Context, airports []domain.Airport) error
	Replace(ctx context.Context, airports []domain.Airport) error
	Count(ctx context.Context) (int, error)
}

type airportStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &airportStore{
		db: db,
	}, nil
}

func (s *airportStore) Add(ctx context.Context, airports []domain.Airport) error {
	if len(airports) == 0 {
		return nil
	}

	stmt, err := duckdb.Prepare(ctx, s.db,
		`INSERT INTO airports (code, name, latitude, longitude, country) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, a := range airports {
		_, err = stmt.ExecContext(ctx,
			a.ID,
			a.Name,
			a.Coordinate.Latitude,
			a.Coordinate.Longitude,
			a.Country,
		)
		if err != nil {
			return fmt.Errorf("insert airport %s: %w", a.ID, err)
		}
	}
	return nil
}

// Replace swaps the table contents for airports atomically.
func (s *airportStore) Replace(ctx context.Context, airports []domain.Airport) error {
	return duckdb.InTransaction(ctx, s.db, func(ctx context.Context) error {
		if _, err := duckdb.Exec(ctx, s.db, "DELETE FROM airports"); err != nil {
			return fmt.Errorf("clear airports: %w", err)
		}
		return s.Add(ctx, airports)
	})
}

func (s *airportStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM airports").Scan(&count); err != nil {
		return 0, fmt.Errorf("count airports: %w", err)
	}
	return count, nil
}
