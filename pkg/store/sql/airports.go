package sql

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/de-tools/airport-atlas/pkg/models/domain"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*){0,2}$`)

// AirportSource reads airports from a table with the columns
// code, name, latitude, longitude and country.
type AirportSource struct {
	db    *sql.DB
	table string
}

func NewAirportSource(db *sql.DB, table string) (*AirportSource, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid airport table name %q", table)
	}
	return &AirportSource{
		db:    db,
		table: table,
	}, nil
}

func (s *AirportSource) ListCountries(ctx context.Context) ([]string, error) {
	logger := zerolog.Ctx(ctx)
	query := fmt.Sprintf(`
		SELECT country
		FROM %s
		WHERE country IS NOT NULL
		GROUP BY country
		ORDER BY MIN(code), country
	`, s.table)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("country list query failed: %w", err)
	}
	defer func(rows *sql.Rows) {
		err := rows.Close()
		if err != nil {
			logger.Warn().Err(err).Msg("failed to close country query rows")
		}
	}(rows)

	var countries []string
	for rows.Next() {
		var country string
		if err := rows.Scan(&country); err != nil {
			return nil, fmt.Errorf("scan country: %w", err)
		}
		countries = append(countries, country)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate countries: %w", err)
	}
	return countries, nil
}

func (s *AirportSource) ListAirports(ctx context.Context, country string) ([]domain.Airport, error) {
	logger := zerolog.Ctx(ctx)
	query := fmt.Sprintf(`
		SELECT code, name, latitude, longitude
		FROM %s
		WHERE country = ?
		ORDER BY code
	`, s.table)

	rows, err := s.db.QueryContext(ctx, query, country)
	if err != nil {
		return nil, fmt.Errorf("airport query for %q failed: %w", country, err)
	}
	defer func(rows *sql.Rows) {
		err := rows.Close()
		if err != nil {
			logger.Warn().Err(err).Msg("failed to close airport query rows")
		}
	}(rows)

	var airports []domain.Airport
	for rows.Next() {
		var (
			code     string
			name     sql.NullString
			lat, lon float64
		)
		if err := rows.Scan(&code, &name, &lat, &lon); err != nil {
			return nil, fmt.Errorf("scan airport: %w", err)
		}
		airports = append(airports, domain.Airport{
			ID:         code,
			Name:       name.String,
			Country:    country,
			Coordinate: domain.Coordinate{Latitude: lat, Longitude: lon},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate airports: %w", err)
	}

	logger.Debug().Str("country", country).Int("airports", len(airports)).Msg("loaded airports")
	return airports, nil
}
