package results

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/airport-atlas/pkg/models/domain"
	"github.com/de-tools/airport-atlas/pkg/models/store"
	"github.com/de-tools/airport-atlas/pkg/store/duckdb"
)

// Store persists finished reports and reads back their history.
type Store interface {
	SaveReport(ctx context.Context, report *domain.Report) error
	ListRuns(ctx context.Context, limit int) ([]store.RunRecord, error)
	ListVerdicts(ctx context.Context, runID string, flaggedOnly bool) ([]store.VerdictRecord, error)
}

type resultsStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &resultsStore{
		db: db,
	}, nil
}

// SaveReport writes the run, its group summaries and its verdicts in one transaction.
func (s *resultsStore) SaveReport(ctx context.Context, report *domain.Report) error {
	if report == nil {
		return fmt.Errorf("report is nil")
	}

	err := duckdb.InTransaction(ctx, s.db, func(ctx context.Context) error {
		if err := s.saveRun(ctx, report); err != nil {
			return err
		}
		if err := s.saveGroups(ctx, report); err != nil {
			return err
		}
		return s.saveVerdicts(ctx, report)
	})
	if err != nil {
		return fmt.Errorf("save report %s: %w", report.RunID, err)
	}
	return nil
}

func (s *resultsStore) prepare(ctx context.Context, query string) (*sql.Stmt, error) {
	return duckdb.Prepare(ctx, s.db, query)
}

func (s *resultsStore) saveRun(ctx context.Context, report *domain.Report) error {
	stmt, err := s.prepare(ctx, `
		INSERT INTO outlier_runs (
			run_id, title, generated_at, significance_threshold, min_group_size, status
		) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx,
		report.RunID,
		report.Title,
		report.GeneratedAt,
		report.Thresholds.SignificanceThreshold,
		report.Thresholds.MinGroupSize,
		string(report.Status),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", report.RunID, err)
	}
	return nil
}

func (s *resultsStore) saveGroups(ctx context.Context, report *domain.Report) error {
	if len(report.Groups) == 0 {
		return nil
	}

	stmt, err := s.prepare(ctx, `
		INSERT INTO outlier_groups (
			run_id, position, country, airport_count, mean_km, std_dev_km, status, reason, flagged
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, g := range report.Groups {
		summary := g.Summary
		_, err := stmt.ExecContext(ctx,
			report.RunID,
			i,
			summary.Country,
			summary.Count,
			summary.Statistics.Mean,
			summary.Statistics.StdDev,
			string(summary.Status),
			summary.Reason,
			summary.Flagged,
		)
		if err != nil {
			return fmt.Errorf("insert group %q: %w", summary.Country, err)
		}
	}
	return nil
}

func (s *resultsStore) saveVerdicts(ctx context.Context, report *domain.Report) error {
	stmt, err := s.prepare(ctx, `
		INSERT INTO outlier_verdicts (
			run_id, country, position, airport_code, airport_name, latitude, longitude,
			distance_km, p_value, flagged, geohash, nearest_country, nearest_distance_km
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, g := range report.Groups {
		for i, v := range g.Verdicts {
			_, err := stmt.ExecContext(ctx,
				report.RunID,
				g.Summary.Country,
				i,
				v.Airport.ID,
				v.Airport.Name,
				v.Airport.Coordinate.Latitude,
				v.Airport.Coordinate.Longitude,
				v.Distance,
				v.PValue,
				v.Flagged,
				v.Geohash,
				v.NearestCountry,
				v.NearestDistance,
			)
			if err != nil {
				return fmt.Errorf("insert verdict %s/%s: %w", g.Summary.Country, v.Airport.ID, err)
			}
		}
	}
	return nil
}

func (s *resultsStore) ListRuns(ctx context.Context, limit int) ([]store.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT
			r.run_id, r.title, r.generated_at, r.significance_threshold, r.min_group_size, r.status,
			COUNT(g.country) AS countries,
			CAST(COALESCE(SUM(g.flagged), 0) AS BIGINT) AS flagged
		FROM outlier_runs r
		LEFT JOIN outlier_groups g ON g.run_id = r.run_id
		GROUP BY r.run_id, r.title, r.generated_at, r.significance_threshold, r.min_group_size, r.status
		ORDER BY r.generated_at DESC, r.run_id
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]store.RunRecord, 0)
	for rows.Next() {
		var (
			r     store.RunRecord
			title sql.NullString
		)
		err := rows.Scan(
			&r.RunID, &title, &r.GeneratedAt, &r.SignificanceThreshold, &r.MinGroupSize, &r.Status,
			&r.Countries, &r.Flagged,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Title = title.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *resultsStore) ListVerdicts(ctx context.Context, runID string, flaggedOnly bool) ([]store.VerdictRecord, error) {
	query := `
		SELECT
			v.country, v.airport_code, v.airport_name, v.latitude, v.longitude,
			v.distance_km, v.p_value, v.flagged, v.geohash, v.nearest_country, v.nearest_distance_km
		FROM outlier_verdicts v
		JOIN outlier_groups g ON g.run_id = v.run_id AND g.country = v.country
		WHERE v.run_id = ?`
	if flaggedOnly {
		query += " AND v.flagged"
	}
	query += " ORDER BY g.position, v.position"

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query verdicts: %w", err)
	}
	defer rows.Close()

	verdicts := make([]store.VerdictRecord, 0)
	for rows.Next() {
		var (
			v                   store.VerdictRecord
			name, hash, nearest sql.NullString
			nearestDistance     sql.NullFloat64
		)
		err := rows.Scan(
			&v.Country, &v.AirportCode, &name, &v.Latitude, &v.Longitude,
			&v.DistanceKM, &v.PValue, &v.Flagged, &hash, &nearest, &nearestDistance,
		)
		if err != nil {
			return nil, fmt.Errorf("scan verdict: %w", err)
		}
		v.RunID = runID
		v.AirportName = name.String
		v.Geohash = hash.String
		v.NearestCountry = nearest.String
		v.NearestDistance = nearestDistance.Float64
		verdicts = append(verdicts, v)
	}
	return verdicts, rows.Err()
}
