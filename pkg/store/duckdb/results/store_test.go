package results

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/airport-atlas/pkg/models/domain"
	"github.com/de-tools/airport-atlas/pkg/store/duckdb"
)

type fixture struct {
	db    *sql.DB
	store Store
}

func setupFixture(t *testing.T) *fixture {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)

	s, err := NewStore(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return &fixture{
		db:    db,
		store: s,
	}
}

func sampleReport(runID string, at time.Time) *domain.Report {
	airport := func(id string, lat, lon float64) domain.Airport {
		return domain.Airport{
			ID:         id,
			Name:       "Airport " + id,
			Country:    "Country X",
			Coordinate: domain.Coordinate{Latitude: lat, Longitude: lon},
		}
	}
	return &domain.Report{
		RunID:       runID,
		Title:       "nightly",
		GeneratedAt: at,
		Thresholds:  domain.Thresholds{SignificanceThreshold: 0.97, MinGroupSize: 5},
		Status:      domain.RunCompletedWithMisses,
		Groups: []domain.GroupReport{
			{
				Summary: domain.GroupSummary{
					Country:    "Country X",
					Count:      2,
					Statistics: domain.GroupStatistics{Count: 2, Mean: 255, StdDev: 245},
					Status:     domain.GroupEvaluated,
					Flagged:    1,
				},
				Verdicts: []domain.OutlierVerdict{
					{Airport: airport("X1", 0, 0.09), Distance: 10, PValue: 0.16},
					{
						Airport: airport("X7", 0, 4.5), Distance: 500, PValue: 0.99, Flagged: true,
						Geohash: "s00twy", NearestCountry: "Country Y", NearestDistance: 12.5,
					},
				},
			},
			{
				Summary: domain.GroupSummary{Country: "Country Z", Status: domain.GroupLookupMiss},
			},
		},
		LookupMisses: []string{"Country Z"},
	}
}

func TestResultsStore_SaveReport(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("success - run, groups and verdicts", func(t *testing.T) {
		err := f.store.SaveReport(ctx, sampleReport("run-1", at))
		require.NoError(t, err)

		var groups, verdicts int
		require.NoError(t, f.db.QueryRow("SELECT COUNT(*) FROM outlier_groups WHERE run_id = ?", "run-1").Scan(&groups))
		require.NoError(t, f.db.QueryRow("SELECT COUNT(*) FROM outlier_verdicts WHERE run_id = ?", "run-1").Scan(&verdicts))
		assert.Equal(t, 2, groups)
		assert.Equal(t, 2, verdicts)
	})

	t.Run("error - duplicate run is rolled back", func(t *testing.T) {
		err := f.store.SaveReport(ctx, sampleReport("run-1", at))
		assert.Error(t, err)

		var groups int
		require.NoError(t, f.db.QueryRow("SELECT COUNT(*) FROM outlier_groups WHERE run_id = ?", "run-1").Scan(&groups))
		assert.Equal(t, 2, groups)
	})

	t.Run("error - nil report", func(t *testing.T) {
		assert.Error(t, f.store.SaveReport(ctx, nil))
	})
}

func TestResultsStore_ListRuns(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	older := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	newer := older.Add(24 * time.Hour)

	require.NoError(t, f.store.SaveReport(ctx, sampleReport("run-old", older)))
	require.NoError(t, f.store.SaveReport(ctx, sampleReport("run-new", newer)))

	runs, err := f.store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "run-new", runs[0].RunID)
	assert.Equal(t, "nightly", runs[0].Title)
	assert.Equal(t, 2, runs[0].Countries)
	assert.Equal(t, 1, runs[0].Flagged)
	assert.Equal(t, string(domain.RunCompletedWithMisses), runs[0].Status)
	assert.True(t, newer.Equal(runs[0].GeneratedAt))

	limited, err := f.store.ListRuns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestResultsStore_ListVerdicts(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.SaveReport(ctx, sampleReport("run-1", time.Now().UTC())))

	t.Run("all verdicts in input order", func(t *testing.T) {
		verdicts, err := f.store.ListVerdicts(ctx, "run-1", false)
		require.NoError(t, err)
		require.Len(t, verdicts, 2)
		assert.Equal(t, "X1", verdicts[0].AirportCode)
		assert.Equal(t, "X7", verdicts[1].AirportCode)
	})

	t.Run("flagged only", func(t *testing.T) {
		verdicts, err := f.store.ListVerdicts(ctx, "run-1", true)
		require.NoError(t, err)
		require.Len(t, verdicts, 1)
		assert.Equal(t, "X7", verdicts[0].AirportCode)
		assert.Equal(t, "Country Y", verdicts[0].NearestCountry)
		assert.Equal(t, "s00twy", verdicts[0].Geohash)
		assert.InDelta(t, 500, verdicts[0].DistanceKM, 1e-9)
	})

	t.Run("unknown run", func(t *testing.T) {
		verdicts, err := f.store.ListVerdicts(ctx, "missing", false)
		require.NoError(t, err)
		assert.Empty(t, verdicts)
	})
}
