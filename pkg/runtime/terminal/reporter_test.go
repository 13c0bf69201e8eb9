package terminal

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/airport-atlas/pkg/models/domain"
)

func testReport() *domain.Report {
	return &domain.Report{
		RunID:       "run-1",
		Title:       "Airport outliers",
		GeneratedAt: time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC),
		Thresholds:  domain.Thresholds{SignificanceThreshold: 0.97, MinGroupSize: 5},
		Status:      domain.RunCompletedWithMisses,
		Groups: []domain.GroupReport{
			{
				Summary: domain.GroupSummary{
					Country: "Country X", Count: 7, Status: domain.GroupEvaluated, Flagged: 1,
					Statistics: domain.GroupStatistics{Count: 7, Mean: 80.43, StdDev: 171.3},
				},
				Verdicts: []domain.OutlierVerdict{
					{Airport: domain.Airport{ID: "X1", Name: "Near"}, Distance: 10, PValue: 0.34},
					{
						Airport: domain.Airport{ID: "X7", Name: "Far"}, Distance: 500, PValue: 0.9929, Flagged: true,
						NearestCountry: "Country Y", NearestDistance: 42,
					},
				},
			},
			{
				Summary: domain.GroupSummary{Country: "Country Y", Count: 6, Status: domain.GroupDegenerate, Reason: domain.ReasonZeroSpread},
			},
			{
				Summary: domain.GroupSummary{Country: "Country Z", Status: domain.GroupLookupMiss},
			},
		},
		LookupMisses: []string{"Country Z"},
	}
}

func TestReporter_Handle(t *testing.T) {
	t.Run("flagged groups only", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewReporter(&buf, false).Handle(testReport()))

		out := buf.String()
		assert.Contains(t, out, "Run: run-1 at 2024-03-01 08:30:00")
		assert.Contains(t, out, "Flagged airports: 1")
		assert.Contains(t, out, "=== Country X (evaluated) ===")
		assert.Contains(t, out, "- X7 Far: 500.0 km, p=0.9929, nearest Country Y (42 km)")
		assert.NotContains(t, out, "- X1")
		assert.NotContains(t, out, "=== Country Y")
		assert.Contains(t, out, "Countries without a reference center:\n- Country Z")
	})

	t.Run("verbose lists every group", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewReporter(&buf, true).Handle(testReport()))
		assert.Contains(t, buf.String(), "=== Country Y (degenerate: zero_spread) ===")
	})
}
