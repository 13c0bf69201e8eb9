package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/airport-atlas/pkg/models/domain"
)

func TestReporter_Handle(t *testing.T) {
	report := &domain.Report{
		RunID:       "run-1",
		Title:       "Airport outliers",
		GeneratedAt: time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC),
		Status:      domain.RunCompleted,
		Groups: []domain.GroupReport{{
			Summary: domain.GroupSummary{Country: "Country X", Status: domain.GroupEvaluated, Flagged: 1},
			Verdicts: []domain.OutlierVerdict{
				{Airport: domain.Airport{ID: "X1"}, Distance: 10},
				{
					Airport:  domain.Airport{ID: "X7", Name: "A very long airport name that will not fit"},
					Distance: 500, PValue: 0.99293, Flagged: true, NearestCountry: "Country Y",
				},
			},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, NewReporter(&buf).Handle(report))

	var rows []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(line, "| ") {
			rows = append(rows, line)
		}
	}
	require.Len(t, rows, 2)
	assert.Contains(t, rows[0], "Distance km")
	assert.Contains(t, rows[1], "| Country X")
	assert.Contains(t, rows[1], "500.0")
	assert.Contains(t, rows[1], "0.9929")
	assert.Contains(t, rows[1], "A very long airport name that w~")
	assert.Equal(t, len(rows[0]), len(rows[1]))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "ab~", truncate("abcd", 3))
	assert.Equal(t, "São~", truncate("São Paulo", 4))
}
