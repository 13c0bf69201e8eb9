package stats

import (
	"math/rand"
	"testing"

	"github.com/de-tools/airport-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(t *testing.T, values []float64) *DistanceStatistics {
	t.Helper()
	s := NewDistanceStatistics(len(values))
	for _, v := range values {
		require.NoError(t, s.Add(v))
	}
	return s
}

func TestDistanceStatistics_Empty(t *testing.T) {
	var s DistanceStatistics

	assert.Equal(t, 0, s.Count())
	assert.Equal(t, 0.0, s.Mean())
	assert.Equal(t, 0.0, s.StdDev())
}

func TestDistanceStatistics_SingleValue(t *testing.T) {
	s := fill(t, []float64{42})

	assert.Equal(t, 1, s.Count())
	assert.Equal(t, 42.0, s.Mean())
	assert.Equal(t, 0.0, s.StdDev())
}

func TestDistanceStatistics_PopulationStdDev(t *testing.T) {
	s := fill(t, []float64{2, 4, 4, 4, 5, 5, 7, 9})

	summary := s.Summary()
	assert.Equal(t, 8, summary.Count)
	assert.InDelta(t, 5.0, summary.Mean, 1e-12)
	assert.InDelta(t, 2.0, summary.StdDev, 1e-12)
}

func TestDistanceStatistics_IdenticalValuesHaveZeroSpread(t *testing.T) {
	s := fill(t, []float64{50.000123, 50.000123, 50.000123, 50.000123, 50.000123, 50.000123})

	assert.Equal(t, 0.0, s.StdDev())
	assert.Equal(t, 50.000123, s.Mean())
}

func TestDistanceStatistics_OrderIndependent(t *testing.T) {
	values := []float64{10.1, 0.3, 1e4, 7.77, 123.456, 0.1, 0.2, 3.3333, 999.9, 42, 5e-3}
	want := fill(t, values).Summary()

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		perm := make([]float64, len(values))
		copy(perm, values)
		rng.Shuffle(len(perm), func(a, b int) { perm[a], perm[b] = perm[b], perm[a] })

		got := fill(t, perm).Summary()
		assert.Equal(t, want, got, "permutation %v", perm)
	}
}

func TestDistanceStatistics_RejectsInvalidDistances(t *testing.T) {
	var s DistanceStatistics

	for _, v := range []float64{-1, -1e-9} {
		err := s.Add(v)
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	}
	assert.Equal(t, 0, s.Count())
}
