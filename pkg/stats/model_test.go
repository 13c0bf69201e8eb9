package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutlierModel_CDFAtMeanIsHalf(t *testing.T) {
	m, err := NewOutlierModel(100, 10)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, m.CumulativeProbability(100), 1e-6)
}

func TestOutlierModel_KnownQuantiles(t *testing.T) {
	m, err := NewOutlierModel(100, 10)
	require.NoError(t, err)

	assert.InDelta(t, 0.975, m.CumulativeProbability(100+1.959963984540054*10), 1e-9)
	assert.InDelta(t, 0.97, m.CumulativeProbability(100+1.880793608151251*10), 1e-9)
	assert.InDelta(t, 0.8413447460685429, m.CumulativeProbability(110), 1e-12)
}

func TestOutlierModel_TailPrecision(t *testing.T) {
	m, err := NewOutlierModel(0, 1)
	require.NoError(t, err)

	// Φ(-10) is far below what a naive series could resolve.
	assert.InEpsilon(t, 7.619853024160527e-24, m.CumulativeProbability(-10), 1e-6)
	assert.Equal(t, 1.0, m.CumulativeProbability(40))
	assert.Equal(t, 0.0, m.CumulativeProbability(-40))
}

func TestOutlierModel_Monotonic(t *testing.T) {
	m, err := NewOutlierModel(80.4, 171.3)
	require.NoError(t, err)

	prev := 0.0
	for x := -500.0; x <= 1500; x += 12.5 {
		p := m.CumulativeProbability(x)
		assert.GreaterOrEqual(t, p, prev)
		assert.True(t, p >= 0 && p <= 1)
		prev = p
	}
}

func TestOutlierModel_Parameters(t *testing.T) {
	m, err := NewOutlierModel(100, 10)
	require.NoError(t, err)

	assert.Equal(t, 100.0, m.Mean())
	assert.Equal(t, 10.0, m.StdDev())
}

func TestNewOutlierModel_RejectsDegenerateSpread(t *testing.T) {
	for _, std := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := NewOutlierModel(10, std)
		assert.Error(t, err, "std %v", std)
	}

	_, err := NewOutlierModel(math.NaN(), 1)
	assert.Error(t, err)
}
