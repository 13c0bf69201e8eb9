package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// OutlierModel is a normal distribution fitted to a group's distances.
type OutlierModel struct {
	dist distuv.Normal
}

// NewOutlierModel fits the model. stdDev must be finite and strictly positive;
// groups without spread have to be filtered out by the caller.
func NewOutlierModel(mean, stdDev float64) (*OutlierModel, error) {
	if math.IsNaN(mean) || math.IsInf(mean, 0) {
		return nil, fmt.Errorf("outlier model: mean must be finite, got %v", mean)
	}
	if math.IsNaN(stdDev) || math.IsInf(stdDev, 0) || stdDev <= 0 {
		return nil, fmt.Errorf("outlier model: standard deviation must be positive, got %v", stdDev)
	}
	return &OutlierModel{dist: distuv.Normal{Mu: mean, Sigma: stdDev}}, nil
}

// Mean of the fitted distribution.
func (m *OutlierModel) Mean() float64 { return m.dist.Mu }

// StdDev of the fitted distribution.
func (m *OutlierModel) StdDev() float64 { return m.dist.Sigma }

// CumulativeProbability returns P(X <= x) under the fitted distribution.
// distuv evaluates it through math.Erfc, which keeps full precision in the tails.
func (m *OutlierModel) CumulativeProbability(x float64) float64 {
	return m.dist.CDF(x)
}

