// Package stats models the distribution of airport distances within a country.
package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/de-tools/airport-atlas/pkg/models/domain"
	"gonum.org/v1/gonum/stat"
)

// DistanceStatistics accumulates the distances of one country group.
// The zero value is ready to use.
type DistanceStatistics struct {
	values []float64
}

// NewDistanceStatistics preallocates room for n distances.
func NewDistanceStatistics(n int) *DistanceStatistics {
	return &DistanceStatistics{values: make([]float64, 0, n)}
}

// Add records a distance. Negative and non-finite distances are rejected.
func (s *DistanceStatistics) Add(distance float64) error {
	if math.IsNaN(distance) || math.IsInf(distance, 0) || distance < 0 {
		return &domain.ValidationError{
			Field:  "distance",
			Value:  fmt.Sprint(distance),
			Reason: "must be a finite non-negative number",
		}
	}
	s.values = append(s.values, distance)
	return nil
}

// Count returns the number of recorded distances.
func (s *DistanceStatistics) Count() int {
	return len(s.values)
}

// Mean returns the arithmetic mean, or 0 for an empty group.
func (s *DistanceStatistics) Mean() float64 {
	mean, _ := s.meanStdDev()
	return mean
}

// StdDev returns the population standard deviation (count in the denominator),
// or 0 when the group has fewer than two distances.
func (s *DistanceStatistics) StdDev() float64 {
	_, std := s.meanStdDev()
	return std
}

// Summary returns count, mean and standard deviation in one pass.
func (s *DistanceStatistics) Summary() domain.GroupStatistics {
	mean, std := s.meanStdDev()
	return domain.GroupStatistics{Count: len(s.values), Mean: mean, StdDev: std}
}

// meanStdDev reduces a sorted copy so the result does not depend on the order
// distances were added in.
func (s *DistanceStatistics) meanStdDev() (float64, float64) {
	switch len(s.values) {
	case 0:
		return 0, 0
	case 1:
		return s.values[0], 0
	}

	sorted := make([]float64, len(s.values))
	copy(sorted, s.values)
	sort.Float64s(sorted)

	if sorted[0] == sorted[len(sorted)-1] {
		return sorted[0], 0
	}
	return stat.PopMeanStdDev(sorted, nil)
}
