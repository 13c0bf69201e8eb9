// Package geo provides great-circle geometry over WGS-84 coordinates.
package geo

import (
	"math"

	"github.com/de-tools/airport-atlas/pkg/models/domain"
)

// EarthRadiusKM is the mean Earth radius used for all distances.
const EarthRadiusKM = 6371.0

// Distance returns the great-circle distance in kilometers between a and b.
// Both coordinates are validated; out-of-range input is never clamped.
func Distance(a, b domain.Coordinate) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}
	return Haversine(a.Latitude, a.Longitude, b.Latitude, b.Longitude), nil
}

// Haversine computes the great-circle distance without validating its input.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	radLat1 := lat1 * math.Pi / 180
	radLat2 := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(radLat1)*math.Cos(radLat2)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	// rounding can push a marginally past 1 for antipodal points
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKM * c
}
