package geo

import (
	"math"
	"sort"

	"github.com/de-tools/airport-atlas/pkg/models/domain"
	"github.com/golang/geo/s2"
)

// Match is a reference center and its distance from a query point.
type Match struct {
	Center   domain.CountryCenter
	Distance float64 // km
}

// Nearest returns the center closest to point. Ties resolve by name so the
// answer does not depend on the order of centers. ok is false when centers is empty
// or point is invalid.
func Nearest(point domain.Coordinate, centers []domain.CountryCenter) (Match, bool) {
	matches := NearestN(point, centers, 1)
	if len(matches) == 0 {
		return Match{}, false
	}
	return matches[0], true
}

// NearestN returns up to n centers ordered by increasing distance from point.
func NearestN(point domain.Coordinate, centers []domain.CountryCenter, n int) []Match {
	if n <= 0 || len(centers) == 0 || point.Validate() != nil {
		return nil
	}

	query := s2.LatLngFromDegrees(point.Latitude, point.Longitude)
	matches := make([]Match, 0, len(centers))
	for _, c := range centers {
		if c.Coordinate.Validate() != nil {
			continue
		}
		ll := s2.LatLngFromDegrees(c.Coordinate.Latitude, c.Coordinate.Longitude)
		matches = append(matches, Match{
			Center:   c,
			Distance: query.Distance(ll).Radians() * EarthRadiusKM,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if math.Abs(matches[i].Distance-matches[j].Distance) > 1e-9 {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Center.Name < matches[j].Center.Name
	})

	if len(matches) > n {
		matches = matches[:n]
	}
	return matches
}
