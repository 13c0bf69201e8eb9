package geo

import (
	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/de-tools/airport-atlas/pkg/models/domain"
)

// DefaultGeohashPrecision gives cells of roughly 1.2 km x 0.6 km.
const DefaultGeohashPrecision = 6

// Geohash encodes c as a base32 geohash. Invalid coordinates yield "".
func Geohash(c domain.Coordinate, precision int) string {
	if c.Validate() != nil || precision <= 0 {
		return ""
	}
	return geohash.EncodeWithPrecision(c.Latitude, c.Longitude, precision)
}
