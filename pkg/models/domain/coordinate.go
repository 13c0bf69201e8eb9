package domain

import (
	"fmt"
	"math"
)

// Coordinate is a WGS-84 latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Validate reports an out-of-range or non-finite coordinate as a ValidationError.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Latitude) || math.IsInf(c.Latitude, 0) || c.Latitude < -90 || c.Latitude > 90 {
		return &ValidationError{
			Field:  "latitude",
			Value:  fmt.Sprint(c.Latitude),
			Reason: "must be between -90 and 90",
		}
	}
	if math.IsNaN(c.Longitude) || math.IsInf(c.Longitude, 0) || c.Longitude < -180 || c.Longitude > 180 {
		return &ValidationError{
			Field:  "longitude",
			Value:  fmt.Sprint(c.Longitude),
			Reason: "must be between -180 and 180",
		}
	}
	return nil
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", c.Latitude, c.Longitude)
}
