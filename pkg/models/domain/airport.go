package domain

// Airport is a single record of the airport dataset under inspection.
type Airport struct {
	ID         string     `json:"id" yaml:"id"`
	Name       string     `json:"name,omitempty" yaml:"name,omitempty"`
	Country    string     `json:"country" yaml:"country"`
	Coordinate Coordinate `json:"coordinate" yaml:"coordinate"`
}

// Validate checks the fields the analysis depends on.
func (a Airport) Validate() error {
	if a.ID == "" {
		return &ValidationError{Field: "id", Reason: "airport id must not be empty"}
	}
	if err := a.Coordinate.Validate(); err != nil {
		if ve, ok := err.(*ValidationError); ok {
			ve.AirportID = a.ID
		}
		return err
	}
	return nil
}

// CountryCenter is the reference point of a country, keyed by its exact name.
type CountryCenter struct {
	Code       string     `json:"code,omitempty" yaml:"code,omitempty"`
	Name       string     `json:"name" yaml:"name"`
	Coordinate Coordinate `json:"coordinate" yaml:"coordinate"`
}
