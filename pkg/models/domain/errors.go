package domain

import (
	"errors"
	"fmt"
)

// ErrLookupMiss marks a country name absent from the center table.
var ErrLookupMiss = errors.New("country center not found")

// ValidationError reports malformed input to a single computation.
type ValidationError struct {
	AirportID string
	Field     string
	Value     string
	Reason    string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s", e.Field)
	if e.Value != "" {
		msg += fmt.Sprintf(" %q", e.Value)
	}
	if e.AirportID != "" {
		msg += fmt.Sprintf(" for airport %s", e.AirportID)
	}
	return msg + ": " + e.Reason
}

// SinkError wraps a failure of a report destination.
type SinkError struct {
	Op  string
	Err error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("report sink %s: %v", e.Op, e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
