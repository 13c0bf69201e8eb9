package outlier

import (
	"fmt"

	"github.com/de-tools/airport-atlas/pkg/models/domain"
)

const (
	DefaultSignificanceThreshold = 0.97
	DefaultMinGroupSize          = 5
	DefaultTitle                 = "Airport geographic outliers"
)

// DefaultSkipCountries are placeholder country names that never get analyzed.
var DefaultSkipCountries = []string{"Unknown Country"}

// Settings tune a run.
type Settings struct {
	// SignificanceThreshold is the cumulative probability an airport's distance
	// must exceed to be flagged.
	SignificanceThreshold float64
	// MinGroupSize is exclusive: a country needs more airports than this.
	MinGroupSize  int
	SkipCountries []string
	// Concurrency bounds how many countries are analyzed at once.
	Concurrency int
	// Enrich adds a geohash and the nearest reference center to flagged verdicts.
	Enrich bool
	Title  string
}

func DefaultSettings() Settings {
	return Settings{
		SignificanceThreshold: DefaultSignificanceThreshold,
		MinGroupSize:          DefaultMinGroupSize,
		SkipCountries:         append([]string(nil), DefaultSkipCountries...),
		Concurrency:           1,
		Enrich:                true,
		Title:                 DefaultTitle,
	}
}

func (s Settings) Validate() error {
	if !(s.SignificanceThreshold > 0.5 && s.SignificanceThreshold < 1) {
		return fmt.Errorf("significance threshold must be in (0.5, 1), got %v", s.SignificanceThreshold)
	}
	if s.MinGroupSize < 1 {
		return fmt.Errorf("minimum group size must be at least 1, got %d", s.MinGroupSize)
	}
	if s.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", s.Concurrency)
	}
	return nil
}

func (s Settings) Thresholds() domain.Thresholds {
	return domain.Thresholds{
		SignificanceThreshold: s.SignificanceThreshold,
		MinGroupSize:          s.MinGroupSize,
	}
}
