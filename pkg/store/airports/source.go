// Package airports defines where airport records come from.
package airports

import (
	"context"

	"github.com/de-tools/airport-atlas/pkg/models/domain"
)

// Source yields the airports to analyze, grouped by country.
type Source interface {
	// ListCountries returns the distinct country names in source order.
	ListCountries(ctx context.Context) ([]string, error)
	// ListAirports returns the airports of one country in source order.
	ListAirports(ctx context.Context, country string) ([]domain.Airport, error)
}

// Memory is a Source over records already held in memory.
type Memory struct {
	countries []string
	byCountry map[string][]domain.Airport
}

// NewMemory groups airports by country, keeping first-appearance order.
func NewMemory(airports []domain.Airport) *Memory {
	m := &Memory{byCountry: make(map[string][]domain.Airport)}
	for _, a := range airports {
		if _, seen := m.byCountry[a.Country]; !seen {
			m.countries = append(m.countries, a.Country)
		}
		m.byCountry[a.Country] = append(m.byCountry[a.Country], a)
	}
	return m
}

func (m *Memory) ListCountries(ctx context.Context) ([]string, error) {
	out := make([]string, len(m.countries))
	copy(out, m.countries)
	return out, nil
}

func (m *Memory) ListAirports(ctx context.Context, country string) ([]domain.Airport, error) {
	airports := m.byCountry[country]
	out := make([]domain.Airport, len(airports))
	copy(out, airports)
	return out, nil
}

// Len is the number of records held.
func (m *Memory) Len() int {
	total := 0
	for _, a := range m.byCountry {
		total += len(a)
	}
	return total
}
