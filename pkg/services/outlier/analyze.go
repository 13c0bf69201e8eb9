// Package outlier flags airports that lie implausibly far from the center of
// the country they are assigned to.
//
// Per country, the great-circle distances from the reference center to every
// airport are fitted with a normal distribution. An airport is flagged when
// its distance is above the mean and its cumulative probability under the
// fitted distribution exceeds the significance threshold. Countries with too
// few airports, or whose airports are all equidistant, are not evaluated.
package outlier

import (
	"fmt"

	"github.com/de-tools/airport-atlas/pkg/geo"
	"github.com/de-tools/airport-atlas/pkg/models/domain"
	"github.com/de-tools/airport-atlas/pkg/stats"
)

// CountryResult is everything a run emits for one country.
type CountryResult struct {
	Summary  domain.GroupSummary
	Verdicts []domain.OutlierVerdict
}

// AnalyzeCountry runs the outlier test over the airports of one country. It
// has no side effects. A *domain.ValidationError is returned when an airport
// is malformed or an id repeats; the group is then not evaluated at all.
func AnalyzeCountry(
	country string,
	center domain.CountryCenter,
	airports []domain.Airport,
	thresholds domain.Thresholds,
) (CountryResult, error) {
	if err := validateGroup(airports); err != nil {
		return CountryResult{}, err
	}

	samples := make([]domain.DistanceSample, len(airports))
	acc := stats.NewDistanceStatistics(len(airports))
	for i, a := range airports {
		d, err := geo.Distance(center.Coordinate, a.Coordinate)
		if err != nil {
			return CountryResult{}, fmt.Errorf("distance for airport %s: %w", a.ID, err)
		}
		if err := acc.Add(d); err != nil {
			return CountryResult{}, fmt.Errorf("distance for airport %s: %w", a.ID, err)
		}
		samples[i] = domain.DistanceSample{Airport: a, Distance: d}
	}

	st := acc.Summary()
	result := CountryResult{
		Summary: domain.GroupSummary{
			Country:    country,
			Count:      st.Count,
			Statistics: st,
			Status:     domain.GroupDegenerate,
		},
	}

	switch {
	case st.Count <= thresholds.MinGroupSize:
		result.Summary.Reason = domain.ReasonTooFewAirports
		return result, nil
	case st.StdDev == 0:
		result.Summary.Reason = domain.ReasonZeroSpread
		return result, nil
	}

	model, err := stats.NewOutlierModel(st.Mean, st.StdDev)
	if err != nil {
		return CountryResult{}, fmt.Errorf("fit distance model for %q: %w", country, err)
	}

	result.Summary.Status = domain.GroupEvaluated
	result.Verdicts = make([]domain.OutlierVerdict, len(samples))
	for i, s := range samples {
		p := model.CumulativeProbability(s.Distance)
		flagged := p > thresholds.SignificanceThreshold && s.Distance > st.Mean
		result.Verdicts[i] = domain.OutlierVerdict{
			Airport:  s.Airport,
			Distance: s.Distance,
			PValue:   p,
			Flagged:  flagged,
		}
		if flagged {
			result.Summary.Flagged++
		}
	}
	return result, nil
}

func validateGroup(airports []domain.Airport) error {
	seen := make(map[string]struct{}, len(airports))
	for _, a := range airports {
		if err := a.Validate(); err != nil {
			return err
		}
		if _, dup := seen[a.ID]; dup {
			return &domain.ValidationError{
				AirportID: a.ID,
				Field:     "id",
				Value:     a.ID,
				Reason:    "airport id appears more than once in the country",
			}
		}
		seen[a.ID] = struct{}{}
	}
	return nil
}

// enrich tags flagged verdicts with a geohash and the closest reference
// center. Verdict decisions are left untouched.
func enrich(verdicts []domain.OutlierVerdict, centers []domain.CountryCenter) {
	for i := range verdicts {
		v := &verdicts[i]
		if !v.Flagged {
			continue
		}
		v.Geohash = geo.Geohash(v.Airport.Coordinate, geo.DefaultGeohashPrecision)
		if match, ok := geo.Nearest(v.Airport.Coordinate, centers); ok {
			v.NearestCountry = match.Center.Name
			v.NearestDistance = match.Distance
		}
	}
}
