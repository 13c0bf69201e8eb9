package domain

import "time"

// RunStatus is the final outcome of an analysis run
type RunStatus string

const (
	RunCompleted           RunStatus = "completed"
	RunCompletedWithMisses RunStatus = "completed_with_lookup_misses"
	RunCompletedWithErrors RunStatus = "completed_with_errors"
	RunFailed              RunStatus = "failed"
)

// Report represents a complete analysis run
type Report struct {
	RunID        string        `json:"run_id" yaml:"run_id"`
	Title        string        `json:"title" yaml:"title"`
	GeneratedAt  time.Time     `json:"generated_at" yaml:"generated_at"`
	Thresholds   Thresholds    `json:"thresholds" yaml:"thresholds"`
	Groups       []GroupReport `json:"groups" yaml:"groups"`
	LookupMisses []string      `json:"lookup_misses" yaml:"lookup_misses"`
	Status       RunStatus     `json:"status" yaml:"status"`
}

// GroupReport holds the summary and verdicts of one country
type GroupReport struct {
	Summary  GroupSummary     `json:"summary" yaml:"summary"`
	Verdicts []OutlierVerdict `json:"verdicts,omitempty" yaml:"verdicts,omitempty"`
}

// Flagged returns the flagged verdicts in input order.
func (g GroupReport) Flagged() []OutlierVerdict {
	var flagged []OutlierVerdict
	for _, v := range g.Verdicts {
		if v.Flagged {
			flagged = append(flagged, v)
		}
	}
	return flagged
}

// Group returns the report of a single country.
func (r *Report) Group(country string) (GroupReport, bool) {
	for _, g := range r.Groups {
		if g.Summary.Country == country {
			return g, true
		}
	}
	return GroupReport{}, false
}

// FlaggedCount totals flagged verdicts across all groups.
func (r *Report) FlaggedCount() int {
	total := 0
	for _, g := range r.Groups {
		total += g.Summary.Flagged
	}
	return total
}

// CountByStatus tallies groups per status.
func (r *Report) CountByStatus() map[GroupStatus]int {
	counts := make(map[GroupStatus]int)
	for _, g := range r.Groups {
		counts[g.Summary.Status]++
	}
	return counts
}
