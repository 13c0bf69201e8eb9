package domain

// DistanceSample pairs an airport with its great-circle distance (km) to the country center.
type DistanceSample struct {
	Airport  Airport
	Distance float64
}

// GroupStatistics describes the distance distribution of one country.
type GroupStatistics struct {
	Count  int     `json:"count" yaml:"count"`
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
}

// OutlierVerdict is the per-airport decision of a qualified group.
type OutlierVerdict struct {
	Airport  Airport `json:"airport" yaml:"airport"`
	Distance float64 `json:"distance_km" yaml:"distance_km"`
	PValue   float64 `json:"p_value" yaml:"p_value"`
	Flagged  bool    `json:"flagged" yaml:"flagged"`

	// Set on flagged verdicts only.
	Geohash         string  `json:"geohash,omitempty" yaml:"geohash,omitempty"`
	NearestCountry  string  `json:"nearest_country,omitempty" yaml:"nearest_country,omitempty"`
	NearestDistance float64 `json:"nearest_distance_km,omitempty" yaml:"nearest_distance_km,omitempty"`
}

// GroupStatus classifies how a country group was handled.
type GroupStatus string

const (
	GroupEvaluated   GroupStatus = "evaluated"
	GroupDegenerate  GroupStatus = "degenerate"
	GroupLookupMiss  GroupStatus = "lookup_miss"
	GroupInvalid     GroupStatus = "invalid"
	GroupSkipped     GroupStatus = "skipped"
	GroupSourceError GroupStatus = "source_error"
)

// Reasons attached to degenerate groups.
const (
	ReasonTooFewAirports = "too_few_airports"
	ReasonZeroSpread     = "zero_spread"
)

// GroupSummary is emitted once per country, whatever its status.
type GroupSummary struct {
	Country    string          `json:"country" yaml:"country"`
	Count      int             `json:"count" yaml:"count"`
	Statistics GroupStatistics `json:"statistics" yaml:"statistics"`
	Status     GroupStatus     `json:"status" yaml:"status"`
	Reason     string          `json:"reason,omitempty" yaml:"reason,omitempty"`
	Flagged    int             `json:"flagged" yaml:"flagged"`
}

// Thresholds are the decision-rule parameters used by a run.
type Thresholds struct {
	SignificanceThreshold float64 `json:"significance_threshold" yaml:"significance_threshold"`
	MinGroupSize          int     `json:"min_group_size" yaml:"min_group_size"`
}
