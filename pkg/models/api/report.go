package api

import "time"

type Thresholds struct {
	SignificanceThreshold float64 `json:"significance_threshold"`
	MinGroupSize          int     `json:"min_group_size"`
}

// ReportSummary is the header of an analysis run without per-airport detail.
type ReportSummary struct {
	RunID        string         `json:"run_id"`
	Title        string         `json:"title"`
	GeneratedAt  time.Time      `json:"generated_at"`
	Status       string         `json:"status"`
	Thresholds   Thresholds     `json:"thresholds"`
	Countries    int            `json:"countries"`
	Flagged      int            `json:"flagged"`
	Groups       map[string]int `json:"groups"`
	LookupMisses []string       `json:"lookup_misses"`
}

type Country struct {
	Country string  `json:"country"`
	Status  string  `json:"status"`
	Reason  string  `json:"reason,omitempty"`
	Count   int     `json:"count"`
	Mean    float64 `json:"mean_km"`
	StdDev  float64 `json:"std_dev_km"`
	Flagged int     `json:"flagged"`
}

type Verdict struct {
	Code            string  `json:"code"`
	Name            string  `json:"name,omitempty"`
	Country         string  `json:"country"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	Distance        float64 `json:"distance_km"`
	PValue          float64 `json:"p_value"`
	Flagged         bool    `json:"flagged"`
	Geohash         string  `json:"geohash,omitempty"`
	NearestCountry  string  `json:"nearest_country,omitempty"`
	NearestDistance float64 `json:"nearest_distance_km,omitempty"`
}

type CountryDetail struct {
	Country
	Verdicts []Verdict `json:"verdicts"`
}

type Run struct {
	RunID       string    `json:"run_id"`
	Title       string    `json:"title"`
	GeneratedAt time.Time `json:"generated_at"`
	Status      string    `json:"status"`
	Countries   int       `json:"countries"`
	Flagged     int       `json:"flagged"`
}

type Error struct {
	Error string `json:"error"`
}
