package store

import "time"

// RunRecord is a persisted analysis run header.
type RunRecord struct {
	RunID                 string
	Title                 string
	GeneratedAt           time.Time
	SignificanceThreshold float64
	MinGroupSize          int
	Status                string
	Countries             int
	Flagged               int
}

// VerdictRecord is a persisted per-airport verdict.
type VerdictRecord struct {
	RunID           string
	Country         string
	AirportCode     string
	AirportName     string
	Latitude        float64
	Longitude       float64
	DistanceKM      float64
	PValue          float64
	Flagged         bool
	Geohash         string
	NearestCountry  string
	NearestDistance float64
}
