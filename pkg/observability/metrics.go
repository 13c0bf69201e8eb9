// Package observability holds the Prometheus metrics and logger setup shared
// by the CLI and the web server.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/de-tools/airport-atlas/pkg/models/domain"
)

const namespace = "airport_atlas"

// Metrics holds the counters, gauges and histograms of the analysis runs.
type Metrics struct {
	Runs             *prometheus.CounterVec // labels: status
	Groups           *prometheus.CounterVec // labels: status
	FlaggedAirports  prometheus.Counter
	LookupMisses     prometheus.Counter
	RunDuration      prometheus.Histogram
	RunInProgress    prometheus.Gauge
	LastRunTimestamp prometheus.Gauge
}

// NewMetrics creates the metrics and registers them with reg. A nil reg
// leaves them unregistered, which is what tests want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Analysis runs by final status.",
		}, []string{"status"}),
		Groups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "country_groups_total",
			Help:      "Country groups processed, by group status.",
		}, []string{"status"}),
		FlaggedAirports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flagged_airports_total",
			Help:      "Airports flagged as geographic outliers.",
		}),
		LookupMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookup_misses_total",
			Help:      "Countries without a reference center.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete analysis run.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		RunInProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_in_progress",
			Help:      "1 while an analysis run is active.",
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.Runs,
			m.Groups,
			m.FlaggedAirports,
			m.LookupMisses,
			m.RunDuration,
			m.RunInProgress,
			m.LastRunTimestamp,
		)
	}
	return m
}

func (m *Metrics) RunStarted() {
	if m == nil {
		return
	}
	m.RunInProgress.Set(1)
}

// GroupDone records one emitted country group.
func (m *Metrics) GroupDone(summary domain.GroupSummary) {
	if m == nil {
		return
	}
	m.Groups.WithLabelValues(string(summary.Status)).Inc()
	m.FlaggedAirports.Add(float64(summary.Flagged))
	if summary.Status == domain.GroupLookupMiss {
		m.LookupMisses.Inc()
	}
}

// RunFinished records the outcome of a run.
func (m *Metrics) RunFinished(status domain.RunStatus, elapsed time.Duration, at time.Time) {
	if m == nil {
		return
	}
	m.RunInProgress.Set(0)
	m.Runs.WithLabelValues(string(status)).Inc()
	m.RunDuration.Observe(elapsed.Seconds())
	m.LastRunTimestamp.Set(float64(at.Unix()))
}
