// Package report defines the destinations analysis results flow into.
//
// A Sink receives results while a run is in progress, one group at a time: the
// verdicts of a country are delivered before its summary, and countries never
// interleave. A Handler receives the finished report.
package report

import (
	"context"
	"errors"

	"github.com/de-tools/airport-atlas/pkg/models/domain"
)

type Sink interface {
	OnVerdict(ctx context.Context, country string, verdict domain.OutlierVerdict) error
	OnGroupSummary(ctx context.Context, summary domain.GroupSummary) error
	Close() error
}

type Handler interface {
	Handle(report *domain.Report) error
}

// HandlerFunc adapts a function to a Handler.
type HandlerFunc func(report *domain.Report) error

func (f HandlerFunc) Handle(report *domain.Report) error {
	return f(report)
}

type discard struct{}

func (discard) OnVerdict(context.Context, string, domain.OutlierVerdict) error { return nil }
func (discard) OnGroupSummary(context.Context, domain.GroupSummary) error { return nil }
func (discard) Close() error { return nil }

// Discard drops everything.
var Discard Sink = discard{}

type multi struct {
	sinks []Sink
}

// Multi fans results out to several sinks. Every sink sees every event; the
// failures are joined.
func Multi(sinks ...Sink) Sink {
	flat := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s == nil {
			continue
		}
		if m, ok := s.(*multi); ok {
			flat = append(flat, m.sinks...)
			continue
		}
		flat = append(flat, s)
	}
	return &multi{sinks: flat}
}

func (m *multi) OnVerdict(ctx context.Context, country string, verdict domain.OutlierVerdict) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.OnVerdict(ctx, country, verdict); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *multi) OnGroupSummary(ctx context.Context, summary domain.GroupSummary) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.OnGroupSummary(ctx, summary); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
