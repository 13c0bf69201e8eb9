// Package runs schedules analysis runs for the web server and keeps the most
// recent report.
package runs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/de-tools/airport-atlas/pkg/models/domain"
	"github.com/de-tools/airport-atlas/pkg/models/store"
	"github.com/de-tools/airport-atlas/pkg/report"
	"github.com/de-tools/airport-atlas/pkg/store/duckdb/results"
)

var (
	ErrRunInProgress = errors.New("an analysis run is already in progress")
	ErrNoReport      = errors.New("no analysis run has finished yet")
	ErrNoHistory     = errors.New("run history is not persisted")
)

// Runner performs one analysis run.
type Runner interface {
	Run(ctx context.Context, sink report.Sink) (*domain.Report, error)
}

// SinkFactory opens the sink for one run.
type SinkFactory func(ctx context.Context) (report.Sink, error)

type Service interface {
	// Trigger runs an analysis now unless one is already running.
	Trigger(ctx context.Context) (*domain.Report, error)
	// Latest returns the last finished report.
	Latest() (*domain.Report, error)
	// History lists persisted runs, newest first.
	History(ctx context.Context, limit int) ([]store.RunRecord, error)
	// Start schedules runs on a cron spec; an empty spec schedules nothing.
	Start(ctx context.Context, spec string) error
	// Stop halts the schedule and waits for a scheduled run in flight.
	Stop()
	Running() bool
}

type service struct {
	runner   Runner
	results  results.Store
	newSink  SinkFactory
	handlers []report.Handler

	running atomic.Bool

	mu     sync.RWMutex
	latest *domain.Report

	cron *cron.Cron
}

type Option func(*service)

// WithResults persists every finished report.
func WithResults(store results.Store) Option {
	return func(s *service) {
		s.results = store
	}
}

func WithSinks(factory SinkFactory) Option {
	return func(s *service) {
		s.newSink = factory
	}
}

// WithHandlers passes every finished report to handlers.
func WithHandlers(handlers ...report.Handler) Option {
	return func(s *service) {
		s.handlers = append(s.handlers, handlers...)
	}
}

func NewService(runner Runner, opts ...Option) Service {
	s := &service{runner: runner}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Running() bool {
	return s.running.Load()
}

func (s *service) Trigger(ctx context.Context) (*domain.Report, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)

	logger := zerolog.Ctx(ctx)

	sink := report.Discard
	if s.newSink != nil {
		opened, err := s.newSink(ctx)
		if err != nil {
			return nil, fmt.Errorf("open report sink: %w", err)
		}
		sink = opened
	}

	rep, runErr := s.runner.Run(ctx, sink)
	if err := sink.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close report sink")
	}
	if rep == nil {
		return nil, runErr
	}

	if rep.Status != domain.RunFailed {
		s.mu.Lock()
		s.latest = rep
		s.mu.Unlock()
	}

	if s.results != nil {
		if err := s.results.SaveReport(ctx, rep); err != nil {
			logger.Error().Err(err).Str("run_id", rep.RunID).Msg("failed to persist report")
		}
	}
	for _, h := range s.handlers {
		if err := h.Handle(rep); err != nil {
			logger.Error().Err(err).Str("run_id", rep.RunID).Msg("report handler failed")
		}
	}

	return rep, runErr
}

func (s *service) Latest() (*domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, ErrNoReport
	}
	return s.latest, nil
}

func (s *service) History(ctx context.Context, limit int) ([]store.RunRecord, error) {
	if s.results == nil {
		return nil, ErrNoHistory
	}
	return s.results.ListRuns(ctx, limit)
}

func (s *service) Start(ctx context.Context, spec string) error {
	if spec == "" {
		return nil
	}
	logger := zerolog.Ctx(ctx)

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(spec, func() {
		logger.Info().Msg("scheduled analysis run starting")
		if _, err := s.Trigger(ctx); err != nil {
			if errors.Is(err, ErrRunInProgress) {
				logger.Warn().Msg("scheduled run skipped, previous run still going")
				return
			}
			logger.Error().Err(err).Msg("scheduled analysis run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	s.cron = c
	c.Start()
	logger.Info().Str("schedule", spec).Msg("analysis schedule started")
	return nil
}

func (s *service) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}
