package outlier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/de-tools/airport-atlas/pkg/models/domain"
	"github.com/de-tools/airport-atlas/pkg/observability"
	"github.com/de-tools/airport-atlas/pkg/report"
	"github.com/de-tools/airport-atlas/pkg/store/airports"
	"github.com/de-tools/airport-atlas/pkg/store/centers"
)

// CenterLister exposes every reference center. Lookups implementing it make
// nearest-center enrichment possible.
type CenterLister interface {
	Centers() []domain.CountryCenter
}

type Analyzer struct {
	source   airports.Source
	lookup   centers.Lookup
	settings Settings
	skip     map[string]struct{}
	all      []domain.CountryCenter

	clock   clockwork.Clock
	newID   func() string
	metrics *observability.Metrics
}

type Option func(*Analyzer)

func WithClock(clock clockwork.Clock) Option {
	return func(a *Analyzer) {
		a.clock = clock
	}
}

func WithRunIDs(newID func() string) Option {
	return func(a *Analyzer) {
		a.newID = newID
	}
}

func WithMetrics(m *observability.Metrics) Option {
	return func(a *Analyzer) {
		a.metrics = m
	}
}

func NewAnalyzer(source airports.Source, lookup centers.Lookup, settings Settings, opts ...Option) (*Analyzer, error) {
	if source == nil {
		return nil, fmt.Errorf("airport source is nil")
	}
	if lookup == nil {
		return nil, fmt.Errorf("center lookup is nil")
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if settings.Concurrency == 0 {
		settings.Concurrency = 1
	}
	if settings.Title == "" {
		settings.Title = DefaultTitle
	}

	a := &Analyzer{
		source:   source,
		lookup:   lookup,
		settings: settings,
		skip:     make(map[string]struct{}, len(settings.SkipCountries)),
		clock:    clockwork.NewRealClock(),
		newID:    uuid.NewString,
	}
	for _, c := range settings.SkipCountries {
		a.skip[c] = struct{}{}
	}
	if lister, ok := lookup.(CenterLister); ok && settings.Enrich {
		a.all = lister.Centers()
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *Analyzer) Settings() Settings {
	return a.settings
}

// Run analyzes every country of the source and streams the results into sink
// in source order. The report is returned even when err is non-nil, unless the
// country list itself could not be read. A *domain.SinkError means the
// analysis finished but sink missed some results.
func (a *Analyzer) Run(ctx context.Context, sink report.Sink) (*domain.Report, error) {
	if sink == nil {
		sink = report.Discard
	}

	start := a.clock.Now()
	runID := a.newID()
	logger := zerolog.Ctx(ctx).With().Str("run_id", runID).Logger()
	ctx = report.WithRunID(logger.WithContext(ctx), runID)

	rep := &domain.Report{
		RunID:        runID,
		Title:        a.settings.Title,
		GeneratedAt:  start.UTC(),
		Thresholds:   a.settings.Thresholds(),
		Groups:       []domain.GroupReport{},
		LookupMisses: []string{},
	}

	a.metrics.RunStarted()
	logger.Info().
		Float64("significance_threshold", a.settings.SignificanceThreshold).
		Int("min_group_size", a.settings.MinGroupSize).
		Msg("analysis run started")

	countries, err := a.source.ListCountries(ctx)
	if err != nil {
		rep.Status = domain.RunFailed
		a.finish(ctx, rep, start)
		return rep, fmt.Errorf("list countries: %w", err)
	}

	em := &emitter{sink: sink, collector: report.NewCollector(), metrics: a.metrics}
	runErr := a.each(ctx, countries, em.emit)

	rep.Groups = em.collector.Groups()
	if misses := em.collector.LookupMisses(); len(misses) > 0 {
		rep.LookupMisses = misses
	}
	rep.Status = runStatus(rep)
	if runErr != nil {
		rep.Status = domain.RunFailed
	}
	a.finish(ctx, rep, start)

	if runErr != nil {
		return rep, runErr
	}
	if em.sinkErr != nil {
		return rep, em.sinkErr
	}
	return rep, nil
}

func (a *Analyzer) finish(ctx context.Context, rep *domain.Report, start time.Time) {
	elapsed := a.clock.Since(start)
	a.metrics.RunFinished(rep.Status, elapsed, a.clock.Now())
	zerolog.Ctx(ctx).Info().
		Str("status", string(rep.Status)).
		Int("countries", len(rep.Groups)).
		Int("flagged", rep.FlaggedCount()).
		Int("lookup_misses", len(rep.LookupMisses)).
		Dur("elapsed", elapsed).
		Msg("analysis run finished")
}

func runStatus(rep *domain.Report) domain.RunStatus {
	counts := rep.CountByStatus()
	switch {
	case counts[domain.GroupInvalid] > 0 || counts[domain.GroupSourceError] > 0:
		return domain.RunCompletedWithErrors
	case counts[domain.GroupLookupMiss] > 0:
		return domain.RunCompletedWithMisses
	default:
		return domain.RunCompleted
	}
}

// each analyzes countries and hands every result to emit in input order. With
// concurrency above one, analyses overlap but emission stays sequential.
func (a *Analyzer) each(ctx context.Context, countries []string, emit func(context.Context, CountryResult)) error {
	if a.settings.Concurrency <= 1 || len(countries) < 2 {
		for _, country := range countries {
			if err := ctx.Err(); err != nil {
				return err
			}
			emit(ctx, a.analyze(ctx, country))
		}
		return nil
	}

	results := make([]CountryResult, len(countries))
	done := make([]chan struct{}, len(countries))
	for i := range done {
		done[i] = make(chan struct{})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.settings.Concurrency)
	go func() {
		for i, country := range countries {
			g.Go(func() error {
				defer close(done[i])
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = a.analyze(gctx, country)
				return nil
			})
		}
	}()

	var cancelled error
	for i := range countries {
		<-done[i]
		if cancelled != nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			cancelled = err
			continue
		}
		emit(ctx, results[i])
	}
	if err := g.Wait(); err != nil && cancelled == nil {
		cancelled = err
	}
	return cancelled
}

// analyze resolves and evaluates one country. Failures are folded into the
// summary status; only the caller's context aborts a run.
func (a *Analyzer) analyze(ctx context.Context, country string) CountryResult {
	logger := zerolog.Ctx(ctx).With().Str("country", country).Logger()
	summary := domain.GroupSummary{Country: country}

	if _, skipped := a.skip[country]; skipped {
		summary.Status = domain.GroupSkipped
		logger.Debug().Msg("country skipped by configuration")
		return CountryResult{Summary: summary}
	}

	center, ok := a.lookup.CenterOf(country)
	if !ok {
		summary.Status = domain.GroupLookupMiss
		summary.Reason = domain.ErrLookupMiss.Error()
		logger.Warn().Msg("no reference center for country, skipping")
		return CountryResult{Summary: summary}
	}

	list, err := a.source.ListAirports(ctx, country)
	if err != nil {
		summary.Status = domain.GroupSourceError
		summary.Reason = err.Error()
		logger.Error().Err(err).Msg("failed to load airports")
		return CountryResult{Summary: summary}
	}

	result, err := AnalyzeCountry(country, center, list, a.settings.Thresholds())
	if err != nil {
		summary.Status = domain.GroupInvalid
		summary.Count = len(list)
		summary.Reason = err.Error()
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			logger.Error().Str("airport", ve.AirportID).Str("field", ve.Field).Msg(ve.Reason)
		} else {
			logger.Error().Err(err).Msg("country analysis failed")
		}
		return CountryResult{Summary: summary}
	}

	if a.settings.Enrich && len(a.all) > 0 {
		enrich(result.Verdicts, a.all)
	}

	logger.Debug().
		Str("status", string(result.Summary.Status)).
		Int("airports", result.Summary.Count).
		Int("flagged", result.Summary.Flagged).
		Msg("country analyzed")
	return result
}

// emitter forwards results to the caller's sink and the run's collector. The
// first sink failure is kept and the sink is not called again; the collector
// keeps receiving so the report stays complete.
type emitter struct {
	sink      report.Sink
	collector *report.Collector
	metrics   *observability.Metrics
	sinkErr   *domain.SinkError
}

func (e *emitter) emit(ctx context.Context, r CountryResult) {
	country := r.Summary.Country
	for _, v := range r.Verdicts {
		_ = e.collector.OnVerdict(ctx, country, v)
		if e.sinkErr == nil {
			if err := e.sink.OnVerdict(ctx, country, v); err != nil {
				e.fail(ctx, "verdict", err)
			}
		}
	}

	_ = e.collector.OnGroupSummary(ctx, r.Summary)
	if e.sinkErr == nil {
		if err := e.sink.OnGroupSummary(ctx, r.Summary); err != nil {
			e.fail(ctx, "summary", err)
		}
	}
	e.metrics.GroupDone(r.Summary)
}

func (e *emitter) fail(ctx context.Context, op string, err error) {
	e.sinkErr = &domain.SinkError{Op: op, Err: err}
	zerolog.Ctx(ctx).Error().Err(err).Str("op", op).Msg("report sink failed, results kept in memory")
}
