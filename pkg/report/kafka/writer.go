// Package kafka publishes analysis results to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/de-tools/airport-atlas/pkg/models/domain"
	"github.com/de-tools/airport-atlas/pkg/report"
)

type Settings struct {
	Brokers []string
	Topic   string
	// AllVerdicts publishes unflagged verdicts too.
	AllVerdicts bool
	// Summaries publishes group summaries alongside verdicts.
	Summaries bool
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer is a report.Sink producing one message per verdict, keyed by airport.
type Writer struct {
	writer   messageWriter
	settings Settings
	clock    clockwork.Clock
}

// NewWriter creates a producer for the configured topic.
func NewWriter(settings Settings) (*Writer, error) {
	if len(settings.Brokers) == 0 {
		return nil, fmt.Errorf("at least one kafka broker must be configured")
	}
	if settings.Topic == "" {
		return nil, fmt.Errorf("kafka topic must be configured")
	}
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(settings.Brokers...),
		Topic:        settings.Topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return newWriter(w, settings, clockwork.NewRealClock()), nil
}

func newWriter(w messageWriter, settings Settings, clock clockwork.Clock) *Writer {
	return &Writer{writer: w, settings: settings, clock: clock}
}

func (w *Writer) OnVerdict(ctx context.Context, country string, verdict domain.OutlierVerdict) error {
	if !verdict.Flagged && !w.settings.AllVerdicts {
		return nil
	}
	msg, err := serializeVerdict(report.RunIDFrom(ctx), country, verdict, w.clock.Now())
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish verdict %s: %w", verdict.Airport.ID, err)
	}
	zerolog.Ctx(ctx).Debug().Str("airport", verdict.Airport.ID).Msg("published verdict")
	return nil
}

func (w *Writer) OnGroupSummary(ctx context.Context, summary domain.GroupSummary) error {
	if !w.settings.Summaries {
		return nil
	}
	msg, err := serializeSummary(report.RunIDFrom(ctx), summary, w.clock.Now())
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish summary %q: %w", summary.Country, err)
	}
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func headers(kind, runID, country string, at time.Time) []kafkago.Header {
	return []kafkago.Header{
		{Key: "event_type", Value: []byte(kind)},
		{Key: "run_id", Value: []byte(runID)},
		{Key: "country", Value: []byte(country)},
		{Key: "published_at", Value: []byte(at.UTC().Format(time.RFC3339))},
	}
}

func serializeVerdict(runID, country string, verdict domain.OutlierVerdict, at time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(verdict)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize verdict: %w", err)
	}
	h := headers(report.EventVerdict, runID, country, at)
	h = append(h, kafkago.Header{Key: "flagged", Value: []byte(strconv.FormatBool(verdict.Flagged))})
	return kafkago.Message{
		Key:     []byte(verdict.Airport.ID),
		Value:   data,
		Headers: h,
	}, nil
}

func serializeSummary(runID string, summary domain.GroupSummary, at time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(summary)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize summary: %w", err)
	}
	return kafkago.Message{
		Key:     []byte(summary.Country),
		Value:   data,
		Headers: headers(report.EventSummary, runID, summary.Country, at),
	}, nil
}
