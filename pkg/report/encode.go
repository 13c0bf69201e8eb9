package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/de-tools/airport-atlas/pkg/models/domain"
)

// JSONWriter writes the finished report as an indented JSON document.
type JSONWriter struct {
	writer io.Writer
}

func NewJSONWriter(writer io.Writer) *JSONWriter {
	if writer == nil {
		writer = os.Stdout
	}
	return &JSONWriter{writer: writer}
}

func (w *JSONWriter) Handle(report *domain.Report) error {
	enc := json.NewEncoder(w.writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}
	return nil
}

// YAMLWriter writes the finished report as a YAML document.
type YAMLWriter struct {
	writer io.Writer
}

func NewYAMLWriter(writer io.Writer) *YAMLWriter {
	if writer == nil {
		writer = os.Stdout
	}
	return &YAMLWriter{writer: writer}
}

func (w *YAMLWriter) Handle(report *domain.Report) error {
	enc := yaml.NewEncoder(w.writer)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode yaml report: %w", err)
	}
	return enc.Close()
}

// Event is one line of the JSON lines stream.
type Event struct {
	Type    string                 `json:"type"`
	Country string                 `json:"country"`
	Summary *domain.GroupSummary   `json:"summary,omitempty"`
	Verdict *domain.OutlierVerdict `json:"verdict,omitempty"`
}

const (
	EventVerdict = "verdict"
	EventSummary = "summary"
)

// JSONLines is a Sink streaming one JSON object per event.
type JSONLines struct {
	mu          sync.Mutex
	enc         *json.Encoder
	closer      io.Closer
	flaggedOnly bool
}

// NewJSONLines streams to writer. When flaggedOnly is set, unflagged verdicts
// are omitted. writer is closed on Close if it is an io.Closer other than
// os.Stdout.
func NewJSONLines(writer io.Writer, flaggedOnly bool) *JSONLines {
	s := &JSONLines{enc: json.NewEncoder(writer), flaggedOnly: flaggedOnly}
	if c, ok := writer.(io.Closer); ok && writer != os.Stdout {
		s.closer = c
	}
	return s
}

func (s *JSONLines) OnVerdict(_ context.Context, country string, verdict domain.OutlierVerdict) error {
	if s.flaggedOnly && !verdict.Flagged {
		return nil
	}
	return s.write(Event{Type: EventVerdict, Country: country, Verdict: &verdict})
}

func (s *JSONLines) OnGroupSummary(_ context.Context, summary domain.GroupSummary) error {
	return s.write(Event{Type: EventSummary, Country: summary.Country, Summary: &summary})
}

func (s *JSONLines) write(e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(e); err != nil {
		return fmt.Errorf("write %s event for %q: %w", e.Type, e.Country, err)
	}
	return nil
}

func (s *JSONLines) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
