package report

import (
	"context"
	"sync"

	"github.com/de-tools/airport-atlas/pkg/models/domain"
)

// Collector is a Sink that keeps everything in memory and assembles the groups
// of a Report.
type Collector struct {
	mu      sync.Mutex
	groups  []domain.GroupReport
	pending map[string][]domain.OutlierVerdict
	misses  []string
}

func NewCollector() *Collector {
	return &Collector{pending: make(map[string][]domain.OutlierVerdict)}
}

func (c *Collector) OnVerdict(_ context.Context, country string, verdict domain.OutlierVerdict) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[country] = append(c.pending[country], verdict)
	return nil
}

func (c *Collector) OnGroupSummary(_ context.Context, summary domain.GroupSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	verdicts := c.pending[summary.Country]
	delete(c.pending, summary.Country)

	c.groups = append(c.groups, domain.GroupReport{Summary: summary, Verdicts: verdicts})
	if summary.Status == domain.GroupLookupMiss {
		c.misses = append(c.misses, summary.Country)
	}
	return nil
}

func (c *Collector) Close() error {
	return nil
}

// Groups returns the collected groups in arrival order.
func (c *Collector) Groups() []domain.GroupReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.GroupReport, len(c.groups))
	copy(out, c.groups)
	return out
}

// LookupMisses returns the countries that had no reference center.
func (c *Collector) LookupMisses() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.misses))
	copy(out, c.misses)
	return out
}
