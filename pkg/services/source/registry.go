// Package source turns configuration into an airport source.
package source

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/de-tools/airport-atlas/pkg/services/config"
	"github.com/de-tools/airport-atlas/pkg/store/airports"
)

// Factory creates a source for a configuration. The returned closer releases
// whatever the source holds open and may be nil.
type Factory func(ctx context.Context, cfg config.SourceConfig) (airports.Source, io.Closer, error)

// Registry manages source factories by source type
type Registry interface {
	// Register adds a new source factory
	Register(kind string, factory Factory) error
	// Create instantiates the source named by cfg.Type
	Create(ctx context.Context, cfg config.SourceConfig) (airports.Source, io.Closer, error)
	// ListTypes returns the registered source types, sorted
	ListTypes() []string
}

type registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a registry pre-populated with factories
func NewRegistry(factories map[string]Factory) Registry {
	r := &registry{
		factories: make(map[string]Factory, len(factories)),
	}
	for kind, f := range factories {
		r.factories[kind] = f
	}
	return r
}

func (r *registry) Register(kind string, factory Factory) error {
	if kind == "" {
		return fmt.Errorf("source type cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("source type %q is already registered", kind)
	}

	r.factories[kind] = factory
	return nil
}

func (r *registry) Create(ctx context.Context, cfg config.SourceConfig) (airports.Source, io.Closer, error) {
	r.mu.RLock()
	factory, exists := r.factories[cfg.Type]
	r.mu.RUnlock()

	if !exists {
		return nil, nil, fmt.Errorf("source type %q is not registered", cfg.Type)
	}

	return factory(ctx, cfg)
}

func (r *registry) ListTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
