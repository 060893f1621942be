// Package metrics provides the pluggable translation quality metrics.
package metrics

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
	"github.com/custodia-labs/parity-cli/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.MetricFactory = (*Registry)(nil)

// BuilderFunc creates a Metric from generic config.
// Config is a map of metric-specific settings parsed from user config.
type BuilderFunc func(cfg map[string]any) (driven.Metric, error)

// Registry maps metric names to their builders.
// It allows dynamic construction of metrics from configuration.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry creates a new metric registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]BuilderFunc),
	}
}

// Register adds a metric builder to the registry.
// Name should be unique and match the metric's Name() return value.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build creates a metric by name with the given config.
// Returns an error wrapping domain.ErrUnsupportedType if the name is not registered.
func (r *Registry) Build(name string, cfg map[string]any) (driven.Metric, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown metric %q", domain.ErrUnsupportedType, name)
	}
	return builder(cfg)
}

// BuildEnabled builds the metrics enabled in settings, in settings order.
// An unknown metric name is a configuration error.
func (r *Registry) BuildEnabled(settings *domain.CompareSettings) ([]driven.Metric, error) {
	out := make([]driven.Metric, 0, len(settings.Metrics))
	for _, name := range settings.Metrics {
		if !r.Has(name) {
			return nil, fmt.Errorf("%w: unknown metric %q (available: %v)",
				domain.ErrInvalidConfig, name, r.Names())
		}
		m, err := r.Build(name, settings.GetMetricConfig(name))
		if err != nil {
			return nil, fmt.Errorf("%w: metric %s: %w", domain.ErrInvalidConfig, name, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// Has returns true if a metric with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names returns all registered metric names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
