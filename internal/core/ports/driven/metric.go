package driven

import "github.com/custodia-labs/parity-cli/internal/core/domain"

// Metric scores how closely a target text renders a source text.
// Implementations must be pure: the same inputs always give the same score,
// and they must be safe for concurrent use.
type Metric interface {
	// Name returns the metric name used in settings and reports.
	Name() string

	// Score returns a value in [0,1], 1 meaning identical.
	// Values outside the range and errors are recorded as metric failures.
	Score(source, target string) (float64, error)
}

// MetricFactory builds the metrics a run has enabled.
type MetricFactory interface {
	// BuildEnabled builds the metrics named in settings, in settings order.
	// Unknown or misconfigured metrics fail with domain.ErrInvalidConfig.
	BuildEnabled(settings *domain.CompareSettings) ([]Metric, error)

	// Names returns the names of every available metric, sorted.
	Names() []string
}
