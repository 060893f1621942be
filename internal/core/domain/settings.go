package domain

import (
	"fmt"
	"math"
	"time"
)

// weightTolerance is how far the metric weights may drift from a sum of 1.
const weightTolerance = 1e-6

// CompareSettings is the validated configuration of one comparison run.
// It is constructed once per run and shared read-only by every component.
type CompareSettings struct {
	// HighThreshold is the similarity at or above which a pair is aligned.
	HighThreshold float64 `json:"high_threshold"`

	// ReviewThreshold is the minimum similarity for a pair to be committed.
	ReviewThreshold float64 `json:"review_threshold"`

	// Window bounds Pass B candidates, in block-position units.
	Window int `json:"window"`

	// TableTolerance is the allowed row or column count difference for tables.
	TableTolerance int `json:"table_tolerance"`

	// Metrics is the ordered list of enabled metric names.
	Metrics []string `json:"metrics"`

	// Weights maps metric name to its share of the quality index.
	Weights map[string]float64 `json:"weights"`

	// MetricConfigs holds per-metric configuration as generic maps.
	// Key is metric name, value is metric-specific config.
	MetricConfigs map[string]map[string]any `json:"metric_configs,omitempty"`

	// Workers bounds the number of section groups processed in parallel.
	Workers int `json:"workers"`

	// Timeout aborts the run when positive.
	Timeout time.Duration `json:"timeout"`

	// RiskKeywords raise the severity of unmatched or weak pairs containing them.
	RiskKeywords []string `json:"risk_keywords,omitempty"`
}

// DefaultCompareSettings returns settings with sensible defaults.
func DefaultCompareSettings() CompareSettings {
	return CompareSettings{
		HighThreshold:   0.80,
		ReviewThreshold: 0.55,
		Window:          8,
		TableTolerance:  0,
		Metrics:         []string{"meteor", "bleu", "cosine"},
		Weights: map[string]float64{
			"meteor": 0.5,
			"bleu":   0.3,
			"cosine": 0.2,
		},
		MetricConfigs: map[string]map[string]any{
			"bleu": {"max_n": 4},
		},
		Workers: 4,
		RiskKeywords: []string{
			"must", "shall", "warning", "danger", "caution",
			"prohibited", "contraindicated", "liability", "penalty",
		},
	}
}

// GetMetricConfig returns config for a specific metric, or nil if not set.
func (s *CompareSettings) GetMetricConfig(name string) map[string]any {
	if s.MetricConfigs == nil {
		return nil
	}
	return s.MetricConfigs[name]
}

// Weight returns the weight of a metric, 0 when unweighted.
func (s *CompareSettings) Weight(name string) float64 {
	return s.Weights[name]
}

// Validate rejects inconsistent settings.
// The returned error wraps ErrInvalidConfig.
func (s *CompareSettings) Validate() error {
	if !inUnit(s.HighThreshold) || !inUnit(s.ReviewThreshold) {
		return fmt.Errorf("%w: thresholds must be within [0,1] (high=%v, review=%v)",
			ErrInvalidConfig, s.HighThreshold, s.ReviewThreshold)
	}
	if s.ReviewThreshold > s.HighThreshold {
		return fmt.Errorf("%w: review threshold %v exceeds high threshold %v",
			ErrInvalidConfig, s.ReviewThreshold, s.HighThreshold)
	}
	if s.Window <= 0 {
		return fmt.Errorf("%w: window must be positive, got %d", ErrInvalidConfig, s.Window)
	}
	if s.TableTolerance < 0 {
		return fmt.Errorf("%w: table tolerance must not be negative", ErrInvalidConfig)
	}
	if s.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1", ErrInvalidConfig)
	}
	if s.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidConfig)
	}
	if len(s.Metrics) == 0 {
		return fmt.Errorf("%w: no metrics enabled", ErrInvalidConfig)
	}

	enabled := make(map[string]bool, len(s.Metrics))
	for _, name := range s.Metrics {
		if name == "" {
			return fmt.Errorf("%w: empty metric name", ErrInvalidConfig)
		}
		if enabled[name] {
			return fmt.Errorf("%w: metric %q enabled twice", ErrInvalidConfig, name)
		}
		enabled[name] = true
	}

	var sum float64
	for name, w := range s.Weights {
		if !enabled[name] {
			return fmt.Errorf("%w: weight given for disabled metric %q", ErrInvalidConfig, name)
		}
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: weight for %q must be non-negative", ErrInvalidConfig, name)
		}
		sum += w
	}
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("%w: metric weights sum to %v, want 1", ErrInvalidConfig, sum)
	}
	return nil
}

// Clone returns a deep copy so callers can override fields safely.
func (s CompareSettings) Clone() CompareSettings {
	out := s
	out.Metrics = append([]string(nil), s.Metrics...)
	out.RiskKeywords = append([]string(nil), s.RiskKeywords...)
	if s.Weights != nil {
		out.Weights = make(map[string]float64, len(s.Weights))
		for k, v := range s.Weights {
			out.Weights[k] = v
		}
	}
	if s.MetricConfigs != nil {
		out.MetricConfigs = make(map[string]map[string]any, len(s.MetricConfigs))
		for k, cfg := range s.MetricConfigs {
			inner := make(map[string]any, len(cfg))
			for ck, cv := range cfg {
				inner[ck] = cv
			}
			out.MetricConfigs[k] = inner
		}
	}
	return out
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}
