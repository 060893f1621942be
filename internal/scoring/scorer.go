// Package scoring applies the enabled metrics to aligned pairs and rolls the
// results up into a document summary.
package scoring

import (
	"context"
	"fmt"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
	"github.com/custodia-labs/parity-cli/internal/core/ports/driven"
	"github.com/custodia-labs/parity-cli/internal/logger"
)

// rangeTolerance is how far outside [0,1] a metric may stray before it counts
// as a failure; values within it are clipped.
const rangeTolerance = 1e-6

// Scorer computes per-pair metric scores.
type Scorer struct {
	metrics []driven.Metric
	workers int
}

// NewScorer creates a scorer for the given metrics, scoring up to workers
// correspondences in parallel.
func NewScorer(metrics []driven.Metric, workers int) *Scorer {
	if workers < 1 {
		workers = 1
	}
	return &Scorer{metrics: metrics, workers: workers}
}

// Score fills the Scores of every correspondence in place.
// Aligned and partial pairs are scored by every metric; missing and extra
// entries receive zero for every metric. A failing metric records 0 and an
// issue without affecting the others. Each task writes only its own
// correspondence, so the result does not depend on scheduling.
func (s *Scorer) Score(ctx context.Context, corrs []domain.Correspondence, idx *domain.BlockIndex) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i := range corrs {
		c := &corrs[i]
		c.Scores = make(map[string]float64, len(s.metrics))
		for _, m := range s.metrics {
			c.Scores[m.Name()] = 0
		}
		if !c.Status.IsMatched() {
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src, tgt := idx.Pair(c)
			if src == nil || tgt == nil {
				return nil
			}
			s.scorePair(c, src.ComparableText(), tgt.ComparableText())
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrAborted, err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrAborted, err)
	}
	return nil
}

func (s *Scorer) scorePair(c *domain.Correspondence, src, tgt string) {
	for _, m := range s.metrics {
		v, err := evaluate(m, src, tgt)
		if err != nil {
			logger.Warn("metric %s failed on %s: %v", m.Name(), *c.SourceRef, err)
			c.AddIssue("metric %s failed: %s", m.Name(), reason(err))
			v = 0
		}
		c.Scores[m.Name()] = v
	}
}

// evaluate calls the metric and checks its result. Panics are recovered.
func evaluate(m driven.Metric, src, tgt string) (v float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = 0, fmt.Errorf("%w: panic: %v", domain.ErrMetricFailure, r)
		}
	}()

	v, err = m.Score(src, tgt)
	switch {
	case err != nil:
		return 0, fmt.Errorf("%w: %w", domain.ErrMetricFailure, err)
	case math.IsNaN(v) || math.IsInf(v, 0):
		return 0, fmt.Errorf("%w: non-finite value %v", domain.ErrMetricFailure, v)
	case v < -rangeTolerance || v > 1+rangeTolerance:
		return 0, fmt.Errorf("%w: value %v out of range [0,1]", domain.ErrMetricFailure, v)
	}
	return math.Min(1, math.Max(0, v)), nil
}

// reason strips the sentinel prefix from a metric failure.
func reason(err error) string {
	return strings.TrimPrefix(err.Error(), domain.ErrMetricFailure.Error()+": ")
}
