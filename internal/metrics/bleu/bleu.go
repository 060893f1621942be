// Package bleu provides a sentence-level BLEU metric.
//
// The target is the candidate and the source is the single reference.
// Modified n-gram precisions up to MaxN are combined by geometric mean,
// with add-one smoothing for n > 1, and scaled by the brevity penalty.
package bleu

import (
	"math"
	"strings"

	"github.com/custodia-labs/parity-cli/internal/core/ports/driven"
	"github.com/custodia-labs/parity-cli/internal/textvec"
)

// Name is the registry name of the metric.
const Name = "bleu"

// DefaultMaxN is the default highest n-gram order.
const DefaultMaxN = 4

// Ensure Metric implements the interface.
var _ driven.Metric = (*Metric)(nil)

// Metric scores n-gram overlap between source and target.
type Metric struct {
	maxN int
}

// Option configures the metric.
type Option func(*Metric)

// WithMaxN sets the highest n-gram order.
func WithMaxN(n int) Option {
	return func(m *Metric) {
		if n > 0 {
			m.maxN = n
		}
	}
}

// New creates the metric with the given options.
func New(opts ...Option) *Metric {
	m := &Metric{maxN: DefaultMaxN}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the metric name.
func (m *Metric) Name() string {
	return Name
}

// MaxN returns the highest n-gram order.
func (m *Metric) MaxN() int {
	return m.maxN
}

// Score returns the smoothed BLEU score of target against source.
func (m *Metric) Score(source, target string) (float64, error) {
	ref, cand := textvec.Tokenize(source), textvec.Tokenize(target)
	if strings.Join(ref, " ") == strings.Join(cand, " ") {
		return 1, nil
	}
	if len(ref) == 0 || len(cand) == 0 {
		return 0, nil
	}

	order := min(m.maxN, len(cand))
	var logSum float64
	for n := 1; n <= order; n++ {
		refCounts := ngrams(ref, n)
		candCounts := ngrams(cand, n)

		matched, total := 0, len(cand)-n+1
		for gram, c := range candCounts {
			matched += min(c, refCounts[gram])
		}

		var p float64
		if n == 1 {
			if matched == 0 {
				return 0, nil
			}
			p = float64(matched) / float64(total)
		} else {
			p = float64(matched+1) / float64(total+1)
		}
		logSum += math.Log(p)
	}

	bp := 1.0
	if len(cand) < len(ref) {
		bp = math.Exp(1 - float64(len(ref))/float64(len(cand)))
	}
	return bp * math.Exp(logSum/float64(order)), nil
}

func ngrams(tokens []string, n int) map[string]int {
	out := make(map[string]int, len(tokens))
	for i := 0; i+n <= len(tokens); i++ {
		out[strings.Join(tokens[i:i+n], "\x00")]++
	}
	return out
}
