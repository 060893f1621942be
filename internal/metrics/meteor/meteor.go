// Package meteor provides a METEOR-style unigram alignment metric.
//
// Tokens are matched one-to-one, exact matches first and then by a shared
// stem prefix. The score is the recall-weighted harmonic mean of unigram
// precision and recall, reduced by a fragmentation penalty that grows with
// the number of contiguous matched chunks.
package meteor

import (
	"github.com/custodia-labs/parity-cli/internal/core/ports/driven"
	"github.com/custodia-labs/parity-cli/internal/textvec"
)

// Name is the registry name of the metric.
const Name = "meteor"

// Default parameters.
const (
	DefaultAlpha      = 0.9
	DefaultStemPrefix = 5
	penaltyGamma      = 0.5
	penaltyBeta       = 3.0
)

// Ensure Metric implements the interface.
var _ driven.Metric = (*Metric)(nil)

// Metric scores unigram alignment between source and target.
type Metric struct {
	alpha      float64
	stemPrefix int
}

// Option configures the metric.
type Option func(*Metric)

// WithAlpha sets the recall weight of the harmonic mean.
func WithAlpha(alpha float64) Option {
	return func(m *Metric) {
		if alpha >= 0 && alpha <= 1 {
			m.alpha = alpha
		}
	}
}

// WithStemPrefix sets the shared prefix length that counts as a stem match.
// Zero disables stem matching.
func WithStemPrefix(n int) Option {
	return func(m *Metric) {
		if n >= 0 {
			m.stemPrefix = n
		}
	}
}

// New creates the metric with the given options.
func New(opts ...Option) *Metric {
	m := &Metric{alpha: DefaultAlpha, stemPrefix: DefaultStemPrefix}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the metric name.
func (m *Metric) Name() string {
	return Name
}

// Score returns the METEOR-style score of target against source.
func (m *Metric) Score(source, target string) (float64, error) {
	src, tgt := textvec.Tokenize(source), textvec.Tokenize(target)
	if equalTokens(src, tgt) {
		return 1, nil
	}
	if len(src) == 0 || len(tgt) == 0 {
		return 0, nil
	}

	// alignment[j] is the source index matched to target token j, or -1.
	alignment := make([]int, len(tgt))
	for j := range alignment {
		alignment[j] = -1
	}
	used := make([]bool, len(src))
	m.matchStage(src, tgt, alignment, used, func(a, b string) bool { return a == b })
	if m.stemPrefix > 0 {
		m.matchStage(src, tgt, alignment, used, m.sameStem)
	}

	matches, chunks := 0, 0
	prev := -2
	for _, i := range alignment {
		if i < 0 {
			prev = -2
			continue
		}
		matches++
		if i != prev+1 {
			chunks++
		}
		prev = i
	}
	if matches == 0 {
		return 0, nil
	}

	precision := float64(matches) / float64(len(tgt))
	recall := float64(matches) / float64(len(src))
	fmean := precision * recall / (m.alpha*precision + (1-m.alpha)*recall)

	frag := float64(chunks) / float64(matches)
	penalty := penaltyGamma
	for k := 0; k < int(penaltyBeta); k++ {
		penalty *= frag
	}
	return fmean * (1 - penalty), nil
}

// matchStage aligns each unmatched target token with the first unused
// source token accepted by match.
func (m *Metric) matchStage(src, tgt []string, alignment []int, used []bool, match func(a, b string) bool) {
	for j, t := range tgt {
		if alignment[j] >= 0 {
			continue
		}
		for i, s := range src {
			if !used[i] && match(s, t) {
				alignment[j] = i
				used[i] = true
				break
			}
		}
	}
}

func (m *Metric) sameStem(a, b string) bool {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < m.stemPrefix || len(rb) < m.stemPrefix {
		return false
	}
	for k := 0; k < m.stemPrefix; k++ {
		if ra[k] != rb[k] {
			return false
		}
	}
	return true
}

func equalTokens(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
