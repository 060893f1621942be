// Package cosine provides a token-count cosine metric, a cheap proxy for
// vector similarity that needs no corpus.
package cosine

import (
	"github.com/custodia-labs/parity-cli/internal/core/ports/driven"
	"github.com/custodia-labs/parity-cli/internal/textvec"
)

// Name is the registry name of the metric.
const Name = "cosine"

// Ensure Metric implements the interface.
var _ driven.Metric = (*Metric)(nil)

// Metric scores the cosine of normalised token counts.
type Metric struct{}

// New creates the metric.
func New() *Metric {
	return &Metric{}
}

// Name returns the metric name.
func (m *Metric) Name() string {
	return Name
}

// Score returns the cosine of the term-count vectors of source and target.
// Texts with identical normalised tokens score exactly 1.
func (m *Metric) Score(source, target string) (float64, error) {
	if textvec.Equal(source, target) {
		return 1, nil
	}
	return textvec.CountCosine(source, target), nil
}
