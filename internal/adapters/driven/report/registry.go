package report

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
	"github.com/custodia-labs/parity-cli/internal/core/ports/driven"
)

// Registry looks reporters up by format name.
type Registry struct {
	reporters map[string]driven.Reporter
}

// NewRegistry creates a registry holding the given reporters.
func NewRegistry(reporters ...driven.Reporter) *Registry {
	r := &Registry{reporters: make(map[string]driven.Reporter, len(reporters))}
	for _, rep := range reporters {
		r.reporters[rep.Format()] = rep
	}
	return r
}

// Get returns the reporter for format.
func (r *Registry) Get(format string) (driven.Reporter, error) {
	rep, ok := r.reporters[format]
	if !ok {
		return nil, fmt.Errorf("%w: report format %q (available: %v)", domain.ErrUnsupportedType, format, r.Formats())
	}
	return rep, nil
}

// Formats returns the registered format names, sorted.
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.reporters))
	for name := range r.reporters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
