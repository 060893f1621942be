package driven

import (
	"io"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
)

// Reporter renders a finished comparison run.
type Reporter interface {
	// Format returns the report format name, e.g. "json".
	Format() string

	// Render writes the report for run to w.
	Render(w io.Writer, run *domain.ComparisonRun) error
}
