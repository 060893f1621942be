// Package jsonreport renders a comparison run as indented JSON.
package jsonreport

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
	"github.com/custodia-labs/parity-cli/internal/core/ports/driven"
)

// Format is the report format name.
const Format = "json"

// Ensure Reporter implements the interface.
var _ driven.Reporter = (*Reporter)(nil)

// Reporter writes the complete run, correspondences included.
type Reporter struct{}

// New creates a JSON reporter.
func New() *Reporter {
	return &Reporter{}
}

// Format returns "json".
func (r *Reporter) Format() string {
	return Format
}

// Render writes run to w as indented JSON followed by a newline.
func (r *Reporter) Render(w io.Writer, run *domain.ComparisonRun) error {
	if run == nil {
		return fmt.Errorf("%w: no run to render", domain.ErrInvalidInput)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(run); err != nil {
		return fmt.Errorf("encoding run: %w", err)
	}
	return nil
}
