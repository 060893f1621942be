package mcp

import (
	"github.com/custodia-labs/parity-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Compare aligns and scores document pairs.
	Compare driving.ComparisonService

	// Runs browses stored runs. Optional.
	Runs driving.RunService

	// Settings supplies the base settings for per-call overrides. Optional.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Compare == nil {
		return ErrMissingComparisonService
	}
	return nil
}
