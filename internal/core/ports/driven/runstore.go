package driven

import (
	"context"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
)

// RunStore persists comparison runs.
type RunStore interface {
	// Save stores a run. Saving an existing ID replaces it.
	Save(ctx context.Context, run *domain.ComparisonRun) error

	// Get retrieves a run by ID.
	// Returns domain.ErrNotFound when the run does not exist.
	Get(ctx context.Context, id string) (*domain.ComparisonRun, error)

	// List returns run listings, most recent first.
	// A limit of zero or less returns every run.
	List(ctx context.Context, limit int) ([]domain.RunInfo, error)

	// Delete removes a run.
	// Returns domain.ErrNotFound when the run does not exist.
	Delete(ctx context.Context, id string) error
}
