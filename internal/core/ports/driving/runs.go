package driving

import (
	"context"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
)

// RunService browses stored comparison runs.
type RunService interface {
	// List returns the most recent runs, newest first.
	List(ctx context.Context, limit int) ([]domain.RunInfo, error)

	// Get retrieves a run by ID.
	Get(ctx context.Context, id string) (*domain.ComparisonRun, error)

	// Delete removes a run by ID.
	Delete(ctx context.Context, id string) error
}
