package driving

import (
	"context"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
)

// CompareRequest describes one comparison of two document files.
type CompareRequest struct {
	// SourcePath and TargetPath locate the two documents.
	SourcePath string
	TargetPath string

	// SourceFormat and TargetFormat force an extractor by name.
	// Empty selects by file extension.
	SourceFormat string
	TargetFormat string

	// Settings overrides the stored settings when non-nil.
	Settings *domain.CompareSettings

	// Save stores the finished run when a run store is configured.
	Save bool
}

// CompareInput is a comparison of two already-extracted block sequences.
type CompareInput struct {
	SourceURI string
	TargetURI string
	Source    []domain.Block
	Target    []domain.Block

	// Settings overrides the stored settings when non-nil.
	Settings *domain.CompareSettings

	// Save stores the finished run when a run store is configured.
	Save bool
}

// ComparisonService aligns and scores document pairs.
type ComparisonService interface {
	// CompareFiles extracts both documents and compares them.
	CompareFiles(ctx context.Context, req CompareRequest) (*domain.ComparisonRun, error)

	// Compare aligns and scores two block sequences.
	// Invalid settings fail with domain.ErrInvalidConfig before any work starts;
	// cancellation and timeout fail with domain.ErrAborted and no partial run.
	Compare(ctx context.Context, in CompareInput) (*domain.ComparisonRun, error)
}
