package driven

import (
	"context"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
)

// BlockExtractor turns a document file into an ordered block sequence.
// Each extractor handles specific file formats (e.g., Markdown, PDF).
type BlockExtractor interface {
	// Name returns the extractor name for logging and the --format flag.
	Name() string

	// Extensions returns the lower-case file extensions handled, with dot.
	Extensions() []string

	// Priority returns the selection priority (higher = preferred).
	// Structured formats return 90-100, document formats 50-89,
	// plain-text fallbacks 1-9.
	Priority() int

	// Extract reads the document at path and returns its blocks in
	// document order. Side is stamped on every block.
	Extract(ctx context.Context, path string, side domain.Side) ([]domain.Block, error)
}

// ExtractorRegistry selects the appropriate extractor for a file.
type ExtractorRegistry interface {
	// Extract reads path with the best matching extractor, or the named
	// one when format is non-empty.
	Extract(ctx context.Context, path, format string, side domain.Side) ([]domain.Block, error)

	// Register adds an extractor to the registry.
	Register(extractor BlockExtractor)

	// Formats returns the names of all registered extractors, sorted.
	Formats() []string
}
