// Package extractors provides implementations of the BlockExtractor
// interface for the document formats parity can compare. Each extractor
// turns one file format into an ordered block sequence.
//
// Extractors are registered with the Registry at startup.
package extractors

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
	"github.com/custodia-labs/parity-cli/internal/core/ports/driven"
	"github.com/custodia-labs/parity-cli/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry selects an extractor by name or file extension.
// When several extractors handle an extension the highest priority wins.
type Registry struct {
	mu         sync.RWMutex
	extractors []driven.BlockExtractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds an extractor to the registry.
func (r *Registry) Register(e driven.BlockExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors = append(r.extractors, e)
	sort.SliceStable(r.extractors, func(i, j int) bool {
		return r.extractors[i].Priority() > r.extractors[j].Priority()
	})
}

// Formats returns the names of all registered extractors, sorted.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.extractors))
	for _, e := range r.extractors {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// Select returns the extractor for path, or the named one when format is set.
func (r *Registry) Select(path, format string) (driven.BlockExtractor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if format != "" {
		for _, e := range r.extractors {
			if e.Name() == format {
				return e, nil
			}
		}
		return nil, fmt.Errorf("%w: unknown format %q", domain.ErrUnsupportedType, format)
	}

	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range r.extractors {
		for _, handled := range e.Extensions() {
			if handled == ext {
				return e, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: no extractor for %q files", domain.ErrUnsupportedType, ext)
}

// Extract reads path with the selected extractor.
func (r *Registry) Extract(ctx context.Context, path, format string, side domain.Side) ([]domain.Block, error) {
	e, err := r.Select(path, format)
	if err != nil {
		return nil, err
	}
	logger.Debug("extracting %s document %s with %s", side, path, e.Name())

	blocks, err := e.Extract(ctx, path, side)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}
	logger.Debug("extracted %d blocks from %s", len(blocks), path)
	return blocks, nil
}
