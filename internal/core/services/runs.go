package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
	"github.com/custodia-labs/parity-cli/internal/core/ports/driven"
	"github.com/custodia-labs/parity-cli/internal/core/ports/driving"
)

// Ensure RunService implements the interface.
var _ driving.RunService = (*RunService)(nil)

// RunService browses stored comparison runs.
type RunService struct {
	runStore driven.RunStore
}

// NewRunService creates a new run service.
func NewRunService(runStore driven.RunStore) *RunService {
	return &RunService{runStore: runStore}
}

// List returns the most recent runs, newest first.
func (s *RunService) List(ctx context.Context, limit int) ([]domain.RunInfo, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidInput)
	}
	return s.runStore.List(ctx, limit)
}

// Get retrieves a run by ID. A unique ID prefix of at least four
// characters is accepted.
func (s *RunService) Get(ctx context.Context, id string) (*domain.ComparisonRun, error) {
	full, err := s.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.runStore.Get(ctx, full)
}

// Delete removes a run by ID or unique prefix.
func (s *RunService) Delete(ctx context.Context, id string) error {
	full, err := s.resolve(ctx, id)
	if err != nil {
		return err
	}
	return s.runStore.Delete(ctx, full)
}

// minPrefix is the shortest ID prefix that is looked up.
const minPrefix = 4

// resolve expands an ID prefix to a full run ID.
func (s *RunService) resolve(ctx context.Context, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: run id is required", domain.ErrInvalidInput)
	}
	_, err := s.runStore.Get(ctx, id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}
	if len(id) < minPrefix {
		return "", fmt.Errorf("run %s: %w", id, domain.ErrNotFound)
	}

	infos, err := s.runStore.List(ctx, 0)
	if err != nil {
		return "", err
	}
	var match string
	for _, info := range infos {
		if !strings.HasPrefix(info.ID, id) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("%w: run id prefix %q is ambiguous", domain.ErrInvalidInput, id)
		}
		match = info.ID
	}
	if match == "" {
		return "", fmt.Errorf("run %s: %w", id, domain.ErrNotFound)
	}
	return match, nil
}
