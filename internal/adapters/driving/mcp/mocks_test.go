package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
	"github.com/custodia-labs/parity-cli/internal/core/ports/driving"
)

// mockComparisonService is a mock implementation of driving.ComparisonService.
type mockComparisonService struct {
	run     *domain.ComparisonRun
	err     error
	lastReq driving.CompareRequest
}

func (m *mockComparisonService) CompareFiles(_ context.Context, req driving.CompareRequest) (*domain.ComparisonRun, error) {
	m.lastReq = req
	return m.run, m.err
}

func (m *mockComparisonService) Compare(_ context.Context, _ driving.CompareInput) (*domain.ComparisonRun, error) {
	return m.run, m.err
}

// mockRunService is a mock implementation of driving.RunService.
type mockRunService struct {
	runs      map[string]*domain.ComparisonRun
	infos     []domain.RunInfo
	err       error
	lastLimit int
}

func (m *mockRunService) List(_ context.Context, limit int) ([]domain.RunInfo, error) {
	m.lastLimit = limit
	return m.infos, m.err
}

func (m *mockRunService) Get(_ context.Context, id string) (*domain.ComparisonRun, error) {
	if m.err != nil {
		return nil, m.err
	}
	run, ok := m.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return run, nil
}

func (m *mockRunService) Delete(_ context.Context, _ string) error {
	return m.err
}

// sampleRun returns a run with one aligned, one partial and one missing pair.
func sampleRun() *domain.ComparisonRun {
	return &domain.ComparisonRun{
		ID:        "run-1234",
		SourceURI: "en.md",
		TargetURI: "de.md",
		CreatedAt: time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC),
		Correspondences: []domain.Correspondence{
			{SourceRef: domain.StringPtr("s1"), TargetRef: domain.StringPtr("t1"), Status: domain.StatusAligned,
				Similarity: 0.97, Scores: map[string]float64{"bleu": 0.9}, Severity: domain.SeverityInfo},
			{SourceRef: domain.StringPtr("s2"), TargetRef: domain.StringPtr("t2"), Status: domain.StatusPartial,
				Similarity: 0.6, Scores: map[string]float64{"bleu": 0.4}, Severity: domain.SeverityMinor},
			{SourceRef: domain.StringPtr("s3"), Status: domain.StatusMissing,
				Scores: map[string]float64{"bleu": 0}, Severity: domain.SeverityMajor},
		},
		Summary: domain.DocumentSummary{
			Counts: map[domain.AlignmentStatus]int{
				domain.StatusAligned: 1, domain.StatusPartial: 1, domain.StatusMissing: 1,
			},
			Overall:          map[string]float64{"bleu": 0.65},
			QualityIndexBase: 0.65,
			Coverage:         0.667,
			QualityIndex:     0.433,
		},
	}
}
