package jsonreport

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
)

func TestReporter_Render(t *testing.T) {
	run := &domain.ComparisonRun{
		ID:        "run-1",
		SourceURI: "en.md",
		TargetURI: "de.md",
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Correspondences: []domain.Correspondence{
			{SourceRef: domain.StringPtr("s1"), Status: domain.StatusMissing, Scores: map[string]float64{"bleu": 0}},
		},
		Summary: domain.DocumentSummary{QualityIndex: 0.25, Coverage: 0.5},
	}

	var buf bytes.Buffer
	require.NoError(t, New().Render(&buf, run))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded["id"])

	corrs := decoded["correspondences"].([]any)
	first := corrs[0].(map[string]any)
	assert.Equal(t, "missing_in_target", first["alignment_status"])
	assert.Nil(t, first["target_ref"])

	summary := decoded["summary"].(map[string]any)
	assert.Equal(t, 0.25, summary["quality_index"])
	assert.Contains(t, buf.String(), "\n  \"source_uri\": \"en.md\"")
}

func TestReporter_RenderNil(t *testing.T) {
	err := New().Render(&bytes.Buffer{}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReporter_Format(t *testing.T) {
	assert.Equal(t, "json", New().Format())
}
