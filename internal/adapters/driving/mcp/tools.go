package mcp

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
	"github.com/custodia-labs/parity-cli/internal/core/ports/driving"
)

// CompareInput is the input schema for the compare_documents tool.
type CompareInput struct {
	SourcePath      string   `json:"source_path" jsonschema:"path to the source (original) document"`
	TargetPath      string   `json:"target_path" jsonschema:"path to the target (translated) document"`
	SourceFormat    string   `json:"source_format,omitempty" jsonschema:"force an extractor for the source, e.g. markdown or pdf"`
	TargetFormat    string   `json:"target_format,omitempty" jsonschema:"force an extractor for the target"`
	HighThreshold   *float64 `json:"high_threshold,omitempty" jsonschema:"similarity at or above which a pair is aligned"`
	ReviewThreshold *float64 `json:"review_threshold,omitempty" jsonschema:"minimum similarity for a pair to be matched"`
	Window          *int     `json:"window,omitempty" jsonschema:"position window for matching blocks outside anchored sections"`
	Save            bool     `json:"save,omitempty" jsonschema:"store the run so it can be fetched later"`
	Details         bool     `json:"details,omitempty" jsonschema:"include every correspondence, not only findings"`
}

// GetRunInput is the input schema for the get_run tool.
type GetRunInput struct {
	ID      string `json:"id" jsonschema:"run ID or a unique prefix of at least four characters"`
	Details bool   `json:"details,omitempty" jsonschema:"include every correspondence, not only findings"`
}

// ListRunsInput is the input schema for the list_runs tool.
type ListRunsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of runs to return (default 20)"`
}

// RunOutput is the output schema of tools returning a run.
type RunOutput struct {
	ID               string                 `json:"id"`
	SourceURI        string                 `json:"source_uri"`
	TargetURI        string                 `json:"target_uri"`
	CreatedAt        string                 `json:"created_at"`
	QualityIndex     float64                `json:"quality_index"`
	QualityIndexBase float64                `json:"quality_index_base"`
	Coverage         float64                `json:"coverage"`
	Counts           map[string]int         `json:"counts"`
	Overall          map[string]float64     `json:"overall"`
	Issues           []string               `json:"issues"`
	Correspondences  []CorrespondenceOutput `json:"correspondences"`
}

// CorrespondenceOutput is one correspondence in tool output.
type CorrespondenceOutput struct {
	Source     string             `json:"source,omitempty"`
	Target     string             `json:"target,omitempty"`
	Status     string             `json:"status"`
	Severity   string             `json:"severity,omitempty"`
	Similarity float64            `json:"similarity"`
	Scores     map[string]float64 `json:"scores"`
	Issues     []string           `json:"issues"`
}

// ListRunsOutput is the output schema for the list_runs tool.
type ListRunsOutput struct {
	Runs  []RunInfoOutput `json:"runs"`
	Count int             `json:"count"`
}

// RunInfoOutput is one run listing.
type RunInfoOutput struct {
	ID           string  `json:"id"`
	SourceURI    string  `json:"source_uri"`
	TargetURI    string  `json:"target_uri"`
	CreatedAt    string  `json:"created_at"`
	QualityIndex float64 `json:"quality_index"`
	Coverage     float64 `json:"coverage"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "compare_documents",
		Description: "Align a source document with its translation and score the translation quality",
	}, s.handleCompare)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_run",
		Description: "Fetch a stored comparison run",
	}, s.handleGetRun)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_runs",
		Description: "List stored comparison runs, most recent first",
	}, s.handleListRuns)
}

// handleCompare handles the compare_documents tool invocation.
func (s *Server) handleCompare(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CompareInput,
) (*mcp.CallToolResult, RunOutput, error) {
	settings, err := s.overrideSettings(input)
	if err != nil {
		return nil, RunOutput{}, err
	}

	run, err := s.ports.Compare.CompareFiles(ctx, driving.CompareRequest{
		SourcePath:   input.SourcePath,
		TargetPath:   input.TargetPath,
		SourceFormat: input.SourceFormat,
		TargetFormat: input.TargetFormat,
		Settings:     settings,
		Save:         input.Save,
	})
	if run == nil {
		return nil, RunOutput{}, err
	}
	// A run whose save failed is still returned; the failure becomes an issue.
	out := runOutput(run, input.Details)
	if err != nil && !slices.Contains(out.Issues, err.Error()) {
		out.Issues = append(out.Issues, err.Error())
	}
	return nil, out, nil
}

// overrideSettings returns nil when the input overrides nothing.
func (s *Server) overrideSettings(input CompareInput) (*domain.CompareSettings, error) {
	if input.HighThreshold == nil && input.ReviewThreshold == nil && input.Window == nil {
		return nil, nil
	}

	base := domain.DefaultCompareSettings()
	if s.ports.Settings != nil {
		stored, err := s.ports.Settings.Get()
		if err != nil {
			return nil, fmt.Errorf("loading settings: %w", err)
		}
		base = stored.Clone()
	}

	if input.HighThreshold != nil {
		base.HighThreshold = *input.HighThreshold
	}
	if input.ReviewThreshold != nil {
		base.ReviewThreshold = *input.ReviewThreshold
	}
	if input.Window != nil {
		base.Window = *input.Window
	}
	return &base, nil
}

// handleGetRun handles the get_run tool invocation.
func (s *Server) handleGetRun(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetRunInput,
) (*mcp.CallToolResult, RunOutput, error) {
	if s.ports.Runs == nil {
		return nil, RunOutput{}, ErrRunsUnavailable
	}

	run, err := s.ports.Runs.Get(ctx, input.ID)
	if err != nil {
		return nil, RunOutput{}, err
	}
	return nil, runOutput(run, input.Details), nil
}

// handleListRuns handles the list_runs tool invocation.
func (s *Server) handleListRuns(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListRunsInput,
) (*mcp.CallToolResult, ListRunsOutput, error) {
	if s.ports.Runs == nil {
		return nil, ListRunsOutput{}, ErrRunsUnavailable
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	infos, err := s.ports.Runs.List(ctx, limit)
	if err != nil {
		return nil, ListRunsOutput{}, err
	}

	output := ListRunsOutput{
		Runs:  make([]RunInfoOutput, len(infos)),
		Count: len(infos),
	}
	for i := range infos {
		output.Runs[i] = runInfoOutput(infos[i])
	}
	return nil, output, nil
}

// runOutput converts a run. Without details only non-aligned or flagged
// correspondences are listed.
func runOutput(run *domain.ComparisonRun, details bool) RunOutput {
	sum := &run.Summary
	out := RunOutput{
		ID:               run.ID,
		SourceURI:        run.SourceURI,
		TargetURI:        run.TargetURI,
		CreatedAt:        run.CreatedAt.UTC().Format(time.RFC3339),
		QualityIndex:     sum.QualityIndex,
		QualityIndexBase: sum.QualityIndexBase,
		Coverage:         sum.Coverage,
		Counts:           make(map[string]int, len(sum.Counts)),
		Overall:          make(map[string]float64, len(sum.Overall)),
		Issues:           append([]string{}, sum.Issues...),
		Correspondences:  []CorrespondenceOutput{},
	}
	for status, n := range sum.Counts {
		out.Counts[string(status)] = n
	}
	for name, v := range sum.Overall {
		out.Overall[name] = v
	}

	for i := range run.Correspondences {
		c := &run.Correspondences[i]
		if !details && c.Status == domain.StatusAligned && len(c.Issues) == 0 {
			continue
		}
		out.Correspondences = append(out.Correspondences, correspondenceOutput(c))
	}
	return out
}

func correspondenceOutput(c *domain.Correspondence) CorrespondenceOutput {
	out := CorrespondenceOutput{
		Status:     string(c.Status),
		Severity:   string(c.Severity),
		Similarity: c.Similarity,
		Scores:     make(map[string]float64, len(c.Scores)),
		Issues:     append([]string{}, c.Issues...),
	}
	if c.SourceRef != nil {
		out.Source = *c.SourceRef
	}
	if c.TargetRef != nil {
		out.Target = *c.TargetRef
	}
	for name, v := range c.Scores {
		out.Scores[name] = v
	}
	return out
}

func runInfoOutput(info domain.RunInfo) RunInfoOutput {
	return RunInfoOutput{
		ID:           info.ID,
		SourceURI:    info.SourceURI,
		TargetURI:    info.TargetURI,
		CreatedAt:    info.CreatedAt.UTC().Format(time.RFC3339),
		QualityIndex: info.QualityIndex,
		Coverage:     info.Coverage,
	}
}
