package domain

import "time"

// DocumentSummary aggregates all correspondences of a run.
type DocumentSummary struct {
	// SourceBlocks is the number of well-formed source blocks.
	SourceBlocks int `json:"source_blocks"`

	// TargetBlocks is the number of well-formed target blocks.
	TargetBlocks int `json:"target_blocks"`

	// MalformedBlocks counts blocks excluded from alignment on both sides.
	MalformedBlocks int `json:"malformed_blocks"`

	// Counts holds the number of correspondences per status.
	Counts map[AlignmentStatus]int `json:"counts"`

	// Overall is the length-weighted score per metric.
	Overall map[string]float64 `json:"overall"`

	// QualityIndexBase is the weighted sum of the overall metric scores.
	QualityIndexBase float64 `json:"quality_index_base"`

	// Coverage is the fraction of source blocks that were matched.
	Coverage float64 `json:"coverage"`

	// QualityIndex is QualityIndexBase scaled by Coverage.
	QualityIndex float64 `json:"quality_index"`

	// Issues holds findings that could not be attached to a correspondence.
	Issues []string `json:"issues,omitempty"`
}

// Matched returns the number of aligned and partial correspondences.
func (s *DocumentSummary) Matched() int {
	return s.Counts[StatusAligned] + s.Counts[StatusPartial]
}

// ComparisonRun is the complete, immutable result of comparing one document pair.
type ComparisonRun struct {
	// ID uniquely identifies the run.
	ID string `json:"id"`

	// SourceURI is where the source blocks came from.
	SourceURI string `json:"source_uri"`

	// TargetURI is where the target blocks came from.
	TargetURI string `json:"target_uri"`

	// CreatedAt is when the run finished.
	CreatedAt time.Time `json:"created_at"`

	// Settings are the validated settings the run used.
	Settings CompareSettings `json:"settings"`

	// Correspondences are ordered by source position.
	Correspondences []Correspondence `json:"correspondences"`

	// Summary is the document-level rollup.
	Summary DocumentSummary `json:"summary"`
}

// RunInfo is the listing view of a stored run.
type RunInfo struct {
	ID           string    `json:"id"`
	SourceURI    string    `json:"source_uri"`
	TargetURI    string    `json:"target_uri"`
	CreatedAt    time.Time `json:"created_at"`
	QualityIndex float64   `json:"quality_index"`
	Coverage     float64   `json:"coverage"`
}

// Info returns the listing view of the run.
func (r *ComparisonRun) Info() RunInfo {
	return RunInfo{
		ID:           r.ID,
		SourceURI:    r.SourceURI,
		TargetURI:    r.TargetURI,
		CreatedAt:    r.CreatedAt,
		QualityIndex: r.Summary.QualityIndex,
		Coverage:     r.Summary.Coverage,
	}
}
