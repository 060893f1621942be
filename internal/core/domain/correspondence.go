package domain

import "fmt"

// AlignmentStatus classifies a correspondence.
type AlignmentStatus string

// Alignment statuses.
const (
	// StatusAligned pairs two blocks with high similarity.
	StatusAligned AlignmentStatus = "aligned"

	// StatusPartial pairs two blocks that need review.
	StatusPartial AlignmentStatus = "partial_match"

	// StatusMissing marks a source block with no counterpart in the target.
	StatusMissing AlignmentStatus = "missing_in_target"

	// StatusExtra marks a target block with no counterpart in the source.
	StatusExtra AlignmentStatus = "extra_in_target"
)

// IsValid returns true if the status is recognised.
func (s AlignmentStatus) IsValid() bool {
	switch s {
	case StatusAligned, StatusPartial, StatusMissing, StatusExtra:
		return true
	default:
		return false
	}
}

// IsMatched returns true for statuses that pair two blocks.
func (s AlignmentStatus) IsMatched() bool {
	return s == StatusAligned || s == StatusPartial
}

// String returns the string representation.
func (s AlignmentStatus) String() string {
	return string(s)
}

// AllStatuses returns every alignment status in report order.
func AllStatuses() []AlignmentStatus {
	return []AlignmentStatus{StatusAligned, StatusPartial, StatusMissing, StatusExtra}
}

// Correspondence links zero or one source block to zero or one target block.
type Correspondence struct {
	// SourceRef is the source block ID, nil for extra_in_target.
	SourceRef *string `json:"source_ref"`

	// TargetRef is the target block ID, nil for missing_in_target.
	TargetRef *string `json:"target_ref"`

	// Status classifies the pairing.
	Status AlignmentStatus `json:"alignment_status"`

	// Similarity is the vector similarity the pair was committed with.
	Similarity float64 `json:"similarity"`

	// Section is the anchored section the pair was resolved in.
	Section string `json:"section,omitempty"`

	// Scores maps metric name to a value in [0,1].
	Scores map[string]float64 `json:"scores"`

	// Issues are human-readable findings, in the order they were raised.
	Issues []string `json:"issues"`

	// Severity is assigned after scoring by a SeverityClassifier.
	Severity Severity `json:"severity,omitempty"`

	// Table holds the cell-level diff for table pairs.
	Table *TableDiff `json:"table,omitempty"`
}

// AddIssue appends a finding.
func (c *Correspondence) AddIssue(format string, args ...any) {
	c.Issues = append(c.Issues, fmt.Sprintf(format, args...))
}

// CheckInvariants verifies the ref and score rules for the status.
func (c *Correspondence) CheckInvariants() error {
	switch c.Status {
	case StatusMissing:
		if c.SourceRef == nil || c.TargetRef != nil {
			return fmt.Errorf("%s: refs inconsistent", c.Status)
		}
	case StatusExtra:
		if c.SourceRef != nil || c.TargetRef == nil {
			return fmt.Errorf("%s: refs inconsistent", c.Status)
		}
	case StatusAligned, StatusPartial:
		if c.SourceRef == nil || c.TargetRef == nil {
			return fmt.Errorf("%s: both refs required", c.Status)
		}
		return nil
	default:
		return fmt.Errorf("unknown status %q", c.Status)
	}
	for name, v := range c.Scores {
		if v != 0 {
			return fmt.Errorf("%s: score %s = %v, want 0", c.Status, name, v)
		}
	}
	return nil
}

// CellStatus is the outcome of comparing one table cell.
type CellStatus string

// Cell statuses.
const (
	CellEqual     CellStatus = "equal"
	CellDifferent CellStatus = "different"
	CellMissing   CellStatus = "missing"
	CellExtra     CellStatus = "extra"
)

// ColumnPair maps a source column to a target column; -1 means absent.
type ColumnPair struct {
	Source int `json:"source"`
	Target int `json:"target"`
}

// RowPair maps a source row to a target row; -1 means absent.
type RowPair struct {
	Source int `json:"source"`
	Target int `json:"target"`
}

// CellDiff is the comparison of one cell of an aligned row.
type CellDiff struct {
	Row    int        `json:"row"`
	Col    int        `json:"col"`
	Status CellStatus `json:"status"`
	Source string     `json:"source,omitempty"`
	Target string     `json:"target,omitempty"`
}

// TableDiff is the structural comparison of two table blocks.
// Row and Col in cells refer to source indices, or target indices for extras.
type TableDiff struct {
	Columns          []ColumnPair `json:"columns"`
	Rows             []RowPair    `json:"rows"`
	Cells            []CellDiff   `json:"cells"`
	UncertainColumns bool         `json:"uncertain_column_mapping"`
}

// CountCells returns the number of cells with the given status.
func (d *TableDiff) CountCells(status CellStatus) int {
	n := 0
	for _, c := range d.Cells {
		if c.Status == status {
			n++
		}
	}
	return n
}

// Summary returns a one-line description of the cell diff.
func (d *TableDiff) Summary() string {
	return fmt.Sprintf("%d equal, %d different, %d missing, %d extra cells",
		d.CountCells(CellEqual), d.CountCells(CellDifferent),
		d.CountCells(CellMissing), d.CountCells(CellExtra))
}

// StringPtr returns a pointer to a copy of s.
func StringPtr(s string) *string {
	return &s
}
