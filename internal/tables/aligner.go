// Package tables compares the structure and cells of paired table blocks.
package tables

import (
	"sort"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
	"github.com/custodia-labs/parity-cli/internal/textvec"
)

// IssueUncertainColumns is raised when any column was mapped by position.
const IssueUncertainColumns = "uncertain_column_mapping"

// Aligner aligns the columns, rows and cells of two tables.
type Aligner struct {
	review    float64
	tolerance int
}

// New creates a table aligner. Header and key cells pair when their
// similarity reaches review; row and column counts may differ by tolerance.
func New(review float64, tolerance int) *Aligner {
	if tolerance < 0 {
		tolerance = 0
	}
	return &Aligner{review: review, tolerance: tolerance}
}

// Apply diffs the tables of a matched correspondence in place, appends one
// issue per affected cell, row or count, and downgrades an aligned pair to
// partial_match when the tables do not agree structurally.
// Pairs that are not two tables are left untouched.
func (a *Aligner) Apply(c *domain.Correspondence, src, tgt *domain.Block) {
	if !c.Status.IsMatched() || src == nil || tgt == nil {
		return
	}
	if src.Type != domain.BlockTable || tgt.Type != domain.BlockTable {
		return
	}

	diff := a.Align(src.TableMatrix, tgt.TableMatrix)
	c.Table = diff

	downgrade := false
	if rs, rt := len(src.TableMatrix), len(tgt.TableMatrix); abs(rs-rt) > a.tolerance {
		c.AddIssue("table row count %d vs %d", rs, rt)
		downgrade = true
	}
	if cs, ct := width(src.TableMatrix), width(tgt.TableMatrix); abs(cs-ct) > a.tolerance {
		c.AddIssue("table column count %d vs %d", cs, ct)
		downgrade = true
	}
	if diff.UncertainColumns {
		c.AddIssue(IssueUncertainColumns)
	}
	for _, r := range diff.Rows {
		switch {
		case r.Target < 0:
			c.AddIssue("table[missing] row %d", r.Source+1)
			downgrade = true
		case r.Source < 0:
			c.AddIssue("table[extra] row %d", r.Target+1)
			downgrade = true
		}
	}
	for _, cell := range diff.Cells {
		switch cell.Status {
		case domain.CellMissing:
			c.AddIssue("table[missing] cell r%dc%d: %q", cell.Row+1, cell.Col+1, cell.Source)
			downgrade = true
		case domain.CellExtra:
			c.AddIssue("table[extra] cell r%dc%d: %q", cell.Row+1, cell.Col+1, cell.Target)
			downgrade = true
		}
	}

	if downgrade && c.Status == domain.StatusAligned {
		c.Status = domain.StatusPartial
	}
}

// Align computes the column mapping, row mapping and per-cell diff of two
// row-major tables.
func (a *Aligner) Align(src, tgt [][]string) *domain.TableDiff {
	diff := &domain.TableDiff{}
	diff.Columns, diff.UncertainColumns = a.alignColumns(src, tgt)
	diff.Rows = a.alignRows(src, tgt, diff.Columns)
	diff.Cells = diffCells(src, tgt, diff.Rows, diff.Columns)
	return diff
}

type scored struct {
	i, j int
	sim  float64
}

// matchGreedy pairs indices in descending similarity, ties by lowest indices.
func matchGreedy(cands []scored) map[int]int {
	sort.SliceStable(cands, func(x, y int) bool {
		if cands[x].sim != cands[y].sim {
			return cands[x].sim > cands[y].sim
		}
		if cands[x].i != cands[y].i {
			return cands[x].i < cands[y].i
		}
		return cands[x].j < cands[y].j
	})
	out := make(map[int]int)
	usedJ := make(map[int]bool)
	for _, c := range cands {
		if _, ok := out[c.i]; ok || usedJ[c.j] {
			continue
		}
		out[c.i] = c.j
		usedJ[c.j] = true
	}
	return out
}

func (a *Aligner) alignColumns(src, tgt [][]string) ([]domain.ColumnPair, bool) {
	ns, nt := width(src), width(tgt)

	matched := map[int]int{}
	if hasHeader(src) && hasHeader(tgt) {
		hs, ht := src[0], tgt[0]
		corpus := textvec.NewCorpus(append(append([]string(nil), hs...), ht...))
		var cands []scored
		for i, s := range hs {
			vs := corpus.Vectorize(s)
			for j, t := range ht {
				if sim := textvec.Cosine(vs, corpus.Vectorize(t)); sim >= a.review && sim > 0 {
					cands = append(cands, scored{i: i, j: j, sim: sim})
				}
			}
		}
		matched = matchGreedy(cands)
	}

	// Leftover columns pair by position and make the mapping uncertain.
	var leftS, leftT []int
	usedT := make(map[int]bool, len(matched))
	for _, j := range matched {
		usedT[j] = true
	}
	for i := 0; i < ns; i++ {
		if _, ok := matched[i]; !ok {
			leftS = append(leftS, i)
		}
	}
	for j := 0; j < nt; j++ {
		if !usedT[j] {
			leftT = append(leftT, j)
		}
	}

	uncertain := len(matched) == 0 && (ns > 0 || nt > 0)
	for k := 0; k < len(leftS) && k < len(leftT); k++ {
		matched[leftS[k]] = leftT[k]
		usedT[leftT[k]] = true
		uncertain = true
	}

	cols := make([]domain.ColumnPair, 0, max(ns, nt))
	for i := 0; i < ns; i++ {
		if j, ok := matched[i]; ok {
			cols = append(cols, domain.ColumnPair{Source: i, Target: j})
		} else {
			cols = append(cols, domain.ColumnPair{Source: i, Target: -1})
		}
	}
	for j := 0; j < nt; j++ {
		if !usedT[j] {
			cols = append(cols, domain.ColumnPair{Source: -1, Target: j})
		}
	}
	return cols, uncertain
}

func (a *Aligner) alignRows(src, tgt [][]string, cols []domain.ColumnPair) []domain.RowPair {
	if len(src) == 0 || len(tgt) == 0 {
		return leftoverRows(len(src), len(tgt), nil)
	}

	matched := map[int]int{0: 0}

	keyS, keyT := -1, -1
	for _, c := range cols {
		if c.Source >= 0 && c.Target >= 0 {
			keyS, keyT = c.Source, c.Target
			break
		}
	}

	body := map[int]int{}
	if keyS >= 0 {
		var texts []string
		for _, row := range src[1:] {
			texts = append(texts, cellAt(row, keyS))
		}
		for _, row := range tgt[1:] {
			texts = append(texts, cellAt(row, keyT))
		}
		corpus := textvec.NewCorpus(texts)

		var cands []scored
		for i := 1; i < len(src); i++ {
			vs := corpus.Vectorize(cellAt(src[i], keyS))
			for j := 1; j < len(tgt); j++ {
				if sim := textvec.Cosine(vs, corpus.Vectorize(cellAt(tgt[j], keyT))); sim >= a.review && sim > 0 {
					cands = append(cands, scored{i: i, j: j, sim: sim})
				}
			}
		}
		body = matchGreedy(cands)
	}
	for i, j := range body {
		matched[i] = j
	}

	// Leftover body rows pair by position in their remaining order.
	usedT := make(map[int]bool, len(matched))
	for _, j := range matched {
		usedT[j] = true
	}
	var leftT []int
	for j := 1; j < len(tgt); j++ {
		if !usedT[j] {
			leftT = append(leftT, j)
		}
	}
	for i := 1; i < len(src) && len(leftT) > 0; i++ {
		if _, ok := matched[i]; !ok {
			matched[i] = leftT[0]
			leftT = leftT[1:]
		}
	}
	return leftoverRows(len(src), len(tgt), matched)
}

// leftoverRows lists the row pairs in source order followed by extra target rows.
func leftoverRows(ns, nt int, matched map[int]int) []domain.RowPair {
	usedT := make(map[int]bool, len(matched))
	rows := make([]domain.RowPair, 0, max(ns, nt))
	for i := 0; i < ns; i++ {
		if j, ok := matched[i]; ok {
			rows = append(rows, domain.RowPair{Source: i, Target: j})
			usedT[j] = true
		} else {
			rows = append(rows, domain.RowPair{Source: i, Target: -1})
		}
	}
	for j := 0; j < nt; j++ {
		if !usedT[j] {
			rows = append(rows, domain.RowPair{Source: -1, Target: j})
		}
	}
	return rows
}

func diffCells(src, tgt [][]string, rows []domain.RowPair, cols []domain.ColumnPair) []domain.CellDiff {
	var cells []domain.CellDiff
	for _, r := range rows {
		if r.Source < 0 || r.Target < 0 {
			continue
		}
		srow, trow := src[r.Source], tgt[r.Target]
		for _, c := range cols {
			sv, sok := lookup(srow, c.Source)
			tv, tok := lookup(trow, c.Target)
			switch {
			case sok && tok:
				status := domain.CellDifferent
				if textvec.Equal(sv, tv) {
					status = domain.CellEqual
				}
				cells = append(cells, domain.CellDiff{Row: r.Source, Col: c.Source, Status: status, Source: sv, Target: tv})
			case sok:
				cells = append(cells, domain.CellDiff{Row: r.Source, Col: c.Source, Status: domain.CellMissing, Source: sv})
			case tok:
				cells = append(cells, domain.CellDiff{Row: r.Target, Col: c.Target, Status: domain.CellExtra, Target: tv})
			}
		}
	}
	return cells
}

func lookup(row []string, col int) (string, bool) {
	if col < 0 || col >= len(row) {
		return "", false
	}
	return row[col], true
}

func cellAt(row []string, col int) string {
	v, _ := lookup(row, col)
	return v
}

func hasHeader(m [][]string) bool {
	if len(m) == 0 {
		return false
	}
	for _, cell := range m[0] {
		if len(textvec.Tokenize(cell)) > 0 {
			return true
		}
	}
	return false
}

func width(m [][]string) int {
	w := 0
	for _, row := range m {
		w = max(w, len(row))
	}
	return w
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
