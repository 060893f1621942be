package aligner

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
)

func heading(id string, pos int, section, text string) domain.Block {
	return domain.Block{ID: id, Page: 1, Position: pos, Type: domain.BlockHeading, SectionID: section, Text: text}
}

func para(id string, pos int, section, text string) domain.Block {
	return domain.Block{ID: id, Page: 1, Position: pos, Type: domain.BlockParagraph, SectionID: section, Text: text}
}

// manual is a small sectioned document used across tests.
func manual(prefix string) []domain.Block {
	return []domain.Block{
		heading(prefix+"0", 0, "1", "1 Introduction"),
		para(prefix+"1", 1, "1", "The device measures blood pressure accurately."),
		heading(prefix+"2", 2, "5", "5 Safety"),
		para(prefix+"3", 3, "5", "Keep the device away from water."),
		heading(prefix+"4", 4, "5.1", "5.1 Storage"),
		para(prefix+"5", 5, "5.1", "Store at room temperature."),
		heading(prefix+"6", 6, "5.2", "5.2 Disposal"),
		para(prefix+"7", 7, "5.2", "Dispose of batteries at a collection point."),
		heading(prefix+"8", 8, "6", "6 Warranty"),
		para(prefix+"9", 9, "6", "The warranty lasts two years."),
	}
}

// renumber assigns consecutive positions in slice order.
func renumber(blocks []domain.Block) []domain.Block {
	out := make([]domain.Block, len(blocks))
	for i, b := range blocks {
		b.Position = i
		out[i] = b
	}
	return out
}

func run(t *testing.T, e *Engine, src, tgt []domain.Block) (*Result, []domain.Correspondence, []string) {
	t.Helper()
	res, err := e.Align(context.Background(), src, tgt)
	require.NoError(t, err)
	corrs, issues := Detect(res)
	return res, corrs, issues
}

func countStatus(corrs []domain.Correspondence, status domain.AlignmentStatus) int {
	n := 0
	for _, c := range corrs {
		if c.Status == status {
			n++
		}
	}
	return n
}

func ref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func TestAlign_IdenticalDocuments(t *testing.T) {
	_, corrs, issues := run(t, New(), manual("s"), manual("t"))

	require.Len(t, corrs, 10)
	assert.Empty(t, issues)
	for i, c := range corrs {
		assert.Equal(t, domain.StatusAligned, c.Status, "correspondence %d", i)
		assert.Equal(t, fmt.Sprintf("s%d", i), ref(c.SourceRef))
		assert.Equal(t, fmt.Sprintf("t%d", i), ref(c.TargetRef))
		assert.Empty(t, c.Issues)
		assert.NoError(t, c.CheckInvariants())
	}
}

func TestAlign_SectionRemoved(t *testing.T) {
	src := manual("s")
	var tgt []domain.Block
	for _, b := range manual("t") {
		if b.SectionID != "5.2" {
			tgt = append(tgt, b)
		}
	}
	tgt = renumber(tgt)

	_, corrs, _ := run(t, New(), src, tgt)

	missing := map[string]bool{}
	for _, c := range corrs {
		require.NoError(t, c.CheckInvariants())
		if c.Status == domain.StatusMissing {
			missing[ref(c.SourceRef)] = true
			assert.Contains(t, c.Issues, IssueMissing)
		}
	}
	assert.Equal(t, map[string]bool{"s6": true, "s7": true}, missing)
	assert.Equal(t, 8, countStatus(corrs, domain.StatusAligned))
	assert.Zero(t, countStatus(corrs, domain.StatusExtra))

	// Source order is preserved around the gap.
	var order []string
	for _, c := range corrs {
		order = append(order, ref(c.SourceRef))
	}
	assert.Equal(t, []string{"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9"}, order)
}

func TestAlign_ExtraParagraph(t *testing.T) {
	src := manual("s")
	tgt := manual("t")
	extra := para("tx", 0, "5", "Call support if the display flickers.")
	tgt = append(tgt[:4], append([]domain.Block{extra}, tgt[4:]...)...)
	tgt = renumber(tgt)

	_, corrs, _ := run(t, New(), src, tgt)

	require.Len(t, corrs, 11)
	assert.Equal(t, 1, countStatus(corrs, domain.StatusExtra))
	assert.Equal(t, 10, countStatus(corrs, domain.StatusAligned))

	// The extra follows the pair whose target precedes it.
	assert.Equal(t, "s3", ref(corrs[3].SourceRef))
	assert.Equal(t, domain.StatusExtra, corrs[4].Status)
	assert.Equal(t, "tx", ref(corrs[4].TargetRef))
	assert.Nil(t, corrs[4].SourceRef)
	assert.Equal(t, []string{IssueExtra}, corrs[4].Issues)
}

func TestAlign_ExtraBeforeAnyPair(t *testing.T) {
	src := []domain.Block{para("s0", 0, "", "The warranty lasts two years.")}
	tgt := []domain.Block{
		para("t0", 0, "", "Translated by an external agency."),
		para("t1", 1, "", "The warranty lasts two years."),
	}

	_, corrs, _ := run(t, New(), src, tgt)

	require.Len(t, corrs, 2)
	assert.Equal(t, domain.StatusExtra, corrs[0].Status)
	assert.Equal(t, "t0", ref(corrs[0].TargetRef))
	assert.Equal(t, "t1", ref(corrs[1].TargetRef))
}

func TestAlign_PassAPairsRepeatedNumbersInOrder(t *testing.T) {
	src := []domain.Block{
		heading("s0", 0, "A", "Annex"),
		heading("s1", 1, "A", "Annex"),
	}
	tgt := []domain.Block{
		heading("t0", 0, "A", "Anhang"),
		heading("t1", 1, "A", "Anhang"),
		heading("t2", 2, "A", "Anhang"),
	}

	res, corrs, _ := run(t, New(), src, tgt)

	require.Len(t, res.Anchors, 2)
	assert.Equal(t, "t0", ref(corrs[0].TargetRef))
	assert.Equal(t, "t1", ref(corrs[1].TargetRef))
	assert.Equal(t, 1.0, corrs[0].Similarity)
	assert.Equal(t, domain.StatusExtra, corrs[2].Status)
}

func TestAlign_TieBreakPrefersOrderPreserving(t *testing.T) {
	src := []domain.Block{
		para("s0", 0, "", "unique words here"),
		para("s1", 1, "", "dup"),
	}
	tgt := []domain.Block{
		para("t0", 0, "", "dup"),
		para("t1", 1, "", "unique words here"),
		para("t2", 3, "", "dup"),
	}

	_, corrs, _ := run(t, New(), src, tgt)

	pairs := map[string]string{}
	for _, c := range corrs {
		if c.Status.IsMatched() {
			pairs[ref(c.SourceRef)] = ref(c.TargetRef)
		}
	}
	// t0 would be closer to s1 but crosses the s0-t1 commitment.
	assert.Equal(t, map[string]string{"s0": "t1", "s1": "t2"}, pairs)
	assert.Equal(t, 1, countStatus(corrs, domain.StatusExtra))
}

func TestAlign_TieBreakPrefersSmallestDisplacement(t *testing.T) {
	src := []domain.Block{para("s0", 0, "", "same text"), para("s1", 1, "", "same text")}
	tgt := []domain.Block{para("t0", 0, "", "same text"), para("t1", 1, "", "same text")}

	_, corrs, _ := run(t, New(), src, tgt)

	require.Len(t, corrs, 2)
	assert.Equal(t, "t0", ref(corrs[0].TargetRef))
	assert.Equal(t, "t1", ref(corrs[1].TargetRef))
}

func TestAlign_WindowBound(t *testing.T) {
	var src, tgt []domain.Block
	for i := 0; i < 12; i++ {
		tgt = append(tgt, para(fmt.Sprintf("f%d", i), 0, "", fmt.Sprintf("filler%d note%d", i, i)))
	}
	for i := 0; i < 20; i++ {
		text := fmt.Sprintf("alpha%d beta%d gamma%d", i, i, i)
		src = append(src, para(fmt.Sprintf("s%d", i), i, "", text))
		tgt = append(tgt, para(fmt.Sprintf("t%d", i), 0, "", text))
	}
	tgt = renumber(tgt)

	t.Run("shift beyond window", func(t *testing.T) {
		_, corrs, _ := run(t, New(WithWindow(8)), src, tgt)
		assert.Zero(t, countStatus(corrs, domain.StatusAligned)+countStatus(corrs, domain.StatusPartial))
		assert.Equal(t, 20, countStatus(corrs, domain.StatusMissing))
		assert.Equal(t, 32, countStatus(corrs, domain.StatusExtra))
	})

	t.Run("shift inside window", func(t *testing.T) {
		res, corrs, _ := run(t, New(WithWindow(12)), src, tgt)
		assert.Equal(t, 20, countStatus(corrs, domain.StatusAligned))
		for _, c := range corrs {
			if !c.Status.IsMatched() {
				continue
			}
			s, tb := res.Index.Pair(&c)
			assert.LessOrEqual(t, abs(s.Position-tb.Position), 12)
		}
	})
}

func TestAlign_WindowRelativeToAnchor(t *testing.T) {
	src := manual("s")
	tgt := manual("t")
	// Preface on the target shifts every position by 15.
	var preface []domain.Block
	for i := 0; i < 15; i++ {
		preface = append(preface, para(fmt.Sprintf("p%d", i), 0, "", fmt.Sprintf("translator note %d", i)))
	}
	tgt = renumber(append(preface, tgt...))

	res, corrs, _ := run(t, New(WithWindow(2)), src, tgt)

	assert.Equal(t, 10, countStatus(corrs, domain.StatusAligned))
	for _, c := range corrs {
		if !c.Status.IsMatched() {
			continue
		}
		s, tb := res.Index.Pair(&c)
		if s.Type == domain.BlockHeading {
			continue
		}
		implied := impliedPosition(res.Anchors, s.Position)
		assert.LessOrEqual(t, abs(tb.Position-implied), 2)
	}
}

func TestAlign_Deterministic(t *testing.T) {
	src := manual("s")
	tgt := manual("t")
	tgt[3].Text = "Keep the device away from water and dust."
	tgt[7].Text = "Batteries go to a collection point."
	tgt = append(tgt, para("tx", 10, "6", "Extended warranty is available."))

	_, want, _ := run(t, New(WithWorkers(1)), src, tgt)
	for i := 0; i < 5; i++ {
		_, got, _ := run(t, New(WithWorkers(8)), src, tgt)
		assert.Equal(t, want, got)
	}
}

func TestAlign_MonotonicInReview(t *testing.T) {
	src := []domain.Block{
		para("s0", 0, "", "the pump delivers insulin every hour"),
		para("s1", 1, "", "replace the cartridge weekly"),
		para("s2", 2, "", "alarms sound when the battery is low"),
		para("s3", 3, "", "clean the housing with a dry cloth"),
	}
	tgt := []domain.Block{
		para("t0", 0, "", "the pump delivers insulin hourly"),
		para("t1", 1, "", "replace the cartridge every week"),
		para("t2", 2, "", "an alarm sounds on low battery"),
		para("t3", 3, "", "wipe the housing"),
	}

	prev := len(src) + 1
	for _, review := range []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1} {
		_, corrs, _ := run(t, New(WithThresholds(1, review)), src, tgt)
		matched := countStatus(corrs, domain.StatusAligned) + countStatus(corrs, domain.StatusPartial)
		assert.LessOrEqual(t, matched, prev, "review %v", review)
		prev = matched
	}
}

func TestAlign_StatusByThreshold(t *testing.T) {
	src := []domain.Block{para("s0", 0, "", "replace the cartridge weekly")}
	tgt := []domain.Block{para("t0", 0, "", "replace the cartridge every week")}

	_, corrs, _ := run(t, New(WithThresholds(0.99, 0.1)), src, tgt)
	require.Len(t, corrs, 1)
	assert.Equal(t, domain.StatusPartial, corrs[0].Status)
	assert.Greater(t, corrs[0].Similarity, 0.1)
	assert.Less(t, corrs[0].Similarity, 0.99)
}

func TestAlign_IncompatibleTypesNeverPair(t *testing.T) {
	src := []domain.Block{para("s0", 0, "", "Results")}
	tgt := []domain.Block{heading("t0", 0, "", "Results")}

	_, corrs, _ := run(t, New(), src, tgt)
	assert.Equal(t, 1, countStatus(corrs, domain.StatusMissing))
	assert.Equal(t, 1, countStatus(corrs, domain.StatusExtra))
}

func TestAlign_ProseFamilyPairs(t *testing.T) {
	src := []domain.Block{para("s0", 0, "", "Figure 2 shows the wiring")}
	item := para("t0", 0, "", "Figure 2 shows the wiring")
	item.Type = domain.BlockCaption

	_, corrs, _ := run(t, New(), src, []domain.Block{item})
	require.Len(t, corrs, 1)
	assert.Equal(t, domain.StatusAligned, corrs[0].Status)
}

func TestAlign_MalformedBlocks(t *testing.T) {
	src := []domain.Block{
		para("s0", 0, "", "first paragraph of text"),
		para("s1", 1, "", "second paragraph of text"),
		para("s2", domain.NoPosition, "", "no position"),
		para("s1", 3, "", "duplicate id"),
		para("s4", 4, "", "third paragraph of text"),
		para("s5", 2, "", "goes backwards"),
	}
	tgt := []domain.Block{
		para("t0", 0, "", "first paragraph of text"),
		para("t1", 1, "", "second paragraph of text"),
		para("t2", 2, "", "third paragraph of text"),
	}

	res, corrs, unattached := run(t, New(), src, tgt)

	assert.Len(t, res.MalformedSource, 3)
	assert.Equal(t, 3, res.SourceBlocks())
	assert.Empty(t, unattached)
	require.Len(t, corrs, 3)
	// Each issue lands on the nearest well-formed neighbour by input order.
	assert.Equal(t, []string{"malformed block s2: missing position"}, corrs[1].Issues)
	assert.Equal(t, []string{
		"malformed block s1: duplicate id",
		"malformed block s5: position 2 out of document order",
	}, corrs[2].Issues)
}

func TestAlign_OutlierPositionExcludesOnlyThatBlock(t *testing.T) {
	src := manual("s")
	src[1].Position = 100

	res, corrs, unattached := run(t, New(), src, manual("t"))

	require.Len(t, res.MalformedSource, 1)
	assert.Equal(t, "s1", res.MalformedSource[0].ID)
	assert.Equal(t, 9, res.SourceBlocks())
	assert.Empty(t, unattached)
	assert.Equal(t, 9, countStatus(corrs, domain.StatusAligned))
	assert.Equal(t, 1, countStatus(corrs, domain.StatusExtra))
	assert.Zero(t, countStatus(corrs, domain.StatusMissing))
	assert.Equal(t, []string{"malformed block s1: position 100 out of document order"}, corrs[0].Issues)
}

func TestIncreasingRun(t *testing.T) {
	positions := func(ps ...int) []domain.Block {
		out := make([]domain.Block, len(ps))
		for i, p := range ps {
			out[i].Position = p
		}
		return out
	}

	assert.Equal(t, []bool{true, true, true}, increasingRun(positions(0, 1, 2)))
	assert.Equal(t, []bool{true, false, true, true}, increasingRun(positions(0, 100, 2, 3)))
	assert.Equal(t, []bool{true, true, true, false}, increasingRun(positions(0, 1, 4, 2)))
	assert.Equal(t, []bool{true, false, true}, increasingRun(positions(5, 5, 6)))
	assert.Empty(t, increasingRun(nil))
}

func TestAlign_EmptyBlocksOfSameTypePair(t *testing.T) {
	doc := func(prefix string) []domain.Block {
		return []domain.Block{
			para(prefix+"0", 0, "", "The pump is shown below."),
			{ID: prefix + "1", Page: 1, Position: 1, Type: domain.BlockImage},
			para(prefix+"2", 2, "", "Connect the tube before use."),
		}
	}

	_, corrs, issues := run(t, New(), doc("s"), doc("t"))

	assert.Empty(t, issues)
	require.Len(t, corrs, 3)
	for i, c := range corrs {
		assert.Equal(t, domain.StatusAligned, c.Status, "correspondence %d", i)
		assert.Equal(t, fmt.Sprintf("t%d", i), ref(c.TargetRef))
	}
}

func TestAlign_EmptyBlocksNeedSameType(t *testing.T) {
	src := []domain.Block{{ID: "s0", Page: 1, Position: 0, Type: domain.BlockImage}}
	tgt := []domain.Block{{ID: "t0", Page: 1, Position: 0, Type: domain.BlockHeader}}

	_, corrs, _ := run(t, New(), src, tgt)

	assert.Equal(t, 1, countStatus(corrs, domain.StatusMissing))
	assert.Equal(t, 1, countStatus(corrs, domain.StatusExtra))
}

func TestAlign_MalformedWithoutNeighbour(t *testing.T) {
	src := []domain.Block{{ID: "", Page: 1, Position: 0, Type: domain.BlockParagraph}}
	tgt := []domain.Block{para("t0", 0, "", "only target")}

	res, corrs, unattached := run(t, New(), src, tgt)

	assert.Zero(t, res.SourceBlocks())
	require.Len(t, corrs, 1)
	assert.Equal(t, domain.StatusExtra, corrs[0].Status)
	assert.Equal(t, []string{"malformed block #0: missing id"}, unattached)
}

func TestAlign_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := New().Align(ctx, manual("s"), manual("t"))

	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAborted))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestAlign_InputsNotModified(t *testing.T) {
	src := manual("s")
	before := append([]domain.Block(nil), src...)

	_, _, _ = run(t, New(), src, manual("t"))

	assert.Equal(t, before, src)
}

func TestImpliedPosition(t *testing.T) {
	anchors := []Anchor{{SourcePos: 2, TargetPos: 5}, {SourcePos: 10, TargetPos: 20}}

	tests := []struct {
		pos  int
		want int
	}{
		{0, 3},   // before the first anchor
		{4, 7},   // nearer the first
		{6, 9},   // equidistant, preceding wins
		{8, 18},  // nearer the second
		{14, 24}, // after the last
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, impliedPosition(anchors, tt.pos), "pos %d", tt.pos)
	}
	assert.Equal(t, 7, impliedPosition(nil, 7))
}
