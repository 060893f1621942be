// Package aligner pairs the blocks of a source document with the blocks of
// its translation.
//
// Alignment runs in two passes. Pass A pairs headings that carry the same
// section number and turns each pair into an anchor. Pass B resolves the
// remaining blocks section by section, comparing each source block only with
// target blocks inside a window around the position its nearest anchor
// implies, and commits candidates greedily by similarity.
package aligner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
	"github.com/custodia-labs/parity-cli/internal/logger"
	"github.com/custodia-labs/parity-cli/internal/textvec"
)

// Default engine parameters.
const (
	DefaultHigh    = 0.80
	DefaultReview  = 0.55
	DefaultWindow  = 8
	DefaultWorkers = 4
)

// tieEpsilon is the similarity difference below which candidates are ties.
const tieEpsilon = 1e-9

// Engine aligns two block sequences.
// It holds only read-only configuration and is safe for concurrent use.
type Engine struct {
	high    float64
	review  float64
	window  int
	workers int
}

// Option configures the engine.
type Option func(*Engine)

// WithThresholds sets the aligned and review similarity thresholds.
func WithThresholds(high, review float64) Option {
	return func(e *Engine) {
		e.high = high
		e.review = review
	}
}

// WithWindow sets the Pass B window in block-position units.
func WithWindow(window int) Option {
	return func(e *Engine) {
		if window > 0 {
			e.window = window
		}
	}
}

// WithWorkers bounds how many section groups are matched in parallel.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// FromSettings returns the options carried by validated compare settings.
func FromSettings(s domain.CompareSettings) []Option {
	return []Option{
		WithThresholds(s.HighThreshold, s.ReviewThreshold),
		WithWindow(s.Window),
		WithWorkers(s.Workers),
	}
}

// New creates an engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		high:    DefaultHigh,
		review:  DefaultReview,
		window:  DefaultWindow,
		workers: DefaultWorkers,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// entry is a well-formed block with its input index.
type entry struct {
	block *domain.Block
	index int
}

func (en entry) pos() int { return en.block.Position }

// Malformed is a block excluded at ingestion.
type Malformed struct {
	ID     string
	Index  int
	Reason string
}

// Label returns the identifier used in issue text.
func (m Malformed) Label() string {
	if m.ID == "" {
		return fmt.Sprintf("#%d", m.Index)
	}
	return m.ID
}

// Anchor is a heading pair resolved by Pass A.
type Anchor struct {
	Section   string
	Path      []string
	SourcePos int
	TargetPos int
}

// Result is the outcome of alignment, before missing and extra detection.
type Result struct {
	// Pairs are the Pass A and Pass B correspondences.
	Pairs []domain.Correspondence

	// Anchors are the Pass A heading pairs in source order.
	Anchors []Anchor

	// UnresolvedSource and UnresolvedTarget hold blocks no pass could pair.
	UnresolvedSource []*domain.Block
	UnresolvedTarget []*domain.Block

	// MalformedSource and MalformedTarget hold excluded blocks.
	MalformedSource []Malformed
	MalformedTarget []Malformed

	// Index resolves the refs of well-formed blocks.
	Index *domain.BlockIndex

	source []entry
	target []entry
}

// SourceBlocks returns the number of well-formed source blocks.
func (r *Result) SourceBlocks() int { return len(r.source) }

// TargetBlocks returns the number of well-formed target blocks.
func (r *Result) TargetBlocks() int { return len(r.target) }

// Align pairs the source blocks with the target blocks.
// Blocks must be supplied in document order; the input slices are not modified.
// Cancelling ctx aborts the run with an error wrapping domain.ErrAborted.
func (e *Engine) Align(ctx context.Context, src, tgt []domain.Block) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, aborted(err)
	}

	res := &Result{}
	srcBlocks, srcEntries, srcBad := ingest(src, domain.SideSource)
	tgtBlocks, tgtEntries, tgtBad := ingest(tgt, domain.SideTarget)
	res.source, res.MalformedSource = srcEntries, srcBad
	res.target, res.MalformedTarget = tgtEntries, tgtBad
	res.Index = domain.NewBlockIndex(srcBlocks, tgtBlocks)
	logger.Debug("aligner: %d/%d source and %d/%d target blocks well-formed",
		len(res.source), len(src), len(res.target), len(tgt))

	pairedSrc := make(map[string]bool)
	pairedTgt := make(map[string]bool)

	res.Pairs, res.Anchors = passA(res.source, res.target, pairedSrc, pairedTgt)
	logger.Debug("aligner: pass A anchored %d sections", len(res.Anchors))

	// The document corpus is fitted before any group task starts.
	docTexts := make([]string, 0, len(res.source)+len(res.target))
	for _, en := range res.source {
		docTexts = append(docTexts, en.block.ComparableText())
	}
	for _, en := range res.target {
		docTexts = append(docTexts, en.block.ComparableText())
	}
	docCorpus := textvec.NewCorpus(docTexts)

	groups := buildGroups(res.source, res.target, res.Anchors, pairedSrc, pairedTgt)

	results := make([][]domain.Correspondence, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, grp := range groups {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.passB(grp, res.Anchors, docCorpus)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, aborted(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, aborted(err)
	}

	for _, pairs := range results {
		for _, c := range pairs {
			pairedSrc[*c.SourceRef] = true
			pairedTgt[*c.TargetRef] = true
			res.Pairs = append(res.Pairs, c)
		}
	}
	logger.Debug("aligner: pass B resolved %d pairs in %d groups",
		len(res.Pairs)-len(res.Anchors), len(groups))

	for _, en := range res.source {
		if !pairedSrc[en.block.ID] {
			res.UnresolvedSource = append(res.UnresolvedSource, en.block)
		}
	}
	for _, en := range res.target {
		if !pairedTgt[en.block.ID] {
			res.UnresolvedTarget = append(res.UnresolvedTarget, en.block)
		}
	}
	return res, nil
}

func aborted(err error) error {
	if errors.Is(err, domain.ErrAborted) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrAborted, err)
}

// ingest keeps the well-formed blocks of one side in input order.
// Blocks are copied so callers may reuse their slices. When positions do not
// increase, the longest increasing run is kept and only the blocks outside it
// are excluded.
func ingest(blocks []domain.Block, side domain.Side) ([]domain.Block, []entry, []Malformed) {
	var (
		kept      []domain.Block
		indices   []int
		malformed []Malformed
		seen      = make(map[string]bool, len(blocks))
	)
	for i := range blocks {
		b := blocks[i]
		reason := ""
		if err := b.Validate(); err != nil {
			reason = strings.TrimPrefix(err.Error(), domain.ErrMalformedBlock.Error()+": ")
		} else if b.Side != "" && b.Side != side {
			reason = fmt.Sprintf("side %q in %s document", b.Side, side)
		} else if seen[b.ID] {
			reason = "duplicate id"
		}
		if reason != "" {
			malformed = append(malformed, Malformed{ID: b.ID, Index: i, Reason: reason})
			continue
		}
		b.Side = side
		seen[b.ID] = true
		kept = append(kept, b)
		indices = append(indices, i)
	}

	inOrder := increasingRun(kept)
	var valid []domain.Block
	var validIdx []int
	for k, b := range kept {
		if !inOrder[k] {
			malformed = append(malformed, Malformed{
				ID:     b.ID,
				Index:  indices[k],
				Reason: fmt.Sprintf("position %d out of document order", b.Position),
			})
			continue
		}
		valid = append(valid, b)
		validIdx = append(validIdx, indices[k])
	}
	sort.Slice(malformed, func(i, j int) bool { return malformed[i].Index < malformed[j].Index })

	entries := make([]entry, len(valid))
	for i := range valid {
		entries[i] = entry{block: &valid[i], index: validIdx[i]}
	}
	return valid, entries, malformed
}

// increasingRun marks the blocks of the longest strictly increasing position
// subsequence. Among runs of equal length the one using the earliest blocks wins.
func increasingRun(blocks []domain.Block) []bool {
	n := len(blocks)
	// from[i] is the length of the longest increasing run starting at block i.
	from := make([]int, n)
	// tails[k] is the largest start position of a run of length k+1 seen so far.
	var tails []int
	for i := n - 1; i >= 0; i-- {
		p := blocks[i].Position
		k := sort.Search(len(tails), func(k int) bool { return tails[k] <= p })
		if k == len(tails) {
			tails = append(tails, p)
		} else {
			tails[k] = p
		}
		from[i] = k + 1
	}

	keep := make([]bool, n)
	need, last := len(tails), -1
	for i := 0; i < n && need > 0; i++ {
		if from[i] == need && blocks[i].Position > last {
			keep[i] = true
			last = blocks[i].Position
			need--
		}
	}
	return keep
}

// sectionKey canonicalises a numbering string.
func sectionKey(path []string) string {
	return strings.Join(path, ".")
}
