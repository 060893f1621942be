package aligner

import (
	"sort"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
	"github.com/custodia-labs/parity-cli/internal/textvec"
)

// headingKey returns the section key of a numbered heading, or "".
func headingKey(b *domain.Block) string {
	if b.Type != domain.BlockHeading || b.SectionID == "" {
		return ""
	}
	return sectionKey(b.Path())
}

// passA pairs the k-th source heading carrying a section number with the
// k-th target heading carrying the same number.
func passA(src, tgt []entry, pairedSrc, pairedTgt map[string]bool) ([]domain.Correspondence, []Anchor) {
	targets := make(map[string][]entry)
	for _, t := range tgt {
		if key := headingKey(t.block); key != "" {
			targets[key] = append(targets[key], t)
		}
	}

	var (
		pairs   []domain.Correspondence
		anchors []Anchor
		seen    = make(map[string]int)
	)
	for _, s := range src {
		key := headingKey(s.block)
		if key == "" {
			continue
		}
		k := seen[key]
		seen[key] = k + 1
		if k >= len(targets[key]) {
			continue
		}
		t := targets[key][k]

		pairedSrc[s.block.ID] = true
		pairedTgt[t.block.ID] = true
		pairs = append(pairs, domain.Correspondence{
			SourceRef:  domain.StringPtr(s.block.ID),
			TargetRef:  domain.StringPtr(t.block.ID),
			Status:     domain.StatusAligned,
			Similarity: 1,
			Section:    key,
		})
		anchors = append(anchors, Anchor{
			Section:   key,
			Path:      s.block.Path(),
			SourcePos: s.pos(),
			TargetPos: t.pos(),
		})
	}
	return pairs, anchors
}

// group holds the unresolved blocks of one anchored section.
// The unanchored group has an empty key.
type group struct {
	key    string
	source []entry
	target []entry
}

// buildGroups assigns every unresolved block to the deepest anchored section
// whose path prefixes the block's path. Groups are returned unanchored first,
// then in anchor order; groups without blocks on both sides are dropped.
func buildGroups(src, tgt []entry, anchors []Anchor, pairedSrc, pairedTgt map[string]bool) []*group {
	anchored := make(map[string]bool, len(anchors))
	for _, a := range anchors {
		anchored[a.Section] = true
	}

	byKey := map[string]*group{"": {key: ""}}
	order := []string{""}
	for _, a := range anchors {
		if _, ok := byKey[a.Section]; !ok {
			byKey[a.Section] = &group{key: a.Section}
			order = append(order, a.Section)
		}
	}

	groupOf := func(b *domain.Block) *group {
		path := b.Path()
		for k := len(path); k > 0; k-- {
			if key := sectionKey(path[:k]); anchored[key] {
				return byKey[key]
			}
		}
		return byKey[""]
	}

	for _, s := range src {
		if !pairedSrc[s.block.ID] {
			g := groupOf(s.block)
			g.source = append(g.source, s)
		}
	}
	for _, t := range tgt {
		if !pairedTgt[t.block.ID] {
			g := groupOf(t.block)
			g.target = append(g.target, t)
		}
	}

	groups := make([]*group, 0, len(order))
	for _, key := range order {
		if g := byKey[key]; len(g.source) > 0 && len(g.target) > 0 {
			groups = append(groups, g)
		}
	}
	return groups
}

// impliedPosition maps a source position to the target position implied by
// the nearest anchor in source order, preferring the preceding anchor on ties.
// Anchors must be sorted by source position.
func impliedPosition(anchors []Anchor, pos int) int {
	if len(anchors) == 0 {
		return pos
	}
	i := sort.Search(len(anchors), func(i int) bool { return anchors[i].SourcePos > pos })
	var a Anchor
	switch {
	case i == 0:
		a = anchors[0]
	case i == len(anchors):
		a = anchors[i-1]
	case pos-anchors[i-1].SourcePos <= anchors[i].SourcePos-pos:
		a = anchors[i-1]
	default:
		a = anchors[i]
	}
	return a.TargetPos + (pos - a.SourcePos)
}

type candidate struct {
	src, tgt     int
	srcPos       int
	tgtPos       int
	similarity   float64
	displacement int
}

type link struct {
	srcPos, tgtPos int
}

func crosses(a, b link) bool {
	return (a.srcPos-b.srcPos)*(a.tgtPos-b.tgtPos) < 0
}

// passB resolves one section group by windowed greedy similarity matching.
func (e *Engine) passB(g *group, anchors []Anchor, docCorpus *textvec.Corpus) []domain.Correspondence {
	texts := make([]string, 0, len(g.source)+len(g.target))
	for _, en := range g.source {
		texts = append(texts, en.block.ComparableText())
	}
	for _, en := range g.target {
		texts = append(texts, en.block.ComparableText())
	}
	groupCorpus := textvec.NewCorpus(texts)

	vectorize := func(b *domain.Block) textvec.Vector {
		if b.Type == domain.BlockHeading {
			return docCorpus.Vectorize(b.ComparableText())
		}
		return groupCorpus.Vectorize(b.ComparableText())
	}
	srcVecs := make([]textvec.Vector, len(g.source))
	for i, en := range g.source {
		srcVecs[i] = vectorize(en.block)
	}
	tgtVecs := make([]textvec.Vector, len(g.target))
	for i, en := range g.target {
		tgtVecs[i] = vectorize(en.block)
	}

	// Blocks without any text can only pair with an empty block of the same type.
	srcEmpty := make([]bool, len(g.source))
	for i, en := range g.source {
		srcEmpty[i] = len(textvec.Tokenize(en.block.ComparableText())) == 0
	}
	tgtEmpty := make([]bool, len(g.target))
	for i, en := range g.target {
		tgtEmpty[i] = len(textvec.Tokenize(en.block.ComparableText())) == 0
	}

	var cands []candidate
	for si, s := range g.source {
		implied := impliedPosition(anchors, s.pos())
		lo := sort.Search(len(g.target), func(i int) bool { return g.target[i].pos() >= implied-e.window })
		for ti := lo; ti < len(g.target) && g.target[ti].pos() <= implied+e.window; ti++ {
			t := g.target[ti]
			if !s.block.Type.CompatibleWith(t.block.Type) {
				continue
			}
			var sim float64
			if srcEmpty[si] && tgtEmpty[ti] {
				if s.block.Type != t.block.Type {
					continue
				}
				sim = 1
			} else {
				sim = textvec.Cosine(srcVecs[si], tgtVecs[ti])
			}
			if sim < e.review {
				continue
			}
			cands = append(cands, candidate{
				src:          si,
				tgt:          ti,
				srcPos:       s.pos(),
				tgtPos:       t.pos(),
				similarity:   sim,
				displacement: abs(t.pos() - implied),
			})
		}
	}

	commits := greedy(cands, anchors)
	sort.Slice(commits, func(i, j int) bool { return commits[i].srcPos < commits[j].srcPos })

	pairs := make([]domain.Correspondence, 0, len(commits))
	for _, c := range commits {
		status := domain.StatusPartial
		if c.similarity >= e.high {
			status = domain.StatusAligned
		}
		pairs = append(pairs, domain.Correspondence{
			SourceRef:  domain.StringPtr(g.source[c.src].block.ID),
			TargetRef:  domain.StringPtr(g.target[c.tgt].block.ID),
			Status:     status,
			Similarity: c.similarity,
			Section:    g.key,
		})
	}
	return pairs
}

// greedy commits candidates in descending similarity, consuming both blocks.
// Among candidates within tieEpsilon of the best remaining similarity, the one
// crossing the fewest anchors and earlier commitments wins, then the smallest
// displacement, then the lowest source and target positions.
func greedy(cands []candidate, anchors []Anchor) []candidate {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.similarity != b.similarity {
			return a.similarity > b.similarity
		}
		if a.srcPos != b.srcPos {
			return a.srcPos < b.srcPos
		}
		return a.tgtPos < b.tgtPos
	})

	links := make([]link, 0, len(anchors))
	for _, a := range anchors {
		links = append(links, link{srcPos: a.SourcePos, tgtPos: a.TargetPos})
	}
	crossings := func(c candidate) int {
		l := link{srcPos: c.srcPos, tgtPos: c.tgtPos}
		n := 0
		for _, other := range links {
			if crosses(l, other) {
				n++
			}
		}
		return n
	}

	usedSrc := make(map[int]bool)
	usedTgt := make(map[int]bool)
	live := func(c candidate) bool { return !usedSrc[c.src] && !usedTgt[c.tgt] }

	var commits []candidate
	for start := 0; start < len(cands); {
		if !live(cands[start]) {
			start++
			continue
		}
		top := cands[start].similarity
		best, bestCross := start, crossings(cands[start])
		for i := start + 1; i < len(cands) && top-cands[i].similarity <= tieEpsilon; i++ {
			if !live(cands[i]) {
				continue
			}
			if n := crossings(cands[i]); preferred(cands[i], n, cands[best], bestCross) {
				best, bestCross = i, n
			}
		}

		c := cands[best]
		usedSrc[c.src] = true
		usedTgt[c.tgt] = true
		links = append(links, link{srcPos: c.srcPos, tgtPos: c.tgtPos})
		commits = append(commits, c)
	}
	return commits
}

func preferred(a candidate, aCross int, b candidate, bCross int) bool {
	if aCross != bCross {
		return aCross < bCross
	}
	if a.displacement != b.displacement {
		return a.displacement < b.displacement
	}
	if a.srcPos != b.srcPos {
		return a.srcPos < b.srcPos
	}
	return a.tgtPos < b.tgtPos
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
