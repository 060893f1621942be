package aligner

import (
	"sort"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
)

// Issue texts raised for unresolved blocks.
const (
	IssueMissing = "section/paragraph absent in translation"
	IssueExtra   = "section/paragraph not present in source"
)

// Detect finalises an alignment result. Unresolved source blocks become
// missing_in_target, unresolved target blocks become extra_in_target, and the
// list is ordered by source position with each extra placed after the pair
// whose target precedes it. Malformed blocks are reported on the
// correspondence holding their nearest well-formed neighbour; issues that
// have nowhere to go are returned separately. Detect never creates pairings.
func Detect(res *Result) ([]domain.Correspondence, []string) {
	corrs := make([]domain.Correspondence, 0,
		len(res.Pairs)+len(res.UnresolvedSource)+len(res.UnresolvedTarget))
	corrs = append(corrs, res.Pairs...)
	for _, b := range res.UnresolvedSource {
		corrs = append(corrs, domain.Correspondence{
			SourceRef: domain.StringPtr(b.ID),
			Status:    domain.StatusMissing,
			Issues:    []string{IssueMissing},
		})
	}
	for _, b := range res.UnresolvedTarget {
		corrs = append(corrs, domain.Correspondence{
			TargetRef: domain.StringPtr(b.ID),
			Status:    domain.StatusExtra,
			Issues:    []string{IssueExtra},
		})
	}

	order(corrs, res.Index)

	for i := range corrs {
		if corrs[i].Issues == nil {
			corrs[i].Issues = []string{}
		}
	}

	var unattached []string
	unattached = attachMalformed(corrs, res.source, res.MalformedSource, sourceRef, unattached)
	unattached = attachMalformed(corrs, res.target, res.MalformedTarget, targetRef, unattached)
	return corrs, unattached
}

type orderKey struct {
	major int
	rank  int
	minor int
}

func (k orderKey) less(o orderKey) bool {
	if k.major != o.major {
		return k.major < o.major
	}
	if k.rank != o.rank {
		return k.rank < o.rank
	}
	return k.minor < o.minor
}

func order(corrs []domain.Correspondence, idx *domain.BlockIndex) {
	type placed struct{ tgtPos, srcPos int }
	var matched []placed
	for i := range corrs {
		src, tgt := idx.Pair(&corrs[i])
		if src != nil && tgt != nil {
			matched = append(matched, placed{tgtPos: tgt.Position, srcPos: src.Position})
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].tgtPos < matched[j].tgtPos })

	keys := make([]orderKey, len(corrs))
	for i := range corrs {
		src, tgt := idx.Pair(&corrs[i])
		if src != nil {
			keys[i] = orderKey{major: src.Position}
			continue
		}
		// An extra follows the pair whose target precedes it.
		after := -1
		n := sort.Search(len(matched), func(j int) bool { return matched[j].tgtPos >= tgt.Position })
		if n > 0 {
			after = matched[n-1].srcPos
		}
		keys[i] = orderKey{major: after, rank: 1, minor: tgt.Position}
	}

	perm := make([]int, len(corrs))
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(i, j int) bool { return keys[perm[i]].less(keys[perm[j]]) })

	sorted := make([]domain.Correspondence, len(corrs))
	for i, p := range perm {
		sorted[i] = corrs[p]
	}
	copy(corrs, sorted)
}

func sourceRef(c *domain.Correspondence) *string { return c.SourceRef }
func targetRef(c *domain.Correspondence) *string { return c.TargetRef }

// attachMalformed reports each malformed block on the correspondence holding
// the nearest well-formed block of the same side by input order, preferring
// the preceding block on equal distance.
func attachMalformed(
	corrs []domain.Correspondence,
	entries []entry,
	malformed []Malformed,
	ref func(*domain.Correspondence) *string,
	unattached []string,
) []string {
	holder := make(map[string]int, len(corrs))
	for i := range corrs {
		if r := ref(&corrs[i]); r != nil {
			holder[*r] = i
		}
	}

	for _, m := range malformed {
		issue := "malformed block " + m.Label() + ": " + m.Reason
		n := sort.Search(len(entries), func(i int) bool { return entries[i].index > m.Index })

		nearest := -1
		switch {
		case n == 0 && len(entries) > 0:
			nearest = 0
		case n == len(entries) && n > 0:
			nearest = n - 1
		case n > 0:
			nearest = n - 1
			if entries[n].index-m.Index < m.Index-entries[n-1].index {
				nearest = n
			}
		}

		if nearest < 0 {
			unattached = append(unattached, issue)
			continue
		}
		ci, ok := holder[entries[nearest].block.ID]
		if !ok {
			unattached = append(unattached, issue)
			continue
		}
		corrs[ci].Issues = append(corrs[ci].Issues, issue)
	}
	return unattached
}
