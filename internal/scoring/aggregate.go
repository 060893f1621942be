package scoring

import (
	"github.com/custodia-labs/parity-cli/internal/core/domain"
	"github.com/custodia-labs/parity-cli/internal/textvec"
)

// Aggregate rolls scored correspondences up into a document summary.
//
// Each metric's overall score is the mean of its per-pair scores weighted by
// the source block's token count (at least 1), over every source-bearing
// correspondence, so missing blocks pull the score down. The quality index
// base is the weighted sum of the overall scores, and the quality index
// scales it by coverage, the share of source blocks that were matched.
func Aggregate(corrs []domain.Correspondence, idx *domain.BlockIndex, settings *domain.CompareSettings) domain.DocumentSummary {
	sum := domain.DocumentSummary{
		Counts:  make(map[domain.AlignmentStatus]int, 4),
		Overall: make(map[string]float64, len(settings.Metrics)),
	}
	for _, status := range domain.AllStatuses() {
		sum.Counts[status] = 0
	}

	weighted := make(map[string]float64, len(settings.Metrics))
	var totalWeight float64
	for i := range corrs {
		c := &corrs[i]
		sum.Counts[c.Status]++
		if c.TargetRef != nil {
			sum.TargetBlocks++
		}
		if c.SourceRef == nil {
			continue
		}
		sum.SourceBlocks++

		w := 1.0
		if src, _ := idx.Pair(c); src != nil {
			w = float64(max(1, len(textvec.Tokenize(src.ComparableText()))))
		}
		totalWeight += w
		for _, name := range settings.Metrics {
			weighted[name] += w * c.Scores[name]
		}
	}

	for _, name := range settings.Metrics {
		if totalWeight > 0 {
			sum.Overall[name] = weighted[name] / totalWeight
		} else {
			sum.Overall[name] = 0
		}
		sum.QualityIndexBase += settings.Weight(name) * sum.Overall[name]
	}

	sum.Coverage = 1
	if sum.SourceBlocks > 0 {
		sum.Coverage = float64(sum.Matched()) / float64(sum.SourceBlocks)
	}
	sum.QualityIndex = sum.QualityIndexBase * sum.Coverage
	return sum
}
