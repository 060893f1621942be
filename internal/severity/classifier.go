// Package severity ranks correspondences for review.
package severity

import (
	"strconv"
	"strings"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
	"github.com/custodia-labs/parity-cli/internal/core/ports/driven"
	"github.com/custodia-labs/parity-cli/internal/textvec"
)

// Ensure Classifier implements the interface.
var _ driven.SeverityClassifier = (*Classifier)(nil)

// Classifier assigns severities from the alignment status, the issues raised
// and risk keywords in the source text.
//
//   - missing or extra: major, critical when the text carries a risk keyword
//   - partial_match: minor, critical when the source carries a risk keyword
//   - aligned: info, minor when issues were raised (e.g. a metric failure)
type Classifier struct {
	keywords map[string]bool
}

// New creates a classifier for the given risk keywords.
// Keywords are normalised like block text; multi-word keywords are ignored.
func New(keywords []string) *Classifier {
	c := &Classifier{keywords: make(map[string]bool, len(keywords))}
	for _, k := range keywords {
		if tokens := textvec.Tokenize(k); len(tokens) == 1 {
			c.keywords[tokens[0]] = true
		}
	}
	return c
}

// Classify returns the severity of a correspondence.
func (c *Classifier) Classify(corr *domain.Correspondence, src, tgt *domain.Block) domain.Severity {
	risky := c.hasRisk(src)
	switch corr.Status {
	case domain.StatusMissing:
		if risky {
			return domain.SeverityCritical
		}
		return domain.SeverityMajor
	case domain.StatusExtra:
		if c.hasRisk(tgt) {
			return domain.SeverityCritical
		}
		return domain.SeverityMajor
	case domain.StatusPartial:
		if risky {
			return domain.SeverityCritical
		}
		return domain.SeverityMinor
	default:
		if len(corr.Issues) > 0 {
			return domain.SeverityMinor
		}
		return domain.SeverityInfo
	}
}

func (c *Classifier) hasRisk(b *domain.Block) bool {
	if b == nil || len(c.keywords) == 0 {
		return false
	}
	for _, tok := range textvec.Tokenize(b.ComparableText()) {
		if c.keywords[tok] {
			return true
		}
	}
	return false
}

// Highest returns the highest severity in corrs, or "" when there are none.
func Highest(corrs []domain.Correspondence) domain.Severity {
	var top domain.Severity
	for i := range corrs {
		if corrs[i].Severity.Rank() > top.Rank() {
			top = corrs[i].Severity
		}
	}
	return top
}

// Count returns how many correspondences carry each severity.
func Count(corrs []domain.Correspondence) map[domain.Severity]int {
	out := make(map[domain.Severity]int, 4)
	for i := range corrs {
		if corrs[i].Severity != "" {
			out[corrs[i].Severity]++
		}
	}
	return out
}

// String formats severity counts as "critical=1 major=2".
func String(counts map[domain.Severity]int) string {
	var parts []string
	for _, s := range []domain.Severity{domain.SeverityCritical, domain.SeverityMajor, domain.SeverityMinor, domain.SeverityInfo} {
		if n := counts[s]; n > 0 {
			parts = append(parts, string(s)+"="+strconv.Itoa(n))
		}
	}
	return strings.Join(parts, " ")
}
