package driven

import "github.com/custodia-labs/parity-cli/internal/core/domain"

// SeverityClassifier ranks how much attention a correspondence needs.
type SeverityClassifier interface {
	// Classify returns the severity of c given the blocks it refers to.
	// Either block may be nil for missing or extra correspondences.
	Classify(c *domain.Correspondence, src, tgt *domain.Block) domain.Severity
}
