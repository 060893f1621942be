package severity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
)

func TestClassifier_Classify(t *testing.T) {
	c := New([]string{"must", "Warning", "two words"})

	plain := &domain.Block{Text: "Store at room temperature."}
	risky := &domain.Block{Text: "The device MUST be unplugged."}

	tests := []struct {
		name     string
		status   domain.AlignmentStatus
		issues   []string
		src, tgt *domain.Block
		want     domain.Severity
	}{
		{"aligned", domain.StatusAligned, nil, plain, plain, domain.SeverityInfo},
		{"aligned risky stays info", domain.StatusAligned, nil, risky, risky, domain.SeverityInfo},
		{"aligned with issue", domain.StatusAligned, []string{"metric bleu failed: x"}, plain, plain, domain.SeverityMinor},
		{"partial", domain.StatusPartial, nil, plain, plain, domain.SeverityMinor},
		{"partial risky", domain.StatusPartial, nil, risky, plain, domain.SeverityCritical},
		{"missing", domain.StatusMissing, nil, plain, nil, domain.SeverityMajor},
		{"missing risky", domain.StatusMissing, nil, risky, nil, domain.SeverityCritical},
		{"extra", domain.StatusExtra, nil, nil, plain, domain.SeverityMajor},
		{"extra risky", domain.StatusExtra, nil, nil, &domain.Block{Text: "Warning: hot surface"}, domain.SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			corr := &domain.Correspondence{Status: tt.status, Issues: tt.issues}
			assert.Equal(t, tt.want, c.Classify(corr, tt.src, tt.tgt))
		})
	}
}

func TestClassifier_NoKeywords(t *testing.T) {
	c := New(nil)
	corr := &domain.Correspondence{Status: domain.StatusMissing}
	assert.Equal(t, domain.SeverityMajor, c.Classify(corr, &domain.Block{Text: "must"}, nil))
}

func TestHighestAndCount(t *testing.T) {
	corrs := []domain.Correspondence{
		{Severity: domain.SeverityInfo},
		{Severity: domain.SeverityMajor},
		{Severity: domain.SeverityMajor},
		{Severity: domain.SeverityMinor},
	}

	assert.Equal(t, domain.SeverityMajor, Highest(corrs))
	counts := Count(corrs)
	assert.Equal(t, 2, counts[domain.SeverityMajor])
	assert.Equal(t, "major=2 minor=1 info=1", String(counts))
	assert.Equal(t, domain.Severity(""), Highest(nil))
}
