package scoring

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
	"github.com/custodia-labs/parity-cli/internal/core/ports/driven"
)

// fixedMetric returns a constant value or error.
type fixedMetric struct {
	name  string
	value float64
	err   error
	panic bool
}

func (m *fixedMetric) Name() string { return m.name }

func (m *fixedMetric) Score(_, _ string) (float64, error) {
	if m.panic {
		panic("boom")
	}
	return m.value, m.err
}

func blocks() ([]domain.Block, []domain.Block) {
	src := []domain.Block{
		{ID: "s0", Page: 1, Position: 0, Type: domain.BlockParagraph, Text: "one two three four"},
		{ID: "s1", Page: 1, Position: 1, Type: domain.BlockParagraph, Text: "five six"},
	}
	tgt := []domain.Block{
		{ID: "t0", Page: 1, Position: 0, Type: domain.BlockParagraph, Text: "one two three four"},
		{ID: "t1", Page: 1, Position: 1, Type: domain.BlockParagraph, Text: "extra"},
	}
	return src, tgt
}

func corrs() []domain.Correspondence {
	return []domain.Correspondence{
		{SourceRef: domain.StringPtr("s0"), TargetRef: domain.StringPtr("t0"), Status: domain.StatusAligned},
		{SourceRef: domain.StringPtr("s1"), Status: domain.StatusMissing},
		{TargetRef: domain.StringPtr("t1"), Status: domain.StatusExtra},
	}
}

func TestScorer_Score(t *testing.T) {
	src, tgt := blocks()
	idx := domain.NewBlockIndex(src, tgt)
	cs := corrs()

	s := NewScorer([]driven.Metric{&fixedMetric{name: "a", value: 0.7}, &fixedMetric{name: "b", value: 0.2}}, 2)
	require.NoError(t, s.Score(context.Background(), cs, idx))

	assert.Equal(t, map[string]float64{"a": 0.7, "b": 0.2}, cs[0].Scores)
	assert.Equal(t, map[string]float64{"a": 0, "b": 0}, cs[1].Scores)
	assert.Equal(t, map[string]float64{"a": 0, "b": 0}, cs[2].Scores)
	for _, c := range cs {
		assert.NoError(t, c.CheckInvariants())
	}
}

func TestScorer_MetricFailures(t *testing.T) {
	tests := []struct {
		name   string
		metric *fixedMetric
		want   float64
		issue  string
	}{
		{"error", &fixedMetric{name: "m", err: errors.New("model unavailable")}, 0, "metric m failed: model unavailable"},
		{"panic", &fixedMetric{name: "m", panic: true}, 0, "metric m failed: panic: boom"},
		{"nan", &fixedMetric{name: "m", value: math.NaN()}, 0, "metric m failed: non-finite value NaN"},
		{"above range", &fixedMetric{name: "m", value: 1.5}, 0, "metric m failed: value 1.5 out of range [0,1]"},
		{"below range", &fixedMetric{name: "m", value: -0.2}, 0, "metric m failed: value -0.2 out of range [0,1]"},
		{"clipped high", &fixedMetric{name: "m", value: 1 + 1e-9}, 1, ""},
		{"clipped low", &fixedMetric{name: "m", value: -1e-9}, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, tgt := blocks()
			cs := corrs()
			ok := &fixedMetric{name: "ok", value: 0.9}

			s := NewScorer([]driven.Metric{tt.metric, ok}, 1)
			require.NoError(t, s.Score(context.Background(), cs, domain.NewBlockIndex(src, tgt)))

			assert.Equal(t, tt.want, cs[0].Scores["m"])
			assert.Equal(t, 0.9, cs[0].Scores["ok"])
			if tt.issue == "" {
				assert.Empty(t, cs[0].Issues)
			} else {
				assert.Equal(t, []string{tt.issue}, cs[0].Issues)
			}
		})
	}
}

func TestScorer_Cancelled(t *testing.T) {
	src, tgt := blocks()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewScorer([]driven.Metric{&fixedMetric{name: "a", value: 1}}, 1).
		Score(ctx, corrs(), domain.NewBlockIndex(src, tgt))

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAborted))
}

func TestAggregate(t *testing.T) {
	src, tgt := blocks()
	idx := domain.NewBlockIndex(src, tgt)
	settings := domain.CompareSettings{
		Metrics: []string{"a", "b"},
		Weights: map[string]float64{"a": 0.75, "b": 0.25},
	}

	cs := corrs()
	cs[0].Scores = map[string]float64{"a": 1, "b": 0.4}
	cs[1].Scores = map[string]float64{"a": 0, "b": 0}
	cs[2].Scores = map[string]float64{"a": 0, "b": 0}

	sum := Aggregate(cs, idx, &settings)

	// s0 has 4 tokens, s1 has 2.
	assert.InDelta(t, 4.0/6.0, sum.Overall["a"], 1e-12)
	assert.InDelta(t, 1.6/6.0, sum.Overall["b"], 1e-12)
	assert.InDelta(t, 0.75*4.0/6.0+0.25*1.6/6.0, sum.QualityIndexBase, 1e-12)
	assert.Equal(t, 0.5, sum.Coverage)
	assert.InDelta(t, sum.QualityIndexBase*0.5, sum.QualityIndex, 1e-12)
	assert.Equal(t, 2, sum.SourceBlocks)
	assert.Equal(t, 2, sum.TargetBlocks)
	assert.Equal(t, 1, sum.Counts[domain.StatusAligned])
	assert.Equal(t, 1, sum.Counts[domain.StatusMissing])
	assert.Equal(t, 1, sum.Counts[domain.StatusExtra])
	assert.Equal(t, 0, sum.Counts[domain.StatusPartial])
}

func TestAggregate_FullCoverage(t *testing.T) {
	src, tgt := blocks()
	settings := domain.DefaultCompareSettings()
	cs := []domain.Correspondence{
		{SourceRef: domain.StringPtr("s0"), TargetRef: domain.StringPtr("t0"), Status: domain.StatusAligned,
			Scores: map[string]float64{"meteor": 1, "bleu": 1, "cosine": 1}},
	}

	sum := Aggregate(cs, domain.NewBlockIndex(src[:1], tgt[:1]), &settings)

	assert.Equal(t, 1.0, sum.Coverage)
	assert.InDelta(t, 1.0, sum.QualityIndexBase, 1e-12)
	assert.Equal(t, sum.QualityIndexBase, sum.QualityIndex)
}

func TestAggregate_NoSourceBlocks(t *testing.T) {
	settings := domain.DefaultCompareSettings()
	sum := Aggregate(nil, domain.NewBlockIndex(nil, nil), &settings)

	assert.Equal(t, 1.0, sum.Coverage)
	assert.Zero(t, sum.QualityIndex)
	assert.Zero(t, sum.Overall["meteor"])
}
