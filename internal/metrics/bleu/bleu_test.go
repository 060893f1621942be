package bleu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetric_Score(t *testing.T) {
	m := New()

	tests := []struct {
		name     string
		src, tgt string
		want     float64
		delta    float64
	}{
		{"identical", "The warranty lasts two years.", "the warranty lasts two years", 1, 0},
		{"both empty", "", "", 1, 0},
		{"empty candidate", "the warranty lasts two years", "", 0, 0},
		{"no unigram overlap", "the warranty lasts", "keep away water", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Score(tt.src, tt.tgt)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, tt.delta)
		})
	}
}

func TestMetric_BrevityPenalty(t *testing.T) {
	m := New(WithMaxN(1))

	// Every candidate unigram matches, but the candidate is half as long.
	got, err := m.Score("one two three four", "one two")
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(1-2.0), got, 1e-12)
}

func TestMetric_SmoothedHigherOrders(t *testing.T) {
	m := New(WithMaxN(2))

	// Unigrams 3/3; no bigram matches, smoothed to (0+1)/(2+1).
	got, err := m.Score("a b c", "a c b")
	require.NoError(t, err)
	want := math.Sqrt(1.0 / 3.0)
	assert.InDelta(t, want, got, 1e-12)
}

func TestMetric_InRange(t *testing.T) {
	m := New()
	pairs := [][2]string{
		{"replace the cartridge weekly", "replace the cartridge every week"},
		{"a", "a a a a a a"},
		{"the the the", "the"},
	}
	for _, p := range pairs {
		got, err := m.Score(p[0], p[1])
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 1.0)
	}
}

func TestWithMaxN(t *testing.T) {
	assert.Equal(t, 2, New(WithMaxN(2)).MaxN())
	assert.Equal(t, DefaultMaxN, New(WithMaxN(0)).MaxN())
}
