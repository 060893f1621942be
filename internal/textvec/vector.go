package textvec

import (
	"math"
	"sort"
)

// Vector is a sparse term-weight vector with terms kept in sorted order,
// so every reduction over it sums in the same order on every run.
type Vector struct {
	terms   []string
	weights []float64
	norm    float64
}

func newVector(weights map[string]float64) Vector {
	if len(weights) == 0 {
		return Vector{}
	}
	v := Vector{terms: make([]string, 0, len(weights))}
	for term := range weights {
		v.terms = append(v.terms, term)
	}
	sort.Strings(v.terms)
	v.weights = make([]float64, len(v.terms))
	var sum float64
	for i, term := range v.terms {
		w := weights[term]
		v.weights[i] = w
		sum += w * w
	}
	v.norm = math.Sqrt(sum)
	return v
}

// Len returns the number of distinct terms.
func (v Vector) Len() int {
	return len(v.terms)
}

// IsZero reports whether the vector has no weight.
func (v Vector) IsZero() bool {
	return v.norm == 0
}

// Norm returns the Euclidean length of v.
func (v Vector) Norm() float64 {
	return v.norm
}

// Weight returns the weight of term, 0 when absent.
func (v Vector) Weight(term string) float64 {
	i := sort.SearchStrings(v.terms, term)
	if i < len(v.terms) && v.terms[i] == term {
		return v.weights[i]
	}
	return 0
}

// Cosine returns the cosine similarity of a and b clamped to [0,1].
// A zero vector on either side yields 0.
func Cosine(a, b Vector) float64 {
	if a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	i, j := 0, 0
	for i < len(a.terms) && j < len(b.terms) {
		switch {
		case a.terms[i] == b.terms[j]:
			dot += a.weights[i] * b.weights[j]
			i++
			j++
		case a.terms[i] < b.terms[j]:
			i++
		default:
			j++
		}
	}
	return clamp(dot / (a.norm * b.norm))
}

// CountVector returns the raw term-count vector of text.
func CountVector(text string) Vector {
	counts := TermCounts(text)
	weights := make(map[string]float64, len(counts))
	for term, n := range counts {
		weights[term] = float64(n)
	}
	return newVector(weights)
}

// CountCosine is Cosine over raw term counts, without corpus weighting.
func CountCosine(a, b string) float64 {
	return Cosine(CountVector(a), CountVector(b))
}

func clamp(x float64) float64 {
	switch {
	case math.IsNaN(x), x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
