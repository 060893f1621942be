package textvec

import "math"

// Corpus is an immutable snapshot of document frequencies.
// It is safe for concurrent use once constructed.
type Corpus struct {
	docs int
	df   map[string]int
}

// NewCorpus fits document frequencies over texts.
// Each text counts as one document; empty texts still count.
func NewCorpus(texts []string) *Corpus {
	c := &Corpus{docs: len(texts), df: make(map[string]int)}
	for _, text := range texts {
		for term := range TermCounts(text) {
			c.df[term]++
		}
	}
	return c
}

// Docs returns the number of documents the corpus was fitted on.
func (c *Corpus) Docs() int {
	return c.docs
}

// DocFreq returns how many documents contain term.
func (c *Corpus) DocFreq(term string) int {
	return c.df[term]
}

// IDF returns the smoothed inverse document frequency of term:
// ln((1+N)/(1+df)) + 1. Unseen terms get the highest weight.
func (c *Corpus) IDF(term string) float64 {
	return math.Log(float64(1+c.docs)/float64(1+c.df[term])) + 1
}

// Vectorize returns the tf-idf vector of text. Empty text yields a zero vector.
func (c *Corpus) Vectorize(text string) Vector {
	counts := TermCounts(text)
	if len(counts) == 0 {
		return Vector{}
	}
	weights := make(map[string]float64, len(counts))
	for term, tf := range counts {
		weights[term] = float64(tf) * c.IDF(term)
	}
	return newVector(weights)
}

// Similarity vectorises both texts against the corpus and returns their cosine.
func (c *Corpus) Similarity(a, b string) float64 {
	return Cosine(c.Vectorize(a), c.Vectorize(b))
}
