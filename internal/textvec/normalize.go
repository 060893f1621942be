// Package textvec turns block text into comparable token vectors.
//
// Normalisation applies Unicode NFKC, full case folding, and replaces
// punctuation and symbols with spaces. Vectors are sparse term-frequency
// weighted by a smoothed inverse document frequency fitted on a Corpus.
package textvec

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalize returns the canonical form of s: NFKC, case-folded, with
// punctuation and symbols removed and whitespace collapsed.
func Normalize(s string) string {
	return strings.Join(Tokenize(s), " ")
}

// Tokenize splits normalised text into tokens.
func Tokenize(s string) []string {
	if s == "" {
		return nil
	}
	// cases.Caser is stateful and not safe for concurrent use.
	folded := cases.Fold().String(norm.NFKC.String(s))

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case unicode.IsPunct(r), unicode.IsSymbol(r), unicode.IsControl(r):
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Fields(b.String())
}

// TermCounts returns the token frequencies of text.
func TermCounts(text string) map[string]int {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	return counts
}

// Equal reports whether a and b normalise to the same token sequence.
func Equal(a, b string) bool {
	ta, tb := Tokenize(a), Tokenize(b)
	if len(ta) != len(tb) {
		return false
	}
	for i := range ta {
		if ta[i] != tb[i] {
			return false
		}
	}
	return true
}
