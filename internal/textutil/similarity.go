package textutil

import (
	"math"
	"regexp"
	"strings"
)

// minTokenLen drops single letters and two-letter fragments such as "L" or "FX".
const minTokenLen = 3

var tokenSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// Fingerprint is a term-frequency vector over the tokens of an asset name or
// path.
type Fingerprint struct {
	tokens map[string]float64
	norm   float64
}

// NewFingerprint tokenizes text. It returns nil when no token survives.
func NewFingerprint(text string) *Fingerprint {
	terms := Tokenize(text)
	if len(terms) == 0 {
		return nil
	}
	fp := &Fingerprint{tokens: make(map[string]float64, len(terms))}
	for _, term := range terms {
		fp.tokens[term]++
	}
	for _, count := range fp.tokens {
		fp.norm += count * count
	}
	fp.norm = math.Sqrt(fp.norm)
	return fp
}

// Tokenize lowercases text and splits it on anything that is not a letter or
// digit, so "Materials/Body_mat" and "materials body mat" agree.
func Tokenize(text string) []string {
	raw := tokenSeparators.Split(strings.ToLower(text), -1)
	terms := make([]string, 0, len(raw))
	for _, token := range raw {
		if len(token) < minTokenLen {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

// TokenCount returns the number of distinct tokens.
func (f *Fingerprint) TokenCount() int {
	if f == nil {
		return 0
	}
	return len(f.tokens)
}

// CosineSimilarity computes the cosine similarity between two fingerprints.
// Returns 0 if either fingerprint is nil or has zero norm.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	for token, count := range a.tokens {
		if other, ok := b.tokens[token]; ok {
			dot += count * other
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (a.norm * b.norm)
}

// ClosestMatch returns the candidate most similar to query. Candidates scoring
// below minScore are ignored; ties keep the earlier candidate.
func ClosestMatch(query string, candidates []string, minScore float64) (string, bool) {
	target := NewFingerprint(query)
	if target == nil {
		return "", false
	}
	best, bestScore := "", 0.0
	for _, candidate := range candidates {
		score := CosineSimilarity(target, NewFingerprint(candidate))
		if score < minScore || score <= bestScore {
			continue
		}
		best, bestScore = candidate, score
	}
	return best, best != ""
}
