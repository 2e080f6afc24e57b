package playlist

import "github.com/hbollon/go-edlib"

// Scorer scores the similarity of two normalized strings in [0, 1].
// It is the pluggable capability behind the fuzzy matching tiers; swapping
// the algorithm or tuning thresholds never touches Matcher control flow.
type Scorer interface {
	Score(a, b string) float64
}

// JaroWinklerScorer scores strings with go-edlib's Jaro-Winkler
// implementation, which favors shared prefixes. That suits track titles,
// where exports and server tags usually diverge at the tail (edition
// suffixes, punctuation).
type JaroWinklerScorer struct{}

func (JaroWinklerScorer) Score(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	sim, err := edlib.StringsSimilarity(a, b, edlib.JaroWinkler)
	if err != nil {
		return 0
	}
	return float64(sim)
}
