// Package adaptive decides, after each eligible phase, whether the
// deliberation should continue as planned, skip ahead, or grow by an
// extra round. The decision is driven by a composite disagreement score
// over the phase's provider responses.
package adaptive

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

const (
	termDivergenceWeight  = 0.6
	positionEntropyWeight = 0.4
	significantWordLen    = 5
)

var (
	wordPattern = regexp.MustCompile(`[a-zA-Z]+`)
	// Sentences containing an assertion verb are treated as claims.
	assertionPattern = regexp.MustCompile(`(?i)\b(is|are|was|were|should|must|will|would|cannot|never|always)\b`)
	sentenceSplit    = regexp.MustCompile(`[.!?]+`)
)

// Entropy scores inter-provider disagreement in [0,1]. It is a weighted
// average of term divergence (vocabulary overlap across responses) and
// position entropy (how evenly distinct claims are spread across
// responders). Fewer than two non-empty responses score 0.
func Entropy(responses map[string]string) float64 {
	texts := make([]string, 0, len(responses))
	for _, text := range responses {
		if strings.TrimSpace(text) != "" {
			texts = append(texts, text)
		}
	}
	if len(texts) < 2 {
		return 0
	}

	score := termDivergenceWeight*termDivergence(texts) +
		positionEntropyWeight*positionEntropy(texts)
	return clamp01(score)
}

// termDivergence is one minus the mean pairwise Jaccard similarity of the
// significant-word sets of all responses.
func termDivergence(texts []string) float64 {
	sets := make([]map[string]struct{}, len(texts))
	for i, text := range texts {
		sets[i] = significantWords(text)
	}

	var total float64
	var pairs int
	for i := 0; i < len(sets); i++ {
		for j := i + 1; j < len(sets); j++ {
			total += jaccard(sets[i], sets[j])
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return clamp01(1 - total/float64(pairs))
}

// positionEntropy is the normalized Shannon entropy of how many claims
// each responder uniquely contributed. Claims echoed by several
// responders carry no disagreement and are dropped; identical responses
// therefore score 0, while evenly spread novel claims score near 1.
func positionEntropy(texts []string) float64 {
	claimsByResponder := make([]map[string]struct{}, len(texts))
	authors := make(map[string]int)
	for i, text := range texts {
		claimsByResponder[i] = extractClaims(text)
		for claim := range claimsByResponder[i] {
			authors[claim]++
		}
	}

	counts := make([]int, len(texts))
	total := 0
	for i, claims := range claimsByResponder {
		for claim := range claims {
			if authors[claim] == 1 {
				counts[i]++
			}
		}
		total += counts[i]
	}
	if total == 0 {
		return 0
	}

	var h float64
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		h -= p * math.Log2(p)
	}

	max := math.Log2(float64(len(texts)))
	if max == 0 {
		return 0
	}
	return clamp01(h / max)
}

// extractClaims returns the distinct claims in a response. A claim is a
// sentence matching the assertion pattern, reduced to its sorted
// significant-keyword signature so rephrasings of the same claim collapse.
func extractClaims(text string) map[string]struct{} {
	claims := make(map[string]struct{})
	for _, sentence := range sentenceSplit.Split(text, -1) {
		if !assertionPattern.MatchString(sentence) {
			continue
		}
		words := significantWords(sentence)
		if len(words) == 0 {
			continue
		}
		keys := make([]string, 0, len(words))
		for w := range words {
			keys = append(keys, w)
		}
		sort.Strings(keys)
		claims[strings.Join(keys, " ")] = struct{}{}
	}
	return claims
}

// significantWords extracts lowercase words of significant length.
// Stop words are deliberately kept; the length filter removes most of
// them already, and the score only needs relative overlap.
func significantWords(text string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if len(w) >= significantWordLen {
			words[w] = struct{}{}
		}
	}
	return words
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	intersection := 0
	for w := range a {
		if _, ok := b[w]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 1
	}
	return float64(intersection) / float64(union)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
