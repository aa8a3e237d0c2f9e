package adaptive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	microservicesPosition = "Microservices architecture is fundamentally superior because isolation boundaries prevent cascading failures. Independent deployment cycles always reduce coordination overhead."
	monolithPosition      = "Monolithic designs should remain preferred since deployment simplicity outweighs scaling concerns. Shared memory access is dramatically faster than network hops."
)

func TestEntropy_FewerThanTwoResponsesScoresZero(t *testing.T) {
	assert.Zero(t, Entropy(nil))
	assert.Zero(t, Entropy(map[string]string{"claude": microservicesPosition}))
	assert.Zero(t, Entropy(map[string]string{
		"claude": microservicesPosition,
		"gpt":    "   ",
	}))
}

func TestEntropy_IdenticalResponsesScoreZero(t *testing.T) {
	score := Entropy(map[string]string{
		"claude": microservicesPosition,
		"gpt":    microservicesPosition,
		"gemini": microservicesPosition,
	})
	assert.Zero(t, score)
}

func TestEntropy_DivergentResponsesScoreHigh(t *testing.T) {
	score := Entropy(map[string]string{
		"claude": microservicesPosition,
		"gpt":    monolithPosition,
	})
	assert.Greater(t, score, 0.7)
	assert.LessOrEqual(t, score, 1.0)
}

func TestEntropy_AlwaysInUnitInterval(t *testing.T) {
	cases := []map[string]string{
		{"a": "short", "b": "words"},
		{"a": microservicesPosition, "b": monolithPosition, "c": ""},
		{"a": "!!!", "b": "???"},
		{"a": microservicesPosition, "b": monolithPosition, "c": microservicesPosition},
	}
	for _, responses := range cases {
		score := Entropy(responses)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}

func TestTermDivergence_PartialOverlapBetweenExtremes(t *testing.T) {
	identical := termDivergence([]string{microservicesPosition, microservicesPosition})
	disjoint := termDivergence([]string{microservicesPosition, monolithPosition})
	mixed := termDivergence([]string{
		microservicesPosition,
		microservicesPosition + " " + monolithPosition,
	})

	assert.Zero(t, identical)
	assert.Greater(t, disjoint, 0.9)
	assert.Greater(t, mixed, identical)
	assert.Less(t, mixed, disjoint)
}

func TestExtractClaims_OnlyAssertionSentences(t *testing.T) {
	claims := extractClaims("What about latency? Caching is clearly essential here. Thanks everyone.")
	assert.Len(t, claims, 1)

	none := extractClaims("Hmm. Interesting question. More detail please.")
	assert.Empty(t, none)
}

func TestSignificantWords_LengthFilterAndLowercase(t *testing.T) {
	words := significantWords("The Cache EVICTION rate is low")
	_, hasEviction := words["eviction"]
	_, hasCache := words["cache"]
	_, hasThe := words["the"]
	assert.True(t, hasEviction)
	assert.True(t, hasCache)
	assert.False(t, hasThe)
}
