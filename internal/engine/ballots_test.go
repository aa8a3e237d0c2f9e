package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBallot_MentionOrderBecomesRanking(t *testing.T) {
	candidates := []string{"claude", "gpt", "gemini"}

	b, ok := parseBallot("claude", "RANKING: gemini > claude > gpt", candidates)
	require.True(t, ok)
	assert.Equal(t, []string{"gemini", "claude", "gpt"}, b.Ranking)
	assert.Equal(t, "claude", b.Voter)
}

func TestParseBallot_ToleratesProseAndCase(t *testing.T) {
	candidates := []string{"claude", "gpt", "gemini"}

	text := "I found GPT's answer strongest, then Gemini's framing, and finally Claude's."
	b, ok := parseBallot("gemini", text, candidates)
	require.True(t, ok)
	assert.Equal(t, []string{"gpt", "gemini", "claude"}, b.Ranking)
}

func TestParseBallot_UnmentionedCandidatesRankLast(t *testing.T) {
	candidates := []string{"claude", "gpt", "gemini"}

	b, ok := parseBallot("gpt", "Best answer: gemini.", candidates)
	require.True(t, ok)
	assert.Equal(t, []string{"gemini", "claude", "gpt"}, b.Ranking)
	assert.Len(t, b.Ranking, len(candidates), "ballot must stay a full permutation")
}

func TestParseBallot_NoMentionsIsNoBallot(t *testing.T) {
	_, ok := parseBallot("claude", "They were all fine.", []string{"claude", "gpt"})
	assert.False(t, ok)
}

func TestParseBallots_SkipsFallbackEntries(t *testing.T) {
	candidates := []string{"claude", "gpt"}
	output := PhaseOutput{
		Phase: "vote",
		Entries: []ResponseEntry{
			{Provider: "claude", Text: "RANKING: claude > gpt"},
			{Provider: "gpt", Text: "RANKING: claude > gpt", Fallback: true},
		},
	}

	ballots := parseBallots(output, candidates)
	require.Len(t, ballots, 1)
	assert.Equal(t, "claude", ballots[0].Voter)
}
