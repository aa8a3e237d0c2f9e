package engine

import (
	"sort"
	"strings"

	"dev.quorum.council/internal/voting"
)

// parseBallot extracts one voter's ranking from free-form vote text.
// Candidates are ordered by first mention (case-insensitive); candidates
// the voter never mentioned are appended in candidate-list order so the
// ballot is always a full permutation. Returns false when the text
// mentions no candidate at all.
func parseBallot(voter, text string, candidates []string) (voting.Ballot, bool) {
	lower := strings.ToLower(text)

	type mention struct {
		candidate string
		index     int
	}
	var mentioned []mention
	var missing []string
	for _, c := range candidates {
		idx := strings.Index(lower, strings.ToLower(c))
		if idx < 0 {
			missing = append(missing, c)
			continue
		}
		mentioned = append(mentioned, mention{candidate: c, index: idx})
	}
	if len(mentioned) == 0 {
		return voting.Ballot{}, false
	}

	sort.SliceStable(mentioned, func(i, j int) bool {
		return mentioned[i].index < mentioned[j].index
	})

	ranking := make([]string, 0, len(candidates))
	for _, m := range mentioned {
		ranking = append(ranking, m.candidate)
	}
	ranking = append(ranking, missing...)

	return voting.Ballot{Voter: voter, Ranking: ranking}, true
}

// parseBallots builds ballots from a vote phase's entries. Fallback
// entries are skipped: substituted text is not a cast vote.
func parseBallots(output PhaseOutput, candidates []string) []voting.Ballot {
	ballots := make([]voting.Ballot, 0, len(output.Entries))
	for _, e := range output.Entries {
		if e.Fallback {
			continue
		}
		if b, ok := parseBallot(e.Provider, e.Text, candidates); ok {
			ballots = append(ballots, b)
		}
	}
	return ballots
}
