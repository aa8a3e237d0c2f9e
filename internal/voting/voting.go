// Package voting tallies ranked ballots into a winner and full ranking.
// All methods accept the same ballot shape and return the same Result
// shape, so the orchestrator never cares which method a profile picked.
package voting

import (
	"fmt"
	"sort"
)

// Method identifies the tally algorithm.
type Method string

const (
	// MethodBorda - positional count, score = N - rank.
	MethodBorda Method = "borda"
	// MethodIRV - instant runoff: eliminate lowest first-place getter.
	MethodIRV Method = "irv"
	// MethodApproval - each voter's top-K ranks count as approvals.
	MethodApproval Method = "approval"
	// MethodCondorcet - pairwise-majority winner, Borda fallback on cycles.
	MethodCondorcet Method = "condorcet"
)

// Ballot is one voter's complete ranking of all candidates, best first.
type Ballot struct {
	Voter   string   `json:"voter"`
	Ranking []string `json:"ranking"`
}

// Scored pairs a candidate with its tally score.
type Scored struct {
	Candidate string  `json:"candidate"`
	Score     float64 `json:"score"`
}

// Result is the method-agnostic tally outcome.
type Result struct {
	Winner  string   `json:"winner"`
	Ranking []Scored `json:"ranking"`
	Method  Method   `json:"method"`
	// Controversial is true when the outcome was close under the
	// method's own closeness rule (for Borda: top-two gap of at most
	// one point).
	Controversial bool `json:"controversial"`
	// Rounds records elimination rounds for IRV, empty otherwise.
	Rounds []map[string]int `json:"rounds,omitempty"`
}

// Config carries per-method knobs.
type Config struct {
	// ApprovalTopK is how many leading ranks count as approvals; zero
	// means half the candidate count, rounded up.
	ApprovalTopK int `json:"approval_top_k" yaml:"approval_top_k"`
}

// Tally runs the selected method over the ballots. Every ballot must be a
// permutation of the candidate set; the winner is always drawn from it.
func Tally(method Method, ballots []Ballot, candidates []string, cfg Config) (*Result, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("voting: no candidates")
	}
	if len(ballots) == 0 {
		return nil, fmt.Errorf("voting: no ballots")
	}
	if err := validateBallots(ballots, candidates); err != nil {
		return nil, err
	}

	switch method {
	case MethodBorda, "":
		return tallyBorda(ballots, candidates), nil
	case MethodIRV:
		return tallyIRV(ballots, candidates), nil
	case MethodApproval:
		return tallyApproval(ballots, candidates, cfg.ApprovalTopK), nil
	case MethodCondorcet:
		return tallyCondorcet(ballots, candidates), nil
	default:
		return nil, fmt.Errorf("voting: unknown method %q", method)
	}
}

// validateBallots checks that each ballot ranks every candidate exactly
// once and nothing else.
func validateBallots(ballots []Ballot, candidates []string) error {
	want := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		want[c] = struct{}{}
	}

	for _, b := range ballots {
		if len(b.Ranking) != len(candidates) {
			return fmt.Errorf("voting: ballot from %q ranks %d of %d candidates",
				b.Voter, len(b.Ranking), len(candidates))
		}
		seen := make(map[string]struct{}, len(b.Ranking))
		for _, c := range b.Ranking {
			if _, ok := want[c]; !ok {
				return fmt.Errorf("voting: ballot from %q ranks unknown candidate %q", b.Voter, c)
			}
			if _, dup := seen[c]; dup {
				return fmt.Errorf("voting: ballot from %q ranks %q twice", b.Voter, c)
			}
			seen[c] = struct{}{}
		}
	}
	return nil
}

// rankingFromScores orders candidates by descending score, breaking ties
// alphabetically so results are deterministic.
func rankingFromScores(scores map[string]float64) []Scored {
	ranking := make([]Scored, 0, len(scores))
	for c, s := range scores {
		ranking = append(ranking, Scored{Candidate: c, Score: s})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Score != ranking[j].Score {
			return ranking[i].Score > ranking[j].Score
		}
		return ranking[i].Candidate < ranking[j].Candidate
	})
	return ranking
}
