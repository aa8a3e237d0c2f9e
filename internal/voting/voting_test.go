package voting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var abc = []string{"A", "B", "C"}

func ballot(voter string, ranking ...string) Ballot {
	return Ballot{Voter: voter, Ranking: ranking}
}

func TestTally_ValidatesBallots(t *testing.T) {
	tests := []struct {
		name    string
		ballots []Ballot
	}{
		{"missing candidate", []Ballot{ballot("v1", "A", "B")}},
		{"unknown candidate", []Ballot{ballot("v1", "A", "B", "D")}},
		{"duplicate candidate", []Ballot{ballot("v1", "A", "B", "B")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tally(MethodBorda, tt.ballots, abc, Config{})
			assert.Error(t, err)
		})
	}
}

func TestTally_UnknownMethodRejected(t *testing.T) {
	_, err := Tally("veto", []Ballot{ballot("v1", "A", "B", "C")}, abc, Config{})
	assert.Error(t, err)
}

func TestBorda_CloseRaceIsControversial(t *testing.T) {
	// Two voters rank A,B,C and one ranks C,B,A. With score = N - rank
	// that gives A=4, B=3, C=2: a one-point gap at the top.
	ballots := []Ballot{
		ballot("v1", "A", "B", "C"),
		ballot("v2", "A", "B", "C"),
		ballot("v3", "C", "B", "A"),
	}

	res, err := Tally(MethodBorda, ballots, abc, Config{})
	require.NoError(t, err)

	assert.Equal(t, "A", res.Winner)
	assert.Equal(t, 4.0, res.Ranking[0].Score)
	assert.Equal(t, 3.0, res.Ranking[1].Score)
	assert.Equal(t, 2.0, res.Ranking[2].Score)
	assert.True(t, res.Controversial, "one-point gap must flag controversy")
}

func TestBorda_SymmetricBallotsTieEverything(t *testing.T) {
	ballots := []Ballot{
		ballot("v1", "A", "B", "C"),
		ballot("v2", "A", "B", "C"),
		ballot("v3", "C", "B", "A"),
		ballot("v4", "C", "B", "A"),
	}

	res, err := Tally(MethodBorda, ballots, abc, Config{})
	require.NoError(t, err)

	for _, s := range res.Ranking {
		assert.Equal(t, 4.0, s.Score)
	}
	assert.True(t, res.Controversial)
	assert.Contains(t, abc, res.Winner)
}

func TestBorda_ClearWinnerNotControversial(t *testing.T) {
	ballots := []Ballot{
		ballot("v1", "A", "B", "C"),
		ballot("v2", "A", "B", "C"),
		ballot("v3", "A", "C", "B"),
	}

	res, err := Tally(MethodBorda, ballots, abc, Config{})
	require.NoError(t, err)

	assert.Equal(t, "A", res.Winner)
	assert.Equal(t, 6.0, res.Ranking[0].Score)
	assert.False(t, res.Controversial)
}

func TestIRV_EliminatesAndRedistributes(t *testing.T) {
	// First-place: A=2, B=1, C=2. B eliminated; B's voter transfers to C,
	// giving C the majority.
	ballots := []Ballot{
		ballot("v1", "A", "B", "C"),
		ballot("v2", "A", "C", "B"),
		ballot("v3", "B", "C", "A"),
		ballot("v4", "C", "B", "A"),
		ballot("v5", "C", "A", "B"),
	}

	res, err := Tally(MethodIRV, ballots, abc, Config{})
	require.NoError(t, err)

	assert.Equal(t, "C", res.Winner)
	require.Len(t, res.Rounds, 2)
	assert.Equal(t, 2, res.Rounds[0]["A"])
	assert.Equal(t, 1, res.Rounds[0]["B"])
	assert.Equal(t, 2, res.Rounds[0]["C"])
	assert.Equal(t, 3, res.Rounds[1]["C"])
	assert.True(t, res.Controversial, "3-2 final round is within one vote")
}

func TestIRV_ImmediateMajority(t *testing.T) {
	ballots := []Ballot{
		ballot("v1", "A", "B", "C"),
		ballot("v2", "A", "C", "B"),
		ballot("v3", "B", "A", "C"),
	}

	res, err := Tally(MethodIRV, ballots, abc, Config{})
	require.NoError(t, err)

	assert.Equal(t, "A", res.Winner)
	assert.Len(t, res.Rounds, 1)
}

func TestApproval_TopKCounts(t *testing.T) {
	ballots := []Ballot{
		ballot("v1", "A", "B", "C"),
		ballot("v2", "B", "A", "C"),
		ballot("v3", "B", "C", "A"),
	}

	// K=2: approvals A=2, B=3, C=1.
	res, err := Tally(MethodApproval, ballots, abc, Config{ApprovalTopK: 2})
	require.NoError(t, err)

	assert.Equal(t, "B", res.Winner)
	assert.Equal(t, 3.0, res.Ranking[0].Score)
	assert.True(t, res.Controversial, "gap of one approval")
}

func TestApproval_DefaultKIsHalfRoundedUp(t *testing.T) {
	ballots := []Ballot{ballot("v1", "A", "B", "C")}

	// 3 candidates -> K=2: A and B approved.
	res, err := Tally(MethodApproval, ballots, abc, Config{})
	require.NoError(t, err)

	assert.Equal(t, 1.0, res.Ranking[0].Score)
	assert.Equal(t, 0.0, res.Ranking[2].Score)
	assert.Equal(t, "C", res.Ranking[2].Candidate)
}

func TestCondorcet_PairwiseWinner(t *testing.T) {
	// B beats A (2-1) and beats C (3-0): clean Condorcet winner even
	// though A has more first places under plurality.
	ballots := []Ballot{
		ballot("v1", "A", "B", "C"),
		ballot("v2", "B", "A", "C"),
		ballot("v3", "B", "A", "C"),
	}

	res, err := Tally(MethodCondorcet, ballots, abc, Config{})
	require.NoError(t, err)

	assert.Equal(t, "B", res.Winner)
	assert.False(t, res.Controversial)

	// The ranking covers the full candidate set: C has zero pairwise
	// wins and still appears, in last place.
	require.Len(t, res.Ranking, 3)
	assert.Equal(t, "C", res.Ranking[2].Candidate)
	assert.Zero(t, res.Ranking[2].Score)
}

func TestCondorcet_CycleFallsBackToBorda(t *testing.T) {
	// Classic rock-paper-scissors cycle: A>B>C, B>C>A, C>A>B.
	ballots := []Ballot{
		ballot("v1", "A", "B", "C"),
		ballot("v2", "B", "C", "A"),
		ballot("v3", "C", "A", "B"),
	}

	res, err := Tally(MethodCondorcet, ballots, abc, Config{})
	require.NoError(t, err)

	assert.Equal(t, MethodCondorcet, res.Method)
	assert.True(t, res.Controversial, "cycle fallback is controversial by definition")
	assert.Contains(t, abc, res.Winner)
}

func TestAllMethods_WinnerAlwaysInCandidateSet(t *testing.T) {
	ballots := []Ballot{
		ballot("v1", "A", "C", "B"),
		ballot("v2", "C", "A", "B"),
		ballot("v3", "B", "A", "C"),
	}

	for _, m := range []Method{MethodBorda, MethodIRV, MethodApproval, MethodCondorcet} {
		res, err := Tally(m, ballots, abc, Config{})
		require.NoError(t, err, "method %s", m)
		assert.Contains(t, abc, res.Winner, "method %s", m)
		assert.Len(t, res.Ranking, len(abc), "method %s returns a full ranking", m)
	}
}
