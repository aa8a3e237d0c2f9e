package voting

// tallyBorda scores each ballot position as N - rank (rank is 1-based, so
// first place earns N-1 points and last earns zero), sums across voters,
// and flags the result controversial when the top two totals are within
// one point of each other.
func tallyBorda(ballots []Ballot, candidates []string) *Result {
	n := len(candidates)
	scores := make(map[string]float64, n)
	for _, c := range candidates {
		scores[c] = 0
	}

	for _, b := range ballots {
		for i, c := range b.Ranking {
			scores[c] += float64(n - (i + 1))
		}
	}

	ranking := rankingFromScores(scores)

	controversial := false
	if len(ranking) >= 2 {
		controversial = ranking[0].Score-ranking[1].Score <= 1
	}

	return &Result{
		Winner:        ranking[0].Candidate,
		Ranking:       ranking,
		Method:        MethodBorda,
		Controversial: controversial,
	}
}
