package voting

import "sort"

// tallyIRV runs instant-runoff: count first-place votes among remaining
// candidates, eliminate the lowest getter, redistribute, and repeat until
// someone holds a majority (or only one candidate stands). Elimination
// ties break alphabetically for determinism. The result is controversial
// when the final round was decided by at most one vote.
func tallyIRV(ballots []Ballot, candidates []string) *Result {
	remaining := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		remaining[c] = true
	}

	// Elimination order, earliest first; the winner is appended last.
	var eliminated []string
	var rounds []map[string]int
	var finalCounts map[string]int

	for {
		counts := firstPlaceCounts(ballots, remaining)
		rounds = append(rounds, counts)
		finalCounts = counts

		leader, leaderVotes := "", -1
		loser, loserVotes := "", 1<<31
		names := sortedCandidates(counts)
		for _, c := range names {
			v := counts[c]
			if v > leaderVotes {
				leader, leaderVotes = c, v
			}
			if v < loserVotes {
				loser, loserVotes = c, v
			}
		}

		active := 0
		for _, ok := range remaining {
			if ok {
				active++
			}
		}

		if leaderVotes*2 > len(ballots) || active <= 1 {
			_ = leader
			break
		}

		remaining[loser] = false
		eliminated = append(eliminated, loser)
	}

	// Final standings: survivors by final-round votes, then eliminated
	// candidates in reverse elimination order.
	scores := make(map[string]float64, len(candidates))
	for c, v := range finalCounts {
		scores[c] = float64(v)
	}
	ranking := rankingFromScores(scores)
	for i := len(eliminated) - 1; i >= 0; i-- {
		ranking = append(ranking, Scored{Candidate: eliminated[i], Score: 0})
	}

	controversial := false
	if len(finalCounts) >= 2 {
		top := make([]int, 0, len(finalCounts))
		for _, v := range finalCounts {
			top = append(top, v)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(top)))
		controversial = top[0]-top[1] <= 1
	}

	return &Result{
		Winner:        ranking[0].Candidate,
		Ranking:       ranking,
		Method:        MethodIRV,
		Controversial: controversial,
		Rounds:        rounds,
	}
}

// firstPlaceCounts counts each ballot's highest-ranked remaining
// candidate.
func firstPlaceCounts(ballots []Ballot, remaining map[string]bool) map[string]int {
	counts := make(map[string]int)
	for c, ok := range remaining {
		if ok {
			counts[c] = 0
		}
	}
	for _, b := range ballots {
		for _, c := range b.Ranking {
			if remaining[c] {
				counts[c]++
				break
			}
		}
	}
	return counts
}

// sortedCandidates returns count keys alphabetically so scans over the
// map are order-stable.
func sortedCandidates(counts map[string]int) []string {
	names := make([]string, 0, len(counts))
	for c := range counts {
		names = append(names, c)
	}
	sort.Strings(names)
	return names
}
