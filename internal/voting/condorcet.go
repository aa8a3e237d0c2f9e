package voting

// tallyCondorcet looks for a candidate that beats every other in pairwise
// majorities. When no such candidate exists (a cycle), it falls back to
// Borda scoring and flags the result controversial. A clean Condorcet
// winner is ranked by pairwise win count.
func tallyCondorcet(ballots []Ballot, candidates []string) *Result {
	wins := pairwiseWins(ballots, candidates)

	winner := ""
	for _, c := range candidates {
		beatsAll := true
		for _, other := range candidates {
			if other == c {
				continue
			}
			if wins[c][other] <= wins[other][c] {
				beatsAll = false
				break
			}
		}
		if beatsAll {
			winner = c
			break
		}
	}

	if winner == "" {
		// Cycle: Borda breaks it, and the closeness is inherent.
		res := tallyBorda(ballots, candidates)
		res.Method = MethodCondorcet
		res.Controversial = true
		return res
	}

	// Every candidate keeps a score entry, even with zero pairwise wins,
	// so the ranking stays a full ordering of the candidate set.
	scores := make(map[string]float64, len(candidates))
	for _, c := range candidates {
		scores[c] = 0
		for _, other := range candidates {
			if other != c && wins[c][other] > wins[other][c] {
				scores[c]++
			}
		}
	}
	ranking := rankingFromScores(scores)

	return &Result{
		Winner:        winner,
		Ranking:       ranking,
		Method:        MethodCondorcet,
		Controversial: false,
	}
}

// pairwiseWins[a][b] counts ballots ranking a above b.
func pairwiseWins(ballots []Ballot, candidates []string) map[string]map[string]int {
	wins := make(map[string]map[string]int, len(candidates))
	for _, c := range candidates {
		wins[c] = make(map[string]int, len(candidates)-1)
	}
	for _, b := range ballots {
		pos := make(map[string]int, len(b.Ranking))
		for i, c := range b.Ranking {
			pos[c] = i
		}
		for _, a := range candidates {
			for _, c := range candidates {
				if a != c && pos[a] < pos[c] {
					wins[a][c]++
				}
			}
		}
	}
	return wins
}
