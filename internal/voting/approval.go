package voting

// tallyApproval treats each voter's top-K ranks as approvals and counts
// them; the highest approval count wins. K defaults to half the candidate
// count, rounded up. Controversial when the approval gap between the top
// two is at most one.
func tallyApproval(ballots []Ballot, candidates []string, topK int) *Result {
	if topK <= 0 {
		topK = (len(candidates) + 1) / 2
	}
	if topK > len(candidates) {
		topK = len(candidates)
	}

	scores := make(map[string]float64, len(candidates))
	for _, c := range candidates {
		scores[c] = 0
	}
	for _, b := range ballots {
		for i := 0; i < topK && i < len(b.Ranking); i++ {
			scores[b.Ranking[i]]++
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
		Method:        MethodApproval,
		Controversial: controversial,
	}
}
