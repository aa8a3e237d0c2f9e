package topology

import "fmt"

// BuildTree creates the binary attack/defend plan. The first provider
// proposes, the second attacks, and the pair alternates defend/attack for
// the configured number of rounds. Remaining providers judge the exchange
// and everyone votes. Requires at least 2 providers; with only 2 the vote
// phase doubles as judging.
func BuildTree(providers []string, cfg Config) (*Plan, error) {
	if err := validateProviders(providers, 2); err != nil {
		return nil, err
	}

	proposer := providers[0]
	attacker := providers[1]
	judges := providers[2:]

	rounds := cfg.Rounds
	if rounds < 1 {
		rounds = 1
	}

	phases := []Phase{{
		Name:         "proposal",
		Kind:         KindInitial,
		Participants: []string{proposer},
		Parallel:     false,
		Instruction:  "Propose your answer with the strongest case you can make.",
	}}

	for r := 1; r <= rounds; r++ {
		phases = append(phases,
			Phase{
				Name:         fmt.Sprintf("attack_%d", r),
				Kind:         KindCritique,
				Participants: []string{attacker},
				Visibility:   map[string][]string{attacker: {proposer}},
				Parallel:     false,
				Instruction:  "Attack the proposal: expose every weakness, omission, and unsupported claim.",
			},
			Phase{
				Name:         fmt.Sprintf("defend_%d", r),
				Kind:         KindDebate,
				Participants: []string{proposer},
				Visibility:   map[string][]string{proposer: {attacker}},
				Parallel:     false,
				Instruction:  "Defend or amend your proposal against the attack. Concede what you cannot defend.",
			},
		)
	}

	if len(judges) > 0 {
		judgeVis := make(map[string][]string, len(judges))
		for _, j := range judges {
			judgeVis[j] = []string{proposer, attacker}
		}
		phases = append(phases, Phase{
			Name:         "judging",
			Kind:         KindJudging,
			Participants: judges,
			Visibility:   judgeVis,
			Parallel:     true,
			Instruction:  "Assess the exchange: did the proposal survive the attack? Score both sides.",
		})
	}

	phases = append(phases, Phase{
		Name:         "vote",
		Kind:         KindVote,
		Participants: providers,
		Visibility:   pairVisibilityForAll(providers, proposer, attacker),
		Parallel:     true,
		Instruction:  "Rank the candidate answers from best to worst.",
	})

	syn := cfg.Synthesizer
	if syn == "" {
		syn = SynthesizerAuto
	}

	return &Plan{
		Topology:       TypeTree,
		Phases:         phases,
		Synthesizer:    syn,
		RequiresVoting: true,
	}, nil
}

// pairVisibilityForAll lets every voter see the two combatants.
func pairVisibilityForAll(providers []string, a, b string) map[string][]string {
	vis := make(map[string][]string, len(providers))
	for _, p := range providers {
		targets := make([]string, 0, 2)
		if p != a {
			targets = append(targets, a)
		}
		if p != b {
			targets = append(targets, b)
		}
		vis[p] = targets
	}
	return vis
}
