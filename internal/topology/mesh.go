package topology

import "fmt"

// BuildMesh creates the all-vs-all plan: an independent opening phase,
// one or more debate rounds where everyone reads everyone, an adjustment
// phase, and a closing vote.
func BuildMesh(providers []string, cfg Config) (*Plan, error) {
	if err := validateProviders(providers, 2); err != nil {
		return nil, err
	}

	rounds := cfg.Rounds
	if rounds < 1 {
		rounds = 1
	}

	phases := []Phase{{
		Name:         "independent",
		Kind:         KindInitial,
		Participants: providers,
		Parallel:     true,
		Instruction:  "Answer the question on your own. Do not assume what others will say.",
	}}

	for r := 1; r <= rounds; r++ {
		phases = append(phases, Phase{
			Name:         fmt.Sprintf("debate_%d", r),
			Kind:         KindDebate,
			Participants: providers,
			Visibility:   fullVisibility(providers),
			Parallel:     true,
			Instruction:  "Engage with the other answers: challenge weak claims, concede strong ones.",
		})
	}

	phases = append(phases,
		Phase{
			Name:         "adjustment",
			Kind:         KindAdjustment,
			Participants: providers,
			Visibility:   fullVisibility(providers),
			Parallel:     true,
			Instruction:  "Revise your answer in light of the debate. Keep what survived scrutiny.",
		},
		Phase{
			Name:         "vote",
			Kind:         KindVote,
			Participants: providers,
			Visibility:   fullVisibility(providers),
			Parallel:     true,
			Instruction:  "Rank every candidate answer from best to worst, your own included.",
		},
	)

	syn := cfg.Synthesizer
	if syn == "" {
		syn = SynthesizerAuto
	}

	return &Plan{
		Topology:       TypeMesh,
		Phases:         phases,
		Synthesizer:    syn,
		RequiresVoting: true,
	}, nil
}
