package topology

// BuildPanel creates the moderated panel plan. The moderator frames the
// question, panelists respond seeing only the framing, the moderator
// summarizes points of conflict, panelists rebut seeing everything, and
// the moderator synthesizes. The moderator must be in the provider list
// and defaults to the first provider.
func BuildPanel(providers []string, cfg Config) (*Plan, error) {
	if err := validateProviders(providers, 3); err != nil {
		return nil, err
	}

	moderator := cfg.Moderator
	if moderator == "" {
		moderator = providers[0]
	}
	if !contains(providers, moderator) {
		return nil, validationErrorf(CodeModeratorNotFound,
			"moderator %q is not in the provider list", moderator)
	}

	panelists := othersOf(providers, moderator)

	respondVis := make(map[string][]string, len(panelists))
	for _, p := range panelists {
		respondVis[p] = []string{moderator}
	}

	rebutVis := make(map[string][]string, len(panelists))
	for _, p := range panelists {
		rebutVis[p] = append([]string{moderator}, othersOf(panelists, p)...)
	}

	phases := []Phase{
		{
			Name:         "framing",
			Kind:         KindModerate,
			Participants: []string{moderator},
			Parallel:     false,
			Instruction:  "Frame the question: define terms, list the axes of disagreement to address.",
		},
		{
			Name:         "panel_responses",
			Kind:         KindInitial,
			Participants: panelists,
			Visibility:   respondVis,
			Parallel:     true,
			Instruction:  "Answer within the moderator's framing. You cannot see other panelists.",
		},
		{
			Name:         "moderator_summary",
			Kind:         KindModerate,
			Participants: []string{moderator},
			Visibility:   map[string][]string{moderator: panelists},
			Parallel:     false,
			Instruction:  "Summarize where the panel agrees and disagrees. Pose the sharpest open question.",
		},
		{
			Name:         "panel_rebuttals",
			Kind:         KindDebate,
			Participants: panelists,
			Visibility:   rebutVis,
			Parallel:     true,
			Instruction:  "Rebut the positions you disagree with and answer the moderator's open question.",
		},
	}

	return &Plan{
		Topology:       TypePanel,
		Phases:         phases,
		Synthesizer:    moderator,
		RequiresVoting: false,
	}, nil
}
