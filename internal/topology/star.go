package topology

// BuildStar creates the hub-and-spoke plan. Spokes answer independently,
// the hub critiques everything, spokes revise seeing only the hub's
// critique, and the hub synthesizes. The hub must appear in the provider
// list; it defaults to the first provider.
func BuildStar(providers []string, cfg Config) (*Plan, error) {
	if err := validateProviders(providers, 2); err != nil {
		return nil, err
	}

	hub := cfg.Hub
	if hub == "" {
		hub = providers[0]
	}
	if !contains(providers, hub) {
		return nil, validationErrorf(CodeHubNotFound,
			"hub %q is not in the provider list", hub)
	}

	spokes := othersOf(providers, hub)

	// Spoke revisions see only the hub, never each other. That keeps the
	// star's independence property intact through the revise phase.
	reviseVis := make(map[string][]string, len(spokes))
	for _, s := range spokes {
		reviseVis[s] = []string{hub}
	}

	phases := []Phase{
		{
			Name:         "spoke_responses",
			Kind:         KindInitial,
			Participants: spokes,
			Parallel:     true,
			Instruction:  "Answer the question on your own. Do not assume what others will say.",
		},
		{
			Name:         "hub_critique",
			Kind:         KindDebate,
			Participants: []string{hub},
			Visibility:   map[string][]string{hub: spokes},
			Parallel:     false,
			Instruction:  "Critique each response: flag errors, gaps, and disagreements between them.",
		},
		{
			Name:         "spoke_revisions",
			Kind:         KindAdjustment,
			Participants: spokes,
			Visibility:   reviseVis,
			Parallel:     true,
			Instruction:  "Revise your answer to address the critique. You cannot see other responses.",
		},
	}

	return &Plan{
		Topology:       TypeStar,
		Phases:         phases,
		Synthesizer:    hub,
		RequiresVoting: false,
	}, nil
}
