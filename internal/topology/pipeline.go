package topology

// BuildPipeline creates the sequential refinement plan: a single
// non-parallel phase where step i sees the output of steps 0..i-1 and
// nothing else. The final provider's output is the synthesis seed, so
// the last provider is the default synthesizer.
func BuildPipeline(providers []string, cfg Config) (*Plan, error) {
	if err := validateProviders(providers, 2); err != nil {
		return nil, err
	}

	vis := make(map[string][]string, len(providers))
	for i, p := range providers {
		if i == 0 {
			continue
		}
		prior := make([]string, i)
		copy(prior, providers[:i])
		vis[p] = prior
	}

	phases := []Phase{{
		Name:         "pipeline",
		Kind:         KindDebate,
		Participants: providers,
		Visibility:   vis,
		Parallel:     false,
		Instruction:  "Improve on the work so far: correct it, extend it, and pass it on.",
	}}

	syn := cfg.Synthesizer
	if syn == "" {
		syn = providers[len(providers)-1]
	}
	if syn != SynthesizerAuto && !contains(providers, syn) {
		return nil, validationErrorf(CodeHubNotFound,
			"synthesizer %q is not in the provider list", syn)
	}

	return &Plan{
		Topology:       TypePipeline,
		Phases:         phases,
		Synthesizer:    syn,
		RequiresVoting: false,
	}, nil
}
