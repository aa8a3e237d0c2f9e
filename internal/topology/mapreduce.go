package topology

import "fmt"

// BuildMapReduce creates the decompose/solve/reduce plan. The top
// provider splits the question into sub-questions, one solver answers
// each independently, and the reducer merges the sub-answers. The
// sub-question count defaults to the provider count and must not exceed
// it.
func BuildMapReduce(providers []string, cfg Config) (*Plan, error) {
	if err := validateProviders(providers, 2); err != nil {
		return nil, err
	}

	subs := cfg.SubQuestions
	if subs == 0 {
		subs = len(providers)
	}
	if subs > len(providers) {
		return nil, validationErrorf(CodeBadSubQuestions,
			"%d sub-questions but only %d providers", subs, len(providers))
	}
	if subs < 1 {
		return nil, validationErrorf(CodeBadSubQuestions,
			"sub-question count must be positive, got %d", subs)
	}

	decomposer := providers[0]
	reducer := cfg.Synthesizer
	if reducer == "" || reducer == SynthesizerAuto {
		reducer = decomposer
	}
	if !contains(providers, reducer) {
		return nil, validationErrorf(CodeHubNotFound,
			"synthesizer %q is not in the provider list", reducer)
	}

	phases := []Phase{{
		Name:         "decompose",
		Kind:         KindDecompose,
		Participants: []string{decomposer},
		Parallel:     false,
		Instruction: fmt.Sprintf(
			"Split the question into exactly %d independent sub-questions, one per line.", subs),
	}}

	// Solvers see only the decomposition; each is assigned one
	// sub-question by position at execution time.
	solvers := providers[:subs]
	solveVis := make(map[string][]string, subs)
	for _, s := range solvers {
		solveVis[s] = []string{decomposer}
	}
	phases = append(phases, Phase{
		Name:         "solve",
		Kind:         KindSolve,
		Participants: solvers,
		Visibility:   solveVis,
		Parallel:     true,
		Instruction:  "Answer only your assigned sub-question, thoroughly and independently.",
	})

	reduceVis := map[string][]string{reducer: append([]string{decomposer}, solvers...)}
	phases = append(phases, Phase{
		Name:         "reduce",
		Kind:         KindReduce,
		Participants: []string{reducer},
		Visibility:   reduceVis,
		Parallel:     false,
		Instruction:  "Merge the sub-answers into one coherent answer to the original question.",
	})

	return &Plan{
		Topology:       TypeMapReduce,
		Phases:         phases,
		Synthesizer:    reducer,
		RequiresVoting: false,
	}, nil
}
