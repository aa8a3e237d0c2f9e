package topology

import (
	"fmt"
	"math/rand"
)

// Match is one head-to-head pairing in a tournament bracket.
type Match struct {
	A      string   `json:"a"`
	B      string   `json:"b"`
	Judges []string `json:"judges"`
}

// Bracket is the pairing layout derived from the seeding rule.
type Bracket struct {
	Matches []Match `json:"matches"`
	// Bye names the provider advancing without a match, if any.
	Bye string `json:"bye,omitempty"`
}

// BuildTournament creates the bracket plan. Each match expands into
// position, critique, and judging sub-phases; judges are drawn from the
// providers not playing in that match. A final vote phase ranks all
// candidates. Requires at least 3 providers so every match has a judge.
func BuildTournament(providers []string, cfg Config) (*Plan, error) {
	if err := validateProviders(providers, 3); err != nil {
		return nil, err
	}

	bracket, err := seedBracket(providers, cfg)
	if err != nil {
		return nil, err
	}

	var phases []Phase
	for i, m := range bracket.Matches {
		pair := []string{m.A, m.B}
		num := i + 1

		judgeVis := make(map[string][]string, len(m.Judges))
		for _, j := range m.Judges {
			judgeVis[j] = pair
		}

		phases = append(phases,
			Phase{
				Name:         fmt.Sprintf("match_%d_position", num),
				Kind:         KindPosition,
				Participants: pair,
				Parallel:     true,
				Instruction:  "State your answer and the strongest case for it.",
			},
			Phase{
				Name:         fmt.Sprintf("match_%d_critique", num),
				Kind:         KindCritique,
				Participants: pair,
				Visibility:   map[string][]string{m.A: {m.B}, m.B: {m.A}},
				Parallel:     true,
				Instruction:  "Attack your opponent's position: find its weakest claims.",
			},
			Phase{
				Name:         fmt.Sprintf("match_%d_judging", num),
				Kind:         KindJudging,
				Participants: m.Judges,
				Visibility:   judgeVis,
				Parallel:     true,
				Instruction:  "You did not play this match. Score both positions and declare a winner with reasons.",
			},
		)
	}

	phases = append(phases, Phase{
		Name:         "vote",
		Kind:         KindVote,
		Participants: providers,
		Visibility:   fullVisibility(providers),
		Parallel:     true,
		Instruction:  "Rank every candidate answer from best to worst, your own included.",
	})

	syn := cfg.Synthesizer
	if syn == "" {
		syn = SynthesizerAuto
	}

	return &Plan{
		Topology:       TypeTournament,
		Phases:         phases,
		Synthesizer:    syn,
		RequiresVoting: true,
	}, nil
}

// seedBracket applies the configured seeding rule. Provider list order is
// seed order: providers[0] is the top seed.
func seedBracket(providers []string, cfg Config) (*Bracket, error) {
	seeding := cfg.Seeding
	if seeding == "" {
		seeding = SeedingRanked
	}

	switch seeding {
	case SeedingRanked:
		return rankedBracket(providers), nil
	case SeedingRandom:
		shuffled := make([]string, len(providers))
		copy(shuffled, providers)
		rng := rand.New(rand.NewSource(cfg.Seed))
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		return sequentialBracket(shuffled, providers), nil
	default:
		return nil, validationErrorf(CodeUnknownTopology, "unknown seeding %q", seeding)
	}
}

// rankedBracket pairs seed 1 vs last, 2 vs second-last, and so on. With an
// odd field the middle seed sits out: for exactly three providers it is
// the only possible judge, so the top two seeds play and the third
// provider judges with no bye recorded; for larger odd fields the middle
// seed takes a bye and joins the judge pool.
func rankedBracket(providers []string) *Bracket {
	n := len(providers)

	if n == 3 {
		m := Match{A: providers[0], B: providers[1], Judges: []string{providers[2]}}
		return &Bracket{Matches: []Match{m}}
	}

	b := &Bracket{}
	lo, hi := 0, n-1
	for lo < hi {
		b.Matches = append(b.Matches, Match{A: providers[lo], B: providers[hi]})
		lo++
		hi--
	}
	if lo == hi {
		b.Bye = providers[lo]
	}
	assignJudges(b, providers)
	return b
}

// sequentialBracket pairs adjacent entries of the shuffled order; an odd
// leftover takes the bye. Judges are assigned from the original list so
// judge order stays stable regardless of shuffle.
func sequentialBracket(shuffled, original []string) *Bracket {
	b := &Bracket{}
	for i := 0; i+1 < len(shuffled); i += 2 {
		b.Matches = append(b.Matches, Match{A: shuffled[i], B: shuffled[i+1]})
	}
	if len(shuffled)%2 == 1 {
		last := shuffled[len(shuffled)-1]
		if len(shuffled) == 3 {
			// Sole non-player must judge, same as the ranked rule.
			b.Matches[0].Judges = []string{last}
			return b
		}
		b.Bye = last
	}
	assignJudges(b, original)
	return b
}

// assignJudges gives every match the providers not playing in it.
func assignJudges(b *Bracket, providers []string) {
	for i := range b.Matches {
		m := &b.Matches[i]
		for _, p := range providers {
			if p != m.A && p != m.B {
				m.Judges = append(m.Judges, p)
			}
		}
	}
}
