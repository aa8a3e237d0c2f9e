// Package topology builds declarative deliberation plans: which providers
// speak in which phase, what prior text each may see, and whether the
// phase runs in parallel. Builders are pure functions from a provider list
// and configuration to an immutable Plan; they perform no I/O.
package topology

import "fmt"

// Type identifies the shape of the deliberation.
type Type string

const (
	// TypeMesh - every provider debates every other (all-vs-all).
	TypeMesh Type = "mesh"
	// TypeStar - a hub provider critiques and synthesizes spoke responses.
	TypeStar Type = "star"
	// TypeTournament - bracket of head-to-head matches with neutral judges.
	TypeTournament Type = "tournament"
	// TypeMapReduce - decompose into sub-questions, solve, then merge.
	TypeMapReduce Type = "mapreduce"
	// TypeTree - binary attack/defend exchange with a judging panel.
	TypeTree Type = "tree"
	// TypePipeline - sequential refinement, each step sees all prior steps.
	TypePipeline Type = "pipeline"
	// TypePanel - moderated panel with framing, responses, and rebuttals.
	TypePanel Type = "panel"
)

// Kind classifies a phase for adaptive control and prompt construction.
type Kind string

const (
	// KindInitial - independent first answers, no cross-visibility.
	KindInitial Kind = "initial"
	// KindDebate - participants engage with each other's prior text.
	KindDebate Kind = "debate"
	// KindAdjustment - participants revise their own answers.
	KindAdjustment Kind = "adjustment"
	// KindVote - participants rank the candidate answers.
	KindVote Kind = "vote"
	// KindPosition - a match participant states its case.
	KindPosition Kind = "position"
	// KindCritique - a match participant attacks the opponent's case.
	KindCritique Kind = "critique"
	// KindJudging - neutral providers score a match.
	KindJudging Kind = "judging"
	// KindDecompose - split the question into sub-questions.
	KindDecompose Kind = "decompose"
	// KindSolve - answer one assigned sub-question.
	KindSolve Kind = "solve"
	// KindReduce - merge sub-answers into one.
	KindReduce Kind = "reduce"
	// KindModerate - the moderator frames or summarizes.
	KindModerate Kind = "moderate"
)

// AdaptationEligible reports whether the adaptive controller is consulted
// after a phase of this kind completes.
func (k Kind) AdaptationEligible() bool {
	switch k {
	case KindInitial, KindDebate, KindAdjustment:
		return true
	default:
		return false
	}
}

// Phase is one step of the plan. Visibility maps each participant to the
// other participants whose prior text it may read; an absent entry means
// the participant sees nothing but the original question. Phases are
// value types and never mutated after Build returns.
type Phase struct {
	Name         string              `json:"name"`
	Kind         Kind                `json:"kind"`
	Participants []string            `json:"participants"`
	Visibility   map[string][]string `json:"visibility,omitempty"`
	Parallel     bool                `json:"parallel"`
	// Instruction is the phase-specific prompt framing prepended to each
	// participant's request.
	Instruction string `json:"instruction,omitempty"`
}

// Sees reports whether participant may read other's prior output in this
// phase.
func (p Phase) Sees(participant, other string) bool {
	for _, v := range p.Visibility[participant] {
		if v == other {
			return true
		}
	}
	return false
}

// SynthesizerAuto designates automatic synthesizer selection.
const SynthesizerAuto = "auto"

// Plan is the complete, immutable phase graph for one deliberation.
type Plan struct {
	Topology Type    `json:"topology"`
	Phases   []Phase `json:"phases"`
	// Synthesizer is a provider name or SynthesizerAuto.
	Synthesizer string `json:"synthesizer"`
	// RequiresVoting marks plans that end in a ballot tally.
	RequiresVoting bool `json:"requires_voting"`
}

// Seeding controls tournament pairing order.
type Seeding string

const (
	// SeedingRanked pairs rank 1 vs last, 2 vs second-last, and so on.
	SeedingRanked Seeding = "ranked"
	// SeedingRandom shuffles deterministically (by Config.Seed) then pairs.
	SeedingRandom Seeding = "random"
)

// Config carries the optional per-topology knobs.
type Config struct {
	// Hub names the star topology's center. Must be in the provider list.
	Hub string `json:"hub,omitempty" yaml:"hub,omitempty"`
	// Moderator names the panel moderator. Must be in the provider list.
	Moderator string `json:"moderator,omitempty" yaml:"moderator,omitempty"`
	// Seeding selects tournament pairing; defaults to SeedingRanked.
	Seeding Seeding `json:"seeding,omitempty" yaml:"seeding,omitempty"`
	// Seed drives random seeding so plans stay reproducible.
	Seed int64 `json:"seed,omitempty" yaml:"seed,omitempty"`
	// SubQuestions is the map-reduce split count; defaults to the
	// provider count and must not exceed it.
	SubQuestions int `json:"sub_questions,omitempty" yaml:"sub_questions,omitempty"`
	// Rounds is the number of debate (or attack/defend) rounds; defaults
	// to 1 where it applies.
	Rounds int `json:"rounds,omitempty" yaml:"rounds,omitempty"`
	// Synthesizer overrides the topology's default synthesizer.
	Synthesizer string `json:"synthesizer,omitempty" yaml:"synthesizer,omitempty"`
}

// ValidationError rejects a plan before any phase executes.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func validationErrorf(code, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Validation error codes.
const (
	CodeNoProviders       = "NO_PROVIDERS"
	CodeTooFewProviders   = "TOO_FEW_PROVIDERS"
	CodeUnknownTopology   = "UNKNOWN_TOPOLOGY"
	CodeHubNotFound       = "HUB_NOT_IN_PROVIDERS"
	CodeModeratorNotFound = "MODERATOR_NOT_IN_PROVIDERS"
	CodeBadSubQuestions   = "SUB_QUESTIONS_EXCEED_PROVIDERS"
	CodeDuplicateProvider = "DUPLICATE_PROVIDER"
)

// contains reports membership of name in providers.
func contains(providers []string, name string) bool {
	for _, p := range providers {
		if p == name {
			return true
		}
	}
	return false
}

// validateProviders applies the checks shared by every builder.
func validateProviders(providers []string, minimum int) error {
	if len(providers) == 0 {
		return validationErrorf(CodeNoProviders, "at least one provider is required")
	}
	if len(providers) < minimum {
		return validationErrorf(CodeTooFewProviders,
			"topology requires at least %d providers, got %d", minimum, len(providers))
	}
	seen := make(map[string]struct{}, len(providers))
	for _, p := range providers {
		if _, dup := seen[p]; dup {
			return validationErrorf(CodeDuplicateProvider, "provider %q listed twice", p)
		}
		seen[p] = struct{}{}
	}
	return nil
}

// othersOf returns every provider except name, preserving order.
func othersOf(providers []string, name string) []string {
	others := make([]string, 0, len(providers)-1)
	for _, p := range providers {
		if p != name {
			others = append(others, p)
		}
	}
	return others
}

// fullVisibility gives every participant sight of every other participant.
func fullVisibility(participants []string) map[string][]string {
	vis := make(map[string][]string, len(participants))
	for _, p := range participants {
		vis[p] = othersOf(participants, p)
	}
	return vis
}
