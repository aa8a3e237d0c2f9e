package engine

import (
	"fmt"
	"time"

	"dev.quorum.council/internal/adaptive"
	"dev.quorum.council/internal/topology"
	"dev.quorum.council/internal/voting"
)

// Synthesis is the final product of a deliberation.
type Synthesis struct {
	SessionID   string `json:"session_id"`
	Synthesizer string `json:"synthesizer"`
	Text        string `json:"text"`
	// Consensus is one minus the entropy of the final positions: 1 means
	// the providers converged, 0 means they fully diverged.
	Consensus float64 `json:"consensus"`
	// Confidence blends consensus with the vote margin when one exists.
	Confidence float64 `json:"confidence"`
	// MinorityReport preserves the strongest dissenting position when the
	// outcome was controversial.
	MinorityReport string    `json:"minority_report,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// resolveSynthesizer picks the provider that writes the synthesis.
// An explicit name wins; "auto" takes the vote winner when there is one,
// otherwise the first provider.
func resolveSynthesizer(plan topology.Plan, providers []string, vote *voting.Result) string {
	if plan.Synthesizer != "" && plan.Synthesizer != topology.SynthesizerAuto {
		return plan.Synthesizer
	}
	if vote != nil && vote.Winner != "" {
		return vote.Winner
	}
	return providers[0]
}

// consensusScore is one minus the disagreement entropy of the final
// positions.
func consensusScore(finals map[string]string) float64 {
	return 1 - adaptive.Entropy(finals)
}

// confidenceScore blends consensus with the vote margin. Without a vote
// it is the consensus alone; a controversial vote caps it.
func confidenceScore(consensus float64, vote *voting.Result) float64 {
	if vote == nil {
		return consensus
	}
	margin := 1.0
	if len(vote.Ranking) >= 2 && vote.Ranking[0].Score > 0 {
		margin = (vote.Ranking[0].Score - vote.Ranking[1].Score) / vote.Ranking[0].Score
		if margin < 0 {
			margin = 0
		}
	}
	confidence := 0.5*consensus + 0.5*margin
	if vote.Controversial && confidence > 0.6 {
		confidence = 0.6
	}
	return confidence
}

// minorityReport returns the runner-up's final position when the vote
// was controversial, empty otherwise.
func minorityReport(finals map[string]string, vote *voting.Result) string {
	if vote == nil || !vote.Controversial || len(vote.Ranking) < 2 {
		return ""
	}
	runnerUp := vote.Ranking[1].Candidate
	text, ok := finals[runnerUp]
	if !ok || text == "" {
		return ""
	}
	return fmt.Sprintf("Dissenting position (%s): %s", runnerUp, text)
}

// voteSummary renders a one-line description of the tally for the
// synthesis prompt.
func voteSummary(vote *voting.Result) string {
	if vote == nil {
		return ""
	}
	s := fmt.Sprintf("%s won under %s", vote.Winner, vote.Method)
	if vote.Controversial {
		s += " (close result)"
	}
	return s
}
