package engine

import (
	"fmt"
	"strings"

	"dev.quorum.council/internal/budget"
	"dev.quorum.council/internal/topology"
)

// buildPrompt assembles one participant's request for a phase. The
// question and phase instruction are never cut; prior responses visible
// to the participant are trimmable and share whatever budget remains.
// History is every completed PhaseOutput plus, for sequential phases,
// the entries already produced in the current phase.
func buildPrompt(question string, phase topology.Phase, participant string, history []PhaseOutput, budgetTokens int) string {
	blocks := []budget.Block{
		{Label: "question", Text: "Question: " + question, Priority: budget.PriorityFull},
	}
	if phase.Instruction != "" {
		blocks = append(blocks, budget.Block{
			Label:    "instruction",
			Text:     phase.Instruction,
			Priority: budget.PriorityFull,
		})
	}

	for _, output := range history {
		for _, entry := range output.Entries {
			if entry.Provider == participant && output.Phase != phase.Name {
				// A participant always sees its own prior answers.
				blocks = append(blocks, priorBlock("your earlier response", entry.Text))
				continue
			}
			if !phase.Sees(participant, entry.Provider) {
				continue
			}
			label := fmt.Sprintf("%s (%s)", entry.Provider, output.Phase)
			blocks = append(blocks, priorBlock(label, entry.Text))
		}
	}

	return joinFitted(blocks, budgetTokens)
}

// joinFitted packs blocks into the budget and joins the survivors.
func joinFitted(blocks []budget.Block, budgetTokens int) string {
	fitted := budget.Fit(blocks, budgetTokens)
	parts := make([]string, 0, len(fitted.Blocks))
	for _, b := range fitted.Blocks {
		parts = append(parts, b.Text)
	}
	return strings.Join(parts, "\n\n")
}

func priorBlock(label, text string) budget.Block {
	return budget.Block{
		Label:    label,
		Text:     fmt.Sprintf("--- %s ---\n%s", label, text),
		Priority: budget.PriorityTrimmable,
	}
}

// votePrompt frames the ballot request. Candidates are the providers
// whose final answers compete; the voter must rank every one of them.
// The question and the ranking instruction are never cut; the candidate
// answers share the rest of the budget.
func votePrompt(question string, candidates []string, finals map[string]string, budgetTokens int) string {
	blocks := []budget.Block{
		{Label: "question", Text: "Question: " + question, Priority: budget.PriorityFull},
		{Label: "vote framing", Text: "The candidate answers are:", Priority: budget.PriorityFull},
	}
	for _, c := range candidates {
		blocks = append(blocks, budget.Block{
			Label:    "answer by " + c,
			Text:     fmt.Sprintf("--- answer by %s ---\n%s", c, finals[c]),
			Priority: budget.PriorityTrimmable,
		})
	}
	blocks = append(blocks, budget.Block{
		Label: "ranking instruction",
		Text: fmt.Sprintf("Rank ALL candidates from best to worst on one line, for example:\nRANKING: %s",
			strings.Join(candidates, " > ")),
		Priority: budget.PriorityFull,
	})
	return joinFitted(blocks, budgetTokens)
}

// synthesisPrompt frames the final merge request for the synthesizer,
// under the same budget discipline as every other request.
func synthesisPrompt(question string, candidates []string, finals map[string]string, voteSummary string, budgetTokens int) string {
	blocks := []budget.Block{
		{Label: "question", Text: "Question: " + question, Priority: budget.PriorityFull},
		{
			Label:    "synthesis instruction",
			Text:     "Synthesize one final answer from the positions below. Preserve points of genuine disagreement instead of papering over them.",
			Priority: budget.PriorityFull,
		},
	}
	for _, c := range candidates {
		blocks = append(blocks, budget.Block{
			Label:    "position of " + c,
			Text:     fmt.Sprintf("--- position of %s ---\n%s", c, finals[c]),
			Priority: budget.PriorityTrimmable,
		})
	}
	if voteSummary != "" {
		blocks = append(blocks, budget.Block{
			Label:    "vote outcome",
			Text:     "Vote outcome: " + voteSummary,
			Priority: budget.PriorityFull,
		})
	}
	return joinFitted(blocks, budgetTokens)
}
