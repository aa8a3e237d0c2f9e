package budget

import (
	"fmt"
	"strings"
)

// minBlockChars is the floor below which a trimmed block is replaced by an
// omission marker instead of an uselessly short fragment.
const minBlockChars = 100

// Priority marks whether a block may be truncated to fit a budget.
type Priority string

const (
	// PriorityFull blocks must never be cut.
	PriorityFull Priority = "full"
	// PriorityTrimmable blocks may be proportionally truncated.
	PriorityTrimmable Priority = "trimmable"
)

// Block is a labeled unit of prompt context.
type Block struct {
	Label    string   `json:"label"`
	Text     string   `json:"text"`
	Priority Priority `json:"priority"`
}

// FittedBlock is a block after budget fitting.
type FittedBlock struct {
	Label string `json:"label"`
	Text  string `json:"text"`
	// Truncated is true when the text was shortened.
	Truncated bool `json:"truncated"`
	// Omitted is true when the block was replaced by an omission marker.
	Omitted bool `json:"omitted"`
}

// FitResult reports what survived the budget.
type FitResult struct {
	Blocks []FittedBlock `json:"blocks"`
	// DemandTokens is the estimated token demand of all input blocks.
	DemandTokens int `json:"demand_tokens"`
	// UsedTokens is the estimated token size of the fitted output.
	UsedTokens int `json:"used_tokens"`
	// Truncated is true when any block was cut or omitted.
	Truncated bool `json:"truncated"`
}

// Fit packs blocks into a token budget. If everything fits, blocks pass
// through intact. Otherwise full-priority blocks are kept whole and the
// trimmable blocks share the remaining budget proportionally; a trimmable
// block that would shrink below minBlockChars is replaced by an explicit
// omission marker rather than silently dropped. Deterministic for
// identical inputs.
func Fit(blocks []Block, budgetTokens int) FitResult {
	res := FitResult{Blocks: make([]FittedBlock, 0, len(blocks))}

	demand := 0
	trimmableDemand := 0
	fullDemand := 0
	for _, b := range blocks {
		t := EstimateTokens(b.Text)
		demand += t
		if b.Priority == PriorityFull {
			fullDemand += t
		} else {
			trimmableDemand += t
		}
	}
	res.DemandTokens = demand

	if demand <= budgetTokens {
		for _, b := range blocks {
			res.Blocks = append(res.Blocks, FittedBlock{Label: b.Label, Text: b.Text})
		}
		res.UsedTokens = demand
		return res
	}

	res.Truncated = true

	remaining := budgetTokens - fullDemand
	if remaining < 0 {
		remaining = 0
	}

	ratio := 0.0
	if trimmableDemand > 0 {
		ratio = float64(remaining) / float64(trimmableDemand)
		if ratio > 1 {
			ratio = 1
		}
	}

	for _, b := range blocks {
		if b.Priority == PriorityFull {
			res.Blocks = append(res.Blocks, FittedBlock{Label: b.Label, Text: b.Text})
			res.UsedTokens += EstimateTokens(b.Text)
			continue
		}

		keepChars := int(float64(len(b.Text)) * ratio)
		if keepChars >= len(b.Text) {
			res.Blocks = append(res.Blocks, FittedBlock{Label: b.Label, Text: b.Text})
			res.UsedTokens += EstimateTokens(b.Text)
			continue
		}

		if keepChars < minBlockChars {
			marker := omissionMarker(b.Label)
			if len(marker) >= len(b.Text) {
				// The marker would outweigh the block it replaces; the
				// original is the cheaper of the two, so it stays whole.
				res.Blocks = append(res.Blocks, FittedBlock{Label: b.Label, Text: b.Text})
				res.UsedTokens += EstimateTokens(b.Text)
				continue
			}
			res.Blocks = append(res.Blocks, FittedBlock{
				Label:   b.Label,
				Text:    marker,
				Omitted: true,
			})
			res.UsedTokens += EstimateTokens(marker)
			continue
		}

		trimmed := truncateAtBoundary(b.Text, keepChars)
		res.Blocks = append(res.Blocks, FittedBlock{
			Label:     b.Label,
			Text:      trimmed,
			Truncated: true,
		})
		res.UsedTokens += EstimateTokens(trimmed)
	}

	return res
}

// omissionMarker is what replaces a block too small to be worth keeping.
func omissionMarker(label string) string {
	return fmt.Sprintf("[omitted: %s did not fit the context budget]", label)
}

// truncateAtBoundary cuts text to at most limit characters, preferring to
// break at the last whitespace inside the window so words stay whole.
func truncateAtBoundary(text string, limit int) string {
	if limit >= len(text) {
		return text
	}
	cut := text[:limit]
	if idx := strings.LastIndexAny(cut, " \t\n"); idx > limit/2 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " \t\n")
}
