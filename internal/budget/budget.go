// Package budget allocates per-provider context budgets and fits labeled
// text blocks into them. All functions are pure and deterministic so the
// same inputs always produce the same trimmed context.
package budget

import (
	"math"
)

// charsPerToken is a fixed approximation, not a true tokenizer.
const charsPerToken = 3.5

// Limits describes the context envelope of a single provider.
type Limits struct {
	// ContextWindow is the provider's total token window.
	ContextWindow int `json:"context_window" yaml:"context_window"`
	// ReservedOutput is held back for the provider's answer.
	ReservedOutput int `json:"reserved_output" yaml:"reserved_output"`
	// ReservedReasoning is held back for hidden reasoning tokens.
	ReservedReasoning int `json:"reserved_reasoning" yaml:"reserved_reasoning"`
}

// DefaultLimits is used for providers without a registered entry.
func DefaultLimits() Limits {
	return Limits{
		ContextWindow:     128000,
		ReservedOutput:    8192,
		ReservedReasoning: 4096,
	}
}

// Manager resolves input budgets per provider.
type Manager struct {
	limits map[string]Limits
}

// NewManager creates a Manager with the given per-provider limits.
// Providers absent from the map fall back to DefaultLimits.
func NewManager(limits map[string]Limits) *Manager {
	m := &Manager{limits: make(map[string]Limits, len(limits))}
	for name, l := range limits {
		m.limits[name] = l
	}
	return m
}

// Register sets or replaces the limits for a provider.
func (m *Manager) Register(provider string, l Limits) {
	m.limits[provider] = l
}

// LimitsFor returns the limits for a provider, falling back to defaults.
func (m *Manager) LimitsFor(provider string) Limits {
	if l, ok := m.limits[provider]; ok {
		return l
	}
	return DefaultLimits()
}

// EstimateTokens estimates the token count of a string as
// ceil(len/3.5). Intentionally crude; the engine only needs a stable,
// provider-agnostic yardstick.
func EstimateTokens(s string) int {
	if s == "" {
		return 0
	}
	return int(math.Ceil(float64(len(s)) / charsPerToken))
}

// Available returns the input token budget for a provider after
// subtracting reserved output/reasoning tokens and the estimated size of
// the system prompt. Never negative.
func (m *Manager) Available(provider, systemPrompt string) int {
	l := m.LimitsFor(provider)
	avail := l.ContextWindow - l.ReservedOutput - l.ReservedReasoning - EstimateTokens(systemPrompt)
	if avail < 0 {
		return 0
	}
	return avail
}
