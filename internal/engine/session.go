// Package engine drives a deliberation from plan to synthesis: it
// executes each planned phase against the provider gateways, persists
// and hash-chains every phase output, consults the adaptive controller
// between phases, and closes with a vote tally and a synthesis step.
package engine

import (
	"time"

	"github.com/google/uuid"

	"dev.quorum.council/internal/topology"
)

// Session is the immutable record of one deliberation. It is created at
// start, mutated only by the orchestrator, and frozen once CompletedAt
// is set.
type Session struct {
	ID          string        `json:"id"`
	Question    string        `json:"question"`
	Profile     string        `json:"profile"`
	Topology    topology.Type `json:"topology"`
	Providers   []string      `json:"providers"`
	CreatedAt   time.Time     `json:"created_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

// NewSession creates a session for the given question and provider list.
func NewSession(question, profile string, t topology.Type, providers []string) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Question:  question,
		Profile:   profile,
		Topology:  t,
		Providers: append([]string(nil), providers...),
		CreatedAt: time.Now().UTC(),
	}
}

// ResponseEntry is one participant's contribution to a phase. Fallback
// entries substitute the participant's most recent successful output
// after a failed call; Cause carries the failure category in that case.
type ResponseEntry struct {
	Provider string `json:"provider"`
	Text     string `json:"text"`
	Partial  bool   `json:"partial,omitempty"`
	Fallback bool   `json:"fallback,omitempty"`
	Cause    string `json:"cause,omitempty"`
}

// PhaseOutput is the write-once result of one executed phase. Entry
// order is participation order; it is the unit persisted and hashed.
type PhaseOutput struct {
	Phase     string          `json:"phase"`
	Kind      topology.Kind   `json:"kind"`
	Entries   []ResponseEntry `json:"entries"`
	StartedAt time.Time       `json:"started_at"`
	Duration  time.Duration   `json:"duration_ns"`
}

// Response returns the text a provider produced in this phase.
func (o PhaseOutput) Response(provider string) (string, bool) {
	for _, e := range o.Entries {
		if e.Provider == provider {
			return e.Text, true
		}
	}
	return "", false
}

// Responses maps provider to text for entropy scoring. Fallback entries
// are excluded so repeated text does not masquerade as agreement.
func (o PhaseOutput) Responses() map[string]string {
	m := make(map[string]string, len(o.Entries))
	for _, e := range o.Entries {
		if !e.Fallback {
			m[e.Provider] = e.Text
		}
	}
	return m
}
