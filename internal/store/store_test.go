package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.quorum.council/internal/adaptive"
	"dev.quorum.council/internal/engine"
	"dev.quorum.council/internal/integrity"
	"dev.quorum.council/internal/topology"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestStore_SessionRoundTrip(t *testing.T) {
	s := newTestStore(t)
	session := engine.NewSession("why is the sky blue", "balanced", topology.TypeMesh, []string{"claude", "gpt"})
	require.NoError(t, s.SaveSession(session))

	loaded, err := s.LoadSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, loaded.ID)
	assert.Equal(t, session.Question, loaded.Question)
	assert.Equal(t, session.Providers, loaded.Providers)
}

func TestStore_PhasesKeepExecutionOrder(t *testing.T) {
	s := newTestStore(t)
	sessionID := "sess-1"

	phases := []engine.PhaseOutput{
		{Phase: "independent", Kind: topology.KindInitial, StartedAt: time.Now().UTC()},
		{Phase: "debate_1", Kind: topology.KindDebate, StartedAt: time.Now().UTC()},
		{Phase: "vote", Kind: topology.KindVote, StartedAt: time.Now().UTC()},
	}
	for i, p := range phases {
		require.NoError(t, s.SavePhase(sessionID, i+1, p))
	}

	loaded, err := s.LoadPhases(sessionID)
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, "independent", loaded[0].Phase)
	assert.Equal(t, "debate_1", loaded[1].Phase)
	assert.Equal(t, "vote", loaded[2].Phase)
}

func TestStore_IntegrityRoundTripVerifies(t *testing.T) {
	s := newTestStore(t)
	sessionID := "sess-2"

	outputs := []engine.PhaseOutput{
		{Phase: "independent", Entries: []engine.ResponseEntry{{Provider: "claude", Text: "a"}}},
		{Phase: "vote", Entries: []engine.ResponseEntry{{Provider: "claude", Text: "b"}}},
	}
	payloads := make([]integrity.Payload, 0, len(outputs))
	for _, o := range outputs {
		payloads = append(payloads, integrity.Payload{Phase: o.Phase, Value: o})
	}
	chain, err := integrity.BuildChain(payloads)
	require.NoError(t, err)
	require.NoError(t, s.SaveIntegrity(sessionID, chain.Entries()))
	for i, o := range outputs {
		require.NoError(t, s.SavePhase(sessionID, i+1, o))
	}

	entries, err := s.LoadIntegrity(sessionID)
	require.NoError(t, err)
	loaded, err := s.LoadPhases(sessionID)
	require.NoError(t, err)

	reloaded := make([]integrity.Payload, 0, len(loaded))
	for _, o := range loaded {
		reloaded = append(reloaded, integrity.Payload{Phase: o.Phase, Value: o})
	}
	res := integrity.Verify(entries, reloaded)
	assert.True(t, res.Valid, res.Detail)
}

func TestStore_WritesLeaveNoTempFiles(t *testing.T) {
	s := newTestStore(t)
	sessionID := "sess-3"
	require.NoError(t, s.SaveDecisions(sessionID, []adaptive.Decision{{Phase: "independent", Action: adaptive.ActionContinue}}))
	require.NoError(t, s.SaveSynthesis(sessionID, engine.Synthesis{SessionID: sessionID, Text: "final"}))

	entries, err := os.ReadDir(s.SessionDir(sessionID))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-")
	}
}

func TestStore_SynthesisRoundTrip(t *testing.T) {
	s := newTestStore(t)
	sessionID := "sess-4"
	in := engine.Synthesis{
		SessionID:      sessionID,
		Synthesizer:    "claude",
		Text:           "final answer",
		Consensus:      0.8,
		Confidence:     0.7,
		MinorityReport: "gpt dissents",
	}
	require.NoError(t, s.SaveSynthesis(sessionID, in))

	out, err := s.LoadSynthesis(sessionID)
	require.NoError(t, err)
	assert.Equal(t, in.Text, out.Text)
	assert.Equal(t, in.MinorityReport, out.MinorityReport)
}

func TestStore_LoadMissingSessionFails(t *testing.T) {
	s := newTestStore(t)
	_, err := s.LoadSession("nope")
	require.Error(t, err)
}

func TestStore_FilesystemLayout(t *testing.T) {
	s := newTestStore(t)
	session := engine.NewSession("q", "quick", topology.TypeStar, []string{"claude", "gpt"})
	require.NoError(t, s.SaveSession(session))
	require.NoError(t, s.SavePhase(session.ID, 1, engine.PhaseOutput{Phase: "spoke_responses"}))

	assert.FileExists(t, filepath.Join(s.SessionDir(session.ID), "session.json"))
	assert.FileExists(t, filepath.Join(s.SessionDir(session.ID), "phase_001_spoke_responses.json"))
}
