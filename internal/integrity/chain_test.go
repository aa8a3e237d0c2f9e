package integrity

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// phaseDoc mirrors the shape of a persisted phase output for tests.
type phaseDoc struct {
	Phase     string            `json:"phase"`
	Responses map[string]string `json:"responses"`
	Duration  int64             `json:"duration_ms"`
}

func samplePayloads(n int) []Payload {
	payloads := make([]Payload, 0, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("phase_%d", i)
		payloads = append(payloads, Payload{
			Phase: name,
			Value: phaseDoc{
				Phase:     name,
				Responses: map[string]string{"claude": fmt.Sprintf("answer %d", i), "gpt": "counterpoint"},
				Duration:  int64(100 + i),
			},
		})
	}
	return payloads
}

func TestVerify_BuiltChainIsValid(t *testing.T) {
	for _, n := range []int{0, 1, 3, 7} {
		payloads := samplePayloads(n)
		chain, err := BuildChain(payloads)
		require.NoError(t, err)
		require.Equal(t, n, chain.Len())

		res := Verify(chain.Entries(), payloads)
		assert.True(t, res.Valid, "chain of %d phases", n)
		assert.Empty(t, res.FailedPhase)
	}
}

func TestVerify_MutationFailsAtExactPhase(t *testing.T) {
	payloads := samplePayloads(5)
	chain, err := BuildChain(payloads)
	require.NoError(t, err)

	for i := range payloads {
		mutated := samplePayloads(5)
		doc := mutated[i].Value.(phaseDoc)
		doc.Responses["claude"] = "tampered"
		mutated[i].Value = doc

		res := Verify(chain.Entries(), mutated)
		assert.False(t, res.Valid)
		assert.Equal(t, fmt.Sprintf("phase_%d", i), res.FailedPhase,
			"verification must fail at the mutated phase")
		assert.Equal(t, FailureHashMismatch, res.Failure)
	}
}

func TestVerify_LengthMismatch(t *testing.T) {
	payloads := samplePayloads(3)
	chain, err := BuildChain(payloads)
	require.NoError(t, err)

	res := Verify(chain.Entries(), payloads[:2])
	assert.False(t, res.Valid)
	assert.Equal(t, FailureLengthMismatch, res.Failure)
}

func TestVerify_BrokenLinkage(t *testing.T) {
	payloads := samplePayloads(3)
	chain, err := BuildChain(payloads)
	require.NoError(t, err)

	entries := chain.Entries()
	bogus := "deadbeef"
	entries[2].PrevHash = &bogus

	res := Verify(entries, payloads)
	assert.False(t, res.Valid)
	assert.Equal(t, FailureBrokenLinkage, res.Failure)
	assert.Equal(t, "phase_2", res.FailedPhase)
}

func TestVerify_GenesisMustHaveNullPrevHash(t *testing.T) {
	payloads := samplePayloads(1)
	chain, err := BuildChain(payloads)
	require.NoError(t, err)

	entries := chain.Entries()
	fake := "0000"
	entries[0].PrevHash = &fake

	res := Verify(entries, payloads)
	assert.False(t, res.Valid)
	assert.Equal(t, FailureBrokenLinkage, res.Failure)
}

func TestChain_AppendLinksToHead(t *testing.T) {
	chain := NewChain()
	assert.Empty(t, chain.Head())

	first, err := chain.Append("alpha", map[string]string{"k": "v"})
	require.NoError(t, err)
	assert.Nil(t, first.PrevHash)
	assert.Equal(t, first.Hash, chain.Head())

	second, err := chain.Append("beta", map[string]string{"k": "w"})
	require.NoError(t, err)
	require.NotNil(t, second.PrevHash)
	assert.Equal(t, first.Hash, *second.PrevHash)
}

func TestCanonicalize_KeyOrderIrrelevant(t *testing.T) {
	type orderedA struct {
		Alpha string `json:"alpha"`
		Beta  int    `json:"beta"`
	}
	type orderedB struct {
		Beta  int    `json:"beta"`
		Alpha string `json:"alpha"`
	}

	ha, err := HashValue(orderedA{Alpha: "x", Beta: 7})
	require.NoError(t, err)
	hb, err := HashValue(orderedB{Beta: 7, Alpha: "x"})
	require.NoError(t, err)

	assert.Equal(t, ha, hb, "hash must depend on content, not field order")
}

func TestAttestation_SealAndVerify(t *testing.T) {
	a, err := NewAttestation("debate_1", "claude",
		map[string]string{"prompt": "argue"},
		map[string]string{"text": "position"},
		"chainhash")
	require.NoError(t, err)

	assert.NotEmpty(t, a.InputHash)
	assert.NotEmpty(t, a.OutputHash)
	assert.NotEqual(t, a.InputHash, a.OutputHash)
	assert.NoError(t, a.VerifySelf())

	tampered := a
	tampered.Participant = "gpt"
	assert.Error(t, tampered.VerifySelf())
}

func TestAttestationChain_VerifyFindsFirstBadRecord(t *testing.T) {
	good, err := NewAttestation("p1", "claude", "in", "out", "")
	require.NoError(t, err)
	bad, err := NewAttestation("p2", "gpt", "in2", "out2", "")
	require.NoError(t, err)
	bad.OutputHash = "forged"

	chain := AttestationChain{
		SessionID: "s-1",
		Records:   []Attestation{good, bad},
	}
	err = chain.VerifyAttestations()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 1")
}

func TestEntryTimestampsAreUTC(t *testing.T) {
	chain := NewChain()
	e, err := chain.Append("p", "payload")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, e.Timestamp.Location())
}
