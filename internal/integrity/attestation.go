package integrity

import (
	"fmt"
	"time"
)

// Attestation binds a phase's inputs and outputs to a specific
// participant. Unlike a chain entry it separates input and output hashes
// and carries its own self-hash, so phase-level provenance can be checked
// independently of the lighter content-integrity chain.
type Attestation struct {
	Phase       string    `json:"phase"`
	Participant string    `json:"participant"`
	InputHash   string    `json:"input_hash"`
	OutputHash  string    `json:"output_hash"`
	// ChainEntryHash references the hash-chain entry covering the same
	// phase, when one exists.
	ChainEntryHash string    `json:"chain_entry_hash,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
	// SelfHash covers every other field of this record.
	SelfHash string `json:"self_hash"`
}

// NewAttestation hashes the input and output values and seals the record
// with a self-hash.
func NewAttestation(phase, participant string, input, output interface{}, chainEntryHash string) (Attestation, error) {
	inHash, err := HashValue(input)
	if err != nil {
		return Attestation{}, fmt.Errorf("integrity: attestation input for %s: %w", phase, err)
	}
	outHash, err := HashValue(output)
	if err != nil {
		return Attestation{}, fmt.Errorf("integrity: attestation output for %s: %w", phase, err)
	}

	a := Attestation{
		Phase:          phase,
		Participant:    participant,
		InputHash:      inHash,
		OutputHash:     outHash,
		ChainEntryHash: chainEntryHash,
		Timestamp:      time.Now().UTC(),
	}
	if err := a.seal(); err != nil {
		return Attestation{}, err
	}
	return a, nil
}

// seal computes the self-hash over the record with SelfHash cleared.
func (a *Attestation) seal() error {
	unsealed := *a
	unsealed.SelfHash = ""
	h, err := HashValue(unsealed)
	if err != nil {
		return fmt.Errorf("integrity: seal attestation for %s: %w", a.Phase, err)
	}
	a.SelfHash = h
	return nil
}

// VerifySelf recomputes the self-hash and reports whether the record has
// been altered since sealing.
func (a Attestation) VerifySelf() error {
	unsealed := a
	unsealed.SelfHash = ""
	h, err := HashValue(unsealed)
	if err != nil {
		return err
	}
	if h != a.SelfHash {
		return fmt.Errorf("integrity: attestation for phase %q fails its self-hash", a.Phase)
	}
	return nil
}

// AttestationChain is the ordered provenance record for one session.
type AttestationChain struct {
	SessionID string        `json:"session_id"`
	Records   []Attestation `json:"records"`
}

// VerifyAttestations checks every record's self-hash, returning the first
// failure.
func (ac AttestationChain) VerifyAttestations() error {
	for i, r := range ac.Records {
		if err := r.VerifySelf(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}
