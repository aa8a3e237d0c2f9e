package integrity

import (
	"fmt"
	"time"
)

// Entry is one link of the hash chain. PrevHash is nil only for the
// first entry. Recomputing entry i needs only payload i and entry i-1's
// hash, so any alteration of history is detectable without the full
// original dataset.
type Entry struct {
	Phase     string    `json:"phase"`
	Hash      string    `json:"hash"`
	PrevHash  *string   `json:"prev_hash"`
	Timestamp time.Time `json:"timestamp"`
}

// Payload pairs a phase name with the value that was hashed for it.
type Payload struct {
	Phase string
	Value interface{}
}

// Failure categorizes a verification mismatch.
type Failure string

const (
	FailureLengthMismatch Failure = "length_mismatch"
	FailureBrokenLinkage  Failure = "broken_linkage"
	FailureHashMismatch   Failure = "hash_mismatch"
)

// VerifyResult reports the outcome of a chain verification. On failure it
// names the first failing phase and the mismatch category; chains are
// never auto-repaired.
type VerifyResult struct {
	Valid       bool    `json:"valid"`
	FailedPhase string  `json:"failed_phase,omitempty"`
	Failure     Failure `json:"failure,omitempty"`
	Detail      string  `json:"detail,omitempty"`
}

// Chain is the append-only hash chain for one deliberation. Appends
// follow phase-execution order; the single-threaded phase driver is the
// only writer, so Chain carries no lock.
type Chain struct {
	entries []Entry
}

// NewChain creates an empty chain.
func NewChain() *Chain {
	return &Chain{}
}

// Append hashes the payload's canonical serialization concatenated with
// the previous entry's hash and appends the new entry.
func (c *Chain) Append(phase string, payload interface{}) (Entry, error) {
	canonical, err := Canonicalize(payload)
	if err != nil {
		return Entry{}, fmt.Errorf("integrity: append %s: %w", phase, err)
	}

	var prev *string
	prevHash := ""
	if n := len(c.entries); n > 0 {
		prevHash = c.entries[n-1].Hash
		prev = &prevHash
	}

	entry := Entry{
		Phase:     phase,
		Hash:      hashWithPrev(canonical, prevHash),
		PrevHash:  prev,
		Timestamp: time.Now().UTC(),
	}
	c.entries = append(c.entries, entry)
	return entry, nil
}

// Entries returns a copy of the chain so far.
func (c *Chain) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of entries.
func (c *Chain) Len() int {
	return len(c.entries)
}

// Head returns the latest entry's hash, or empty for an empty chain.
func (c *Chain) Head() string {
	if len(c.entries) == 0 {
		return ""
	}
	return c.entries[len(c.entries)-1].Hash
}

// BuildChain constructs a complete chain over payloads in order.
func BuildChain(payloads []Payload) (*Chain, error) {
	c := NewChain()
	for _, p := range payloads {
		if _, err := c.Append(p.Phase, p.Value); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Verify recomputes every hash from the corresponding payload and checks
// entry count, genesis prev-hash, linkage, and hash equality. The empty
// chain with no payloads is valid.
func Verify(entries []Entry, payloads []Payload) VerifyResult {
	if len(entries) != len(payloads) {
		return VerifyResult{
			Valid:   false,
			Failure: FailureLengthMismatch,
			Detail: fmt.Sprintf("chain has %d entries but %d phase outputs were provided",
				len(entries), len(payloads)),
		}
	}

	prevHash := ""
	for i, entry := range entries {
		if i == 0 {
			if entry.PrevHash != nil {
				return VerifyResult{
					Valid:       false,
					FailedPhase: entry.Phase,
					Failure:     FailureBrokenLinkage,
					Detail:      "first entry must have a null previous hash",
				}
			}
		} else {
			if entry.PrevHash == nil || *entry.PrevHash != prevHash {
				return VerifyResult{
					Valid:       false,
					FailedPhase: entry.Phase,
					Failure:     FailureBrokenLinkage,
					Detail: fmt.Sprintf("entry %d does not link to the previous entry's hash", i),
				}
			}
		}

		canonical, err := Canonicalize(payloads[i].Value)
		if err != nil {
			return VerifyResult{
				Valid:       false,
				FailedPhase: entry.Phase,
				Failure:     FailureHashMismatch,
				Detail:      fmt.Sprintf("cannot canonicalize phase output: %v", err),
			}
		}
		if recomputed := hashWithPrev(canonical, prevHash); recomputed != entry.Hash {
			return VerifyResult{
				Valid:       false,
				FailedPhase: entry.Phase,
				Failure:     FailureHashMismatch,
				Detail:      fmt.Sprintf("recomputed hash for phase %q does not match the stored hash", entry.Phase),
			}
		}

		prevHash = entry.Hash
	}

	return VerifyResult{Valid: true}
}
