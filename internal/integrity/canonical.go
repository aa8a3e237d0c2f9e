// Package integrity provides the tamper-evident record of a deliberation:
// a SHA-256 hash chain over phase outputs, per-phase attestation records,
// and a binary export format for attestation chains.
package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// Canonicalize serializes v as RFC 8785 canonical JSON. Object keys are
// sorted recursively, so two semantically equal values always produce the
// same bytes regardless of field order.
func Canonicalize(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("integrity: marshal for canonicalization: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("integrity: canonicalize: %w", err)
	}
	return canonical, nil
}

// HashValue returns the hex SHA-256 of v's canonical serialization.
func HashValue(v interface{}) (string, error) {
	canonical, err := Canonicalize(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// hashWithPrev hashes the canonical bytes concatenated with the previous
// entry's hash (empty for the genesis entry).
func hashWithPrev(canonical []byte, prevHash string) string {
	h := sha256.New()
	h.Write(canonical)
	h.Write([]byte(prevHash))
	return hex.EncodeToString(h.Sum(nil))
}
