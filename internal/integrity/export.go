package integrity

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// Binary attestation export layout: 4-byte ASCII magic, 1-byte version,
// 4-byte big-endian payload length, then the canonical JSON attestation
// chain.
const (
	exportMagic   = "QATT"
	exportVersion = 1
	headerLen     = 4 + 1 + 4
)

// ExportAttestations encodes an attestation chain into the QATT binary
// format.
func ExportAttestations(chain AttestationChain) ([]byte, error) {
	payload, err := Canonicalize(chain)
	if err != nil {
		return nil, fmt.Errorf("integrity: export attestations: %w", err)
	}

	buf := make([]byte, 0, headerLen+len(payload))
	buf = append(buf, exportMagic...)
	buf = append(buf, exportVersion)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(payload)))
	buf = append(buf, payload...)
	return buf, nil
}

// ImportAttestations decodes a QATT binary blob. Bad magic, unsupported
// versions, and truncated payloads are rejected with specific reasons;
// there is no best-effort parsing.
func ImportAttestations(data []byte) (*AttestationChain, error) {
	if len(data) < headerLen {
		return nil, fmt.Errorf("integrity: attestation blob too short: %d bytes", len(data))
	}
	if string(data[:4]) != exportMagic {
		return nil, fmt.Errorf("integrity: bad magic %q, want %q", string(data[:4]), exportMagic)
	}
	if v := data[4]; v != exportVersion {
		return nil, fmt.Errorf("integrity: unsupported attestation version %d", v)
	}

	payloadLen := binary.BigEndian.Uint32(data[5:9])
	if uint32(len(data)-headerLen) < payloadLen {
		return nil, fmt.Errorf("integrity: truncated payload: header claims %d bytes, %d available",
			payloadLen, len(data)-headerLen)
	}

	var chain AttestationChain
	if err := json.Unmarshal(data[headerLen:headerLen+int(payloadLen)], &chain); err != nil {
		return nil, fmt.Errorf("integrity: decode attestation payload: %w", err)
	}
	return &chain, nil
}
