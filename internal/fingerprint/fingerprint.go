// Package fingerprint derives deterministic content fingerprints for raw
// image bytes. A fingerprint is the only cache key used by the analysis
// core, so it must be bit-stable across platforms and process restarts.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint is a fixed-length hex digest of raw image bytes.
type Fingerprint string

// Sum computes the SHA-256 fingerprint of data. It is a pure function:
// identical bytes always yield the identical fingerprint. Empty input
// produces the digest of the empty string; callers are expected to reject
// empty images before keying anything on it.
func Sum(data []byte) Fingerprint {
	sum := sha256.Sum256(data)
	return Fingerprint(hex.EncodeToString(sum[:]))
}

// Short returns a truncated prefix suitable for log fields.
func (f Fingerprint) Short() string {
	if len(f) > 12 {
		return string(f[:12])
	}
	return string(f)
}

func (f Fingerprint) String() string { return string(f) }
