package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Hash is a 32-byte content hash. The hash proof scheme compares these
// byte-exact.
type Hash [32]byte

// HashBytes computes the content hash of value.
func HashBytes(value []byte) Hash {
	return sha256.Sum256(value)
}

// ParseHash decodes a 64-character hex string.
func ParseHash(s string) (Hash, error) {
	var h Hash
	raw, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("invalid hash encoding: %w", err)
	}
	if len(raw) != len(h) {
		return h, fmt.Errorf("invalid hash length: %d", len(raw))
	}
	copy(h[:], raw)
	return h, nil
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}
