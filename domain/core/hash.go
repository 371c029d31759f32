package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// ComputeFingerprint builds a deterministic hash over ordered string parts.
// Used to fingerprint merged results so identical inputs produce identical
// result identities across runs.
func ComputeFingerprint(parts ...string) Hash {
	var data strings.Builder
	for _, p := range parts {
		data.WriteString(p)
		data.WriteString("|")
	}
	return NewHash([]byte(data.String()))
}

// ComputeKeyedFingerprint hashes a map deterministically by sorting its keys
func ComputeKeyedFingerprint(values map[string]float64) Hash {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	for _, key := range keys {
		data.WriteString(key)
		data.WriteString(fmt.Sprintf("%v", values[key]))
	}
	return NewHash([]byte(data.String()))
}
