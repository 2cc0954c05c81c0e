// File: encryption/anonymize.go
package encryption

import (
	"crypto/rand"

	"golang.org/x/crypto/sha3"
)

// SaltSize is the length of the process-wide election salt.
const SaltSize = 32

// Keccak256 computes a Keccak-256 hash over the concatenated inputs.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// Anonymize derives the one-way voter tag used for duplicate detection.
// The tag is deterministic for a given identity and salt, so repeat
// submissions by the same voter collide, yet it cannot be inverted back to
// the identity and is independent of the encrypted candidate choice.
func Anonymize(voterIdentity string, salt []byte) []byte {
	return Keccak256(salt, []byte(voterIdentity))
}

// NewElectionSalt generates a fresh salt. The salt is fixed for the
// election's whole duration so voter tags stay stable.
func NewElectionSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}
