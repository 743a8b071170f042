// Package electionguard is the default cryptographic collaborator of the
// election state machines. It implements election.Crypto with exponential
// ElGamal over secp256k1, Feldman commitments for the key ceremony and
// blake3 Fiat-Shamir proofs.
package electionguard

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/luxfi/election/pkg/election"
)

// DefaultMaxTally bounds the discrete log search when decrypting a selection.
const DefaultMaxTally = 1 << 20

// Suite implements election.Crypto.
type Suite struct {
	// Rand is the randomness source for keys, nonces and proofs.
	Rand io.Reader
	// MaxTally is the largest count a decrypted selection may hold.
	MaxTally int
}

var _ election.Crypto = (*Suite)(nil)

// New returns a Suite reading from crypto/rand.
func New() *Suite {
	return &Suite{Rand: rand.Reader, MaxTally: DefaultMaxTally}
}

func (s *Suite) rand() io.Reader {
	if s.Rand == nil {
		return rand.Reader
	}
	return s.Rand
}

func (s *Suite) maxTally() int {
	if s.MaxTally <= 0 {
		return DefaultMaxTally
	}
	return s.MaxTally
}

func cryptoError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", election.ErrCryptographicOperation, fmt.Sprintf(format, args...))
}

func ballotError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", election.ErrInvalidBallot, fmt.Sprintf(format, args...))
}
