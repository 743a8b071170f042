// Package zk implements the non-interactive zero-knowledge proofs published
// during an election: knowledge of key coefficients, correct partial
// decryption, and that a ciphertext encrypts a value in a small range.
//
// All proofs are made non-interactive with a blake3 Fiat-Shamir challenge.
// Callers pass context items (typically the extended base hash and the
// object id) that are hashed into every challenge.
package zk

import (
	"io"

	"github.com/luxfi/election/pkg/hash"
	"github.com/luxfi/election/pkg/math/curve"
	"github.com/luxfi/election/pkg/math/sample"
)

const (
	schnorrDomain       = "github.com/luxfi/election/zk schnorr"
	chaumPedersenDomain = "github.com/luxfi/election/zk chaum-pedersen"
	rangeDomain         = "github.com/luxfi/election/zk range"
)

// Schnorr proves knowledge of s such that Public = s·G.
type Schnorr struct {
	Commitment curve.Point
	Response   curve.Scalar
}

func schnorrChallenge(public, commitment curve.Point, context [][]byte) curve.Scalar {
	return hash.New(schnorrDomain).WriteBytes(context...).WritePoint(public, commitment).Scalar()
}

// ProveSchnorr proves knowledge of secret for public = secret·G.
func ProveSchnorr(secret curve.Scalar, public curve.Point, r io.Reader, context ...[]byte) (*Schnorr, error) {
	w, err := sample.Scalar(r)
	if err != nil {
		return nil, err
	}
	commitment := w.ActOnBase()
	c := schnorrChallenge(public, commitment, context)
	return &Schnorr{
		Commitment: commitment,
		Response:   w.Add(c.Mul(secret)),
	}, nil
}

// Verify checks the proof against public.
func (p *Schnorr) Verify(public curve.Point, context ...[]byte) bool {
	if p == nil || public.IsIdentity() {
		return false
	}
	c := schnorrChallenge(public, p.Commitment, context)
	return p.Response.ActOnBase().Equal(p.Commitment.Add(c.Act(public)))
}
