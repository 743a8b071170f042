package zk

import (
	"errors"
	"io"

	"github.com/luxfi/election/pkg/elgamal"
	"github.com/luxfi/election/pkg/hash"
	"github.com/luxfi/election/pkg/math/curve"
	"github.com/luxfi/election/pkg/math/sample"
)

// Range proves that a ciphertext encrypts some value in [0, limit] without
// revealing which. It is a disjunction of limit+1 Chaum-Pedersen proofs
// where every branch but the true one is simulated.
type Range struct {
	Branches []RangeBranch
}

// RangeBranch is the transcript for the statement "the ciphertext encrypts j".
type RangeBranch struct {
	CommitmentG   curve.Point
	CommitmentKey curve.Point
	Challenge     curve.Scalar
	Response      curve.Scalar
}

func rangeChallenge(ct elgamal.Ciphertext, key curve.Point, branches []RangeBranch, context [][]byte) curve.Scalar {
	h := hash.New(rangeDomain).WriteBytes(context...).WriteUint64(uint64(len(branches)))
	h.WritePoint(key, ct.Pad, ct.Data)
	for _, b := range branches {
		h.WritePoint(b.CommitmentG, b.CommitmentKey)
	}
	return h.Scalar()
}

// shifted returns Data - j·G, which equals nonce·key exactly when ct encrypts j.
func shifted(ct elgamal.Ciphertext, j int) curve.Point {
	return ct.Data.Sub(curve.ScalarFromUint64(uint64(j)).ActOnBase())
}

// ProveRange proves that ct = Encrypt(value, nonce, key) with 0 ≤ value ≤ limit.
func ProveRange(ct elgamal.Ciphertext, nonce curve.Scalar, value, limit int, key curve.Point, r io.Reader, context ...[]byte) (*Range, error) {
	if limit < 0 || value < 0 || value > limit {
		return nil, errors.New("zk: value outside of range")
	}
	branches := make([]RangeBranch, limit+1)
	var w curve.Scalar
	for j := range branches {
		if j == value {
			var err error
			if w, err = sample.Scalar(r); err != nil {
				return nil, err
			}
			branches[j].CommitmentG = w.ActOnBase()
			branches[j].CommitmentKey = w.Act(key)
			continue
		}
		c, err := sample.Scalar(r)
		if err != nil {
			return nil, err
		}
		u, err := sample.Scalar(r)
		if err != nil {
			return nil, err
		}
		branches[j] = RangeBranch{
			CommitmentG:   u.ActOnBase().Sub(c.Act(ct.Pad)),
			CommitmentKey: u.Act(key).Sub(c.Act(shifted(ct, j))),
			Challenge:     c,
			Response:      u,
		}
	}

	challenge := rangeChallenge(ct, key, branches, context)
	for j := range branches {
		if j != value {
			challenge = challenge.Sub(branches[j].Challenge)
		}
	}
	branches[value].Challenge = challenge
	branches[value].Response = w.Add(challenge.Mul(nonce))
	return &Range{Branches: branches}, nil
}

// Verify checks that ct encrypts a value in [0, limit] under key.
func (p *Range) Verify(ct elgamal.Ciphertext, limit int, key curve.Point, context ...[]byte) bool {
	if p == nil || len(p.Branches) != limit+1 {
		return false
	}
	sum := curve.NewScalar()
	for j, b := range p.Branches {
		if !b.Response.ActOnBase().Equal(b.CommitmentG.Add(b.Challenge.Act(ct.Pad))) {
			return false
		}
		if !b.Response.Act(key).Equal(b.CommitmentKey.Add(b.Challenge.Act(shifted(ct, j)))) {
			return false
		}
		sum = sum.Add(b.Challenge)
	}
	return sum.Equal(rangeChallenge(ct, key, p.Branches, context))
}
