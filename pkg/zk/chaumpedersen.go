package zk

import (
	"io"

	"github.com/luxfi/election/pkg/hash"
	"github.com/luxfi/election/pkg/math/curve"
	"github.com/luxfi/election/pkg/math/sample"
)

// ChaumPedersen proves that Key = s·G and Share = s·Pad for the same s,
// i.e. that a partial decryption was computed with the guardian's key.
type ChaumPedersen struct {
	CommitmentG   curve.Point
	CommitmentPad curve.Point
	Response      curve.Scalar
}

func chaumPedersenChallenge(key, pad, share, a, b curve.Point, context [][]byte) curve.Scalar {
	return hash.New(chaumPedersenDomain).WriteBytes(context...).WritePoint(key, pad, share, a, b).Scalar()
}

// ProveChaumPedersen proves share = secret·pad for key = secret·G.
func ProveChaumPedersen(secret curve.Scalar, key, pad, share curve.Point, r io.Reader, context ...[]byte) (*ChaumPedersen, error) {
	w, err := sample.Scalar(r)
	if err != nil {
		return nil, err
	}
	a := w.ActOnBase()
	b := w.Act(pad)
	c := chaumPedersenChallenge(key, pad, share, a, b, context)
	return &ChaumPedersen{
		CommitmentG:   a,
		CommitmentPad: b,
		Response:      w.Add(c.Mul(secret)),
	}, nil
}

// Verify checks the proof for the given key, pad and share.
func (p *ChaumPedersen) Verify(key, pad, share curve.Point, context ...[]byte) bool {
	if p == nil {
		return false
	}
	c := chaumPedersenChallenge(key, pad, share, p.CommitmentG, p.CommitmentPad, context)
	return p.Response.ActOnBase().Equal(p.CommitmentG.Add(c.Act(key))) &&
		p.Response.Act(pad).Equal(p.CommitmentPad.Add(c.Act(share)))
}
