// Package sample draws uniformly distributed scalars.
package sample

import (
	"crypto/rand"
	"errors"
	"io"

	"github.com/luxfi/election/pkg/hash"
	"github.com/luxfi/election/pkg/math/curve"
)

const maxIterations = 256

var ErrMaxIterations = errors.New("sample: failed to generate after many iterations")

// Scalar returns a uniformly random non-zero scalar read from r.
func Scalar(r io.Reader) (curve.Scalar, error) {
	var buf [curve.ScalarSize]byte
	for i := 0; i < maxIterations; i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return curve.Scalar{}, err
		}
		s, overflow := curve.ScalarFromBytes(&buf)
		if overflow || s.IsZero() {
			continue
		}
		return s, nil
	}
	return curve.Scalar{}, ErrMaxIterations
}

// Scalars returns n scalars read from r.
func Scalars(r io.Reader, n int) ([]curve.Scalar, error) {
	out := make([]curve.Scalar, n)
	for i := range out {
		s, err := Scalar(r)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// Source returns crypto/rand when deterministic is false, or else a
// reproducible stream bound to domain and the seed items.
func Source(deterministic bool, domain string, seed ...[]byte) io.Reader {
	if !deterministic {
		return rand.Reader
	}
	return hash.New(domain).WriteBytes(seed...).Reader()
}
