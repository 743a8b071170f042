// Package elgamal implements exponential ElGamal over secp256k1.
//
// A message m encrypted to key K with nonce r is the pair
// (Pad, Data) = (r·G, m·G + r·K). Ciphertexts add component-wise, which
// adds the underlying messages, so a tally is the sum of its ballots.
package elgamal

import (
	"errors"
	"fmt"
	"sync"

	"github.com/luxfi/election/pkg/math/curve"
)

// Ciphertext is an exponential ElGamal ciphertext. The zero value encrypts 0.
type Ciphertext struct {
	Pad  curve.Point
	Data curve.Point
}

// Encrypt encrypts m under key with the given nonce.
func Encrypt(m uint64, nonce curve.Scalar, key curve.Point) Ciphertext {
	return Ciphertext{
		Pad:  nonce.ActOnBase(),
		Data: curve.ScalarFromUint64(m).ActOnBase().Add(nonce.Act(key)),
	}
}

// Add returns the ciphertext of the sum of both messages.
func (c Ciphertext) Add(d Ciphertext) Ciphertext {
	return Ciphertext{Pad: c.Pad.Add(d.Pad), Data: c.Data.Add(d.Data)}
}

// Equal reports whether both ciphertexts have identical components.
func (c Ciphertext) Equal(d Ciphertext) bool {
	return c.Pad.Equal(d.Pad) && c.Data.Equal(d.Data)
}

// Decrypt returns m·G using the full secret key.
func (c Ciphertext) Decrypt(secret curve.Scalar) curve.Point {
	return c.Data.Sub(secret.Act(c.Pad))
}

// Sum adds all ciphertexts.
func Sum(cs ...Ciphertext) Ciphertext {
	var out Ciphertext
	for _, c := range cs {
		out = out.Add(c)
	}
	return out
}

// CombinePublicKeys returns the joint key Σ K_i.
func CombinePublicKeys(keys []curve.Point) (curve.Point, error) {
	if len(keys) == 0 {
		return curve.Point{}, errors.New("elgamal: no public keys to combine")
	}
	joint := curve.Identity()
	for i, k := range keys {
		if k.IsIdentity() {
			return curve.Point{}, fmt.Errorf("elgamal: public key %d is the identity", i)
		}
		joint = joint.Add(k)
	}
	return joint, nil
}

// ErrNotFound is returned when a discrete log exceeds the search bound.
var ErrNotFound = errors.New("elgamal: discrete log not found")

// babySteps maps j·G to j for 0 ≤ j < size. A table is never modified
// once published, so readers only hold the lock to fetch it.
var babySteps = struct {
	sync.RWMutex
	size  int
	index map[string]int
}{}

// stepTable returns a table of at least m baby steps and its size.
func stepTable(m int) (map[string]int, int) {
	babySteps.RLock()
	index, size := babySteps.index, babySteps.size
	babySteps.RUnlock()
	if size >= m {
		return index, size
	}

	babySteps.Lock()
	defer babySteps.Unlock()
	if babySteps.size >= m {
		return babySteps.index, babySteps.size
	}
	index = make(map[string]int, m)
	p, g := curve.Identity(), curve.Generator()
	for j := 0; j < m; j++ {
		index[string(p.Bytes())] = j
		p = p.Add(g)
	}
	babySteps.index, babySteps.size = index, m
	return index, m
}

// DiscreteLog returns m such that p = m·G and 0 ≤ m ≤ max, using
// baby-step giant-step: about 2·sqrt(max) group operations and a cached
// table of sqrt(max) points.
func DiscreteLog(p curve.Point, max int) (int, error) {
	if max < 0 {
		return 0, ErrNotFound
	}
	m := 1
	for m*m <= max {
		m++
	}
	index, size := stepTable(m)

	stride := curve.ScalarFromUint64(uint64(size)).ActOnBase().Negate()
	q := p
	for i := 0; i*size <= max; i++ {
		if j, ok := index[string(q.Bytes())]; ok {
			// p = (i·size + j)·G and that exponent is unique below the group order
			if x := i*size + j; x <= max {
				return x, nil
			}
			return 0, ErrNotFound
		}
		q = q.Add(stride)
	}
	return 0, ErrNotFound
}
