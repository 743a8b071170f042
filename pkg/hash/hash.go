// Package hash provides the domain separated blake3 hash used for election
// digests and Fiat-Shamir challenges.
package hash

import (
	"encoding/binary"
	"io"

	"github.com/luxfi/election/pkg/math/curve"
	"github.com/zeebo/blake3"
)

// DigestSize is the length of a digest returned by Sum.
const DigestSize = 32

// Hash accumulates length-prefixed items under a fixed domain.
type Hash struct {
	h *blake3.Hasher
}

// New returns a hash whose output is bound to domain.
func New(domain string) *Hash {
	return &Hash{h: blake3.NewDeriveKey(domain)}
}

// WriteBytes writes each item prefixed with its length.
func (h *Hash) WriteBytes(items ...[]byte) *Hash {
	var prefix [8]byte
	for _, item := range items {
		binary.BigEndian.PutUint64(prefix[:], uint64(len(item)))
		_, _ = h.h.Write(prefix[:])
		_, _ = h.h.Write(item)
	}
	return h
}

// WriteString writes s as a length-prefixed item.
func (h *Hash) WriteString(s string) *Hash {
	return h.WriteBytes([]byte(s))
}

// WriteUint64 writes x as an 8 byte item.
func (h *Hash) WriteUint64(x uint64) *Hash {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], x)
	return h.WriteBytes(b[:])
}

// WritePoint writes the compressed encoding of every point.
func (h *Hash) WritePoint(points ...curve.Point) *Hash {
	for _, p := range points {
		h.WriteBytes(p.Bytes())
	}
	return h
}

// WriteScalar writes the encoding of every scalar.
func (h *Hash) WriteScalar(scalars ...curve.Scalar) *Hash {
	for _, s := range scalars {
		b := s.Bytes()
		h.WriteBytes(b[:])
	}
	return h
}

// Sum returns the digest of everything written so far.
func (h *Hash) Sum() []byte {
	return h.h.Sum(nil)
}

// Scalar returns the digest reduced modulo the group order.
func (h *Hash) Scalar() curve.Scalar {
	var d [DigestSize]byte
	copy(d[:], h.h.Sum(nil))
	return curve.ScalarFromDigest(d)
}

// Reader returns an unbounded output stream seeded by everything written so far.
func (h *Hash) Reader() io.Reader {
	return h.h.Digest()
}
