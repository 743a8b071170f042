// Package curve wraps the secp256k1 group used for every election key,
// ciphertext and proof.
package curve

import (
	"encoding/hex"
	"fmt"

	"github.com/cronokirby/saferith"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// ScalarSize is the length of an encoded Scalar.
const ScalarSize = 32

var order = saferith.ModulusFromBytes(mustDecode("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141"))

func mustDecode(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// Order returns the order of the secp256k1 group.
func Order() *saferith.Modulus {
	return order
}

// Scalar is an integer modulo the group order. The zero value is 0.
type Scalar struct {
	s secp256k1.ModNScalar
}

// NewScalar returns 0.
func NewScalar() Scalar {
	return Scalar{}
}

// ScalarFromUint64 returns x as a scalar.
func ScalarFromUint64(x uint64) Scalar {
	return ScalarFromNat(new(saferith.Nat).SetUint64(x))
}

// ScalarFromNat reduces n modulo the group order.
func ScalarFromNat(n *saferith.Nat) Scalar {
	reduced := new(saferith.Nat).Mod(n, order)
	var s Scalar
	s.s.SetByteSlice(reduced.Bytes())
	return s
}

// ScalarFromBytes decodes a big-endian integer, reporting whether it was
// not below the group order.
func ScalarFromBytes(b *[ScalarSize]byte) (Scalar, bool) {
	var s Scalar
	overflow := s.s.SetBytes(b) != 0
	return s, overflow
}

// ScalarFromDigest reduces a 32 byte digest modulo the group order.
func ScalarFromDigest(d [ScalarSize]byte) Scalar {
	s, _ := ScalarFromBytes(&d)
	return s
}

// Add returns a + b.
func (a Scalar) Add(b Scalar) Scalar {
	a.s.Add(&b.s)
	return a
}

// Sub returns a - b.
func (a Scalar) Sub(b Scalar) Scalar {
	var neg secp256k1.ModNScalar
	neg.NegateVal(&b.s)
	a.s.Add(&neg)
	return a
}

// Mul returns a * b.
func (a Scalar) Mul(b Scalar) Scalar {
	a.s.Mul(&b.s)
	return a
}

// Negate returns -a.
func (a Scalar) Negate() Scalar {
	a.s.Negate()
	return a
}

// IsZero reports whether a is 0.
func (a Scalar) IsZero() bool {
	return a.s.IsZero()
}

// Equal reports whether a and b are the same scalar.
func (a Scalar) Equal(b Scalar) bool {
	return a.s.Equals(&b.s)
}

// ActOnBase returns a·G.
func (a Scalar) ActOnBase() Point {
	var r secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&a.s, &r)
	return fromJacobian(&r)
}

// Act returns a·p.
func (a Scalar) Act(p Point) Point {
	var r secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(&a.s, &p.p, &r)
	return fromJacobian(&r)
}

// Bytes returns the big-endian encoding of a.
func (a Scalar) Bytes() [ScalarSize]byte {
	return a.s.Bytes()
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (a Scalar) MarshalBinary() ([]byte, error) {
	b := a.s.Bytes()
	return b[:], nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (a *Scalar) UnmarshalBinary(data []byte) error {
	if len(data) != ScalarSize {
		return fmt.Errorf("curve: scalar must be %d bytes, got %d", ScalarSize, len(data))
	}
	var b [ScalarSize]byte
	copy(b[:], data)
	s, overflow := ScalarFromBytes(&b)
	if overflow {
		return fmt.Errorf("curve: scalar exceeds group order")
	}
	*a = s
	return nil
}

// String returns the hex encoding of a.
func (a Scalar) String() string {
	b := a.s.Bytes()
	return hex.EncodeToString(b[:])
}
