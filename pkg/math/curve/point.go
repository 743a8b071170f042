package curve

import (
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// PointSize is the length of an encoded non-identity Point.
const PointSize = 33

// identityEncoding is how the point at infinity is written on the wire.
var identityEncoding = []byte{0x00}

// Point is an element of the secp256k1 group. The zero value is the identity.
// Points are kept in affine form so that equal points compare equal with ==.
type Point struct {
	p secp256k1.JacobianPoint
}

func fromJacobian(j *secp256k1.JacobianPoint) Point {
	r := Point{p: *j}
	if r.IsIdentity() {
		return Point{}
	}
	r.p.ToAffine()
	return r
}

// Identity returns the point at infinity.
func Identity() Point {
	return Point{}
}

// Generator returns the base point G.
func Generator() Point {
	return ScalarFromUint64(1).ActOnBase()
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	var r secp256k1.JacobianPoint
	secp256k1.AddNonConst(&p.p, &q.p, &r)
	return fromJacobian(&r)
}

// Negate returns -p.
func (p Point) Negate() Point {
	if p.IsIdentity() {
		return p
	}
	p.p.Y.Normalize()
	p.p.Y.Negate(1)
	p.p.Y.Normalize()
	return p
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return p.Add(q.Negate())
}

// IsIdentity reports whether p is the point at infinity.
func (p Point) IsIdentity() bool {
	z := p.p.Z
	z.Normalize()
	if z.IsZero() {
		return true
	}
	x, y := p.p.X, p.p.Y
	x.Normalize()
	y.Normalize()
	return x.IsZero() && y.IsZero()
}

// Equal reports whether p and q are the same group element.
func (p Point) Equal(q Point) bool {
	pi, qi := p.IsIdentity(), q.IsIdentity()
	if pi || qi {
		return pi == qi
	}
	a, b := p.p, q.p
	a.ToAffine()
	b.ToAffine()
	return a.X.Equals(&b.X) && a.Y.Equals(&b.Y)
}

// Bytes returns the compressed encoding of p.
func (p Point) Bytes() []byte {
	if p.IsIdentity() {
		return append([]byte(nil), identityEncoding...)
	}
	a := p.p
	a.ToAffine()
	return secp256k1.NewPublicKey(&a.X, &a.Y).SerializeCompressed()
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p Point) MarshalBinary() ([]byte, error) {
	return p.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *Point) UnmarshalBinary(data []byte) error {
	if len(data) == len(identityEncoding) && data[0] == identityEncoding[0] {
		*p = Identity()
		return nil
	}
	if len(data) != PointSize {
		return fmt.Errorf("curve: point must be %d bytes, got %d", PointSize, len(data))
	}
	pk, err := secp256k1.ParsePubKey(data)
	if err != nil {
		return fmt.Errorf("curve: %w", err)
	}
	var r Point
	pk.AsJacobian(&r.p)
	*p = r
	return nil
}

// String returns the hex encoding of p.
func (p Point) String() string {
	return hex.EncodeToString(p.Bytes())
}
