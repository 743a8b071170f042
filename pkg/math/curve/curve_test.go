package curve_test

import (
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/luxfi/election/pkg/math/curve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalarArithmetic(t *testing.T) {
	two := curve.ScalarFromUint64(2)
	three := curve.ScalarFromUint64(3)

	assert.True(t, two.Add(three).Equal(curve.ScalarFromUint64(5)))
	assert.True(t, two.Mul(three).Equal(curve.ScalarFromUint64(6)))
	assert.True(t, three.Sub(two).Equal(curve.ScalarFromUint64(1)))
	assert.True(t, two.Sub(two).IsZero())
	assert.True(t, two.Add(two.Negate()).IsZero())
	// receivers are values and must not change
	assert.True(t, two.Equal(curve.ScalarFromUint64(2)))
}

func TestScalarFromNatReduces(t *testing.T) {
	n := new(saferith.Nat).Add(curve.Order().Nat(), new(saferith.Nat).SetUint64(7), -1)

	assert.True(t, curve.ScalarFromNat(n).Equal(curve.ScalarFromUint64(7)))
}

func TestPointGroupLaw(t *testing.T) {
	g := curve.Generator()
	two := curve.ScalarFromUint64(2).ActOnBase()

	assert.True(t, g.Add(g).Equal(two))
	assert.True(t, two.Sub(g).Equal(g))
	assert.True(t, g.Sub(g).IsIdentity())
	assert.True(t, curve.Identity().Add(g).Equal(g))
	assert.True(t, curve.ScalarFromUint64(5).Act(g).Equal(curve.ScalarFromUint64(5).ActOnBase()))
	assert.True(t, curve.NewScalar().ActOnBase().IsIdentity())
	assert.False(t, g.Equal(curve.Identity()))
}

func TestPointEncoding(t *testing.T) {
	for _, p := range []curve.Point{curve.Identity(), curve.Generator(), curve.ScalarFromUint64(1234).ActOnBase()} {
		data, err := p.MarshalBinary()
		require.NoError(t, err)

		var q curve.Point
		require.NoError(t, q.UnmarshalBinary(data))
		assert.True(t, p.Equal(q))
	}

	var q curve.Point
	assert.Error(t, q.UnmarshalBinary([]byte{0x02, 0x01}))
}

func TestCBORRoundTrip(t *testing.T) {
	type record struct {
		S curve.Scalar
		P curve.Point
		O *curve.Point
	}
	in := record{S: curve.ScalarFromUint64(42), P: curve.Generator()}

	data, err := cbor.Marshal(in)
	require.NoError(t, err)

	var out record
	require.NoError(t, cbor.Unmarshal(data, &out))
	assert.True(t, in.S.Equal(out.S))
	assert.True(t, in.P.Equal(out.P))
	assert.Nil(t, out.O)
}

func TestPointCanonicalForm(t *testing.T) {
	a := curve.ScalarFromUint64(5).ActOnBase()
	b := curve.ScalarFromUint64(9).ActOnBase()

	assert.Equal(t, a.Add(b), b.Add(a))
	assert.Equal(t, curve.ScalarFromUint64(14).ActOnBase(), a.Add(b))
	assert.Equal(t, curve.Identity(), a.Sub(a))

	var decoded curve.Point
	require.NoError(t, decoded.UnmarshalBinary(a.Bytes()))
	assert.Equal(t, a, decoded)
}
