package elgamal_test

import (
	"crypto/rand"
	"testing"

	"github.com/luxfi/election/pkg/elgamal"
	"github.com/luxfi/election/pkg/math/curve"
	"github.com/luxfi/election/pkg/math/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyPair(t *testing.T) (curve.Scalar, curve.Point) {
	t.Helper()
	s, err := sample.Scalar(rand.Reader)
	require.NoError(t, err)
	return s, s.ActOnBase()
}

func TestHomomorphicAddition(t *testing.T) {
	secret, key := keyPair(t)

	var cts []elgamal.Ciphertext
	for _, m := range []uint64{1, 0, 1, 1} {
		r, err := sample.Scalar(rand.Reader)
		require.NoError(t, err)
		cts = append(cts, elgamal.Encrypt(m, r, key))
	}

	m, err := elgamal.DiscreteLog(elgamal.Sum(cts...).Decrypt(secret), 10)
	require.NoError(t, err)
	assert.Equal(t, 3, m)
}

func TestZeroCiphertextDecryptsToZero(t *testing.T) {
	secret, _ := keyPair(t)

	m, err := elgamal.DiscreteLog(elgamal.Ciphertext{}.Decrypt(secret), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, m)
}

func TestJointKeyDecryption(t *testing.T) {
	s1, k1 := keyPair(t)
	s2, k2 := keyPair(t)
	joint, err := elgamal.CombinePublicKeys([]curve.Point{k1, k2})
	require.NoError(t, err)

	r, err := sample.Scalar(rand.Reader)
	require.NoError(t, err)
	ct := elgamal.Encrypt(7, r, joint)

	// each guardian removes its own share of the mask
	plain := ct.Data.Sub(s1.Act(ct.Pad)).Sub(s2.Act(ct.Pad))
	m, err := elgamal.DiscreteLog(plain, 100)
	require.NoError(t, err)
	assert.Equal(t, 7, m)
}

func TestCombineRejectsEmpty(t *testing.T) {
	_, err := elgamal.CombinePublicKeys(nil)
	assert.Error(t, err)
	_, err = elgamal.CombinePublicKeys([]curve.Point{curve.Identity()})
	assert.Error(t, err)
}

func TestDiscreteLogBound(t *testing.T) {
	p := curve.ScalarFromUint64(50).ActOnBase()

	_, err := elgamal.DiscreteLog(p, 49)
	assert.ErrorIs(t, err, elgamal.ErrNotFound)
	m, err := elgamal.DiscreteLog(p, 60)
	require.NoError(t, err)
	assert.Equal(t, 50, m)
	// cached now, but the bound still applies
	_, err = elgamal.DiscreteLog(p, 10)
	assert.ErrorIs(t, err, elgamal.ErrNotFound)
}

func TestDiscreteLogLargeBound(t *testing.T) {
	const max = 1 << 20
	for _, x := range []uint64{0, 1, 1023, 1025, 777777, max} {
		m, err := elgamal.DiscreteLog(curve.ScalarFromUint64(x).ActOnBase(), max)
		require.NoError(t, err)
		assert.Equal(t, int(x), m)
	}

	_, err := elgamal.DiscreteLog(curve.ScalarFromUint64(max+1).ActOnBase(), max)
	assert.ErrorIs(t, err, elgamal.ErrNotFound)
	_, key := keyPair(t)
	_, err = elgamal.DiscreteLog(key, max)
	assert.ErrorIs(t, err, elgamal.ErrNotFound)
	_, err = elgamal.DiscreteLog(curve.Identity(), -1)
	assert.ErrorIs(t, err, elgamal.ErrNotFound)
}

func TestSealOpen(t *testing.T) {
	secret, key := keyPair(t)
	nonce, err := sample.Scalar(rand.Reader)
	require.NoError(t, err)

	c, err := elgamal.Seal([]byte("coordinate"), key, nonce, []byte("alice->bob"))
	require.NoError(t, err)

	plain, err := c.Open(secret, []byte("alice->bob"))
	require.NoError(t, err)
	assert.Equal(t, []byte("coordinate"), plain)

	_, err = c.Open(secret, []byte("alice->carol"))
	assert.Error(t, err)

	other, _ := keyPair(t)
	_, err = c.Open(other, []byte("alice->bob"))
	assert.Error(t, err)
}
