package hash_test

import (
	"io"
	"testing"

	"github.com/luxfi/election/pkg/hash"
	"github.com/luxfi/election/pkg/math/curve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainSeparation(t *testing.T) {
	a := hash.New("election/a").WriteString("x").Sum()
	b := hash.New("election/b").WriteString("x").Sum()

	assert.Len(t, a, hash.DigestSize)
	assert.NotEqual(t, a, b)
}

func TestLengthPrefix(t *testing.T) {
	a := hash.New("d").WriteBytes([]byte("ab"), []byte("c")).Sum()
	b := hash.New("d").WriteBytes([]byte("a"), []byte("bc")).Sum()

	assert.NotEqual(t, a, b)
}

func TestDeterministic(t *testing.T) {
	g := curve.Generator()
	s1 := hash.New("d").WritePoint(g).WriteUint64(3).Scalar()
	s2 := hash.New("d").WritePoint(g).WriteUint64(3).Scalar()

	assert.True(t, s1.Equal(s2))
}

func TestReader(t *testing.T) {
	buf1 := make([]byte, 100)
	buf2 := make([]byte, 100)
	_, err := io.ReadFull(hash.New("d").WriteString("seed").Reader(), buf1)
	require.NoError(t, err)
	_, err = io.ReadFull(hash.New("d").WriteString("seed").Reader(), buf2)
	require.NoError(t, err)

	assert.Equal(t, buf1, buf2)
}
