package polynomial_test

import (
	"crypto/rand"
	"testing"

	"github.com/luxfi/election/pkg/math/curve"
	"github.com/luxfi/election/pkg/math/polynomial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	// f(x) = 1 + 2x + 3x^2
	p := &polynomial.Polynomial{Coefficients: []curve.Scalar{
		curve.ScalarFromUint64(1),
		curve.ScalarFromUint64(2),
		curve.ScalarFromUint64(3),
	}}

	assert.Equal(t, 2, p.Degree())
	assert.True(t, p.Evaluate(curve.NewScalar()).Equal(curve.ScalarFromUint64(1)))
	assert.True(t, p.Evaluate(polynomial.Coordinate(2)).Equal(curve.ScalarFromUint64(17)))
	assert.True(t, p.Constant().Equal(curve.ScalarFromUint64(1)))
}

func TestCommitmentsMatchEvaluation(t *testing.T) {
	p, err := polynomial.New(3, rand.Reader)
	require.NoError(t, err)
	commitments := p.Commitments()
	require.Len(t, commitments, 4)

	for order := 1; order <= 5; order++ {
		x := polynomial.Coordinate(order)
		expected := p.Evaluate(x).ActOnBase()
		assert.True(t, expected.Equal(polynomial.EvaluateCommitments(commitments, x)))
	}
}

func TestCommitmentsRejectOtherPolynomial(t *testing.T) {
	p, err := polynomial.New(1, rand.Reader)
	require.NoError(t, err)
	q, err := polynomial.New(1, rand.Reader)
	require.NoError(t, err)

	x := polynomial.Coordinate(1)
	assert.False(t, q.Evaluate(x).ActOnBase().Equal(polynomial.EvaluateCommitments(p.Commitments(), x)))
}

func TestNegativeDegree(t *testing.T) {
	_, err := polynomial.New(-1, rand.Reader)
	assert.Error(t, err)
}
