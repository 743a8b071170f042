// Package polynomial implements the secret polynomials guardians use to share
// their election keys, and the public commitments to their coefficients.
package polynomial

import (
	"errors"
	"io"

	"github.com/luxfi/election/pkg/math/curve"
	"github.com/luxfi/election/pkg/math/sample"
)

// Polynomial is f(x) = a_0 + a_1·x + ... + a_t·x^t over the group order.
type Polynomial struct {
	Coefficients []curve.Scalar
}

// New returns a random polynomial of the given degree. Every coefficient,
// including the constant term, is drawn from r.
func New(degree int, r io.Reader) (*Polynomial, error) {
	if degree < 0 {
		return nil, errors.New("polynomial: negative degree")
	}
	coefficients, err := sample.Scalars(r, degree+1)
	if err != nil {
		return nil, err
	}
	return &Polynomial{Coefficients: coefficients}, nil
}

// Degree returns the degree of p.
func (p *Polynomial) Degree() int {
	return len(p.Coefficients) - 1
}

// Constant returns f(0).
func (p *Polynomial) Constant() curve.Scalar {
	if len(p.Coefficients) == 0 {
		return curve.NewScalar()
	}
	return p.Coefficients[0]
}

// Evaluate returns f(x) using Horner's method.
func (p *Polynomial) Evaluate(x curve.Scalar) curve.Scalar {
	result := curve.NewScalar()
	for i := len(p.Coefficients) - 1; i >= 0; i-- {
		result = result.Mul(x).Add(p.Coefficients[i])
	}
	return result
}

// Commitments returns a_l·G for every coefficient.
func (p *Polynomial) Commitments() []curve.Point {
	out := make([]curve.Point, len(p.Coefficients))
	for i, c := range p.Coefficients {
		out[i] = c.ActOnBase()
	}
	return out
}

// EvaluateCommitments returns Σ x^l·C_l, which equals f(x)·G when the
// commitments belong to f.
func EvaluateCommitments(commitments []curve.Point, x curve.Scalar) curve.Point {
	result := curve.Identity()
	power := curve.ScalarFromUint64(1)
	for _, c := range commitments {
		result = result.Add(power.Act(c))
		power = power.Mul(x)
	}
	return result
}

// Coordinate returns the x coordinate assigned to the guardian with the given sequence order.
func Coordinate(order int) curve.Scalar {
	return curve.ScalarFromUint64(uint64(order))
}
