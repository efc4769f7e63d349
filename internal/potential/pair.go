package potential

import "errors"

var ErrInvalidParams = errors.New("potential: invalid parameters")

// Pair is a radial pair potential. Deriv returns dV/dr.
type Pair interface {
	Energy(r float64) float64
	Deriv(r float64) float64
	Cutoff() float64
}

// CutoffFunc is a multiplicative envelope applied to a Pair.
type CutoffFunc interface {
	Value(r float64) float64
	Deriv(r float64) float64
	Cutoff() float64
}
