// Package elastic maps the ideal brittle solid's microscopic parameters to
// continuum elastic constants.
package elastic

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/dimerlab/internal/potential"
)

var ErrInvalidElasticDomain = errors.New("elastic: poisson ratio outside physical domain")

// IBSPoissonRatio is fixed by the triangular reference lattice, not by k or a.
const IBSPoissonRatio = 0.25

type Constants struct {
	E   float64 `json:"youngs_modulus" yaml:"youngs_modulus"`
	Nu  float64 `json:"poisson_ratio" yaml:"poisson_ratio"`
	K   float64 `json:"bulk_modulus" yaml:"bulk_modulus"`
	C11 float64 `json:"c11" yaml:"c11"`
	C12 float64 `json:"c12" yaml:"c12"`
	C44 float64 `json:"c44" yaml:"c44"`
}

// YoungsModulus returns (5*sqrt(3)/4) * k / a for the nearest-neighbour
// triangular lattice of spacing a.
func YoungsModulus(k, a float64) float64 {
	return 5 * math.Sqrt(3) / 4 * k / a
}

func PoissonRatio() float64 { return IBSPoissonRatio }

// FromModuli computes the stiffness triad for an isotropic solid. nu must
// lie in (-1, 0.5); at 0.5 the bulk modulus diverges.
func FromModuli(e, nu float64) (Constants, error) {
	if math.IsNaN(e) || math.IsInf(e, 0) || math.IsNaN(nu) || math.IsInf(nu, 0) {
		return Constants{}, fmt.Errorf("%w: non-finite input E=%g nu=%g", ErrInvalidElasticDomain, e, nu)
	}
	if nu >= 0.5 || nu <= -1 {
		return Constants{}, fmt.Errorf("%w: nu=%g not in (-1, 0.5)", ErrInvalidElasticDomain, nu)
	}

	k := e / (3 * (1 - 2*nu))
	c44 := e / (2 * (1 + nu))

	return Constants{
		E:   e,
		Nu:  nu,
		K:   k,
		C11: k + 4*c44/3,
		C12: k - 2*c44/3,
		C44: c44,
	}, nil
}

// ForIBS composes YoungsModulus, PoissonRatio and FromModuli.
func ForIBS(p *potential.IdealBrittleSolid) (Constants, error) {
	if err := p.Validate(); err != nil {
		return Constants{}, err
	}
	return FromModuli(YoungsModulus(p.K, p.A), PoissonRatio())
}
