package potential

import (
	"fmt"
	"math"
)

const (
	RealisticCutoff      = 1.2
	ReferenceMatchCutoff = 1.01
)

// IdealBrittleSolid is the truncated quadratic bond
//
//	V(r) = 0.5*0.5*K*(r-A)^2 - 0.5*0.5*K*(Rc-A)^2   for r <= Rc
//
// and zero beyond. The extra factor of one half converts per-bond energies to
// the per-atom double-counted convention; removing it breaks agreement with
// reference data.
type IdealBrittleSolid struct {
	K  float64
	A  float64
	Rc float64
}

func NewIdealBrittleSolid(k, a, rc float64) (*IdealBrittleSolid, error) {
	p := &IdealBrittleSolid{K: k, A: a, Rc: rc}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// DefaultIdealBrittleSolid returns k = 1, a = 1, rc = RealisticCutoff.
func DefaultIdealBrittleSolid() *IdealBrittleSolid {
	return &IdealBrittleSolid{K: 1.0, A: 1.0, Rc: RealisticCutoff}
}

func (p *IdealBrittleSolid) Validate() error {
	for _, v := range []float64{p.K, p.A, p.Rc} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite parameter in %v", ErrInvalidParams, p)
		}
	}
	if p.K <= 0 {
		return fmt.Errorf("%w: k must be positive, got %g", ErrInvalidParams, p.K)
	}
	if p.A <= 0 {
		return fmt.Errorf("%w: a must be positive, got %g", ErrInvalidParams, p.A)
	}
	if p.Rc <= p.A {
		return fmt.Errorf("%w: r_cut (%g) must exceed a (%g)", ErrInvalidParams, p.Rc, p.A)
	}
	return nil
}

func (p *IdealBrittleSolid) half(x float64) float64 {
	return 0.5 * 0.5 * p.K * x * x
}

func (p *IdealBrittleSolid) Energy(r float64) float64 {
	if r > p.Rc {
		return 0
	}
	return p.half(r-p.A) - p.half(p.Rc-p.A)
}

func (p *IdealBrittleSolid) Deriv(r float64) float64 {
	if r >= p.Rc {
		return 0
	}
	return 0.5 * p.K * (r - p.A)
}

func (p *IdealBrittleSolid) Cutoff() float64 { return p.Rc }

func (p *IdealBrittleSolid) String() string {
	return fmt.Sprintf("ibs(k=%g, a=%g, rc=%g)", p.K, p.A, p.Rc)
}
