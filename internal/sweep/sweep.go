package sweep

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/dimerlab/internal/geom"
)

var ErrInvalidSweep = errors.New("sweep: invalid separation sweep")

// DefaultCutoffPoints is the resolution used when searching for a cutoff.
const DefaultCutoffPoints = 1000

type Sweep struct {
	r []float64
}

// New validates that rs is non-empty, positive, finite and strictly
// increasing. rs is copied.
func New(rs []float64) (*Sweep, error) {
	if len(rs) == 0 {
		return nil, fmt.Errorf("%w: no distances", ErrInvalidSweep)
	}
	for i, r := range rs {
		if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
			return nil, fmt.Errorf("%w: r[%d]=%g is not a positive distance", ErrInvalidSweep, i, r)
		}
		if i > 0 && r <= rs[i-1] {
			return nil, fmt.Errorf("%w: r[%d]=%g does not exceed r[%d]=%g", ErrInvalidSweep, i, r, i-1, rs[i-1])
		}
	}
	c := make([]float64, len(rs))
	copy(c, rs)
	return &Sweep{r: c}, nil
}

// Linspace returns n evenly spaced distances from start to stop inclusive.
func Linspace(start, stop float64, n int) (*Sweep, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: linspace needs at least 2 points, got %d", ErrInvalidSweep, n)
	}
	rs := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range rs {
		rs[i] = start + float64(i)*step
	}
	rs[n-1] = stop
	return New(rs)
}

// CutoffWindow spans [0.5*rc, rc].
func CutoffWindow(rc float64, n int) (*Sweep, error) {
	return Linspace(0.5*rc, rc, n)
}

// Exploratory is a coarse survey range for potentials of unknown reach.
func Exploratory() *Sweep {
	s, _ := Linspace(0.5, 5.0, 451)
	return s
}

func (s *Sweep) Len() int { return len(s.r) }

func (s *Sweep) At(i int) float64 { return s.r[i] }

// Distances returns a copy of the separations.
func (s *Sweep) Distances() []float64 {
	c := make([]float64, len(s.r))
	copy(c, s.r)
	return c
}

func (s *Sweep) Min() float64 { return s.r[0] }
func (s *Sweep) Max() float64 { return s.r[len(s.r)-1] }

// Apply returns one geometry per separation, each an independent copy of g.
// Every separation must stay below half the cell edge so the minimum image
// of the partner atom is the atom itself.
func (s *Sweep) Apply(g *geom.Geometry) ([]*geom.Geometry, error) {
	if err := g.ValidateDimer(); err != nil {
		return nil, err
	}
	if 2*s.Max() >= g.Cell {
		return nil, fmt.Errorf("%w: separation %g reaches half the cell edge %g",
			geom.ErrMalformedGeometry, s.Max(), g.Cell)
	}
	out := make([]*geom.Geometry, len(s.r))
	for i, r := range s.r {
		out[i] = g.WithSeparation(r)
	}
	return out, nil
}
