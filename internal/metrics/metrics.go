// Package metrics reduces evaluated dimer curves to scalar diagnostics.
//
// Each [Metric] observes the sweep one [Point] at a time, in order of
// increasing separation, and reports a single value. [Collect] runs a set of
// metrics over aligned energy and force curves.
package metrics

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/dimerlab/internal/sweep"
)

var ErrMisaligned = errors.New("metrics: curves are not aligned")

// Point is one separation with everything evaluated there.
type Point struct {
	R      float64
	Energy float64
	FX1    float64
	FX2    float64
}

type Metric interface {
	Name() string
	Observe(p Point)
	Value() float64
	Reset()
}

// Default returns fresh instances of every curve diagnostic.
func Default() []Metric {
	return []Metric{NewMinEnergy(), NewEquilibrium(), NewNewtonResidual(), NewForceMismatch()}
}

// Collect feeds the curves to ms and returns their values by name. The three
// curves must share one distance grid.
func Collect(energy, x1, x2 *sweep.Curve, ms ...Metric) (map[string]float64, error) {
	n := energy.Len()
	if x1.Len() != n || x2.Len() != n {
		return nil, fmt.Errorf("%w: %d energies, %d and %d forces", ErrMisaligned, n, x1.Len(), x2.Len())
	}
	for i := 0; i < n; i++ {
		if x1.R[i] != energy.R[i] || x2.R[i] != energy.R[i] {
			return nil, fmt.Errorf("%w: point %d", ErrMisaligned, i)
		}
	}

	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for i := 0; i < n; i++ {
			m.Observe(Point{R: energy.R[i], Energy: energy.Values[i], FX1: x1.Values[i], FX2: x2.Values[i]})
		}
		out[m.Name()] = m.Value()
	}
	return out, nil
}

type MinEnergy struct {
	min     float64
	samples int
}

func NewMinEnergy() *MinEnergy { return &MinEnergy{} }

func (m *MinEnergy) Name() string { return "min_energy" }

func (m *MinEnergy) Observe(p Point) {
	if m.samples == 0 || p.Energy < m.min {
		m.min = p.Energy
	}
	m.samples++
}

func (m *MinEnergy) Value() float64 {
	if m.samples == 0 {
		return math.NaN()
	}
	return m.min
}

func (m *MinEnergy) Reset() { *m = MinEnergy{} }

// Equilibrium is the sampled separation with the lowest energy. Ties keep
// the smallest separation.
type Equilibrium struct {
	min     MinEnergy
	r       float64
	samples int
}

func NewEquilibrium() *Equilibrium { return &Equilibrium{} }

func (e *Equilibrium) Name() string { return "equilibrium_r" }

func (e *Equilibrium) Observe(p Point) {
	before := e.min.Value()
	e.min.Observe(p)
	if e.samples == 0 || e.min.Value() < before {
		e.r = p.R
	}
	e.samples++
}

func (e *Equilibrium) Value() float64 {
	if e.samples == 0 {
		return math.NaN()
	}
	return e.r
}

func (e *Equilibrium) Reset() { *e = Equilibrium{} }

// NewtonResidual is max |F1 + F2|; a pair force obeys F1 = -F2 exactly.
type NewtonResidual struct {
	max float64
}

func NewNewtonResidual() *NewtonResidual { return &NewtonResidual{} }

func (n *NewtonResidual) Name() string { return "newton_residual" }

func (n *NewtonResidual) Observe(p Point) {
	n.max = math.Max(n.max, math.Abs(p.FX1+p.FX2))
}

func (n *NewtonResidual) Value() float64 { return n.max }

func (n *NewtonResidual) Reset() { n.max = 0 }

// ForceMismatch compares atom 1's force with the secant slope of the energy
// between neighbouring separations, against the mean of the two forces. It
// is exact for quadratic pieces, so large values flag a discontinuous force
// or an inconsistent calculator.
type ForceMismatch struct {
	prev    Point
	samples int
	max     float64
}

func NewForceMismatch() *ForceMismatch { return &ForceMismatch{} }

func (f *ForceMismatch) Name() string { return "force_mismatch" }

func (f *ForceMismatch) Observe(p Point) {
	if f.samples > 0 && p.R > f.prev.R {
		slope := (p.Energy - f.prev.Energy) / (p.R - f.prev.R)
		mean := 0.5 * (p.FX1 + f.prev.FX1)
		f.max = math.Max(f.max, math.Abs(slope-mean))
	}
	f.prev = p
	f.samples++
}

func (f *ForceMismatch) Value() float64 { return f.max }

func (f *ForceMismatch) Reset() { *f = ForceMismatch{} }
