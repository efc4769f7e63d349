package potential

import "fmt"

// SplineTaper is 1 below Inner, 0 beyond Outer, and a cubic Hermite segment
// with zero slope at both ends in between.
type SplineTaper struct {
	Inner float64
	Outer float64
}

// NewSplineTaper spans the whole radius range [0, outer].
func NewSplineTaper(outer float64) *SplineTaper {
	return &SplineTaper{Inner: 0, Outer: outer}
}

func (s *SplineTaper) Validate() error {
	if s.Outer <= 0 || s.Inner < 0 || s.Inner >= s.Outer {
		return fmt.Errorf("%w: taper needs 0 <= inner < outer, got [%g, %g]", ErrInvalidParams, s.Inner, s.Outer)
	}
	return nil
}

func (s *SplineTaper) Value(r float64) float64 {
	switch {
	case r <= s.Inner:
		return 1
	case r >= s.Outer:
		return 0
	}
	t := (r - s.Inner) / (s.Outer - s.Inner)
	return 1 - t*t*(3-2*t)
}

func (s *SplineTaper) Deriv(r float64) float64 {
	if r <= s.Inner || r >= s.Outer {
		return 0
	}
	w := s.Outer - s.Inner
	t := (r - s.Inner) / w
	return 6 * t * (t - 1) / w
}

func (s *SplineTaper) Cutoff() float64 { return s.Outer }

// Step is a hard cut at At. Forces from a stepped potential are discontinuous.
type Step struct {
	At float64
}

func (s *Step) Value(r float64) float64 {
	if r < s.At {
		return 1
	}
	return 0
}

func (s *Step) Deriv(float64) float64 { return 0 }

func (s *Step) Cutoff() float64 { return s.At }

// Cutoffed multiplies Pot by Fn.
type Cutoffed struct {
	Pot Pair
	Fn  CutoffFunc
}

func (c *Cutoffed) Energy(r float64) float64 {
	f := c.Fn.Value(r)
	if f == 0 {
		return 0
	}
	return c.Pot.Energy(r) * f
}

func (c *Cutoffed) Deriv(r float64) float64 {
	return c.Pot.Deriv(r)*c.Fn.Value(r) + c.Pot.Energy(r)*c.Fn.Deriv(r)
}

func (c *Cutoffed) Cutoff() float64 {
	if fc := c.Fn.Cutoff(); fc < c.Pot.Cutoff() {
		return fc
	}
	return c.Pot.Cutoff()
}

// Smooth returns p tapered by a spline over [0, p.Rc].
func Smooth(p *IdealBrittleSolid) *Cutoffed {
	return &Cutoffed{Pot: p, Fn: NewSplineTaper(p.Rc)}
}

// Stepped returns p multiplied by a hard step at p.Rc.
func Stepped(p *IdealBrittleSolid) *Cutoffed {
	return &Cutoffed{Pot: p, Fn: &Step{At: p.Rc}}
}
