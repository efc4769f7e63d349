package calc

import (
	"context"
	"math"

	"github.com/san-kum/dimerlab/internal/geom"
	"github.com/san-kum/dimerlab/internal/potential"
)

// Pair sums an analytic pair potential over all atom pairs using the minimum
// image of the cubic cell. It is safe for concurrent use.
type Pair struct {
	Pot potential.Pair
}

func NewPair(p potential.Pair) *Pair { return &Pair{Pot: p} }

func (c *Pair) Cutoff() float64 { return c.Pot.Cutoff() }

func (c *Pair) Energy(ctx context.Context, g *geom.Geometry) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	e := 0.0
	n := g.NumAtoms()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := minimumImage(g.Positions[j].Sub(g.Positions[i]), g.Cell)
			e += c.Pot.Energy(d.Norm())
		}
	}
	return e, nil
}

func (c *Pair) Forces(ctx context.Context, g *geom.Geometry) ([]geom.Vec3, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := g.NumAtoms()
	f := make([]geom.Vec3, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := minimumImage(g.Positions[j].Sub(g.Positions[i]), g.Cell)
			r := d.Norm()
			if r == 0 {
				continue
			}
			// F_i = -dV/dx_i = V'(r) d/r
			fij := d.Scale(c.Pot.Deriv(r) / r)
			f[i] = f[i].Add(fij)
			f[j] = f[j].Sub(fij)
		}
	}
	return f, nil
}

func minimumImage(d geom.Vec3, cell float64) geom.Vec3 {
	if cell <= 0 {
		return d
	}
	for k := range d {
		d[k] -= cell * math.Round(d[k]/cell)
	}
	return d
}
