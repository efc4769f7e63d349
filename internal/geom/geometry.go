package geom

import (
	"errors"
	"fmt"
)

// ErrMalformedGeometry is returned before any evaluation when a geometry
// cannot be used as a dimer.
var ErrMalformedGeometry = errors.New("geom: malformed dimer geometry")

// DefaultCell is the cubic cell edge used when none is given. It is large
// enough that periodic images of any supported potential never interact.
const DefaultCell = 50.0

type Geometry struct {
	Species   string
	Positions []Vec3
	Cell      float64
	FixedCell bool
}

// NewDimer places two atoms of the given species symmetrically about the
// origin along x, separated by r, inside a cubic cell of edge cell. The
// fixed-cell constraint is applied.
func NewDimer(species string, r, cell float64) *Geometry {
	if cell <= 0 {
		cell = DefaultCell
	}
	return &Geometry{
		Species: species,
		Positions: []Vec3{
			{-r / 2, 0, 0},
			{r / 2, 0, 0},
		},
		Cell:      cell,
		FixedCell: true,
	}
}

func (g *Geometry) NumAtoms() int { return len(g.Positions) }

func (g *Geometry) Clone() *Geometry {
	c := *g
	c.Positions = make([]Vec3, len(g.Positions))
	copy(c.Positions, g.Positions)
	return &c
}

// Distance returns the separation between atoms i and j.
func (g *Geometry) Distance(i, j int) float64 {
	return g.Positions[j].Sub(g.Positions[i]).Norm()
}

// ValidateDimer checks the sweep preconditions: two atoms, fixed cell,
// finite coordinates.
func (g *Geometry) ValidateDimer() error {
	if g == nil {
		return fmt.Errorf("%w: nil geometry", ErrMalformedGeometry)
	}
	if n := len(g.Positions); n != 2 {
		return fmt.Errorf("%w: expected 2 atoms, got %d", ErrMalformedGeometry, n)
	}
	if !g.FixedCell {
		return fmt.Errorf("%w: fixed-cell constraint not applied", ErrMalformedGeometry)
	}
	if g.Cell <= 0 {
		return fmt.Errorf("%w: cell edge must be positive, got %g", ErrMalformedGeometry, g.Cell)
	}
	for i, p := range g.Positions {
		if !p.IsValid() {
			return fmt.Errorf("%w: atom %d has non-finite position", ErrMalformedGeometry, i)
		}
	}
	return nil
}

// WithSeparation returns a copy with atom 1 at x = -r/2 and atom 2 at
// x = +r/2. The y and z coordinates are kept.
func (g *Geometry) WithSeparation(r float64) *Geometry {
	c := g.Clone()
	c.Positions[0][0] = -r / 2
	c.Positions[1][0] = r / 2
	return c
}
