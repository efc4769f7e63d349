package calc

import (
	"context"

	"github.com/san-kum/dimerlab/internal/geom"
)

// Calculator evaluates a geometry. Implementations must be deterministic per
// position. Forces returns one vector per atom.
type Calculator interface {
	Energy(ctx context.Context, g *geom.Geometry) (float64, error)
	Forces(ctx context.Context, g *geom.Geometry) ([]geom.Vec3, error)
}

// CutoffReporter is implemented by calculators that know their nominal
// interaction range.
type CutoffReporter interface {
	Cutoff() float64
}

// NominalCutoff returns c's declared cutoff, looking through wrappers.
func NominalCutoff(c Calculator) (float64, bool) {
	for c != nil {
		if cr, ok := c.(CutoffReporter); ok {
			return cr.Cutoff(), true
		}
		u, ok := c.(interface{ Unwrap() Calculator })
		if !ok {
			return 0, false
		}
		c = u.Unwrap()
	}
	return 0, false
}
