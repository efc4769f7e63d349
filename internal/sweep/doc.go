// Package sweep drives a [calc.Calculator] over a sequence of dimer
// separations.
//
// A [Sweep] is an ordered list of distances. For each distance the
// [Evaluator] builds a fresh copy of the input geometry with atom 1 at
// x = -r/2 and atom 2 at x = +r/2, evaluates it, and discards it, so the
// caller's geometry is never touched and points can run in parallel.
// Separations must stay clear of periodic images: below half the cell edge,
// and with the nearest image at or beyond the calculator's cutoff.
//
//	s, err := sweep.CutoffWindow(1.2, 1000)
//	if err != nil {
//		return err
//	}
//	ev := sweep.NewEvaluator(sweep.WithWorkers(4))
//	x1, x2, err := ev.Forces(ctx, c, geom.NewDimer("X", 1, 50), s)
//
// Results are returned as index-aligned [Curve] values. Any failed point
// invalidates the whole curve.
package sweep
