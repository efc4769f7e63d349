package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/dimerlab/internal/calc"
	"github.com/san-kum/dimerlab/internal/geom"
)

// CalculatorError wraps a failure from the calculator with the sweep point
// that produced it.
type CalculatorError struct {
	Op    string
	Index int
	R     float64
	Err   error
}

func (e *CalculatorError) Error() string {
	return fmt.Sprintf("%s at point %d (r=%g): %v", e.Op, e.Index, e.R, e.Err)
}

func (e *CalculatorError) Unwrap() error { return e.Err }

type Evaluator struct {
	workers int
	logger  *slog.Logger
}

type Option func(*Evaluator)

// WithWorkers evaluates up to n points concurrently. The calculator must be
// safe for concurrent use when n > 1.
func WithWorkers(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.workers = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) { e.logger = l }
}

func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{workers: 1, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Energies evaluates the energy at every separation of s.
func (e *Evaluator) Energies(ctx context.Context, c calc.Calculator, g *geom.Geometry, s *Sweep) (*Curve, error) {
	out := newCurve(KindEnergy, s)
	err := e.run(ctx, "energy", c, g, s, func(ctx context.Context, i int, gi *geom.Geometry) error {
		v, err := c.Energy(ctx, gi)
		if err != nil {
			return err
		}
		out.Values[i] = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Forces evaluates forces at every separation of s and keeps the x component
// of each atom. Other components vanish by symmetry and are not checked.
func (e *Evaluator) Forces(ctx context.Context, c calc.Calculator, g *geom.Geometry, s *Sweep) (x1, x2 *Curve, err error) {
	x1 = newCurve(KindForceX1, s)
	x2 = newCurve(KindForceX2, s)
	err = e.run(ctx, "forces", c, g, s, func(ctx context.Context, i int, gi *geom.Geometry) error {
		f, err := c.Forces(ctx, gi)
		if err != nil {
			return err
		}
		if len(f) != 2 {
			return fmt.Errorf("expected 2 force vectors, got %d", len(f))
		}
		x1.Values[i] = f[0][0]
		x2.Values[i] = f[1][0]
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return x1, x2, nil
}

// run evaluates every point of s. Geometries are checked before the first
// call: the nearest periodic image of the partner atom must sit at or beyond
// the calculator's declared cutoff.
func (e *Evaluator) run(ctx context.Context, op string, c calc.Calculator, g *geom.Geometry, s *Sweep,
	eval func(ctx context.Context, i int, g *geom.Geometry) error) error {
	gs, err := s.Apply(g)
	if err != nil {
		return err
	}
	if rc, ok := calc.NominalCutoff(c); ok && g.Cell-s.Max() < rc {
		return fmt.Errorf("%w: periodic image at %g is inside cutoff %g",
			geom.ErrMalformedGeometry, g.Cell-s.Max(), rc)
	}

	start := time.Now()
	point := func(ctx context.Context, i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		r := s.At(i)
		if err := eval(ctx, i, gs[i]); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &CalculatorError{Op: op, Index: i, R: r, Err: err}
		}
		return nil
	}

	if e.workers <= 1 {
		for i := 0; i < s.Len() && err == nil; i++ {
			err = point(ctx, i)
		}
	} else {
		grp, gctx := errgroup.WithContext(ctx)
		grp.SetLimit(e.workers)
		for i := 0; i < s.Len(); i++ {
			grp.Go(func() error { return point(gctx, i) })
		}
		err = grp.Wait()
		if err == nil {
			err = ctx.Err()
		}
	}
	if err != nil {
		return err
	}

	e.logger.Debug("sweep evaluated",
		slog.String("op", op),
		slog.Int("points", s.Len()),
		slog.Float64("r_min", s.Min()),
		slog.Float64("r_max", s.Max()),
		slog.Int("workers", e.workers),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}
