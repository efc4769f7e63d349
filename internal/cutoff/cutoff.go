// Package cutoff estimates the distance beyond which a potential is
// numerically inert.
//
// A declared cutoff is often conservative. [Estimator] sweeps the force on
// atom 1 over [0.5*rc, rc], hands the curve to a [converge.Detector], and
// reports the separation at which the force has flattened to noise. That
// separation, not the declared one, is the interaction range to use in
// larger simulations.
package cutoff

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/san-kum/dimerlab/internal/calc"
	"github.com/san-kum/dimerlab/internal/converge"
	"github.com/san-kum/dimerlab/internal/geom"
	"github.com/san-kum/dimerlab/internal/sweep"
)

var ErrNoNominalCutoff = errors.New("cutoff: nominal cutoff unknown")

type Result struct {
	Cutoff    float64      `json:"cutoff"`
	Index     int          `json:"index"`
	Converged float64      `json:"converged_value"`
	Nominal   float64      `json:"nominal_cutoff"`
	Tolerance float64      `json:"tolerance"`
	Curve     *sweep.Curve `json:"-"`
}

type Estimator struct {
	// Nominal overrides the calculator's declared cutoff when positive.
	Nominal   float64
	Points    int
	Species   string
	Cell      float64
	Detector  converge.Detector
	Evaluator *sweep.Evaluator
	Logger    *slog.Logger
}

func NewEstimator() *Estimator {
	return &Estimator{
		Points:    sweep.DefaultCutoffPoints,
		Species:   "X",
		Cell:      geom.DefaultCell,
		Detector:  converge.TailMean{},
		Evaluator: sweep.NewEvaluator(),
		Logger:    slog.Default(),
	}
}

// AdjustedCutoff returns the separation at which atom 1's x force converges
// within tol. A curve that never settles is reported as
// converge.ErrNotConverged.
func (e *Estimator) AdjustedCutoff(ctx context.Context, c calc.Calculator, tol float64) (*Result, error) {
	nominal := e.Nominal
	if nominal <= 0 {
		rc, ok := calc.NominalCutoff(c)
		if !ok || rc <= 0 {
			return nil, ErrNoNominalCutoff
		}
		nominal = rc
	}

	points := e.Points
	if points <= 0 {
		points = sweep.DefaultCutoffPoints
	}
	s, err := sweep.CutoffWindow(nominal, points)
	if err != nil {
		return nil, err
	}

	ev := e.Evaluator
	if ev == nil {
		ev = sweep.NewEvaluator()
	}
	x1, _, err := ev.Forces(ctx, c, geom.NewDimer(e.Species, nominal, e.Cell), s)
	if err != nil {
		return nil, fmt.Errorf("force sweep: %w", err)
	}

	det := e.Detector
	if det == nil {
		det = converge.TailMean{}
	}
	value, idx, err := det.Detect(x1.Values, tol)
	if err != nil {
		return nil, fmt.Errorf("cutoff within [%g, %g]: %w", s.Min(), s.Max(), err)
	}

	res := &Result{
		Cutoff:    s.At(idx),
		Index:     idx,
		Converged: value,
		Nominal:   nominal,
		Tolerance: tol,
		Curve:     x1,
	}
	e.logger().Info("adjusted cutoff",
		slog.Float64("nominal", nominal),
		slog.Float64("cutoff", res.Cutoff),
		slog.Int("index", idx),
		slog.Float64("tolerance", tol),
	)
	return res, nil
}

func (e *Estimator) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}
