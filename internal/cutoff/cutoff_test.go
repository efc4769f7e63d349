package cutoff

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/dimerlab/internal/calc"
	"github.com/san-kum/dimerlab/internal/converge"
	"github.com/san-kum/dimerlab/internal/geom"
	"github.com/san-kum/dimerlab/internal/potential"
	"github.com/san-kum/dimerlab/internal/sweep"
)

// expPair decays exponentially and declares a generous cutoff.
type expPair struct {
	scale float64
	rc    float64
}

func (p expPair) Energy(r float64) float64 { return math.Exp(-r / p.scale) }
func (p expPair) Deriv(r float64) float64  { return -math.Exp(-r/p.scale) / p.scale }
func (p expPair) Cutoff() float64          { return p.rc }

type brokenForces struct{ calc.Calculator }

func (b brokenForces) Unwrap() calc.Calculator { return b.Calculator }

func (brokenForces) Forces(context.Context, *geom.Geometry) ([]geom.Vec3, error) {
	return nil, errors.New("engine crashed")
}

func TestAdjustedCutoff_ConvergesBeforeNominal(t *testing.T) {
	c := calc.NewPair(expPair{scale: 1.0, rc: 10})

	res, err := NewEstimator().AdjustedCutoff(context.Background(), c, 1e-6)
	require.NoError(t, err)

	assert.Equal(t, 10.0, res.Nominal)
	assert.Greater(t, res.Cutoff, 5.0)
	assert.Less(t, res.Cutoff, 10.0)
	assert.Equal(t, res.Curve.R[res.Index], res.Cutoff)
	assert.Equal(t, sweep.DefaultCutoffPoints, res.Curve.Len())
}

func TestAdjustedCutoff_StricterToleranceNeverDecreases(t *testing.T) {
	c := calc.NewPair(expPair{scale: 1.0, rc: 10})
	est := NewEstimator()

	prev := 0.0
	for _, tol := range []float64{1e-4, 1e-5, 1e-6, 5e-7, 2e-7} {
		res, err := est.AdjustedCutoff(context.Background(), c, tol)
		require.NoError(t, err, "tol=%g", tol)
		assert.GreaterOrEqual(t, res.Cutoff, prev, "tol=%g", tol)
		prev = res.Cutoff
	}
}

func TestAdjustedCutoff_SmoothIBS(t *testing.T) {
	p := potential.DefaultIdealBrittleSolid()
	c := calc.NewPair(potential.Smooth(p))

	res, err := NewEstimator().AdjustedCutoff(context.Background(), c, 1e-4)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Cutoff, 0.6)
	assert.LessOrEqual(t, res.Cutoff, p.Rc)
}

func TestAdjustedCutoff_NotConverged(t *testing.T) {
	// the bare IBS force grows linearly up to rc and never flattens
	c := calc.NewPair(potential.DefaultIdealBrittleSolid())
	est := NewEstimator()
	est.Points = 50

	res, err := est.AdjustedCutoff(context.Background(), c, 1e-6)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, converge.ErrNotConverged)
}

func TestAdjustedCutoff_NominalOverride(t *testing.T) {
	c := calc.NewPair(expPair{scale: 1.0, rc: 100})
	est := NewEstimator()
	est.Nominal = 8

	res, err := est.AdjustedCutoff(context.Background(), c, 1e-5)
	require.NoError(t, err)
	assert.Equal(t, 8.0, res.Nominal)
	assert.Equal(t, 4.0, res.Curve.R[0])
}

func TestAdjustedCutoff_NoNominal(t *testing.T) {
	_, err := NewEstimator().AdjustedCutoff(context.Background(), &calc.Exec{Command: "true"}, 1e-6)
	assert.ErrorIs(t, err, ErrNoNominalCutoff)
}

func TestAdjustedCutoff_CalculatorFailure(t *testing.T) {
	c := brokenForces{calc.NewPair(potential.DefaultIdealBrittleSolid())}

	_, err := NewEstimator().AdjustedCutoff(context.Background(), c, 1e-6)
	var ce *sweep.CalculatorError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 0, ce.Index)
	assert.Equal(t, 0.6, ce.R)
	assert.NotErrorIs(t, err, ErrNoNominalCutoff)
}

func TestAdjustedCutoff_WindowDetector(t *testing.T) {
	c := calc.NewPair(expPair{scale: 1.0, rc: 10})
	est := NewEstimator()
	est.Detector = converge.Window{Size: 10}
	est.Evaluator = sweep.NewEvaluator(sweep.WithWorkers(4))

	res, err := est.AdjustedCutoff(context.Background(), c, 1e-6)
	require.NoError(t, err)
	assert.Less(t, res.Cutoff, 10.0)
}
