package elastic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/dimerlab/internal/potential"
)

func TestYoungsModulus(t *testing.T) {
	assert.InDelta(t, 2.1651, YoungsModulus(1.0, 1.0), 1e-4)
	assert.InDelta(t, 5*math.Sqrt(3)/4, YoungsModulus(1.0, 1.0), 1e-15)
	assert.InDelta(t, 2*YoungsModulus(1.0, 1.0), YoungsModulus(2.0, 1.0), 1e-12)
	assert.InDelta(t, YoungsModulus(1.0, 1.0)/2, YoungsModulus(1.0, 2.0), 1e-12)
}

func TestPoissonRatio(t *testing.T) {
	assert.Equal(t, 0.25, PoissonRatio())
}

func TestFromModuli(t *testing.T) {
	c, err := FromModuli(1.0, 0.25)
	require.NoError(t, err)

	assert.InDelta(t, 0.6667, c.K, 1e-4)
	assert.InDelta(t, 0.4, c.C44, 1e-12)
	assert.InDelta(t, 1.2, c.C11, 1e-12)
	assert.InDelta(t, 0.4, c.C12, 1e-12)
	assert.InDelta(t, 2*c.C44, c.C11-c.C12, 1e-12)
}

func TestFromModuli_InvalidDomain(t *testing.T) {
	tests := []struct {
		name string
		e    float64
		nu   float64
	}{
		{"incompressible", 1.0, 0.5},
		{"above incompressible", 1.0, 0.7},
		{"lower bound", 1.0, -1.0},
		{"nan nu", 1.0, math.NaN()},
		{"inf E", math.Inf(1), 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := FromModuli(tt.e, tt.nu)
			require.ErrorIs(t, err, ErrInvalidElasticDomain)
			assert.False(t, math.IsInf(c.K, 0))
		})
	}
}

func TestForIBS(t *testing.T) {
	c, err := ForIBS(potential.DefaultIdealBrittleSolid())
	require.NoError(t, err)

	e := 5 * math.Sqrt(3) / 4
	assert.InDelta(t, e, c.E, 1e-12)
	assert.Equal(t, 0.25, c.Nu)
	assert.InDelta(t, e/1.5, c.K, 1e-12)

	_, err = ForIBS(&potential.IdealBrittleSolid{K: 1, A: 1, Rc: 0.5})
	require.ErrorIs(t, err, potential.ErrInvalidParams)
}
