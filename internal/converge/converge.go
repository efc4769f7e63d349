// Package converge finds where a numeric sequence stops changing.
//
// A [Detector] returns the first index from which a trailing statistic stays
// within a tolerance through the end of the sequence. [TailMean] is the
// default; [Window] smooths with a fixed-width running mean instead.
//
// Sequences that never settle return [ErrNotConverged]. Detectors never fall
// back to the last index.
package converge

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNotConverged     = errors.New("converge: sequence did not converge within tolerance")
	ErrInvalidTolerance = errors.New("converge: tolerance must be positive and finite")
)

type Detector interface {
	// Detect returns the converged value and the index where convergence
	// begins.
	Detect(seq []float64, tol float64) (value float64, index int, err error)
}

// TailMean compares means of successive tails, m_i = mean(seq[i:]). The
// converged index is the smallest i with |m_j - m_{j+1}| < tol for every
// j >= i. Lowering tol never moves the index towards the start.
type TailMean struct{}

func (TailMean) Detect(seq []float64, tol float64) (float64, int, error) {
	if err := checkTolerance(tol); err != nil {
		return 0, 0, err
	}
	n := len(seq)
	if n < 2 {
		return 0, 0, fmt.Errorf("%w: need at least 2 points, got %d", ErrNotConverged, n)
	}

	means := make([]float64, n)
	sum := 0.0
	for i := n - 1; i >= 0; i-- {
		sum += seq[i]
		means[i] = sum / float64(n-i)
	}

	idx, err := scanFromEnd(means, tol)
	if err != nil {
		return 0, 0, err
	}
	return means[idx], idx, nil
}

// Window compares running means over Size consecutive points. The index
// returned refers to the first point of the first stable window.
type Window struct {
	Size int
}

func (w Window) Detect(seq []float64, tol float64) (float64, int, error) {
	if err := checkTolerance(tol); err != nil {
		return 0, 0, err
	}
	size := w.Size
	if size < 1 {
		size = 1
	}
	n := len(seq) - size + 1
	if n < 2 {
		return 0, 0, fmt.Errorf("%w: need at least %d points, got %d", ErrNotConverged, size+1, len(seq))
	}

	means := make([]float64, n)
	sum := 0.0
	for i := 0; i < size; i++ {
		sum += seq[i]
	}
	means[0] = sum / float64(size)
	for i := 1; i < n; i++ {
		sum += seq[i+size-1] - seq[i-1]
		means[i] = sum / float64(size)
	}

	idx, err := scanFromEnd(means, tol)
	if err != nil {
		return 0, 0, err
	}
	return means[idx], idx, nil
}

// scanFromEnd walks inward from the end while successive statistics agree
// and returns the first index of the stable run.
func scanFromEnd(stat []float64, tol float64) (int, error) {
	n := len(stat)
	idx := n - 1
	for j := n - 2; j >= 0; j-- {
		d := math.Abs(stat[j] - stat[j+1])
		if !(d < tol) {
			break
		}
		idx = j
	}
	if idx == n-1 {
		return 0, fmt.Errorf("%w: tail differs by %g (tol %g)",
			ErrNotConverged, math.Abs(stat[n-2]-stat[n-1]), tol)
	}
	return idx, nil
}

func checkTolerance(tol float64) error {
	if math.IsNaN(tol) || math.IsInf(tol, 0) || tol <= 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidTolerance, tol)
	}
	return nil
}

// ByName resolves the detector names used in config files. window is only
// read for "window".
func ByName(name string, window int) (Detector, error) {
	switch name {
	case "", "tail_mean":
		return TailMean{}, nil
	case "window":
		if window < 1 {
			return nil, fmt.Errorf("converge: window detector needs a positive size, got %d", window)
		}
		return Window{Size: window}, nil
	default:
		return nil, fmt.Errorf("unknown detector: %s", name)
	}
}
