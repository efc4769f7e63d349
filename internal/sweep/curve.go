package sweep

type Kind string

const (
	KindEnergy  Kind = "energy"
	KindForceX1 Kind = "force_x1"
	KindForceX2 Kind = "force_x2"
)

// Curve pairs each separation with one scalar output. R and Values always
// have the same length.
type Curve struct {
	Kind   Kind      `json:"kind" yaml:"kind"`
	R      []float64 `json:"r" yaml:"r"`
	Values []float64 `json:"values" yaml:"values"`
}

func newCurve(kind Kind, s *Sweep) *Curve {
	return &Curve{Kind: kind, R: s.Distances(), Values: make([]float64, s.Len())}
}

func (c *Curve) Len() int { return len(c.R) }

// Bounds returns the smallest and largest value.
func (c *Curve) Bounds() (lo, hi float64) {
	if len(c.Values) == 0 {
		return 0, 0
	}
	lo, hi = c.Values[0], c.Values[0]
	for _, v := range c.Values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// Slice returns the sub-curve for r in [from, to].
func (c *Curve) Slice(from, to float64) *Curve {
	out := &Curve{Kind: c.Kind}
	for i, r := range c.R {
		if r >= from && r <= to {
			out.R = append(out.R, r)
			out.Values = append(out.Values, c.Values[i])
		}
	}
	return out
}
