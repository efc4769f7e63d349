package potential

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("cutoff functions", func() {
	Describe("SplineTaper", func() {
		taper := &SplineTaper{Inner: 0.5, Outer: 1.5}

		It("is one inside and zero outside", func() {
			Expect(taper.Value(0.2)).To(Equal(1.0))
			Expect(taper.Value(0.5)).To(Equal(1.0))
			Expect(taper.Value(1.5)).To(Equal(0.0))
			Expect(taper.Value(2.0)).To(Equal(0.0))
		})

		It("is half way down at the midpoint", func() {
			Expect(taper.Value(1.0)).To(BeNumerically("~", 0.5, 1e-12))
		})

		It("decays monotonically with zero slope at both ends", func() {
			prev := 1.0
			for r := 0.5; r <= 1.5; r += 0.01 {
				v := taper.Value(r)
				Expect(v).To(BeNumerically("<=", prev+1e-12))
				prev = v
			}
			Expect(taper.Deriv(0.5 + 1e-9)).To(BeNumerically("~", 0, 1e-6))
			Expect(taper.Deriv(1.5 - 1e-9)).To(BeNumerically("~", 0, 1e-6))
		})

		It("has a derivative consistent with finite differences", func() {
			h := 1e-6
			for _, r := range []float64{0.6, 0.9, 1.2, 1.4} {
				fd := (taper.Value(r+h) - taper.Value(r-h)) / (2 * h)
				Expect(taper.Deriv(r)).To(BeNumerically("~", fd, 1e-6))
			}
		})

		It("rejects an empty range", func() {
			Expect((&SplineTaper{Inner: 1, Outer: 1}).Validate()).To(MatchError(ErrInvalidParams))
		})
	})

	Describe("Step", func() {
		It("cuts hard at the boundary", func() {
			s := &Step{At: 1.2}
			Expect(s.Value(1.19999)).To(Equal(1.0))
			Expect(s.Value(1.2)).To(Equal(0.0))
			Expect(s.Deriv(1.0)).To(Equal(0.0))
		})
	})

	Describe("Cutoffed", func() {
		p := DefaultIdealBrittleSolid()

		It("matches the bare potential below a stepped cutoff", func() {
			c := Stepped(p)
			Expect(c.Energy(0.9)).To(Equal(p.Energy(0.9)))
			Expect(c.Deriv(0.9)).To(Equal(p.Deriv(0.9)))
			Expect(c.Energy(1.2)).To(Equal(0.0))
		})

		It("goes smoothly to zero under the spline taper", func() {
			c := Smooth(p)
			Expect(c.Energy(p.Rc)).To(Equal(0.0))
			Expect(c.Deriv(p.Rc - 1e-9)).To(BeNumerically("~", 0, 1e-6))
		})

		It("uses the product rule for the derivative", func() {
			c := Smooth(p)
			h := 1e-6
			for _, r := range []float64{0.7, 0.95, 1.1} {
				fd := (c.Energy(r+h) - c.Energy(r-h)) / (2 * h)
				Expect(c.Deriv(r)).To(BeNumerically("~", fd, 1e-6))
			}
		})

		It("reports the tighter support as its cutoff", func() {
			c := &Cutoffed{Pot: p, Fn: &Step{At: 1.1}}
			Expect(c.Cutoff()).To(Equal(1.1))
			c = &Cutoffed{Pot: p, Fn: &Step{At: 3}}
			Expect(c.Cutoff()).To(Equal(p.Rc))
		})
	})
})
