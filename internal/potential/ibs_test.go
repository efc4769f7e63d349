package potential

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("IdealBrittleSolid", func() {
	It("vanishes exactly at the cutoff", func() {
		for _, p := range []*IdealBrittleSolid{
			{K: 1, A: 1, Rc: RealisticCutoff},
			{K: 1, A: 1, Rc: ReferenceMatchCutoff},
			{K: 3.7, A: 0.4, Rc: 0.93},
			{K: 0.01, A: 2.5, Rc: 7.1},
		} {
			Expect(p.Energy(p.Rc)).To(BeZero(), p.String())
		}
	})

	It("is zero beyond the cutoff", func() {
		p := DefaultIdealBrittleSolid()
		Expect(p.Energy(1.21)).To(BeZero())
		Expect(p.Energy(5.0)).To(BeZero())
		Expect(p.Deriv(1.21)).To(BeZero())
	})

	It("matches the shifted half-quadratic inside the cutoff", func() {
		p := DefaultIdealBrittleSolid()
		shift := 0.5 * 0.5 * 1 * (1.2 - 1) * (1.2 - 1)

		Expect(p.Energy(0.8)).To(BeNumerically("~", 0.5*0.5*1*(0.8-1)*(0.8-1)-shift, 1e-15))
		Expect(p.Energy(1.0)).To(BeNumerically("~", -shift, 1e-15))
		Expect(p.Energy(1.2)).To(Equal(0.0))
	})

	It("has its minimum at the equilibrium separation", func() {
		p := DefaultIdealBrittleSolid()
		Expect(p.Deriv(p.A)).To(BeZero())
		Expect(p.Deriv(0.9)).To(BeNumerically("<", 0))
		Expect(p.Deriv(1.1)).To(BeNumerically(">", 0))
	})

	DescribeTable("rejects invalid parameters",
		func(k, a, rc float64) {
			_, err := NewIdealBrittleSolid(k, a, rc)
			Expect(err).To(MatchError(ErrInvalidParams))
		},
		Entry("zero stiffness", 0.0, 1.0, 1.2),
		Entry("negative stiffness", -1.0, 1.0, 1.2),
		Entry("zero equilibrium", 1.0, 0.0, 1.2),
		Entry("cutoff below equilibrium", 1.0, 1.0, 0.9),
		Entry("cutoff equal to equilibrium", 1.0, 1.0, 1.0),
	)
})
