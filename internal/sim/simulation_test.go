package sim_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rxnsim/internal/chem"
	"github.com/san-kum/rxnsim/internal/dsl"
	"github.com/san-kum/rxnsim/internal/sim"
)

func mustParse(chemicals, reactions, additions string) *sim.Simulation {
	s, err := dsl.ParseSimulation(chemicals, reactions, additions)
	Expect(err).NotTo(HaveOccurred())
	return s
}

func lookup(s *sim.Simulation, name string) chem.Chemical {
	c, ok := s.Registry().Lookup(name)
	Expect(ok).To(BeTrue(), "chemical %s", name)
	return c
}

var _ = Describe("Simulation", func() {
	Describe("Step", func() {
		It("rejects non-positive and non-finite step sizes", func() {
			s := mustParse("A 1", "", "")
			for _, dt := range []float64{0, -0.1, math.NaN(), math.Inf(1)} {
				Expect(s.Step(dt)).To(MatchError(sim.ErrInvalidStep))
			}
			Expect(s.Elapsed()).To(BeZero())
		})

		It("advances the clock by dt", func() {
			s := mustParse("A 1", "", "")
			Expect(s.Step(0.25)).To(Succeed())
			Expect(s.Step(0.25)).To(Succeed())
			Expect(s.Elapsed()).To(Equal(0.5))
		})

		It("applies forward and backward rates from the pre-step state", func() {
			s := mustParse("A 1\nB 0.5", "A -> B ; Kfwd = 2 ; Kequ = 4", "")
			a, b := lookup(s, "A"), lookup(s, "B")

			// fwd = 2*1, bwd = 0.5*0.5, net = 1.75
			Expect(s.Step(0.1)).To(Succeed())
			Expect(s.Concentration(a)).To(BeNumerically("~", 1-0.175, 1e-12))
			Expect(s.Concentration(b)).To(BeNumerically("~", 0.5+0.175, 1e-12))
		})

		It("never lets a concentration go negative", func() {
			s := mustParse("A 1\nB\nC", "2 A -> B ; Kfwd = 100 ; Kequ = 10\nB -> C ; Kfwd = 50 ; Kequ = 1", "A -3 t = 0.2")
			for i := 0; i < 50; i++ {
				Expect(s.Step(0.1)).To(Succeed())
				for _, c := range s.Chemicals() {
					Expect(s.Concentration(c)).To(BeNumerically(">=", 0), "%s at step %d", c.Name(), i)
				}
			}
		})

		It("stays non-negative when an oversized step overflows", func() {
			s := mustParse("A 10\nB", "2 A -> B ; Kfwd = 1 ; Kequ = 1", "")
			for i := 0; i < 40; i++ {
				Expect(s.Step(10)).To(Succeed())
				for _, c := range s.Chemicals() {
					v := s.Concentration(c)
					Expect(math.IsNaN(v)).To(BeFalse(), "%s at step %d", c.Name(), i)
					Expect(v).To(BeNumerically(">=", 0), "%s at step %d", c.Name(), i)
				}
			}
		})

		It("does not depend on the order reactions are declared", func() {
			first := mustParse("A 1\nB 0.3\nC", "A -> B ; Kfwd = 3 ; Kequ = 2\nB -> C ; Kfwd = 5 ; Kequ = 7", "")
			second := mustParse("A 1\nB 0.3\nC", "B -> C ; Kfwd = 5 ; Kequ = 7\nA -> B ; Kfwd = 3 ; Kequ = 2", "")

			Expect(first.Step(0.01)).To(Succeed())
			Expect(second.Step(0.01)).To(Succeed())
			Expect(first.Snapshot()).To(Equal(second.Snapshot()))
		})
	})

	Describe("additions", func() {
		It("fires once on the first step that passes its time", func() {
			s := mustParse("X", "", "X 1.0 t = 0.5")
			x := lookup(s, "X")

			fired := 0
			for i := 0; i < 20; i++ {
				before := s.Concentration(x)
				Expect(s.Step(0.1)).To(Succeed())
				after := s.Concentration(x)

				switch {
				case s.Elapsed() <= 0.5:
					Expect(after).To(Equal(before))
				case after != before:
					fired++
					Expect(after - before).To(BeNumerically("~", 1.0, 1e-12))
					Expect(s.Elapsed()).To(BeNumerically("~", 0.6, 1e-9))
				}
			}
			Expect(fired).To(Equal(1))
			Expect(s.Pending()).To(BeEmpty())
		})

		It("fires additions due in the same step together, in declaration order", func() {
			s := mustParse("X 1\nY", "", "Y 2 t = 0.05\nX -5 t = 0.01\nX 3 t = 0.02\nY 1 t = 4")
			x, y := lookup(s, "X"), lookup(s, "Y")

			pending := s.Pending()
			Expect(pending).To(HaveLen(4))
			Expect(pending[1].Amount).To(Equal(-5.0))
			Expect(pending[2].Amount).To(Equal(3.0))

			Expect(s.Step(0.1)).To(Succeed())
			Expect(s.Concentration(x)).To(BeZero())
			Expect(s.Concentration(y)).To(Equal(2.0))
			Expect(s.Pending()).To(HaveLen(1))
			Expect(s.Pending()[0].Time).To(Equal(4.0))
		})

		It("fires a time-zero addition on the first step", func() {
			s := mustParse("X", "", "X 2")
			Expect(s.Concentration(lookup(s, "X"))).To(BeZero())
			Expect(s.Step(0.001)).To(Succeed())
			Expect(s.Concentration(lookup(s, "X"))).To(Equal(2.0))
		})
	})

	Describe("equilibrium", func() {
		It("drives [B]/[A] to K and stays there", func() {
			s := mustParse("A 1\nB", "A -> B ; Kfwd = 1 ; Kequ = 4", "")
			a, b := lookup(s, "A"), lookup(s, "B")

			for i := 0; i < 20000; i++ {
				Expect(s.Step(0.001)).To(Succeed())
			}
			Expect(s.Concentration(b) / s.Concentration(a)).To(BeNumerically("~", 4, 1e-6))

			for i := 0; i < 5000; i++ {
				Expect(s.Step(0.001)).To(Succeed())
			}
			Expect(s.Concentration(b) / s.Concentration(a)).To(BeNumerically("~", 4, 1e-6))
			Expect(s.Concentration(a) + s.Concentration(b)).To(BeNumerically("~", 1, 1e-9))
		})
	})

	Describe("neutralization", func() {
		It("consumes reactants and shows the NaOH addition after t = 0.5", func() {
			s := mustParse(
				"H2SO4 1.0 #\nNaOH 1.0 #\nNa2SO4\nH2O #",
				"H2SO4 + 2 NaOH -> Na2SO4 + 2 H2O ; Kfwd = 6.0 ; Kequ = 5.0e7",
				"NaOH 1.0 t = 0.5",
			)
			tracked := dsl.TrackedChemicals("H2SO4 1.0 #\nNaOH 1.0 #\nNa2SO4\nH2O #", s.Chemicals())
			Expect(tracked).To(HaveLen(3))

			res, err := sim.Run(ctx(), s, append(tracked, lookup(s, "Na2SO4")), sim.Config{Dt: 0.001, Duration: 1.0})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Times).To(HaveLen(1001))

			h2so4, _ := res.Lookup("H2SO4")
			naoh, _ := res.Lookup("NaOH")
			h2o, _ := res.Lookup("H2O")
			na2so4, _ := res.Lookup("Na2SO4")

			Expect(h2so4.Values[1000]).To(BeNumerically("<", h2so4.Values[0]))
			Expect(naoh.Values[500]).To(BeNumerically("<", 0.5))
			Expect(h2o.Values[1000]).To(BeNumerically(">", h2o.Values[500]))
			Expect(na2so4.Values[1000]).To(BeNumerically(">", 0.3))

			jump, at := 0.0, 0
			for i := 1; i < len(naoh.Values); i++ {
				if d := naoh.Values[i] - naoh.Values[i-1]; d > jump {
					jump, at = d, i
				}
			}
			Expect(jump).To(BeNumerically(">", 0.9))
			Expect(res.Times[at]).To(BeNumerically(">", 0.5))
			Expect(res.Times[at]).To(BeNumerically("<", 0.503))
		})
	})

	Describe("Clone", func() {
		It("evolves identically and independently", func() {
			s := mustParse("A 1\nB\nC 0.2", "A + C -> B ; Kfwd = 4 ; Kequ = 3", "C 1 t = 0.01")
			c := s.Clone()

			for i := 0; i < 100; i++ {
				Expect(s.Step(0.001)).To(Succeed())
				Expect(c.Step(0.001)).To(Succeed())
			}
			Expect(c.Snapshot()).To(Equal(s.Snapshot()))
			Expect(c.Elapsed()).To(Equal(s.Elapsed()))

			Expect(c.Step(0.001)).To(Succeed())
			Expect(c.Elapsed()).NotTo(Equal(s.Elapsed()))
		})
	})

	Describe("foreign chemicals", func() {
		It("reports zero and ignores additions", func() {
			s := mustParse("A 1", "", "")
			other := chem.NewRegistry()
			ghost, err := other.Register("Ghost")
			Expect(err).NotTo(HaveOccurred())

			Expect(s.Concentration(ghost)).To(BeZero())
			s.AddChemical(ghost, 5)
			Expect(s.Snapshot()).To(Equal(sim.State{1}))
			Expect(s.ScheduleAddition(chem.Addition{Chemical: ghost, Amount: 1})).To(MatchError(sim.ErrForeignChemical))
		})

		It("clamps AddChemical at zero", func() {
			s := mustParse("A 1", "", "")
			a := lookup(s, "A")
			s.AddChemical(a, -4)
			Expect(s.Concentration(a)).To(BeZero())
		})
	})
})
