package sim_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rxnsim/internal/sim"
)

func ctx() context.Context { return context.Background() }

type sampleCounter struct{ n int }

func (c *sampleCounter) Name() string                   { return "samples" }
func (c *sampleCounter) Observe(_ sim.State, _ float64) { c.n++ }
func (c *sampleCounter) Value() float64                 { return float64(c.n) }
func (c *sampleCounter) Reset()                         { c.n = 0 }

type cancelAfter struct {
	steps  int
	cancel context.CancelFunc
	seen   int
}

func (o *cancelAfter) OnStep(_ sim.State, _ float64) {
	o.seen++
	if o.seen == o.steps {
		o.cancel()
	}
}

var _ = Describe("Config", func() {
	DescribeTable("Steps covers the duration",
		func(dt, duration float64, steps int) {
			Expect(sim.Config{Dt: dt, Duration: duration}.Steps()).To(Equal(steps))
		},
		Entry("exact", 0.001, 1.0, 1000),
		Entry("inexact quotient", 0.1, 0.3, 3),
		Entry("remainder", 0.3, 1.0, 4),
		Entry("single step", 1.0, 1.0, 1),
	)

	DescribeTable("Validate",
		func(cfg sim.Config, ok bool) {
			err := cfg.Validate()
			if ok {
				Expect(err).NotTo(HaveOccurred())
			} else {
				Expect(err).To(MatchError(sim.ErrInvalidConfig))
			}
		},
		Entry("default", sim.DefaultConfig(), true),
		Entry("zero dt", sim.Config{Dt: 0, Duration: 1}, false),
		Entry("negative duration", sim.Config{Dt: 0.1, Duration: -1}, false),
		Entry("dt beyond duration", sim.Config{Dt: 2, Duration: 1}, false),
		Entry("step count at the limit", sim.Config{Dt: 1, Duration: sim.MaxSteps}, true),
		Entry("step count beyond the limit", sim.Config{Dt: 1e-9, Duration: 1}, false),
		Entry("step count overflowing int", sim.Config{Dt: 1e-300, Duration: 1}, false),
	)
})

var _ = Describe("Runner", func() {
	It("samples the start and every step", func() {
		s := mustParse("A 1 #\nB", "A -> B ; Kfwd = 1 ; Kequ = 1", "")
		counter := &sampleCounter{}

		res, err := sim.Run(ctx(), s, nil, sim.Config{Dt: 0.01, Duration: 0.5}, counter)
		Expect(err).NotTo(HaveOccurred())

		Expect(res.StepsTaken).To(Equal(50))
		Expect(res.Times).To(HaveLen(51))
		Expect(res.Times[0]).To(BeZero())
		Expect(res.Times[50]).To(BeNumerically("~", 0.5, 1e-9))
		Expect(res.Series).To(HaveLen(2))
		Expect(res.Series[0].Values).To(HaveLen(51))
		Expect(res.Series[0].Values[0]).To(Equal(1.0))
		Expect(res.Metrics).To(HaveKeyWithValue("samples", 51.0))

		final, ok := res.Final("B")
		Expect(ok).To(BeTrue())
		Expect(final).To(Equal(s.Concentration(lookup(s, "B"))))
	})

	It("samples only the requested chemicals", func() {
		s := mustParse("A 1\nB\nC", "", "")
		runner := sim.NewRunner(s, lookup(s, "C"))
		res, err := runner.Run(ctx(), sim.Config{Dt: 0.1, Duration: 0.2})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Series).To(HaveLen(1))
		Expect(res.Series[0].Name).To(Equal("C"))

		_, ok := res.Lookup("A")
		Expect(ok).To(BeFalse())
	})

	It("rejects an invalid config before stepping", func() {
		s := mustParse("A 1", "", "")
		_, err := sim.Run(ctx(), s, nil, sim.Config{Dt: 1, Duration: 0.5})
		Expect(err).To(MatchError(sim.ErrInvalidConfig))
		Expect(s.Elapsed()).To(BeZero())
	})

	It("rejects a step count too large to run", func() {
		s := mustParse("A 1", "", "")
		c, cancel := context.WithCancel(ctx())
		cancel()

		_, err := sim.Run(c, s, nil, sim.Config{Dt: 1e-300, Duration: 1})
		Expect(err).To(MatchError(sim.ErrInvalidConfig))
		Expect(s.Elapsed()).To(BeZero())
	})

	It("stops on cancellation and returns the partial result", func() {
		s := mustParse("A 1\nB", "A -> B ; Kfwd = 1 ; Kequ = 1", "")
		c, cancel := context.WithCancel(ctx())
		defer cancel()

		runner := sim.NewRunner(s)
		runner.AddObserver(&cancelAfter{steps: 10, cancel: cancel})

		res, err := runner.Run(c, sim.Config{Dt: 0.001, Duration: 1})
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(res.StepsTaken).To(Equal(10))
		Expect(res.Times).To(HaveLen(11))
	})

	It("continues from the current time", func() {
		s := mustParse("A 1", "", "")
		Expect(s.Step(0.5)).To(Succeed())

		res, err := sim.Run(ctx(), s, nil, sim.Config{Dt: 0.25, Duration: 0.5})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Times[0]).To(Equal(0.5))
		Expect(res.Times[2]).To(Equal(1.0))
	})
})

var _ = Describe("Ensemble", func() {
	It("runs one clone per config and keeps the base untouched", func() {
		base := mustParse("A 1 #\nB #", "A -> B ; Kfwd = 2 ; Kequ = 3", "B 1 t = 0.05")
		cfgs := []sim.Config{
			{Dt: 0.01, Duration: 0.1},
			{Dt: 0.001, Duration: 0.1},
			{Dt: 0.0001, Duration: 0.1},
		}

		e := sim.NewEnsemble(base)
		e.SetWorkers(2)
		e.WithMetrics(func() []sim.Metric { return []sim.Metric{&sampleCounter{}} })

		results, err := e.Run(ctx(), cfgs)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
		Expect(results[0].StepsTaken).To(Equal(10))
		Expect(results[1].StepsTaken).To(Equal(100))
		Expect(results[2].StepsTaken).To(Equal(1000))
		Expect(results[2].Metrics["samples"]).To(Equal(1001.0))

		Expect(base.Elapsed()).To(BeZero())
		Expect(base.Pending()).To(HaveLen(1))
	})

	It("matches a sequential run", func() {
		base := mustParse("A 1\nB", "A -> B ; Kfwd = 2 ; Kequ = 3", "")
		cfg := sim.Config{Dt: 0.001, Duration: 0.2}

		want, err := sim.Run(ctx(), base.Clone(), nil, cfg)
		Expect(err).NotTo(HaveOccurred())

		got, err := sim.Sweep(ctx(), base, nil, []sim.Config{cfg, cfg}, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(got[0].Series).To(Equal(want.Series))
		Expect(got[1].Series).To(Equal(want.Series))
	})

	It("fails fast on an invalid config", func() {
		base := mustParse("A 1", "", "")
		_, err := sim.Sweep(ctx(), base, nil, []sim.Config{{Dt: 0.1, Duration: 1}, {Dt: 0, Duration: 1}}, 1)
		Expect(err).To(MatchError(sim.ErrInvalidConfig))
	})
})
