package experiment_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rxnsim/internal/config"
	"github.com/san-kum/rxnsim/internal/dsl"
	"github.com/san-kum/rxnsim/internal/experiment"
)

var isomerization = dsl.Source{
	Chemicals: "A 1.0 #\nB #",
	Reactions: "A -> B ; Kfwd = 2 ; Kequ = 3",
}

var _ = Describe("Experiment", func() {
	It("rejects invalid sources with the parse error", func() {
		_, err := experiment.New(experiment.Config{
			Name:     "broken",
			Source:   dsl.Source{Chemicals: "NaOH\nNaOH"},
			Dt:       0.01,
			Duration: 1,
		})
		Expect(err).To(MatchError(dsl.ErrDuplicateName))
		Expect(err.Error()).To(ContainSubstring("chemical #2"))
	})

	It("rejects invalid run configs", func() {
		_, err := experiment.New(experiment.Config{Source: isomerization, Dt: 2, Duration: 1})
		Expect(err).To(HaveOccurred())
	})

	It("tracks every chemical when none is marked", func() {
		exp, err := experiment.New(experiment.Config{
			Source:   dsl.Source{Chemicals: "A 1\nB\nC"},
			Dt:       0.1,
			Duration: 1,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(exp.Tracked()).To(HaveLen(3))
	})

	It("runs to equilibrium and records the standard metrics", func() {
		exp, err := experiment.New(experiment.Config{Name: "iso", Source: isomerization, Dt: 0.001, Duration: 5})
		Expect(err).NotTo(HaveOccurred())

		res, err := exp.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.StepsTaken).To(Equal(5000))

		a, _ := res.Final("A")
		b, _ := res.Final("B")
		Expect(b / a).To(BeNumerically("~", 3, 1e-3))

		Expect(res.Metrics).To(HaveKey("equilibrium_gap"))
		Expect(res.Metrics["equilibrium_gap"]).To(BeNumerically("<", 1e-3))
		Expect(res.Metrics["peak_A"]).To(Equal(1.0))
		Expect(res.Metrics["settling_time"]).To(BeNumerically(">", 0))
		Expect(res.Metrics["settling_time"]).To(BeNumerically("<", 5))
	})

	It("starts every run from the parsed initial state", func() {
		exp, err := experiment.New(experiment.Config{Source: isomerization, Dt: 0.01, Duration: 1})
		Expect(err).NotTo(HaveOccurred())

		first, err := exp.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		second, err := exp.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(second.Series).To(Equal(first.Series))
	})
})

var _ = Describe("FromConfig", func() {
	It("uses the preset when no file is given", func() {
		cfg := config.DefaultConfig()
		exp, err := experiment.FromConfig(cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(exp.Name).To(Equal("neutralization"))
		Expect(exp.Source).To(Equal(config.GetPreset("neutralization").Source))
	})

	It("loads a simulation file and names it after the file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "iso.sim")
		Expect(dsl.SaveFile(path, isomerization)).To(Succeed())

		cfg := config.DefaultConfig()
		cfg.Simulation = path
		exp, err := experiment.FromConfig(cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(exp.Name).To(Equal("iso"))
		Expect(exp.Source).To(Equal(isomerization))
	})

	It("fails on an unknown preset", func() {
		cfg := config.DefaultConfig()
		cfg.Preset = "nonexistent"
		_, err := experiment.FromConfig(cfg)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("RunSweep", func() {
	It("orders runs coarse to fine and shrinks the deviation", func() {
		exp, err := experiment.New(experiment.Config{Source: isomerization, Dt: 0.01, Duration: 1})
		Expect(err).NotTo(HaveOccurred())

		results, err := experiment.RunSweep(context.Background(), exp, []float64{0.001, 0.1, 0.01}, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))

		Expect(results[0].Dt).To(Equal(0.1))
		Expect(results[1].Dt).To(Equal(0.01))
		Expect(results[2].Dt).To(Equal(0.001))
		Expect(results[2].Deviation).To(BeZero())
		Expect(results[0].Deviation).To(BeNumerically(">", results[1].Deviation))
		Expect(results[0].Result.StepsTaken).To(Equal(10))
	})

	It("requires at least one step size", func() {
		exp, err := experiment.New(experiment.Config{Source: isomerization, Dt: 0.01, Duration: 1})
		Expect(err).NotTo(HaveOccurred())
		_, err = experiment.RunSweep(context.Background(), exp, nil, 1)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Scenario", func() {
	It("runs each step in order", func() {
		dir := GinkgoT().TempDir()
		simPath := filepath.Join(dir, "iso.sim")
		Expect(dsl.SaveFile(simPath, isomerization)).To(Succeed())

		scenarioPath := filepath.Join(dir, "scenario.yaml")
		Expect(os.WriteFile(scenarioPath, []byte(`name: study
description: preset then file
steps:
  - preset: dimerization
    duration: 0.5
  - simulation: `+simPath+`
    dt: 0.01
    duration: 0.2
`), 0644)).To(Succeed())

		sc, err := experiment.LoadScenario(scenarioPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(sc.Steps).To(HaveLen(2))

		results, err := experiment.RunScenario(context.Background(), sc)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(2))
		Expect(results[0].Config.Name).To(Equal("dimerization"))
		Expect(results[0].Result.StepsTaken).To(Equal(500))
		Expect(results[1].Config.Name).To(Equal("iso"))
		Expect(results[1].Result.StepsTaken).To(Equal(20))
	})

	It("stops at the first failing step", func() {
		sc := &experiment.Scenario{Steps: []experiment.ScenarioStep{
			{Preset: "isomerization", Duration: 0.1},
			{Preset: "nonexistent"},
		}}
		results, err := experiment.RunScenario(context.Background(), sc)
		Expect(err).To(MatchError(ContainSubstring("step 2")))
		Expect(results).To(HaveLen(1))
	})
})
