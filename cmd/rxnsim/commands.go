package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/rxnsim/internal/config"
	"github.com/san-kum/rxnsim/internal/dsl"
	"github.com/san-kum/rxnsim/internal/experiment"
	"github.com/san-kum/rxnsim/internal/export"
	"github.com/san-kum/rxnsim/internal/sim"
	"github.com/san-kum/rxnsim/internal/storage"
	"github.com/san-kum/rxnsim/internal/viz"
)

func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// resolve picks the simulation for a run command. The argument is a file
// path, or a preset name when no such file exists. Preset step size and
// duration apply unless a config file is given; changed flags override both.
func resolve(cmd *cobra.Command, args []string) (experiment.Config, error) {
	flags := cmd.Flags()
	run := *cfg

	if flags.Changed("preset") {
		run.Preset = preset
		run.Simulation = ""
	}
	if len(args) == 1 {
		if _, err := os.Stat(args[0]); err != nil && config.GetPreset(args[0]) != nil {
			run.Preset = args[0]
			run.Simulation = ""
		} else {
			run.Simulation = args[0]
		}
	}

	if run.Simulation == "" && (configFile == "" || flags.Changed("preset") || len(args) == 1) {
		if p := config.GetPreset(run.Preset); p != nil {
			p.Apply(&run)
		}
	}

	if flags.Changed("dt") {
		run.Dt = dt
	}
	if flags.Changed("time") {
		run.Duration = duration
	}
	if flags.Changed("settle") {
		run.Settle = settle
	}
	if flags.Changed("workers") {
		run.Workers = workers
	}

	if err := run.Validate(); err != nil {
		return experiment.Config{}, err
	}
	*cfg = run
	return experiment.FromConfig(&run)
}

func openStore() (storage.Store, error) {
	return storage.Open(cfg.Store.Driver, cfg.Store.Path)
}

func save(name string, run sim.Config, res *sim.Result, src dsl.Source) (string, error) {
	st, err := openStore()
	if err != nil {
		return "", err
	}
	defer st.Close()
	return st.Save(storage.RunMetadata{Source: name, Dt: run.Dt, Duration: run.Duration}, res, src)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func runSimulation(cmd *cobra.Command, args []string) error {
	ec, err := resolve(cmd, args)
	if err != nil {
		return err
	}
	exp, err := experiment.New(ec)
	if err != nil {
		return err
	}

	ctx, stop := interruptible()
	defer stop()

	fmt.Printf("running %s (dt %g, duration %g)...\n", ec.Name, ec.Dt, ec.Duration)
	start := time.Now()
	res, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	slog.Debug("run finished", "simulation", ec.Name, "steps", res.StepsTaken, "elapsed", time.Since(start))

	fmt.Printf("completed in %v\n", time.Since(start).Round(time.Microsecond))
	fmt.Print(viz.Summary(res))

	if showPlot {
		graph, err := viz.Plot(res, viz.DefaultPlotOptions())
		if err != nil {
			return err
		}
		fmt.Println(graph)
	}

	if err := writeOutputs(ec, res); err != nil {
		return err
	}

	if noSave {
		return nil
	}
	id, err := save(ec.Name, ec.Run(), res, ec.Source)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", id)
	return nil
}

func writeOutputs(ec experiment.Config, res *sim.Result) error {
	if path := firstNonEmpty(csvOut, cfg.Output.CSV); path != "" {
		if err := export.ExportCSV(path, res); err != nil {
			return fmt.Errorf("export csv: %w", err)
		}
		slog.Info("wrote csv", "path", path)
	}
	if path := firstNonEmpty(jsonOut, cfg.Output.JSON); path != "" {
		if err := export.ExportJSON(path, export.NewDocument(ec.Name, ec.Run(), res)); err != nil {
			return fmt.Errorf("export json: %w", err)
		}
		slog.Info("wrote json", "path", path)
	}
	if path := firstNonEmpty(chartOut, cfg.Output.Chart); path != "" {
		opts := export.DefaultChartOptions()
		opts.Title = ec.Name
		if err := export.ExportChart(path, res, opts); err != nil {
			return fmt.Errorf("export chart: %w", err)
		}
		slog.Info("wrote chart", "path", path)
	}
	return nil
}

func checkFile(cmd *cobra.Command, args []string) error {
	src, err := dsl.LoadFile(args[0])
	if err != nil {
		return err
	}
	m, err := dsl.ParseSource(src)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	tracked := make([]string, 0)
	for _, c := range m.TrackedChemicals() {
		tracked = append(tracked, c.Name())
	}

	fmt.Printf("%s: ok\n", args[0])
	fmt.Printf("  chemicals: %d (tracked: %s)\n", m.Registry.Len(), strings.Join(tracked, ", "))
	fmt.Printf("  reactions: %d\n", len(m.Reactions))
	for _, r := range m.Reactions {
		fmt.Printf("    %s\n", dsl.FormatReaction(r))
	}
	fmt.Printf("  additions: %d\n", len(m.Additions))
	for _, a := range m.Additions {
		fmt.Printf("    %s\n", dsl.FormatAddition(a))
	}
	return nil
}

func formatFile(cmd *cobra.Command, args []string) error {
	src, err := dsl.LoadFile(args[0])
	if err != nil {
		return err
	}
	m, err := dsl.ParseSource(src)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	out := dsl.Format(m)
	if write {
		return dsl.SaveFile(args[0], out)
	}
	_, err = out.WriteTo(os.Stdout)
	return err
}

func runLive(cmd *cobra.Command, args []string) error {
	ec, err := resolve(cmd, args)
	if err != nil {
		return err
	}
	exp, err := experiment.New(ec)
	if err != nil {
		return err
	}
	s, err := exp.Simulation()
	if err != nil {
		return err
	}
	return viz.RunLive(viz.NewLive(s, exp.Tracked(), ec.Run(), ec.Name))
}

func runSweep(cmd *cobra.Command, args []string) error {
	ec, err := resolve(cmd, args)
	if err != nil {
		return err
	}
	exp, err := experiment.New(ec)
	if err != nil {
		return err
	}

	ctx, stop := interruptible()
	defer stop()

	fmt.Printf("sweeping %s over %d step sizes...\n", ec.Name, len(dts))
	results, err := experiment.RunSweep(ctx, exp, dts, cfg.Workers)
	if err != nil {
		return err
	}
	fmt.Println(viz.SweepTable(results))
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := experiment.LoadScenario(args[0])
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}

	ctx, stop := interruptible()
	defer stop()

	fmt.Printf("scenario %s: %d steps\n", firstNonEmpty(sc.Name, args[0]), len(sc.Steps))
	results, runErr := experiment.RunScenario(ctx, sc)
	for i, r := range results {
		fmt.Println(viz.Title.Render(fmt.Sprintf("step %d: %s", i+1, r.Config.Name)))
		fmt.Print(viz.Summary(r.Result))
		if r.Step.SaveAs == "" {
			continue
		}
		id, err := save(r.Step.SaveAs, r.Config.Run(), r.Result, r.Config.Source)
		if err != nil {
			return err
		}
		fmt.Printf("saved as %s: %s\n", r.Step.SaveAs, id)
	}
	return runErr
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List()
	if err != nil {
		return err
	}
	fmt.Println(viz.RunTable(runs))
	return nil
}

func loadRun(id string) (*storage.RunMetadata, *sim.Result, error) {
	st, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	defer st.Close()

	meta, err := st.Load(id)
	if err != nil {
		return nil, nil, err
	}
	res, err := st.LoadResult(id)
	if err != nil {
		return nil, nil, err
	}
	res.Metrics = meta.Metrics
	return meta, res, nil
}

func showRun(cmd *cobra.Command, args []string) error {
	meta, res, err := loadRun(args[0])
	if err != nil {
		return err
	}
	fmt.Println(viz.Title.Render(meta.ID + "  " + meta.Source))
	fmt.Printf("%s dt %g, duration %g\n", meta.Timestamp.Format("2006-01-02 15:04:05"), meta.Dt, meta.Duration)
	fmt.Print(viz.Summary(res))
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, res, err := loadRun(args[0])
	if err != nil {
		return err
	}
	opts := viz.DefaultPlotOptions()
	opts.Caption = fmt.Sprintf("%s (%s)", meta.Source, meta.ID)
	graph, err := viz.Plot(res, opts)
	if err != nil {
		return err
	}
	fmt.Println(graph)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, res, err := loadRun(args[0])
	if err != nil {
		return err
	}
	path := firstNonEmpty(output, args[0]+".csv")
	if err := export.ExportCSV(path, res); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", path)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, res, err := loadRun(args[0])
	if err != nil {
		return err
	}
	doc := export.NewDocument(meta.Source, sim.Config{Dt: meta.Dt, Duration: meta.Duration}, res)
	doc.ID = meta.ID

	path := firstNonEmpty(output, args[0]+".json")
	if err := export.ExportJSON(path, doc); err != nil {
		return err
	}
	if path != "-" {
		fmt.Printf("exported to %s\n", path)
	}
	return nil
}

func chartRun(cmd *cobra.Command, args []string) error {
	meta, res, err := loadRun(args[0])
	if err != nil {
		return err
	}
	opts := export.DefaultChartOptions()
	opts.Title = meta.Source

	path := firstNonEmpty(output, args[0]+".png")
	if err := export.ExportChart(path, res, opts); err != nil {
		return err
	}
	fmt.Printf("rendered %s\n", path)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	names := config.ListPresets()
	presets := make([]*config.Preset, len(names))
	for i, name := range names {
		presets[i] = config.GetPreset(name)
	}
	fmt.Println(viz.PresetTable(presets))
	return nil
}

func initFile(cmd *cobra.Command, args []string) error {
	name := config.DefaultPreset
	if len(args) == 1 {
		name = args[0]
	}
	p := config.GetPreset(name)
	if p == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
	}

	path := firstNonEmpty(output, name+".sim")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := dsl.SaveFile(path, p.Source); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)

	if yamlOut == "" {
		return nil
	}
	run := config.DefaultConfig()
	run.Simulation = path
	run.Preset = ""
	run.Dt, run.Duration = p.Dt, p.Duration
	if err := config.Save(yamlOut, run); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", yamlOut)
	return nil
}
