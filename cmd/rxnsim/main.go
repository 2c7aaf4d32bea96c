package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/rxnsim/internal/config"
	"github.com/san-kum/rxnsim/internal/logging"
)

var (
	// global
	dataDir    string
	storeKind  string
	logLevel   string
	configFile string

	// run parameters
	preset   string
	dt       float64
	duration float64
	workers  int
	settle   float64
	dts      []float64

	// outputs
	csvOut   string
	jsonOut  string
	chartOut string
	output   string
	showPlot bool
	noSave   bool
	write    bool
	yamlOut  string

	cfg *config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "rxnsim",
		Short:         "reversible mass-action reaction simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&storeKind, "store", config.DefaultStore, "run store driver (file, sqlite)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")

	runCmd := &cobra.Command{
		Use:   "run [file|preset]",
		Short: "run a simulation and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runFlags(runCmd)
	runCmd.Flags().StringVar(&csvOut, "csv", "", "write the series to a CSV file")
	runCmd.Flags().StringVar(&jsonOut, "json", "", "write the run to a JSON file (- for stdout)")
	runCmd.Flags().StringVar(&chartOut, "chart", "", "render a PNG or SVG chart")
	runCmd.Flags().BoolVar(&showPlot, "plot", false, "plot the result in the terminal")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	checkCmd := &cobra.Command{
		Use:   "check [file]",
		Short: "parse a simulation file and summarise it",
		Args:  cobra.ExactArgs(1),
		RunE:  checkFile,
	}

	fmtCmd := &cobra.Command{
		Use:   "fmt [file]",
		Short: "print a simulation file in canonical form",
		Args:  cobra.ExactArgs(1),
		RunE:  formatFile,
	}
	fmtCmd.Flags().BoolVarP(&write, "write", "w", false, "rewrite the file in place")

	liveCmd := &cobra.Command{
		Use:   "live [file|preset]",
		Short: "step a simulation with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	runFlags(liveCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [file|preset]",
		Short: "run concurrently over several step sizes and compare",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	runFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&dts, "dts", []float64{0.01, 0.005, 0.001, 0.0005}, "step sizes")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0 = one per CPU)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file.yaml]",
		Short: "run a scripted sequence of simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "summarise a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&output, "output", "o", "", "output path (default <run_id>.csv)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&output, "output", "o", "", "output path, - for stdout (default <run_id>.json)")

	chartCmd := &cobra.Command{
		Use:   "chart [run_id]",
		Short: "render a stored run as a PNG or SVG chart",
		Args:  cobra.ExactArgs(1),
		RunE:  chartRun,
	}
	chartCmd.Flags().StringVarP(&output, "output", "o", "", "output path, .png or .svg (default <run_id>.png)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in simulations",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init [preset]",
		Short: "write a preset as a simulation file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initFile,
	}
	initCmd.Flags().StringVarP(&output, "output", "o", "", "output path (default <preset>.sim)")
	initCmd.Flags().StringVar(&yamlOut, "yaml", "", "also write a run config for the file")

	rootCmd.AddCommand(runCmd, checkCmd, fmtCmd, liveCmd, sweepCmd, scenarioCmd, listCmd, showCmd, plotCmd, exportCSVCmd, exportJSONCmd, chartCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", config.DefaultPreset, "built-in simulation")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Float64Var(&settle, "settle", config.DefaultSettle, "settling rate threshold")
}

// setup loads the config file, applies the global flags over it and
// installs the logger.
func setup(cmd *cobra.Command) error {
	cfg = config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("data") || cfg.Store.Path == "" {
		cfg.Store.Path = dataDir
	}
	if flags.Changed("store") || cfg.Store.Driver == "" {
		cfg.Store.Driver = storeKind
	}
	if flags.Changed("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel = logLevel
	}

	logging.Install(cfg.LogLevel, os.Stderr)
	return nil
}
