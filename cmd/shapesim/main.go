package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/shapesim/internal/config"
	"github.com/san-kum/shapesim/internal/storage"
)

var (
	dataDir    string
	configFile string
	preset     string

	// plant
	m1        float64
	m2        float64
	stiffness float64

	// move
	distance  float64
	maxAccel  float64
	maxVel    float64
	startTime float64

	// shaper
	shaperType string
	shaperFreq float64
	damping    float64

	// grid and solver
	dt         float64
	duration   float64
	integrator string
	absTol     float64
	relTol     float64

	// sweep and output
	minDistance    float64
	maxDistance    float64
	samples        int
	workers        int
	includeShaper  bool
	showProgress   bool
	pngPath        string
	quiet          bool
	noSave         bool
	queryTime      float64
	freqLo         float64
	freqHi         float64
	freqSteps      int
	dampingValues  []float64
	objective      string
	phaseDeflected bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "shapesim",
		Short:        "input shaping and residual vibration lab for a two-mass system",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")

	accelCmd := &cobra.Command{
		Use:   "accel",
		Short: "show the commanded acceleration profile",
		RunE:  showAccel,
	}
	addMoveFlags(accelCmd)
	addShaperFlags(accelCmd)
	accelCmd.Flags().Float64Var(&queryTime, "at", -1, "evaluate the command at a single time")

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "simulate one move and report its residual vibration",
		RunE:  runSimulation,
	}
	addPlantFlags(simulateCmd)
	addMoveFlags(simulateCmd)
	addShaperFlags(simulateCmd)
	addSolverFlags(simulateCmd)
	simulateCmd.Flags().StringVar(&pngPath, "png", "", "write a trajectory plot to this file")
	simulateCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "residual vibration versus move distance",
		RunE:  runSweep,
	}
	addPlantFlags(sweepCmd)
	addMoveFlags(sweepCmd)
	addShaperFlags(sweepCmd)
	addSolverFlags(sweepCmd)
	addSweepFlags(sweepCmd)
	sweepCmd.Flags().BoolVar(&showProgress, "progress", false, "show a live progress view")
	sweepCmd.Flags().StringVar(&pngPath, "png", "", "write a sweep plot to this file")
	sweepCmd.Flags().BoolVar(&quiet, "quiet", false, "print only the summary")
	sweepCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid-search shaper frequency and damping over the sweep",
		RunE:  runTune,
	}
	addPlantFlags(tuneCmd)
	addMoveFlags(tuneCmd)
	addShaperFlags(tuneCmd)
	addSolverFlags(tuneCmd)
	addSweepFlags(tuneCmd)
	tuneCmd.Flags().Float64Var(&freqLo, "freq-min", 0, "lowest shaper frequency in Hz (default 0.5x natural)")
	tuneCmd.Flags().Float64Var(&freqHi, "freq-max", 0, "highest shaper frequency in Hz (default 1.5x natural)")
	tuneCmd.Flags().IntVar(&freqSteps, "freq-steps", 11, "frequency grid points")
	tuneCmd.Flags().Float64SliceVar(&dampingValues, "dampings", nil, "damping ratios to try (default: configured damping)")
	tuneCmd.Flags().StringVar(&objective, "objective", "max", "sweep score: max or mean residual")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator1] [integrator2] ...",
		Short: "compare integrators on the configured move",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	addPlantFlags(compareCmd)
	addMoveFlags(compareCmd)
	addShaperFlags(compareCmd)
	addSolverFlags(compareCmd)

	shapersCmd := &cobra.Command{
		Use:   "shapers",
		Short: "list shaper types",
		RunE:  listShapers,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Printf("  %-10s %s\n", name, config.Presets[name].Description)
			}
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait of a stored simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().BoolVar(&phaseDeflected, "deflection", true, "plot spring deflection against its rate instead of x2 against v2")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportCSV(os.Stdout, args[0])
		},
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
		},
	}

	rootCmd.AddCommand(accelCmd, simulateCmd, sweepCmd, tuneCmd, compareCmd, shapersCmd, presetsCmd, listCmd, showCmd, phaseCmd, exportCSVCmd, exportJSONCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addPlantFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&m1, "m1", config.DefaultConfig().System.M1, "driven mass")
	cmd.Flags().Float64Var(&m2, "m2", config.DefaultConfig().System.M2, "flexible mass")
	cmd.Flags().Float64Var(&stiffness, "k", config.DefaultConfig().System.K, "spring stiffness")
}

func addMoveFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&distance, "distance", config.DefaultDistance, "move distance")
	cmd.Flags().Float64Var(&maxAccel, "accel", config.DefaultMaxAccel, "acceleration limit")
	cmd.Flags().Float64Var(&maxVel, "vel", config.DefaultMaxVel, "velocity limit")
	cmd.Flags().Float64Var(&startTime, "start", config.DefaultStartTime, "move start time")
}

func addShaperFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&shaperType, "shaper", "none", "shaper type (see 'shapesim shapers')")
	cmd.Flags().Float64Var(&shaperFreq, "shaper-freq", 0, "shaper frequency in Hz (0 = natural frequency)")
	cmd.Flags().Float64Var(&damping, "damping", 0, "shaper damping ratio")
}

func addSolverFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	cmd.Flags().Float64Var(&dt, "dt", def.Grid.Dt, "output grid spacing")
	cmd.Flags().Float64Var(&duration, "time", def.Grid.Duration, "simulated duration")
	cmd.Flags().StringVar(&integrator, "integrator", def.Solver.Integrator, "integrator")
	cmd.Flags().Float64Var(&absTol, "abs-tol", def.Solver.Tol.Abs, "absolute tolerance (rk45)")
	cmd.Flags().Float64Var(&relTol, "rel-tol", def.Solver.Tol.Rel, "relative tolerance (rk45)")
}

func addSweepFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&minDistance, "min", config.DefaultMinDistance, "shortest move")
	cmd.Flags().Float64Var(&maxDistance, "max", config.DefaultMaxDistance, "longest move")
	cmd.Flags().IntVar(&samples, "samples", config.DefaultSamples, "number of distances")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0 = GOMAXPROCS)")
	cmd.Flags().BoolVar(&includeShaper, "include-shaper-duration", false, "start the tail after the shaped command ends")
}

// loadConfig resolves the run configuration. Flags win over the config
// file, which wins over the preset.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.LoadOver(cfg, configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	setFloat := func(name string, dst *float64, v float64) {
		if changed(name) {
			*dst = v
		}
	}
	setFloat("m1", &cfg.System.M1, m1)
	setFloat("m2", &cfg.System.M2, m2)
	setFloat("k", &cfg.System.K, stiffness)
	setFloat("distance", &cfg.Move.Distance, distance)
	setFloat("accel", &cfg.Move.Limits.MaxAccel, maxAccel)
	setFloat("vel", &cfg.Move.Limits.MaxVel, maxVel)
	setFloat("start", &cfg.Move.StartTime, startTime)
	setFloat("shaper-freq", &cfg.Shaper.Frequency, shaperFreq)
	setFloat("damping", &cfg.Shaper.Damping, damping)
	setFloat("dt", &cfg.Grid.Dt, dt)
	setFloat("time", &cfg.Grid.Duration, duration)
	setFloat("abs-tol", &cfg.Solver.Tol.Abs, absTol)
	setFloat("rel-tol", &cfg.Solver.Tol.Rel, relTol)
	setFloat("min", &cfg.Sweep.MinDistance, minDistance)
	setFloat("max", &cfg.Sweep.MaxDistance, maxDistance)

	if changed("shaper") {
		cfg.Shaper.Type = shaperType
	}
	if changed("integrator") {
		cfg.Solver.Integrator = integrator
	}
	if changed("samples") {
		cfg.Sweep.Samples = samples
	}
	if changed("workers") {
		cfg.Sweep.Workers = workers
	}
	if changed("include-shaper-duration") {
		cfg.Sweep.IncludeShaperDuration = includeShaper
	}
	if cmd.Flags().Changed("data") || cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}

	return cfg, cfg.Validate()
}

func openStore(cfg *config.Config) (*storage.Store, error) {
	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}
