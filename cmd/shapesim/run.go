package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/shapesim/internal/analysis"
	"github.com/san-kum/shapesim/internal/command"
	"github.com/san-kum/shapesim/internal/config"
	"github.com/san-kum/shapesim/internal/dynamo"
	"github.com/san-kum/shapesim/internal/experiment"
	"github.com/san-kum/shapesim/internal/export"
	"github.com/san-kum/shapesim/internal/optim"
	"github.com/san-kum/shapesim/internal/shaping"
	"github.com/san-kum/shapesim/internal/tui"
	"github.com/san-kum/shapesim/internal/vibration"
	"github.com/san-kum/shapesim/internal/viz"
)

func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func showAccel(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}
	gen, err := exp.Generator()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("at") {
		fmt.Printf("%g\n", gen.Accel(queryTime))
		return nil
	}

	prof := gen.IssuedProfile()
	fmt.Println(viz.Header("commanded acceleration"))
	fmt.Println(viz.Metric("profile", prof.Kind))
	if gen.Shaped() {
		fmt.Println(viz.Metric("unshaped end", fmt.Sprintf("%.4f s", gen.EndTime())))
		fmt.Println(viz.Metric("shaped end", fmt.Sprintf("%.4f s", gen.ShapedEndTime())))
	} else {
		fmt.Println(viz.Metric("end time", fmt.Sprintf("%.4f s", gen.EndTime())))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if gen.Shaped() {
		fmt.Fprintln(w, "\nswitches replayed once per impulse, offset by its time")
	}
	fmt.Fprintln(w, "\nSWITCH\tTIME\tCOEFF")
	for i, sw := range prof.Switches {
		fmt.Fprintf(w, "%d\t%.4f\t%+.0f\n", i, sw.Time, sw.Coeff)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if gen.Shaped() {
		printShaper(exp.Shaper())
	}

	fmt.Println()
	fmt.Println(viz.ProfileChart(gen.Sample(exp.Grid())))
	return nil
}

func printShaper(s command.Shaper) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nIMPULSE\tTIME\tAMPLITUDE")
	for i, imp := range s {
		fmt.Fprintf(w, "%d\t%.5f\t%.5f\n", i, imp.Time, imp.Amplitude)
	}
	w.Flush()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := interruptible()
	defer cancel()

	fmt.Printf("simulating %.3g move with %s shaper (%s)...\n", cfg.Move.Distance, exp.ShaperName(), cfg.Solver.Integrator)
	res, err := exp.Simulate(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", res.Elapsed)
	fmt.Println(viz.ResponseChart(res.Trajectory))
	fmt.Println()
	fmt.Println(viz.MetricTable(res.Metrics))

	if pngPath != "" {
		if err := export.TrajectoryPNG(pngPath, export.DefaultFigure(), res.Trajectory, res.Accel); err != nil {
			return err
		}
		fmt.Printf("plot: %s\n", pngPath)
	}

	if noSave {
		return nil
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	runID, err := st.SaveSimulation(exp.Metadata(res.Elapsed, res.Metrics), res.Trajectory, res.Accel)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := interruptible()
	defer cancel()

	var res *experiment.SweepResult
	if showProgress {
		_, err = tui.RunSweep(ctx, cfg.Sweep.Samples, func(ctx context.Context, onSample func(vibration.Result)) ([]vibration.Result, error) {
			r, err := exp.Sweep(ctx, vibration.SweepOptions{OnSample: onSample})
			if err != nil {
				return nil, err
			}
			res = r
			return r.Results, nil
		})
	} else {
		fmt.Printf("sweeping %d distances in [%g, %g] with %s shaper...\n",
			cfg.Sweep.Samples, cfg.Sweep.MinDistance, cfg.Sweep.MaxDistance, exp.ShaperName())
		res, err = exp.Sweep(ctx, vibration.SweepOptions{})
	}
	if err != nil {
		return err
	}

	if !quiet {
		fmt.Println(viz.SweepChart(res.Results))
		fmt.Println()
		printUnavailable(res.Results)
	}
	printSummary(res.Summary, res.Elapsed.Seconds())

	if pngPath != "" {
		series := export.SweepSeries(exp.ShaperName(), res.Results)
		if err := export.SweepPNG(pngPath, export.DefaultFigure(), series); err != nil {
			return err
		}
		fmt.Printf("plot: %s\n", pngPath)
	}

	if noSave {
		return nil
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	meta := exp.Metadata(res.Elapsed, map[string]float64{
		"mean_amplitude": res.Summary.Mean,
		"max_amplitude":  res.Summary.Max,
		"min_amplitude":  res.Summary.Min,
	})
	runID, err := st.SaveSweep(meta, res.Results)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func printUnavailable(results []vibration.Result) {
	for _, r := range results {
		if !r.Available() {
			fmt.Println(viz.StatusWarn.Render(fmt.Sprintf("distance %g unavailable: %v", r.Distance, r.Err)))
		}
	}
}

func printSummary(s analysis.SweepSummary, elapsed float64) {
	fmt.Println(viz.Header("sweep summary"))
	fmt.Println(viz.Metric("samples", s.Count))
	if s.Unavailable > 0 {
		fmt.Println(viz.Metric("unavailable", s.Unavailable))
	}
	fmt.Println(viz.Metric("mean", fmt.Sprintf("%.6g ± %.3g", s.Mean, s.StdDev)))
	fmt.Println(viz.Metric("min", fmt.Sprintf("%.6g at d=%.4g", s.Min, s.MinDistance)))
	fmt.Println(viz.Metric("max", fmt.Sprintf("%.6g at d=%.4g", s.Max, s.MaxDistance)))
	fmt.Println(viz.Metric("elapsed", fmt.Sprintf("%.2fs", elapsed)))
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	fn := cfg.System.NaturalFrequency() / (2 * math.Pi)
	lo, hi := freqLo, freqHi
	if lo == 0 {
		lo = 0.5 * fn
	}
	if hi == 0 {
		hi = 1.5 * fn
	}
	freqs := optim.Linspace(experiment.ParamFrequency, lo, hi, freqSteps)

	ctx, cancel := interruptible()
	defer cancel()

	fmt.Printf("tuning %s shaper over %d frequencies in [%.3f, %.3f] Hz (natural %.3f Hz)...\n",
		cfg.Shaper.Type, freqSteps, lo, hi, fn)
	res, err := experiment.Tune(ctx, cfg, experiment.TuneOptions{
		Frequencies: freqs,
		Dampings:    optim.Range{Values: dampingValues},
		Objective:   objective,
		Workers:     cfg.Sweep.Workers,
		OnTrial: func(t optim.Trial) {
			if t.Err != nil {
				fmt.Println(viz.StatusError.Render(fmt.Sprintf("  f=%.4f zeta=%.3f failed: %v", t.Params[experiment.ParamFrequency], t.Params[experiment.ParamDamping], t.Err)))
				return
			}
			fmt.Printf("  f=%.4f zeta=%.3f score=%.6g\n", t.Params[experiment.ParamFrequency], t.Params[experiment.ParamDamping], t.Score)
		},
	})
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(viz.Header("best shaper"))
	fmt.Println(viz.Metric("frequency", fmt.Sprintf("%.4f Hz", res.Frequency)))
	fmt.Println(viz.Metric("damping", res.Damping))
	fmt.Println(viz.Metric(objective+" residual", res.Score))
	fmt.Println(viz.Metric("elapsed", res.Elapsed.Round(time.Millisecond)))

	best := cfg.Shaper
	best.Frequency, best.Damping = res.Frequency, res.Damping
	s, err := experiment.BuildShaper(best, cfg.System)
	if err != nil {
		return err
	}
	printShaper(s)
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := interruptible()
	defer cancel()

	fmt.Printf("comparing integrators on a %.3g move\n\n", cfg.Move.Distance)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tAMPLITUDE\tFINAL X2\tTIME\tSTATUS")
	for _, c := range exp.CompareIntegrators(ctx, args) {
		if c.Err != nil {
			status := "error"
			if errors.Is(c.Err, dynamo.ErrIntegrationFailure) {
				status = "failed"
			}
			fmt.Fprintf(w, "%s\t-\t-\t%v\t%s: %v\n", c.Integrator, c.Elapsed, status, c.Err)
			continue
		}
		fmt.Fprintf(w, "%s\t%.8g\t%.8g\t%v\tok\n", c.Integrator, c.Amplitude, c.FinalX2, c.Elapsed)
	}
	return w.Flush()
}

func listShapers(cmd *cobra.Command, args []string) error {
	defs := shaping.Definitions()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tMAX DAMPING\tDESCRIPTION")
	fmt.Fprintf(w, "%s\t-\tno shaping\n", shaping.None)
	for _, d := range defs {
		fmt.Fprintf(w, "%s\t%.2f\t%s\n", d.Type, d.MaxDamping, d.Summary)
	}
	fmt.Fprintf(w, "%s\t-\timpulses from the config file\n", config.CustomShaper)
	return w.Flush()
}
