package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/shapesim/internal/analysis"
	"github.com/san-kum/shapesim/internal/physics"
	"github.com/san-kum/shapesim/internal/storage"
	"github.com/san-kum/shapesim/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tTIME\tSHAPER\tINTEG\tSAMPLES\tELAPSED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%.2fs\n",
			run.ID,
			run.Kind,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Shaper,
			run.Integrator,
			run.Samples,
			run.Elapsed,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	fmt.Println(viz.Header("run " + meta.ID))
	fmt.Println(viz.Metric("kind", meta.Kind))
	fmt.Println(viz.Metric("shaper", meta.Shaper))
	fmt.Println(viz.Metric("integrator", meta.Integrator))
	fmt.Println(viz.Metric("samples", meta.Samples))
	fmt.Println()

	switch meta.Kind {
	case storage.KindSimulation:
		traj, accel, err := st.LoadStates(runID)
		if err != nil {
			return err
		}
		fmt.Println(viz.ResponseChart(traj))
		fmt.Println()
		fmt.Println(viz.ProfileChart(accel))
	case storage.KindSweep:
		results, err := st.LoadSweep(runID)
		if err != nil {
			return err
		}
		fmt.Println(viz.SweepChart(results))
		fmt.Println()
		printSummary(analysis.Summarize(results), meta.Elapsed)
		return nil
	default:
		return fmt.Errorf("run %s has unknown kind %q", runID, meta.Kind)
	}

	if len(meta.Metrics) > 0 {
		fmt.Println()
		fmt.Println(viz.MetricTable(meta.Metrics))
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	runID := args[0]

	traj, _, err := storage.New(dataDir).LoadStates(runID)
	if errors.Is(err, storage.ErrWrongKind) {
		return fmt.Errorf("phase portraits need a simulation run: %w", err)
	}
	if err != nil {
		return err
	}

	portrait := analysis.DeflectionPortrait(traj)
	caption := "spring deflection x2-x1 vs rate v2-v1"
	if !phaseDeflected {
		portrait = analysis.NewPhasePortrait(traj, physics.X2, physics.V2)
		caption = "x2 vs v2"
	}
	if portrait == nil {
		return fmt.Errorf("no data to plot")
	}

	fmt.Println(viz.Header("phase portrait: " + runID))
	fmt.Println(viz.Subtle.Render(caption))
	fmt.Println(portrait.ASCII(70, 20))
	return nil
}
