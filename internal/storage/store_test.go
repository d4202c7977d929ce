package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/shapesim/internal/config"
	"github.com/san-kum/shapesim/internal/dynamo"
	"github.com/san-kum/shapesim/internal/vibration"
)

func sampleTrajectory() (*dynamo.Trajectory, []float64) {
	traj := &dynamo.Trajectory{
		Times: []float64{0, 0.01, 0.02},
		States: []dynamo.State{
			{0, 0, 0, 0},
			{1e-5, 0.01, 1.234567891234e-9, 3e-7},
			{4e-5, 0.02, 1.1e-8, 1.2e-6},
		},
	}
	return traj, []float64{0, 1, 1}
}

func TestStoreSaveLoadSimulation(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	traj, accel := sampleTrajectory()
	runID, err := st.SaveSimulation(RunMetadata{
		Integrator: "rk45",
		Config:     config.DefaultConfig(),
		Metrics:    map[string]float64{"peak_deflection": 0.07},
	}, traj, accel)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "simulation_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Kind != KindSimulation || meta.Samples != 3 || meta.Integrator != "rk45" {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Metrics["peak_deflection"] != 0.07 {
		t.Errorf("expected metric 0.07, got %v", meta.Metrics["peak_deflection"])
	}
	if meta.Config == nil || meta.Config.System.K != 10 || meta.Config.Solver.MaxStep != 0.01 {
		t.Errorf("config not persisted: %+v", meta.Config)
	}

	loaded, loadedAccel, err := st.LoadStates(runID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}
	if loaded.Len() != 3 {
		t.Fatalf("expected 3 samples, got %d", loaded.Len())
	}
	for i := range traj.States {
		if loaded.Times[i] != traj.Times[i] || loadedAccel[i] != accel[i] {
			t.Errorf("row %d differs", i)
		}
		for j := range traj.States[i] {
			if loaded.States[i][j] != traj.States[i][j] {
				t.Errorf("state %d/%d: expected %v, got %v", i, j, traj.States[i][j], loaded.States[i][j])
			}
		}
	}

	if _, err := st.LoadSweep(runID); !errors.Is(err, ErrWrongKind) {
		t.Errorf("expected ErrWrongKind, got %v", err)
	}
}

func TestStoreSaveLoadSweep(t *testing.T) {
	st := New(t.TempDir())

	results := []vibration.Result{
		{Distance: 1, Amplitude: 0.125, EndTime: 2.5},
		{Distance: 1.5, EndTime: 3, Err: &dynamo.SimulationError{Wrapped: dynamo.ErrStepTooSmall}},
		{Distance: 2, Amplitude: 1.5e-7, EndTime: 3.5},
	}
	runID, err := st.SaveSweep(RunMetadata{Shaper: "zv"}, results)
	if err != nil {
		t.Fatal(err)
	}

	loaded, err := st.LoadSweep(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 3 {
		t.Fatalf("expected 3 results, got %d", len(loaded))
	}
	if loaded[0].Amplitude != 0.125 || loaded[2].Amplitude != 1.5e-7 || loaded[2].EndTime != 3.5 {
		t.Errorf("values not preserved: %+v", loaded)
	}
	if loaded[1].Available() || !errors.Is(loaded[1].Err, dynamo.ErrIntegrationFailure) {
		t.Errorf("expected unavailable sample, got %+v", loaded[1])
	}
	if !strings.Contains(loaded[1].Err.Error(), dynamo.ErrStepTooSmall.Error()) {
		t.Errorf("expected original message kept, got %v", loaded[1].Err)
	}

	if _, _, err := st.LoadStates(runID); !errors.Is(err, ErrWrongKind) {
		t.Errorf("expected ErrWrongKind, got %v", err)
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	traj, accel := sampleTrajectory()
	older := time.Now().Add(-time.Hour)
	if _, err := st.SaveSimulation(RunMetadata{Timestamp: older}, traj, accel); err != nil {
		t.Fatal(err)
	}
	newest, err := st.SaveSweep(RunMetadata{}, nil)
	if err != nil {
		t.Fatal(err)
	}

	os.MkdirAll(filepath.Join(tmpDir, "junk"), 0755)

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != newest {
		t.Errorf("expected newest run first, got %s", runs[0].ID)
	}
}

func TestSaveSimulationMismatch(t *testing.T) {
	st := New(t.TempDir())
	traj, _ := sampleTrajectory()
	if _, err := st.SaveSimulation(RunMetadata{}, traj, []float64{0}); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestLoadMissing(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestExport(t *testing.T) {
	st := New(t.TempDir())
	traj, accel := sampleTrajectory()
	simID, err := st.SaveSimulation(RunMetadata{}, traj, accel)
	if err != nil {
		t.Fatal(err)
	}
	sweepID, err := st.SaveSweep(RunMetadata{}, []vibration.Result{{Distance: 1, Amplitude: 0.5, EndTime: 2.5}})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, simID); err != nil {
		t.Fatal(err)
	}
	var sim ExportData
	if err := json.Unmarshal(buf.Bytes(), &sim); err != nil {
		t.Fatal(err)
	}
	if sim.ID != simID || len(sim.States) != 3 || len(sim.Accel) != 3 {
		t.Errorf("unexpected export %+v", sim)
	}

	buf.Reset()
	if err := st.ExportJSON(&buf, sweepID); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"status": "ok"`) {
		t.Errorf("expected sweep status in export, got %s", buf.String())
	}

	buf.Reset()
	if err := st.ExportCSV(&buf, sweepID); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || lines[0] != "distance,amplitude,end_time,status,error" {
		t.Errorf("unexpected csv export:\n%s", buf.String())
	}
}
