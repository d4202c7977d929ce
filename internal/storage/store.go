package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/shapesim/internal/config"
	"github.com/san-kum/shapesim/internal/dynamo"
	"github.com/san-kum/shapesim/internal/vibration"
)

type Kind string

const (
	KindSimulation Kind = "simulation"
	KindSweep      Kind = "sweep"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
	sweepFile    = "sweep.csv"
)

var ErrWrongKind = errors.New("storage: run has a different kind")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Kind       Kind               `json:"kind"`
	Timestamp  time.Time          `json:"timestamp"`
	Integrator string             `json:"integrator"`
	Shaper     string             `json:"shaper"`
	Samples    int                `json:"samples"`
	Elapsed    float64            `json:"elapsed_seconds"`
	Config     *config.Config     `json:"config,omitempty"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

func (s *Store) newRun(meta *RunMetadata, kind Kind) (string, error) {
	meta.Kind = kind
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.ID = fmt.Sprintf("%s_%d_%s", kind, meta.Timestamp.Unix(), uuid.NewString()[:8])

	runDir := s.Dir(meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	return runDir, writeMetadata(filepath.Join(runDir, metadataFile), meta)
}

func writeMetadata(path string, meta *RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeCSV(path string, header []string, rows func(w *csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := rows(w); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// SaveSimulation stores one trajectory with the commanded acceleration at
// each sample.
func (s *Store) SaveSimulation(meta RunMetadata, traj *dynamo.Trajectory, accel []float64) (string, error) {
	if traj == nil {
		return "", dynamo.InvalidParameter("nil trajectory")
	}
	if len(accel) != traj.Len() {
		return "", fmt.Errorf("%w: %d accel samples for %d states", dynamo.ErrDimensionMismatch, len(accel), traj.Len())
	}
	meta.Samples = traj.Len()

	runDir, err := s.newRun(&meta, KindSimulation)
	if err != nil {
		return "", err
	}

	header := []string{"time", "x1", "v1", "x2", "v2", "accel"}
	err = writeCSV(filepath.Join(runDir, statesFile), header, func(w *csv.Writer) error {
		for i, st := range traj.States {
			row := []string{formatFloat(traj.Times[i])}
			for _, v := range st {
				row = append(row, formatFloat(v))
			}
			row = append(row, formatFloat(accel[i]))
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return meta.ID, nil
}

// SaveSweep stores a residual vibration sweep. Unavailable samples keep
// their distance and error message.
func (s *Store) SaveSweep(meta RunMetadata, results []vibration.Result) (string, error) {
	meta.Samples = len(results)

	runDir, err := s.newRun(&meta, KindSweep)
	if err != nil {
		return "", err
	}

	header := []string{"distance", "amplitude", "end_time", "status", "error"}
	err = writeCSV(filepath.Join(runDir, sweepFile), header, func(w *csv.Writer) error {
		for _, r := range results {
			msg := ""
			if r.Err != nil {
				msg = r.Err.Error()
			}
			row := []string{formatFloat(r.Distance), formatFloat(r.Amplitude), formatFloat(r.EndTime), r.Status(), msg}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return meta.ID, nil
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// readCSV returns the data rows of a CSV file without its header.
func readCSV(path string) ([][]string, error) {
	records, err := readCSVWithHeader(path)
	if err != nil || len(records) == 0 {
		return nil, err
	}
	return records[1:], nil
}

func parseRow(record []string, n int) ([]float64, error) {
	if len(record) < n {
		return nil, fmt.Errorf("expected %d fields, got %d", n, len(record))
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(record[i], 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *Store) checkKind(runID string, want Kind) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	if meta.Kind != want {
		return fmt.Errorf("%w: %s is a %s run, not %s", ErrWrongKind, runID, meta.Kind, want)
	}
	return nil
}

// LoadStates reads a simulation run back as a trajectory and its commanded
// acceleration.
func (s *Store) LoadStates(runID string) (*dynamo.Trajectory, []float64, error) {
	if err := s.checkKind(runID, KindSimulation); err != nil {
		return nil, nil, err
	}
	records, err := readCSV(filepath.Join(s.Dir(runID), statesFile))
	if err != nil {
		return nil, nil, err
	}

	traj := &dynamo.Trajectory{
		Times:  make([]float64, 0, len(records)),
		States: make([]dynamo.State, 0, len(records)),
	}
	accel := make([]float64, 0, len(records))
	for i, rec := range records {
		vals, err := parseRow(rec, 6)
		if err != nil {
			return nil, nil, fmt.Errorf("%s line %d: %w", statesFile, i+2, err)
		}
		traj.Times = append(traj.Times, vals[0])
		traj.States = append(traj.States, dynamo.State(vals[1:5]))
		accel = append(accel, vals[5])
	}
	return traj, accel, nil
}

// LoadSweep reads a sweep run back. Unavailable samples come back with an
// Err wrapping dynamo.ErrIntegrationFailure.
func (s *Store) LoadSweep(runID string) ([]vibration.Result, error) {
	if err := s.checkKind(runID, KindSweep); err != nil {
		return nil, err
	}
	records, err := readCSV(filepath.Join(s.Dir(runID), sweepFile))
	if err != nil {
		return nil, err
	}

	results := make([]vibration.Result, 0, len(records))
	for i, rec := range records {
		vals, err := parseRow(rec, 3)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", sweepFile, i+2, err)
		}
		r := vibration.Result{Distance: vals[0], Amplitude: vals[1], EndTime: vals[2]}
		if len(rec) > 3 && rec[3] != "ok" {
			msg := ""
			if len(rec) > 4 {
				msg = rec[4]
			}
			msg = strings.TrimPrefix(msg, dynamo.ErrIntegrationFailure.Error()+": ")
			r.Err = fmt.Errorf("%w: %s", dynamo.ErrIntegrationFailure, msg)
		}
		results = append(results, r)
	}
	return results, nil
}
