package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/san-kum/shapesim/internal/vibration"
)

type sweepSample struct {
	vibration.Result
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type ExportData struct {
	RunMetadata
	Times  []float64     `json:"times,omitempty"`
	States [][]float64   `json:"states,omitempty"`
	Accel  []float64     `json:"accel,omitempty"`
	Sweep  []sweepSample `json:"sweep,omitempty"`
}

// ExportJSON writes a run's metadata and data as one JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	data := ExportData{RunMetadata: *meta}

	switch meta.Kind {
	case KindSimulation:
		traj, accel, err := s.LoadStates(runID)
		if err != nil {
			return err
		}
		data.Times = traj.Times
		data.Accel = accel
		data.States = make([][]float64, len(traj.States))
		for i, st := range traj.States {
			data.States[i] = st
		}
	case KindSweep:
		results, err := s.LoadSweep(runID)
		if err != nil {
			return err
		}
		for _, r := range results {
			sample := sweepSample{Result: r, Status: r.Status()}
			if r.Err != nil {
				sample.Error = r.Err.Error()
			}
			data.Sweep = append(data.Sweep, sample)
		}
	default:
		return fmt.Errorf("run %s: unknown kind %q", runID, meta.Kind)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportCSV copies a run's data table to w unchanged.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}

	name := statesFile
	if meta.Kind == KindSweep {
		name = sweepFile
	}
	records, err := readCSVWithHeader(filepath.Join(s.Dir(runID), name))
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	return cw.Error()
}

func readCSVWithHeader(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}
