package analysis

import (
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/shapesim/internal/vibration"
)

// SweepSummary describes the available samples of a sweep.
type SweepSummary struct {
	Count       int     `json:"count"`
	Unavailable int     `json:"unavailable"`
	Mean        float64 `json:"mean"`
	StdDev      float64 `json:"stddev"`
	Min         float64 `json:"min"`
	MinDistance float64 `json:"min_distance"`
	Max         float64 `json:"max"`
	MaxDistance float64 `json:"max_distance"`
}

func Summarize(results []vibration.Result) SweepSummary {
	s := SweepSummary{Count: len(results)}

	amps := make([]float64, 0, len(results))
	for _, r := range results {
		if !r.Available() {
			s.Unavailable++
			continue
		}
		if len(amps) == 0 || r.Amplitude < s.Min {
			s.Min, s.MinDistance = r.Amplitude, r.Distance
		}
		if len(amps) == 0 || r.Amplitude > s.Max {
			s.Max, s.MaxDistance = r.Amplitude, r.Distance
		}
		amps = append(amps, r.Amplitude)
	}

	switch len(amps) {
	case 0:
	case 1:
		s.Mean = amps[0]
	default:
		s.Mean, s.StdDev = stat.MeanStdDev(amps, nil)
	}
	return s
}
