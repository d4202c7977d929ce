package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/shapesim/internal/dynamo"
	"github.com/san-kum/shapesim/internal/physics"
	"github.com/san-kum/shapesim/internal/vibration"
)

const (
	DefaultChartWidth  = 80
	DefaultChartHeight = 12
)

// Downsample keeps at most n evenly strided points, always including the
// last one.
func Downsample(values []float64, n int) []float64 {
	if n <= 0 || len(values) <= n {
		return values
	}
	out := make([]float64, n)
	step := float64(len(values)-1) / float64(n-1)
	for i := range out {
		out[i] = values[int(math.Round(float64(i)*step))]
	}
	return out
}

// Chart plots one or more series with a caption. Series of different
// lengths are each downsampled to the chart width.
func Chart(caption string, height int, series ...[]float64) string {
	data := make([][]float64, 0, len(series))
	for _, s := range series {
		if len(s) == 0 {
			continue
		}
		data = append(data, Downsample(s, DefaultChartWidth))
	}
	if len(data) == 0 {
		return ""
	}

	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Width(DefaultChartWidth),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red, asciigraph.Green),
	)
}

// ProfileChart plots a commanded acceleration signal.
func ProfileChart(accel []float64) string {
	return Chart("commanded acceleration", DefaultChartHeight/2, accel)
}

// ResponseChart plots x1 (blue) and x2 (red) over the trajectory.
func ResponseChart(traj *dynamo.Trajectory) string {
	if traj == nil || traj.Len() == 0 {
		return ""
	}
	return Chart("x1 (blue), x2 (red)", DefaultChartHeight, traj.Component(physics.X1), traj.Component(physics.X2))
}

// SweepChart plots the residual amplitude of every available sample.
func SweepChart(results []vibration.Result) string {
	amps := make([]float64, 0, len(results))
	for _, r := range results {
		if r.Available() {
			amps = append(amps, r.Amplitude)
		}
	}
	return Chart("residual vibration vs distance", DefaultChartHeight, amps)
}
