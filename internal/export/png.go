// Package export renders trajectories and sweep curves as PNG figures.
package export

import (
	"bufio"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/shapesim/internal/dynamo"
	"github.com/san-kum/shapesim/internal/physics"
	"github.com/san-kum/shapesim/internal/vibration"
)

// Figure controls the output size of a PNG.
type Figure struct {
	WidthIn  float64
	HeightIn float64
	DPI      int
}

func DefaultFigure() Figure {
	return Figure{WidthIn: 8, HeightIn: 6, DPI: 300}
}

var palette = []color.RGBA{
	{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
}

// Series is one named line.
type Series struct {
	Name string
	X, Y []float64
}

func limitedTicker(maxLabels int, labelFmt string) plot.Ticker {
	if maxLabels < 2 {
		maxLabels = 2
	}
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
			return nil
		}
		if min == max {
			return []plot.Tick{{Value: min, Label: fmt.Sprintf(labelFmt, min)}}
		}
		step := (max - min) / float64(maxLabels-1)
		ticks := make([]plot.Tick, 0, maxLabels)
		for i := 0; i < maxLabels; i++ {
			v := min + float64(i)*step
			ticks = append(ticks, plot.Tick{Value: v, Label: fmt.Sprintf(labelFmt, v)})
		}
		return ticks
	})
}

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(18)
	p.Title.Padding = vg.Points(10)
	p.X.Label.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.TextStyle.Font.Size = vg.Points(14)
	p.X.Tick.Label.Font.Size = vg.Points(11)
	p.Y.Tick.Label.Font.Size = vg.Points(11)
	p.X.Tick.Marker = limitedTicker(9, "%.2f")
	p.Y.Tick.Marker = limitedTicker(9, "%.3g")
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
}

// LinePlot draws every series on one set of axes and writes a PNG to path.
func LinePlot(path, title, xlabel, ylabel string, fig Figure, series ...Series) error {
	if len(series) == 0 {
		return fmt.Errorf("plot %s: no data", title)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	stylePlot(p)

	for i, s := range series {
		if len(s.X) != len(s.Y) || len(s.X) == 0 {
			return fmt.Errorf("plot %s: series %q has %d x and %d y values", title, s.Name, len(s.X), len(s.Y))
		}
		pts := make(plotter.XYs, len(s.X))
		for j := range s.X {
			pts[j].X = s.X[j]
			pts[j].Y = s.Y[j]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("plot %s: %w", title, err)
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = palette[i%len(palette)]
		p.Add(line)
		if s.Name != "" {
			p.Legend.Add(s.Name, line)
		}
	}

	return savePlotPNG(p, fig, path)
}

func savePlotPNG(p *plot.Plot, fig Figure, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}
	w := vg.Length(fig.WidthIn) * vg.Inch
	h := vg.Length(fig.HeightIn) * vg.Inch

	c := vgimg.NewWith(
		vgimg.UseWH(w, h),
		vgimg.UseDPI(fig.DPI),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	pngc := vgimg.PngCanvas{Canvas: c}
	if _, err := pngc.WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}

// SweepSeries turns the available samples of a sweep into a named line.
func SweepSeries(name string, results []vibration.Result) Series {
	s := Series{Name: name}
	for _, r := range results {
		if !r.Available() {
			continue
		}
		s.X = append(s.X, r.Distance)
		s.Y = append(s.Y, r.Amplitude)
	}
	return s
}

// SweepPNG plots residual vibration against move distance.
func SweepPNG(path string, fig Figure, series ...Series) error {
	return LinePlot(path, "Residual vibration vs move distance", "distance", "peak-to-peak x2", fig, series...)
}

// TrajectoryPNG plots both mass positions and, when given, the commanded
// acceleration.
func TrajectoryPNG(path string, fig Figure, traj *dynamo.Trajectory, accel []float64) error {
	if traj == nil || traj.Len() == 0 {
		return fmt.Errorf("trajectory plot: no data")
	}
	series := []Series{
		{Name: "x1", X: traj.Times, Y: traj.Component(physics.X1)},
		{Name: "x2", X: traj.Times, Y: traj.Component(physics.X2)},
	}
	if len(accel) == traj.Len() {
		series = append(series, Series{Name: "accel", X: traj.Times, Y: accel})
	}
	return LinePlot(path, "Two-mass response", "time (s)", "position", fig, series...)
}
