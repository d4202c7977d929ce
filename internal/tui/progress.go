// Package tui shows a live progress view for residual vibration sweeps.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/shapesim/internal/vibration"
	"github.com/san-kum/shapesim/internal/viz"
)

const (
	barWidth   = 40
	sparkWidth = 60
)

type SampleMsg vibration.Result

type DoneMsg struct{ Err error }

// Progress is the bubbletea model of a running sweep.
type Progress struct {
	total       int
	done        int
	unavailable int
	last        vibration.Result
	amps        []float64
	start       time.Time
	elapsed     time.Duration
	err         error
	finished    bool
	cancel      context.CancelFunc
}

func NewProgress(total int, cancel context.CancelFunc) Progress {
	return Progress{total: total, start: time.Now(), cancel: cancel}
}

func (m Progress) Init() tea.Cmd { return nil }

func (m Progress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			m.err = context.Canceled
			m.finished = true
			return m, tea.Quit
		}
	case SampleMsg:
		m.done++
		m.last = vibration.Result(msg)
		if m.last.Available() {
			m.amps = append(m.amps, m.last.Amplitude)
		} else {
			m.unavailable++
		}
		m.elapsed = time.Since(m.start)
	case DoneMsg:
		m.err = msg.Err
		m.finished = true
		m.elapsed = time.Since(m.start)
		return m, tea.Quit
	}
	return m, nil
}

func (m Progress) fraction() float64 {
	if m.total <= 0 {
		return 0
	}
	return float64(m.done) / float64(m.total)
}

func (m Progress) View() string {
	var sb strings.Builder

	sb.WriteString(viz.Header("residual vibration sweep"))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("%s %3.0f%%  %d/%d\n\n", viz.ProgressBar(m.fraction(), barWidth), 100*m.fraction(), m.done, m.total))

	if m.done > 0 {
		status := viz.StatusOK.Render(m.last.Status())
		if !m.last.Available() {
			status = viz.StatusError.Render(m.last.Status())
		}
		sb.WriteString(viz.Metric("last distance", fmt.Sprintf("%.4f", m.last.Distance)) + "\n")
		sb.WriteString(viz.Metric("last amplitude", fmt.Sprintf("%.6g", m.last.Amplitude)) + "  " + status + "\n")
	}
	if m.unavailable > 0 {
		sb.WriteString(viz.Metric("unavailable", viz.StatusWarn.Render(fmt.Sprint(m.unavailable))) + "\n")
	}
	sb.WriteString(viz.Metric("elapsed", m.elapsed.Round(time.Millisecond)) + "\n")

	if len(m.amps) > 0 {
		sb.WriteString("\n" + viz.Sparkline(m.amps, sparkWidth) + "\n")
	}

	if m.finished {
		if m.err != nil {
			sb.WriteString("\n" + viz.StatusError.Render("stopped: "+m.err.Error()) + "\n")
		} else {
			sb.WriteString("\n" + viz.StatusOK.Render("done") + "\n")
		}
	} else {
		sb.WriteString("\n" + viz.KeyHint.Render("q to cancel") + "\n")
	}
	return sb.String()
}

// SweepFunc runs a sweep, reporting each finished sample to onSample.
type SweepFunc func(ctx context.Context, onSample func(vibration.Result)) ([]vibration.Result, error)

// RunSweep runs fn behind a progress view. Quitting the view cancels the
// sweep.
func RunSweep(ctx context.Context, total int, fn SweepFunc, opts ...tea.ProgramOption) ([]vibration.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewProgress(total, cancel), opts...)

	type outcome struct {
		results []vibration.Result
		err     error
	}
	out := make(chan outcome, 1)
	go func() {
		res, err := fn(ctx, func(r vibration.Result) { p.Send(SampleMsg(r)) })
		p.Send(DoneMsg{Err: err})
		out <- outcome{res, err}
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-out
		return nil, err
	}
	o := <-out
	return o.results, o.err
}
