package analysis

import (
	"strings"

	"github.com/san-kum/shapesim/internal/dynamo"
	"github.com/san-kum/shapesim/internal/physics"
)

type Point struct{ X, Y float64 }

// PhasePortrait is the path of two state components through a trajectory.
type PhasePortrait struct {
	XIndex, YIndex int
	Points         []Point
}

// NewPhasePortrait pairs components xIdx and yIdx of every sample. It
// returns nil when either index is out of range.
func NewPhasePortrait(traj *dynamo.Trajectory, xIdx, yIdx int) *PhasePortrait {
	if traj == nil || traj.Len() == 0 {
		return nil
	}
	dim := len(traj.States[0])
	if xIdx < 0 || yIdx < 0 || xIdx >= dim || yIdx >= dim {
		return nil
	}

	p := &PhasePortrait{XIndex: xIdx, YIndex: yIdx, Points: make([]Point, len(traj.States))}
	for i, s := range traj.States {
		p.Points[i] = Point{X: s[xIdx], Y: s[yIdx]}
	}
	return p
}

// DeflectionPortrait plots spring stretch x2-x1 against its rate v2-v1.
func DeflectionPortrait(traj *dynamo.Trajectory) *PhasePortrait {
	if traj == nil || traj.Len() == 0 || len(traj.States[0]) < 4 {
		return nil
	}
	p := &PhasePortrait{XIndex: -1, YIndex: -1, Points: make([]Point, len(traj.States))}
	for i, s := range traj.States {
		p.Points[i] = Point{X: s[physics.X2] - s[physics.X1], Y: s[physics.V2] - s[physics.V1]}
	}
	return p
}

func (p *PhasePortrait) bounds() (minX, maxX, minY, maxY float64) {
	minX, maxX = p.Points[0].X, p.Points[0].X
	minY, maxY = p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX = min(minX, pt.X)
		maxX = max(maxX, pt.X)
		minY = min(minY, pt.Y)
		maxY = max(maxY, pt.Y)
	}

	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	return minX - rangeX*0.1, maxX + rangeX*0.1, minY - rangeY*0.1, maxY + rangeY*0.1
}

// ASCII renders the portrait on a width x height character grid with axes
// drawn where they cross the visible area.
func (p *PhasePortrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX, minY, maxY := p.bounds()
	rangeX, rangeY := maxX-minX, maxY-minY
	col := func(x float64) int { return int((x - minX) / rangeX * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-minY)/rangeY*float64(height-1)) }

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, pt := range p.Points {
		r, c := row(pt.Y), col(pt.X)
		if r >= 0 && r < height && c >= 0 && c < width {
			canvas[r][c] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		c := col(0)
		for r := 0; r < height; r++ {
			if canvas[r][c] == ' ' {
				canvas[r][c] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		r := row(0)
		for c := 0; c < width; c++ {
			if canvas[r][c] == ' ' {
				canvas[r][c] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, line := range canvas {
		sb.WriteString(string(line))
		sb.WriteRune('\n')
	}
	return sb.String()
}
