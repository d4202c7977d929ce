package dynamo

import (
	"math"
	"sort"
)

// UniformGrid returns the times 0, dt, 2dt, ... up to and including duration.
// Times are computed as i*dt so repeated calls are bit-identical.
func UniformGrid(duration, dt float64) []float64 {
	if dt <= 0 || duration < 0 {
		return nil
	}
	n := int(math.Round(duration/dt)) + 1
	grid := make([]float64, n)
	for i := range grid {
		grid[i] = float64(i) * dt
	}
	return grid
}

// NearestIndex returns the index of the grid time closest to t. Ties resolve
// to the later sample. The grid must be sorted ascending and non-empty.
func NearestIndex(grid []float64, t float64) int {
	n := len(grid)
	if n == 0 {
		return -1
	}
	i := sort.SearchFloat64s(grid, t)
	if i == 0 {
		return 0
	}
	if i == n {
		return n - 1
	}
	if t-grid[i-1] < grid[i]-t {
		return i - 1
	}
	return i
}
