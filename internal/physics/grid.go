package physics

import (
	"math"

	"github.com/tomz197/bolas/internal/object"
)

// maxGridCells caps the cells per axis. Sparse, far-flung bolas get wider cells instead of more of them.
const maxGridCells = 512

// SpatialGrid buckets bola indices into square cells over a bounded area.
// With a cell size of at least the collision distance, every partner of a bola
// lies in the 3x3 block of cells around it.
type SpatialGrid struct {
	cellSize    float64
	invCellSize float64
	originX     float64
	originY     float64
	cols        int
	rows        int
	cells       []gridCell
}

// gridCell keeps its backing array across ticks.
type gridCell struct {
	items []int
}

// NewSpatialGrid returns a grid over [minX, maxX] x [minY, maxY]. The cell size grows
// past cellSize when the area would need more than maxGridCells cells per axis.
func NewSpatialGrid(minX, minY, maxX, maxY, cellSize float64) *SpatialGrid {
	g := &SpatialGrid{}
	g.Reset(minX, minY, maxX, maxY, cellSize)
	return g
}

// Reset empties the grid and fits it to a new area.
func (g *SpatialGrid) Reset(minX, minY, maxX, maxY, cellSize float64) {
	span := math.Max(maxX-minX, maxY-minY)
	if !(span/cellSize <= maxGridCells) {
		cellSize = span / maxGridCells
	}

	cols, rows := 1, 1
	if !math.IsInf(cellSize, 0) && !math.IsNaN(cellSize) {
		cols = clampCell(math.Ceil((maxX-minX)/cellSize), maxGridCells) + 1
		rows = clampCell(math.Ceil((maxY-minY)/cellSize), maxGridCells) + 1
	}

	g.cellSize = cellSize
	g.invCellSize = 1.0 / cellSize
	g.originX = minX
	g.originY = minY
	g.cols = cols
	g.rows = rows

	n := cols * rows
	if cap(g.cells) < n {
		g.cells = make([]gridCell, n)
	}
	g.cells = g.cells[:n]
	g.Clear()
}

// Clear empties every cell.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i].items = g.cells[i].items[:0]
	}
}

// Insert records bola index at (x, y).
func (g *SpatialGrid) Insert(x, y float64, index int) {
	col, row := g.posToCell(x, y)
	idx := row*g.cols + col
	g.cells[idx].items = append(g.cells[idx].items, index)
}

// QueryAround calls fn with every index stored in the 3x3 block of cells around (x, y)
// until fn returns true.
func (g *SpatialGrid) QueryAround(x, y float64, fn func(index int) bool) {
	col, row := g.posToCell(x, y)

	for r := max(row-1, 0); r <= min(row+1, g.rows-1); r++ {
		rowOffset := r * g.cols
		for c := max(col-1, 0); c <= min(col+1, g.cols-1); c++ {
			for _, idx := range g.cells[rowOffset+c].items {
				if fn(idx) {
					return
				}
			}
		}
	}
}

// posToCell maps a position to its cell, clamped to the grid.
func (g *SpatialGrid) posToCell(x, y float64) (col, row int) {
	col = clampCell(math.Floor((x-g.originX)*g.invCellSize), g.cols-1)
	row = clampCell(math.Floor((y-g.originY)*g.invCellSize), g.rows-1)
	return col, row
}

// clampCell converts a cell coordinate to an int in [0, hi]. NaN maps to 0.
func clampCell(v float64, hi int) int {
	if !(v > 0) {
		return 0
	}
	if v > float64(hi) {
		return hi
	}
	return int(v)
}

// GridDetector buckets bolas into a SpatialGrid sized to their bounding box and runs
// the exact distance test between neighbours. It reports the same pairs as DistanceDetector.
type GridDetector struct {
	grid *SpatialGrid
}

// NewGridDetector creates a detector with an empty grid.
func NewGridDetector() *GridDetector {
	return &GridDetector{grid: NewSpatialGrid(0, 0, 0, 0, collisionDistance)}
}

// Detect implements Detector.
func (d *GridDetector) Detect(bolas []object.Bola) CollisionSet {
	collisions := make(CollisionSet)

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, b := range bolas {
		if !b.Center.Finite() {
			continue
		}
		minX, maxX = math.Min(minX, b.Center.X), math.Max(maxX, b.Center.X)
		minY, maxY = math.Min(minY, b.Center.Y), math.Max(maxY, b.Center.Y)
	}
	if minX > maxX {
		return collisions
	}

	d.grid.Reset(minX, minY, maxX, maxY, collisionDistance)
	for i, b := range bolas {
		if b.Center.Finite() {
			d.grid.Insert(b.Center.X, b.Center.Y, i)
		}
	}

	for i, b := range bolas {
		if !b.Center.Finite() {
			continue
		}
		one := b.Center
		d.grid.QueryAround(one.X, one.Y, func(j int) bool {
			if j <= i {
				return false // Skip self and already-checked pairs
			}
			two := bolas[j].Center
			if Overlapping(one, two) {
				collisions.Add(i, j)
			}
			return false
		})
	}
	return collisions
}
