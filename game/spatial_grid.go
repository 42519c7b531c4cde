package game

import (
	"math"
	"slices"
)

// SpatialGrid buckets ship indices by position so range queries only
// look at neighbouring cells. The cell size must be at least the largest
// query radius; callers still perform exact distance checks.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]int // Indices into the slice passed to Index
}

// NewSpatialGrid creates a grid covering the arena
func NewSpatialGrid(arena Arena, cellSize float64) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = 1
	}
	// One extra row and column so positions on the far edge get their own cell
	cols := int(math.Floor(float64(arena.Width)/cellSize)) + 1
	rows := int(math.Floor(float64(arena.Height)/cellSize)) + 1

	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, 4)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear resets the grid for a new pass
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

func (g *SpatialGrid) cell(x, y float64) (int, int) {
	col := ClampInt(int(math.Floor(x/g.cellSize)), 0, g.cols-1)
	row := ClampInt(int(math.Floor(y/g.cellSize)), 0, g.rows-1)
	return col, row
}

// Insert adds an index at a position
func (g *SpatialGrid) Insert(idx int, x, y float64) {
	col, row := g.cell(x, y)
	c := row*g.cols + col
	g.cells[c] = append(g.cells[c], idx)
}

// Nearby returns indices in the cell containing (x, y) and its 8 neighbours,
// in ascending order so callers can preserve iteration order.
func (g *SpatialGrid) Nearby(x, y float64) []int {
	col, row := g.cell(x, y)

	var result []int
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			c := col + dc
			r := row + dr
			if c < 0 || c >= g.cols || r < 0 || r >= g.rows {
				continue
			}
			result = append(result, g.cells[r*g.cols+c]...)
		}
	}
	slices.Sort(result)
	return result
}

// Index populates the grid with every alive ship
func (g *SpatialGrid) Index(ships []*Ship) {
	g.Clear()
	for i, s := range ships {
		if s.Alive() {
			g.Insert(i, s.X, s.Y)
		}
	}
}
