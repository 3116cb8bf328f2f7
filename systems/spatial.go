// Package systems provides the layout algorithms and the ECS systems that animate them.
package systems

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
)

// SpatialGrid buckets particle indices into cubic cells for neighbour lookups.
// The grid covers the cube [-extent, extent]^3; positions outside it are clamped
// into the border cells, which keeps neighbouring positions in neighbouring cells.
type SpatialGrid struct {
	cellSize float64
	extent   float64
	dim      int
	cells    [][]int // flat grid of particle indices
	cellOf   []int   // current cell of each particle
}

// NewSpatialGrid creates a grid of the given cell size covering [-extent, extent]^3.
func NewSpatialGrid(extent, cellSize float64) *SpatialGrid {
	dim := int(math.Ceil(2*extent/cellSize)) + 1
	if dim < 1 {
		dim = 1
	}

	cells := make([][]int, dim*dim*dim)
	for i := range cells {
		cells[i] = make([]int, 0, 4) // pre-allocate small capacity
	}

	return &SpatialGrid{
		cellSize: cellSize,
		extent:   extent,
		dim:      dim,
		cells:    cells,
	}
}

// Build inserts every position, replacing previous contents.
func (g *SpatialGrid) Build(positions []r3.Vec) {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	g.cellOf = slices.Grow(g.cellOf[:0], len(positions))[:len(positions)]
	for i, p := range positions {
		idx := g.cellIndex(p)
		g.cells[idx] = append(g.cells[idx], i)
		g.cellOf[i] = idx
	}
}

// Move updates particle i after its position changed.
func (g *SpatialGrid) Move(i int, p r3.Vec) {
	idx := g.cellIndex(p)
	old := g.cellOf[i]
	if idx == old {
		return
	}

	cell := g.cells[old]
	for k, j := range cell {
		if j == i {
			cell[k] = cell[len(cell)-1]
			g.cells[old] = cell[:len(cell)-1]
			break
		}
	}
	g.cells[idx] = append(g.cells[idx], i)
	g.cellOf[i] = idx
}

// NeighborsInto appends the indices held by the 3x3x3 block of cells around p to dst,
// sorted ascending. Any particle closer than the cell size to p is included.
func (g *SpatialGrid) NeighborsInto(dst []int, p r3.Vec) []int {
	cx, cy, cz := g.coords(p)

	for dx := -1; dx <= 1; dx++ {
		x := cx + dx
		if x < 0 || x >= g.dim {
			continue
		}
		for dy := -1; dy <= 1; dy++ {
			y := cy + dy
			if y < 0 || y >= g.dim {
				continue
			}
			for dz := -1; dz <= 1; dz++ {
				z := cz + dz
				if z < 0 || z >= g.dim {
					continue
				}
				dst = append(dst, g.cells[(z*g.dim+y)*g.dim+x]...)
			}
		}
	}

	slices.Sort(dst)
	return dst
}

// coords returns the clamped cell coordinates for a position.
func (g *SpatialGrid) coords(p r3.Vec) (x, y, z int) {
	return g.axis(p.X), g.axis(p.Y), g.axis(p.Z)
}

func (g *SpatialGrid) axis(v float64) int {
	c := int(math.Floor((v + g.extent) / g.cellSize))

	// Clamp to valid range
	if c < 0 {
		c = 0
	} else if c >= g.dim {
		c = g.dim - 1
	}
	return c
}

// cellIndex returns the flat index for a position.
func (g *SpatialGrid) cellIndex(p r3.Vec) int {
	x, y, z := g.coords(p)
	return (z*g.dim+y)*g.dim + x
}
