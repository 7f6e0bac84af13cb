// Package grid owns the rectangular cell array and neighbor lookup.
// Cells are mutated in place by the solver; the grid itself is created
// once at full size and never resized.
package grid

import "github.com/talgya/wavemap/internal/terrain"

// Cell is one grid position. While unresolved, Domain holds the
// categories still possible and is non-empty. After the one-way
// transition to resolved, Category holds the committed category and
// Domain is no longer meaningful.
type Cell struct {
	Domain   terrain.Set
	Category terrain.Category
	Resolved bool
}

// Grid is a fixed-size 2-D array of cells indexed by (i, j) with
// 0 <= i < width and 0 <= j < height.
type Grid struct {
	width, height int
	cells         []Cell
	sentinel      int // entropy of a resolved cell, > any domain size
}

// New creates a grid with every cell's domain initialized to full.
func New(width, height int, full terrain.Set) *Grid {
	g := &Grid{
		width:    width,
		height:   height,
		cells:    make([]Cell, width*height),
		sentinel: full.Len() + 1,
	}
	for k := range g.cells {
		g.cells[k].Domain = full
	}
	return g
}

// Width returns the grid width in cells.
func (g *Grid) Width() int { return g.width }

// Height returns the grid height in cells.
func (g *Grid) Height() int { return g.height }

// Cell returns a mutable reference to the cell at (i, j).
func (g *Grid) Cell(i, j int) *Cell {
	return &g.cells[j*g.width+i]
}

// Entropy returns the domain size of an unresolved cell, or a sentinel
// strictly greater than any possible domain size for a resolved cell,
// so resolved cells never tie for most constrained.
func (g *Grid) Entropy(i, j int) int {
	c := g.Cell(i, j)
	if c.Resolved {
		return g.sentinel
	}
	return c.Domain.Len()
}

// neighborOffsets lists the four orthogonal directions in the stable
// propagation order: left, up, right, down.
var neighborOffsets = [4][2]int{{-1, 0}, {0, -1}, {1, 0}, {0, 1}}

// Neighbors returns the in-bounds orthogonal neighbor coordinates of
// (i, j), in left, up, right, down order. No wraparound.
func (g *Grid) Neighbors(i, j int) [][2]int {
	out := make([][2]int, 0, 4)
	for _, d := range neighborOffsets {
		ni, nj := i+d[0], j+d[1]
		if ni < 0 || ni >= g.width || nj < 0 || nj >= g.height {
			continue
		}
		out = append(out, [2]int{ni, nj})
	}
	return out
}

// Unresolved returns the number of cells not yet committed.
func (g *Grid) Unresolved() int {
	n := 0
	for k := range g.cells {
		if !g.cells[k].Resolved {
			n++
		}
	}
	return n
}
