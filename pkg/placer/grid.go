package placer

import (
	"fmt"

	"github.com/htfab/tt-multiplexer/pkg/config"
)

// DefaultHalfOffset is the first column of the right grid half.
const DefaultHalfOffset = config.DefaultHalfOffset

// Cell is one unit of the module grid.
type Cell struct {
	X, Y int
}

func (c Cell) String() string { return fmt.Sprintf("(%d, %d)", c.X, c.Y) }

// Grid describes the dimensions of the bisected module grid.
type Grid struct {
	Width      int // columns over both halves
	Height     int // rows
	HalfOffset int // first column of the right half
}

// NewGrid validates and returns a grid. The half offset must be a power of
// two no smaller than width/2, so the half boundary is a single address bit.
func NewGrid(width, height, halfOffset int) (Grid, error) {
	g := Grid{Width: width, Height: height, HalfOffset: halfOffset}
	if err := g.validate(); err != nil {
		return Grid{}, err
	}
	return g, nil
}

// GridFromConfig builds the grid described by the tt.grid section.
func GridFromConfig(c config.Grid) (Grid, error) {
	half := c.HalfOffset
	if half == 0 {
		half = DefaultHalfOffset
	}
	return NewGrid(c.X, c.Y, half)
}

func (g Grid) validate() error {
	return config.Grid{X: g.Width, Y: g.Height, HalfOffset: g.HalfOffset}.Validate()
}

// HalfWidth returns the number of columns in each half.
func (g Grid) HalfWidth() int { return g.Width / 2 }

// Contains reports whether c is an addressable cell.
func (g Grid) Contains(c Cell) bool {
	if c.Y < 0 || c.Y >= g.Height {
		return false
	}
	if c.X >= 0 && c.X < g.HalfWidth() {
		return true
	}
	return c.X >= g.HalfOffset && c.X < g.HalfOffset+g.HalfWidth()
}

// Cells returns every addressable cell in scan order: row by row, the left
// half then the right half.
func (g Grid) Cells() []Cell {
	cells := make([]Cell, 0, g.Width*g.Height)
	for y := 0; y < g.Height; y++ {
		cells = append(cells, g.rowCells(y)...)
	}
	return cells
}

// rowCells returns the cells of row y, left half first.
func (g Grid) rowCells(y int) []Cell {
	row := make([]Cell, 0, g.Width)
	for x := 0; x < g.HalfWidth(); x++ {
		row = append(row, Cell{x, y})
	}
	for x := 0; x < g.HalfWidth(); x++ {
		row = append(row, Cell{x + g.HalfOffset, y})
	}
	return row
}

// Column maps a cell to its dense column index in [0, Width).
func (g Grid) Column(c Cell) int {
	if c.X >= g.HalfOffset {
		return c.X - g.HalfOffset + g.HalfWidth()
	}
	return c.X
}
