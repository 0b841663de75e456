package placer

import (
	"slices"

	"github.com/htfab/tt-multiplexer/pkg/errors"
)

// Allowed module footprints.
var (
	ValidWidths  = []int{1, 2, 4, 8}
	ValidHeights = []int{1, 2}
)

// ModuleSlot is a user module to place. X and Y are nil when the
// coordinate is left to the placer.
type ModuleSlot struct {
	Name   string `json:"name" yaml:"name"`
	X      *int   `json:"x" yaml:"x"`
	Y      *int   `json:"y" yaml:"y"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
}

// Module returns a free-floating module of the given size.
func Module(name string, width, height int) ModuleSlot {
	return ModuleSlot{Name: name, Width: width, Height: height}
}

// At returns a copy of m fixed at (x, y).
func (m ModuleSlot) At(x, y int) ModuleSlot {
	m.X, m.Y = &x, &y
	return m
}

// AtX returns a copy of m with only the column fixed.
func (m ModuleSlot) AtX(x int) ModuleSlot {
	m.X, m.Y = &x, nil
	return m
}

// AtY returns a copy of m with only the row fixed.
func (m ModuleSlot) AtY(y int) ModuleSlot {
	m.X, m.Y = nil, &y
	return m
}

// Fixed reports how many of the module's coordinates are given.
func (m ModuleSlot) Fixed() int {
	n := 0
	if m.X != nil {
		n++
	}
	if m.Y != nil {
		n++
	}
	return n
}

// Cells returns the footprint of m anchored at a.
func (m ModuleSlot) Cells(a Cell) []Cell {
	cells := make([]Cell, 0, m.Width*m.Height)
	for oy := 0; oy < m.Height; oy++ {
		for ox := 0; ox < m.Width; ox++ {
			cells = append(cells, Cell{a.X + ox, a.Y + oy})
		}
	}
	return cells
}

// Validate checks the declared size and any fixed coordinate against g.
func (m ModuleSlot) Validate(g Grid) error {
	if err := errors.ValidateModuleName(m.Name); err != nil {
		return err
	}
	if !slices.Contains(ValidHeights, m.Height) {
		return errors.New(errors.ErrCodeInvalidModule, "module '%s' has invalid height %d", m.Name, m.Height)
	}
	if !slices.Contains(ValidWidths, m.Width) {
		return errors.New(errors.ErrCodeInvalidModule, "module '%s' has invalid width %d", m.Name, m.Width)
	}
	if m.X != nil {
		x := *m.X
		if x < 0 || x >= 2*g.HalfOffset || x%g.HalfOffset > g.HalfWidth() {
			return errors.New(errors.ErrCodeInvalidModule, "module '%s' has invalid X position %d", m.Name, x)
		}
	}
	if m.Y != nil {
		y := *m.Y
		if y < 0 || y >= g.Height {
			return errors.New(errors.ErrCodeInvalidModule, "module '%s' has invalid Y position %d", m.Name, y)
		}
	}
	return nil
}

// ValidateModules validates every module and rejects duplicate names.
func ValidateModules(g Grid, modules []ModuleSlot) error {
	seen := make(map[string]bool, len(modules))
	for _, m := range modules {
		if err := m.Validate(g); err != nil {
			return err
		}
		if seen[m.Name] {
			return errors.New(errors.ErrCodeInvalidModule, "module '%s' is declared more than once", m.Name)
		}
		seen[m.Name] = true
	}
	return nil
}
