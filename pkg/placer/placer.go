package placer

import (
	"cmp"
	"io"
	"slices"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/htfab/tt-multiplexer/pkg/errors"
)

// Placed is a module together with its resolved anchor.
type Placed struct {
	Module ModuleSlot
	Anchor Cell
}

// Placement is the result of placing a module list on a grid.
type Placement struct {
	grid     Grid
	order    []*Placed // input order
	byAnchor map[Cell]*Placed
	owner    map[Cell]*Placed
	free     map[Cell]struct{}
}

// Option configures a placement run.
type Option func(*placer)

// WithLogger reports every placed module at debug level.
func WithLogger(l *log.Logger) Option {
	return func(p *placer) { p.logger = l }
}

type placer struct {
	*Placement
	logger *log.Logger
}

// Place validates modules and places all of them on grid. It either
// returns a complete placement or an error naming the first module that
// could not be placed; partial results are never returned.
func Place(grid Grid, modules []ModuleSlot, opts ...Option) (*Placement, error) {
	if err := grid.validate(); err != nil {
		return nil, err
	}
	if err := ValidateModules(grid, modules); err != nil {
		return nil, err
	}

	p := &placer{
		Placement: newPlacement(grid, len(modules)),
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(p)
	}

	var full, semi, auto []*Placed
	for _, m := range modules {
		pm := &Placed{Module: m}
		p.order = append(p.order, pm)
		switch m.Fixed() {
		case 2:
			full = append(full, pm)
		case 1:
			semi = append(semi, pm)
		default:
			auto = append(auto, pm)
		}
	}

	for _, group := range [][]*Placed{full, semi, auto} {
		if err := p.placeGroup(group); err != nil {
			return nil, err
		}
	}
	return p.Placement, nil
}

func newPlacement(g Grid, n int) *Placement {
	p := &Placement{
		grid:     g,
		order:    make([]*Placed, 0, n),
		byAnchor: make(map[Cell]*Placed, n),
		owner:    make(map[Cell]*Placed),
		free:     make(map[Cell]struct{}, g.Width*g.Height),
	}
	for _, c := range g.Cells() {
		p.free[c] = struct{}{}
	}
	return p
}

// placeGroup places the largest footprints first. The sort is stable so
// equal sizes keep their declaration order.
func (p *placer) placeGroup(group []*Placed) error {
	sorted := slices.Clone(group)
	slices.SortStableFunc(sorted, func(a, b *Placed) int {
		if c := cmp.Compare(b.Module.Height, a.Module.Height); c != 0 {
			return c
		}
		return cmp.Compare(b.Module.Width, a.Module.Width)
	})
	for _, pm := range sorted {
		if err := p.place(pm); err != nil {
			return err
		}
	}
	return nil
}

func (p *placer) place(pm *Placed) error {
	m := pm.Module

	var (
		anchor Cell
		ok     bool
	)
	switch {
	case m.X == nil && m.Y == nil:
		anchor, ok = p.findXY(m)
	case m.X == nil:
		anchor, ok = p.findX(m, *m.Y)
	case m.Y == nil:
		anchor, ok = p.findY(m, *m.X)
	default:
		anchor = Cell{*m.X, *m.Y}
		if reason := p.siteProblem(m, anchor); reason != "" {
			return errors.New(errors.ErrCodePlacementFailed, "module '%s' couldn't be placed at %s: %s", m.Name, anchor, reason)
		}
		ok = true
	}
	if !ok {
		if m.Y != nil && m.Height > 1 && *m.Y&1 == 0 {
			return errors.New(errors.ErrCodePlacementFailed, "module '%s' couldn't be placed: %d-row modules need an odd row, got %d", m.Name, m.Height, *m.Y)
		}
		return errors.New(errors.ErrCodePlacementFailed, "module '%s' couldn't be placed", m.Name)
	}

	x, y := anchor.X, anchor.Y
	pm.Module.X, pm.Module.Y = &x, &y
	pm.Anchor = anchor
	p.byAnchor[anchor] = pm
	for _, c := range m.Cells(anchor) {
		delete(p.free, c)
		p.owner[c] = pm
	}

	p.logger.Debug("placed module",
		"name", m.Name,
		"size", sizeString(m),
		"x", x,
		"y", y)
	return nil
}

func (p *placer) findXY(m ModuleSlot) (Cell, bool) {
	for y := 0; y < p.grid.Height; y++ {
		if c, ok := p.findX(m, y); ok {
			return c, true
		}
	}
	return Cell{}, false
}

func (p *placer) findX(m ModuleSlot, y int) (Cell, bool) {
	for _, c := range p.grid.rowCells(y) {
		if p.siteProblem(m, c) == "" {
			return c, true
		}
	}
	return Cell{}, false
}

func (p *placer) findY(m ModuleSlot, x int) (Cell, bool) {
	for y := 0; y < p.grid.Height; y++ {
		c := Cell{x, y}
		if p.siteProblem(m, c) == "" {
			return c, true
		}
	}
	return Cell{}, false
}

// siteProblem returns why m cannot be anchored at a, or "" if it can.
func (p *Placement) siteProblem(m ModuleSlot, a Cell) string {
	if m.Height > 1 && a.Y&1 == 0 {
		return "multi-row modules must start on an odd row"
	}
	if m.Width > 1 && (a.X^(a.X+m.Width-1))&p.grid.HalfOffset != 0 {
		return "footprint crosses the half boundary"
	}
	for _, c := range m.Cells(a) {
		if _, ok := p.free[c]; !ok {
			if owner, taken := p.owner[c]; taken {
				return "cell " + c.String() + " is taken by '" + owner.Module.Name + "'"
			}
			return "cell " + c.String() + " is outside the grid"
		}
	}
	return ""
}

// Suitable reports whether m could be anchored at a given the current
// occupancy.
func (p *Placement) Suitable(m ModuleSlot, a Cell) bool {
	return p.siteProblem(m, a) == ""
}

// Grid returns the grid the placement was computed on.
func (p *Placement) Grid() Grid { return p.grid }

// At returns the module anchored at c.
func (p *Placement) At(c Cell) (ModuleSlot, bool) {
	pm, ok := p.byAnchor[c]
	if !ok {
		return ModuleSlot{}, false
	}
	return pm.Module, true
}

// Owner returns the module covering c and its anchor.
func (p *Placement) Owner(c Cell) (Placed, bool) {
	pm, ok := p.owner[c]
	if !ok {
		return Placed{}, false
	}
	return *pm, true
}

// IsFree reports whether c is an unoccupied grid cell.
func (p *Placement) IsFree(c Cell) bool {
	_, ok := p.free[c]
	return ok
}

// FreeCount returns the number of unoccupied cells.
func (p *Placement) FreeCount() int { return len(p.free) }

// Len returns the number of placed modules.
func (p *Placement) Len() int { return len(p.order) }

// Anchors returns the anchor cell → module table.
func (p *Placement) Anchors() map[Cell]ModuleSlot {
	out := make(map[Cell]ModuleSlot, len(p.byAnchor))
	for c, pm := range p.byAnchor {
		out[c] = pm.Module
	}
	return out
}

// Placed returns all placed modules in declaration order.
func (p *Placement) Placed() []Placed {
	out := make([]Placed, len(p.order))
	for i, pm := range p.order {
		out[i] = *pm
	}
	return out
}

// Modules returns the module list in declaration order with every anchor
// resolved. Feeding it back to Place reproduces the same placement.
func (p *Placement) Modules() []ModuleSlot {
	out := make([]ModuleSlot, len(p.order))
	for i, pm := range p.order {
		out[i] = pm.Module
	}
	return out
}

func sizeString(m ModuleSlot) string {
	return strconv.Itoa(m.Width) + "x" + strconv.Itoa(m.Height)
}
