package floorplan

import (
	"fmt"

	"github.com/htfab/tt-multiplexer/pkg/config"
	"github.com/htfab/tt-multiplexer/pkg/errors"
	"github.com/htfab/tt-multiplexer/pkg/geom"
	"github.com/htfab/tt-multiplexer/pkg/placer"
)

// Macro names of the fixed infrastructure cells.
const (
	MuxModName  = "tt_mux"
	CtrlModName = "tt_ctrl"
)

// UserModName is the macro name of a user module.
func UserModName(name string) string { return "tt_um_" + name }

// Floorplan is a complete floorplan: the layout, the placement it was
// built from and the element tree.
type Floorplan struct {
	Layout    *Layout
	Placement *placer.Placement
	Die       *Element
}

// New computes the layout for cfg and builds the element tree for p.
func New(cfg *config.Config, p *placer.Placement, opts ...Option) (*Floorplan, error) {
	l, err := NewLayout(cfg, opts...)
	if err != nil {
		return nil, err
	}
	die, err := l.Build(p)
	if err != nil {
		return nil, err
	}
	return &Floorplan{Layout: l, Placement: p, Die: die}, nil
}

// Macros returns every macro instance in die coordinates.
func (f *Floorplan) Macros() ([]MacroInstance, error) {
	return f.Die.SubMacros()
}

// Build creates the die element for placement p. The placement grid must
// match the configured grid.
func (l *Layout) Build(p *placer.Placement) (*Element, error) {
	g, want := p.Grid(), l.Config.TT.Grid
	if g.Width != want.X || g.Height != want.Y || g.HalfOffset != want.HalfOffset {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"placement grid %dx%d/%d does not match configured grid %dx%d/%d",
			g.Width, g.Height, g.HalfOffset, want.X, want.Y, want.HalfOffset)
	}

	die := &Element{
		Kind:   KindDie,
		Width:  l.Config.PDK.Die.Width,
		Height: l.Config.PDK.Die.Height,
	}
	top := l.newTop(p)
	die.add(top, geom.Pt((die.Width-top.Width)/2, (die.Height-top.Height)/2), N, "top_I")

	l.logger.Debug("built element tree", "modules", p.Len(), "branches", l.Config.TT.Grid.Y)
	return die, nil
}

func (l *Layout) newTop(p *placer.Placement) *Element {
	glb := l.Globals
	top := &Element{
		Kind:   KindTop,
		Width:  glb.Top.Width.Units,
		Height: glb.Top.Height.Units,
	}

	// Even branches sit on the left, odd ones mirrored on the right.
	for by := range l.Config.TT.Grid.Y {
		x, o := 0, N
		if by&1 == 1 {
			x, o = top.Width-glb.Branch.Width.Units, FN
		}
		y := (by >> 1) * glb.Branch.Pitch.Units
		top.add(l.newBranch(p, by), geom.Pt(x, y), o, fmt.Sprintf(`branch\[%d\]`, by))
	}

	ctrl := &Element{
		Kind:    KindController,
		ModName: CtrlModName,
		Width:   glb.Ctrl.Width.Units,
		Height:  glb.Ctrl.Height.Units,
	}
	cx := glb.Branch.Width.Units + glb.MarginX.Units
	cy := (l.Config.TT.Grid.Y/4)*glb.Branch.Pitch.Units - (glb.Block.Height.Units + glb.MarginY.Units)
	top.add(ctrl, geom.Pt(cx, cy), N, "ctrl_I")
	return top
}

// newBranch builds branch by, which serves grid rows 2*(by/2) and
// 2*(by/2)+1 of one grid half. Blocks of even columns bx sit below the
// mux, odd ones above it, flipped.
func (l *Layout) newBranch(p *placer.Placement, by int) *Element {
	glb := l.Globals
	br := &Element{
		Kind:   KindBranch,
		Width:  glb.Branch.Width.Units,
		Height: glb.Branch.Height.Units,
	}

	mux := &Element{
		Kind:    KindMux,
		ModName: MuxModName,
		Width:   glb.Mux.Width.Units,
		Height:  glb.Mux.Height.Units,
	}
	br.add(mux, geom.Pt(0, glb.Block.Height.Units+glb.MarginY.Units), N, "mux_I")

	half := p.Grid().HalfOffset
	for bx := range l.Config.TT.Grid.X {
		cell := placer.Cell{
			X: (by&1)*half + bx>>1,
			Y: (by>>1)*2 + bx&1,
		}
		m, ok := p.At(cell)
		if !ok {
			continue
		}

		blk := l.newBlock(m)
		x := (bx >> 1) * glb.Block.Pitch.Units
		y, o, side := 0, N, "bot"
		if bx&1 == 1 {
			y, o, side = br.Height-glb.Block.Height.Units, FS, "top"
		}
		name := fmt.Sprintf(`col_um\[%d\].um_%s_I.block_%d_%d.tt_um_I`, bx>>1, side, cell.Y, cell.X)
		br.add(blk, geom.Pt(x, y), o, name)
	}
	return br
}

func (l *Layout) newBlock(m placer.ModuleSlot) *Element {
	glb := l.Globals
	return &Element{
		Kind:    KindBlock,
		ModName: UserModName(m.Name),
		Width:   m.Width*glb.Block.Width.Units + (m.Width-1)*glb.MarginX.Units,
		Height:  m.Height*glb.Block.Height.Units + (m.Height-1)*glb.MarginY.Units,
		Module:  &m,
	}
}
