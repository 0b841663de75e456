package floorplan

import (
	"github.com/htfab/tt-multiplexer/pkg/config"
	"github.com/htfab/tt-multiplexer/pkg/errors"
	"github.com/htfab/tt-multiplexer/pkg/geom"
)

// Height of a block and a row mux, in row-height units.
const (
	blockRowUnits = 2
	muxRowUnits   = 1
)

// Extent is the size of a floorplan element, with the pitch at which it
// repeats where that applies.
type Extent struct {
	Width  geom.SDim `json:"width"`
	Height geom.SDim `json:"height"`
	Pitch  geom.SDim `json:"pitch,omitzero"`
}

// Globals are the dimensions shared by every element of a kind.
type Globals struct {
	MarginX geom.SDim `json:"margin_x"`
	MarginY geom.SDim `json:"margin_y"`
	Block   Extent    `json:"block"`
	Mux     Extent    `json:"mux"`
	Branch  Extent    `json:"branch"`
	Ctrl    Extent    `json:"ctrl"`
	Top     Extent    `json:"top"`
}

// BusWidths is the width of an output and an input bus.
type BusWidths struct {
	OW int `json:"ow"`
	IW int `json:"iw"`
}

// busWidths returns the vertical spine and the user module bus widths.
// The spine carries the user buses plus the mux control signals.
func busWidths(u config.UIO) (spine, user BusWidths) {
	user = BusWidths{
		OW: u.O + 2*u.IO,
		IW: u.I + u.IO,
	}
	spine = BusWidths{
		OW: user.OW + 2,
		IW: user.IW + 10 + 1 + 2,
	}
	return spine, user
}

// hspineTracks is the number of horizontal tracks the row mux must fit.
func hspineTracks(user BusWidths) int {
	return user.IW + user.OW + 6 + 1 + 3
}

func computeGlobals(cfg *config.Config, spine, user BusWidths) (Globals, error) {
	var (
		site = cfg.PDK.Site
		die  = cfg.PDK.Die
		tt   = cfg.TT
		g    Globals
	)

	g.MarginX = geom.XDim(site.Width, tt.Margin.X)
	g.MarginY = geom.YDim(site.Height, tt.Margin.Y)

	vt, err := cfg.Tracks(tt.Spine.VLayer, config.AxisX)
	if err != nil {
		return g, err
	}

	// Spine and pad tracks are kept at twice their minimum pitch.
	hSites := die.Width / site.Width
	padTracks := tt.UIO.O + tt.UIO.I + 3*tt.UIO.IO + 2
	rsvdWidth := 2 * vt.Pitch * (spine.IW + spine.OW + padTracks)
	rsvdSites := (rsvdWidth + site.Width - 1) / site.Width
	rsvdSites = (rsvdSites + 1) &^ 1

	colSites := geom.FloorDiv(hSites-rsvdSites, tt.Grid.X)
	if colSites <= tt.Margin.X {
		return g, errors.New(errors.ErrCodeInvalidConfig,
			"die too narrow: %d sites per column with a margin of %d", colSites, tt.Margin.X)
	}

	g.Block.Width = geom.XDim(site.Width, colSites-tt.Margin.X)
	g.Block.Pitch = geom.XDim(site.Width, colSites)
	g.Mux.Width = geom.XDim(site.Width, colSites*(tt.Grid.X/2)-tt.Margin.X)
	g.Branch.Width = g.Mux.Width
	g.Ctrl.Width = geom.XDim(site.Width, rsvdSites)
	g.Top.Width = geom.XDim(site.Width, rsvdSites+2*(g.Mux.Width.Sites+tt.Margin.X))

	vSites := die.Height / site.Height
	rowSites := vSites/(tt.Grid.Y/2) - 3*tt.Margin.Y
	rowSites /= 2*blockRowUnits + muxRowUnits
	if rowSites <= 0 {
		return g, errors.New(errors.ErrCodeInvalidConfig, "die too low for %d grid rows", tt.Grid.Y)
	}

	g.Block.Height = geom.YDim(site.Height, rowSites*blockRowUnits)
	g.Mux.Height = geom.YDim(site.Height, rowSites*muxRowUnits)
	g.Branch.Pitch = geom.YDim(site.Height, 2*g.Block.Height.Sites+g.Mux.Height.Sites+3*tt.Margin.Y)
	g.Branch.Height = geom.YDim(site.Height, g.Branch.Pitch.Sites-tt.Margin.Y)
	g.Ctrl.Height = geom.YDim(site.Height, 2*g.Block.Height.Sites+tt.Margin.Y)
	g.Top.Height = geom.YDim(site.Height, g.Branch.Pitch.Sites*(tt.Grid.Y/2)-tt.Margin.Y)

	ht, err := cfg.Tracks(tt.Spine.HLayer, config.AxisY)
	if err != nil {
		return g, err
	}
	if need := hspineTracks(user) * ht.Pitch; g.Mux.Height.Units < need {
		return g, errors.New(errors.ErrCodeInvalidConfig,
			"mux too small for horizontal spine: %d units, need %d", g.Mux.Height.Units, need)
	}
	return g, nil
}
