package floorplan

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/htfab/tt-multiplexer/pkg/config"
	"github.com/htfab/tt-multiplexer/pkg/tracks"
)

// Pins holds one track assignment per interface boundary. Coordinates are
// relative to the element the pins belong to.
type Pins struct {
	Block      tracks.Assignment `json:"block"`
	MuxBot     tracks.Assignment `json:"mux_bot"`
	MuxTop     tracks.Assignment `json:"mux_top"`
	MuxBus     tracks.Assignment `json:"mux_bus"`
	MuxPort    tracks.Assignment `json:"mux_port"`
	CtrlVSpine tracks.Assignment `json:"ctrl_vspine"`
	CtrlIOTop  tracks.Assignment `json:"ctrl_io_top"`
	CtrlIOBot  tracks.Assignment `json:"ctrl_io_bot"`
}

// Tables returns the pin tables keyed by their boundary name.
func (p *Pins) Tables() map[string]tracks.Assignment {
	return map[string]tracks.Assignment{
		"block":       p.Block,
		"mux_bot":     p.MuxBot,
		"mux_top":     p.MuxTop,
		"mux_bus":     p.MuxBus,
		"mux_port":    p.MuxPort,
		"ctrl_vspine": p.CtrlVSpine,
		"ctrl_io_top": p.CtrlIOTop,
		"ctrl_io_bot": p.CtrlIOBot,
	}
}

// Layout is the placement independent part of a floorplan.
type Layout struct {
	Config  *config.Config `json:"-"`
	Globals Globals        `json:"globals"`
	VSpine  BusWidths      `json:"vspine"`
	User    BusWidths      `json:"user"`
	Pins    Pins           `json:"pins"`

	logger *log.Logger
}

// Option configures layout and floorplan construction.
type Option func(*Layout)

// WithLogger reports each computed stage at debug level.
func WithLogger(l *log.Logger) Option {
	return func(lay *Layout) { lay.logger = l }
}

// NewLayout computes the global dimensions and all pin tables for cfg.
func NewLayout(cfg *config.Config, opts ...Option) (*Layout, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	l := &Layout{
		Config: cfg,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(l)
	}

	l.VSpine, l.User = busWidths(cfg.TT.UIO)

	var err error
	if l.Globals, err = computeGlobals(cfg, l.VSpine, l.User); err != nil {
		return nil, err
	}
	l.logger.Debug("computed global dimensions",
		"block", l.Globals.Block.Width.Units,
		"pitch", l.Globals.Block.Pitch.Units,
		"mux_height", l.Globals.Mux.Height.Units,
		"ctrl", l.Globals.Ctrl.Width.Units)

	stages := []struct {
		name string
		fn   func() error
	}{
		{"user interface", l.userInterface},
		{"horizontal spine", l.horizontalSpine},
		{"vertical spine", l.verticalSpine},
		{"controller pads", l.controllerPads},
	}
	for _, s := range stages {
		if err := s.fn(); err != nil {
			return nil, fmt.Errorf("%s layout: %w", s.name, err)
		}
	}
	return l, nil
}

func (l *Layout) grid(layer string, axis config.Axis) (tracks.Grid, error) {
	tg, err := l.Config.Tracks(layer, axis)
	return tracks.Grid(tg), err
}

// BlockPinSpec is the pin interface of a user module along the edge that
// faces the mux, left to right.
func (l *Layout) BlockPinSpec() tracks.PinSpec {
	u := l.Config.TT.UIO
	return tracks.PinSpec{
		tracks.Skip(1), // k_zero is not routed into the block
		tracks.BusOf("uio_oe", u.IO),
		tracks.BusOf("uio_out", u.IO),
		tracks.BusOf("uo_out", u.O),
		tracks.BusOf("uio_in", u.IO),
		tracks.BusOf("ui_in", u.I-2),
		tracks.Pin("rst_n"),
		tracks.Pin("clk"),
		tracks.Pin("ena"),
	}
}

// MuxPinSpec is the row mux side of the interface to the block in
// column n, where even n are below the mux and odd n above.
func (l *Layout) MuxPinSpec(n int) tracks.PinSpec {
	return tracks.PinSpec{
		tracks.RangeOf("um_k_zero", n, 1),
		tracks.RangeOf("um_ow", n*l.User.OW, l.User.OW),
		tracks.RangeOf("um_iw", n*l.User.IW, l.User.IW),
		tracks.RangeOf("um_ena", n, 1),
	}
}

func (l *Layout) userInterface() error {
	block, _, err := tracks.CheckAgreement("block", l.BlockPinSpec(), "mux", l.MuxPinSpec(0))
	if err != nil {
		return err
	}

	g, err := l.grid(l.Config.TT.Spine.VLayer, config.AxisX)
	if err != nil {
		return err
	}
	ts, err := tracks.Distribute(len(block), 0, l.Globals.Block.Width.Units, 0, g)
	if err != nil {
		return err
	}
	if l.Pins.Block, err = tracks.Finalize(block, ts); err != nil {
		return err
	}

	var (
		muxTracks []int
		bot, top  []string
	)
	for i := range l.Config.TT.Grid.X / 2 {
		ofs := i * l.Globals.Block.Pitch.Units
		for _, t := range ts {
			muxTracks = append(muxTracks, t+ofs)
		}
		eb, err := l.MuxPinSpec(2 * i).Expand()
		if err != nil {
			return err
		}
		et, err := l.MuxPinSpec(2*i + 1).Expand()
		if err != nil {
			return err
		}
		bot = append(bot, eb...)
		top = append(top, et...)
	}

	if l.Pins.MuxBot, err = tracks.Finalize(bot, muxTracks); err != nil {
		return err
	}
	if l.Pins.MuxTop, err = tracks.Finalize(top, muxTracks); err != nil {
		return err
	}
	l.logger.Debug("laid out user interface", "block_pins", len(l.Pins.Block), "mux_pins", len(l.Pins.MuxBot)+len(l.Pins.MuxTop))
	return nil
}

// HSpinePinSpec is the row mux side of the horizontal spine. Its order
// follows the mux input pins since most of them connect one to one.
func (l *Layout) HSpinePinSpec() tracks.PinSpec {
	return tracks.PinSpec{
		tracks.RangeOf("bus_gd", 3, 1), // so_gh
		tracks.BusOf("bus_ow", l.User.OW),
		tracks.RangeOf("bus_gd", 1, 2), // so_gl, si_gh
		tracks.BusOf("bus_iw", l.User.IW),
		tracks.RangeOf("bus_gd", 0, 1), // si_sel[9]
		tracks.Skip(3),
		tracks.RangeOf("bus_sel", 0, 1),
		tracks.Skip(1),
		tracks.RangeOf("bus_sel", 1, 4),
		tracks.Pin("bus_ena"),
		tracks.Skip(8), // si_gl, k_zero, k_one, addr
	}
}

// VSpinePinSpec is the vertical spine side of the horizontal spine.
func (l *Layout) VSpinePinSpec() tracks.PinSpec {
	return tracks.PinSpec{
		tracks.BusOf("spine_ow", l.VSpine.OW),
		tracks.BusOf("spine_iw", l.VSpine.IW),
		tracks.Pin("k_zero"),
		tracks.Pin("k_one"),
		tracks.BusOf("addr", 5),
	}
}

func (l *Layout) horizontalSpine() error {
	bus, port, err := tracks.CheckAgreement("mux", l.HSpinePinSpec(), "spine", l.VSpinePinSpec())
	if err != nil {
		return err
	}

	g, err := l.grid(l.Config.TT.Spine.HLayer, config.AxisY)
	if err != nil {
		return err
	}
	ts, err := tracks.Distribute(len(bus), 0, l.Globals.Mux.Height.Units, 0, g)
	if err != nil {
		return err
	}
	if l.Pins.MuxBus, err = tracks.Finalize(bus, ts); err != nil {
		return err
	}
	if l.Pins.MuxPort, err = tracks.Finalize(port, ts); err != nil {
		return err
	}
	l.logger.Debug("laid out horizontal spine", "tracks", len(ts))
	return nil
}

func (l *Layout) verticalSpine() error {
	spec := tracks.PinSpec{
		tracks.BusOf("spine_ow", l.VSpine.OW),
		tracks.Skip(3), // power grid strap
		tracks.BusOf("spine_iw", l.VSpine.IW),
	}
	g, err := l.grid(l.Config.TT.Spine.VLayer, config.AxisX)
	if err != nil {
		return err
	}
	if l.Pins.CtrlVSpine, err = tracks.Allocate(spec, 0, l.Globals.Ctrl.Width.Units, 2, g); err != nil {
		return err
	}
	l.logger.Debug("laid out vertical spine", "pins", len(l.Pins.CtrlVSpine))
	return nil
}
