package floorplan

import (
	"slices"
	"strconv"

	"github.com/htfab/tt-multiplexer/pkg/config"
	"github.com/htfab/tt-multiplexer/pkg/errors"
	"github.com/htfab/tt-multiplexer/pkg/tracks"
)

// Pad ring of the user area. The lowest padsBelowCtrl pads sit below the
// controller on each side; user pads fill the ring up to the last
// ctrlPads pads, which carry the controller inputs.
const (
	padsBelowCtrl = 8
	padCount      = 38
	ctrlPads      = 6
)

// padKind is the direction of a user pad.
type padKind int

const (
	padIn padKind = iota
	padOut
	padInOut
)

type pad struct {
	kind  padKind
	index int
}

func (p pad) pins() []string {
	i := "[" + strconv.Itoa(p.index) + "]"
	switch p.kind {
	case padIn:
		return []string{"pad_ui_in" + i}
	case padOut:
		return []string{"pad_uo_out" + i}
	default:
		return []string{"pad_uio_in" + i, "pad_uio_out" + i, "pad_uio_oe_n" + i}
	}
}

func padPins(pads []pad) []string {
	var out []string
	for _, p := range pads {
		out = append(out, p.pins()...)
	}
	return out
}

// ctrlPins are the controller inputs on the bottom left edge.
var ctrlPins = []string{"k_one", "k_zero", "ctrl_sel_rst_n", "ctrl_sel_inc", "ctrl_ena"}

// classifyPads splits the user pads into those reached from the bottom
// left, bottom right and top edges of the controller. Top pads are listed
// in reverse ring order.
func classifyPads(u config.UIO) (bl, br, top []pad, err error) {
	offset := padCount - (u.O + u.I + u.IO) - ctrlPads
	if offset < 0 {
		return nil, nil, nil, errors.New(errors.ErrCodeInvalidConfig,
			"%d user pads exceed the pad ring", u.O+u.I+u.IO)
	}

	var all []pad
	for i := range u.I {
		all = append(all, pad{padIn, i})
	}
	for i := range u.O {
		all = append(all, pad{padOut, i})
	}
	for i := range u.IO {
		all = append(all, pad{padInOut, i})
	}

	for i, p := range all {
		switch ring := i + offset; {
		case ring < padsBelowCtrl:
			br = append(br, p)
		case ring >= padCount-padsBelowCtrl:
			bl = append(bl, p)
		default:
			top = append(top, p)
		}
	}
	slices.Reverse(top)
	return bl, br, top, nil
}

func (l *Layout) controllerPads() error {
	bl, br, top, err := classifyPads(l.Config.TT.UIO)
	if err != nil {
		return err
	}

	blPins := append(padPins(bl), ctrlPins...)
	brPins := padPins(br)
	topPins := padPins(top)
	half := len(topPins) / 2
	tlPins, trPins := topPins[:half], topPins[half:]

	g, err := l.grid(l.Config.TT.Spine.VLayer, config.AxisX)
	if err != nil {
		return err
	}
	lo, hi, ok := l.Pins.CtrlVSpine.Span()
	if !ok {
		return errors.New(errors.ErrCodeInternal, "vertical spine has no pins")
	}
	width := l.Globals.Ctrl.Width.Units

	spread := func(dst tracks.Assignment, pins []string, start, end int) error {
		ts, err := tracks.Distribute(len(pins), start, end, 2, g)
		if err != nil {
			return err
		}
		a, err := tracks.Finalize(pins, ts)
		if err != nil {
			return err
		}
		return dst.Merge(a)
	}

	l.Pins.CtrlIOTop = tracks.Assignment{}
	l.Pins.CtrlIOBot = tracks.Assignment{}
	for _, s := range []struct {
		dst        tracks.Assignment
		pins       []string
		start, end int
	}{
		{l.Pins.CtrlIOTop, tlPins, 0, lo},
		{l.Pins.CtrlIOBot, blPins, 0, lo},
		{l.Pins.CtrlIOTop, trPins, hi, width},
		{l.Pins.CtrlIOBot, brPins, hi, width},
	} {
		if err := spread(s.dst, s.pins, s.start, s.end); err != nil {
			return err
		}
	}
	l.logger.Debug("laid out controller pads", "top", len(l.Pins.CtrlIOTop), "bottom", len(l.Pins.CtrlIOBot))
	return nil
}
