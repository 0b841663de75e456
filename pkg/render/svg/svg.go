// Package svg draws a floorplan as SVG.
//
// Coordinates inside the drawing are database units with the y axis
// pointing up, as in the layout. The outer group scales them to
// micrometres and flips the y axis, so the viewBox is the die size in µm.
package svg

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	"github.com/htfab/tt-multiplexer/pkg/floorplan"
	"github.com/htfab/tt-multiplexer/pkg/tracks"
)

// Pin marker geometry, in database units.
const (
	pinWidth = 300
	pinDepth = 1000
)

// DefaultColors is the fill colour of each element kind. Kinds without a
// colour are not drawn, only their children.
var DefaultColors = map[floorplan.Kind]string{
	floorplan.KindDie:        "silver",
	floorplan.KindTop:        "lightslategray",
	floorplan.KindMux:        "mediumslateblue",
	floorplan.KindBlock:      "crimson",
	floorplan.KindController: "yellowgreen",
}

// Option configures rendering.
type Option func(*renderer)

type renderer struct {
	pins   *floorplan.Pins
	colors map[floorplan.Kind]string
	noPins bool
	labels bool
}

// WithoutPins omits the pin markers.
func WithoutPins() Option { return func(r *renderer) { r.noPins = true } }

// WithColors overrides the fill colour of the given kinds.
func WithColors(c map[floorplan.Kind]string) Option {
	return func(r *renderer) { maps.Copy(r.colors, c) }
}

// WithLabels writes the module name into every user block.
func WithLabels() Option { return func(r *renderer) { r.labels = true } }

// Render draws the die of fp.
func Render(fp *floorplan.Floorplan, opts ...Option) []byte {
	r := renderer{
		pins:   &fp.Layout.Pins,
		colors: maps.Clone(DefaultColors),
	}
	for _, opt := range opts {
		opt(&r)
	}

	die := fp.Die
	w, h := float64(die.Width)/1e3, float64(die.Height)/1e3

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.3f %.3f" width="%.0f" height="%.0f">`+"\n", w, h, w, h)
	fmt.Fprintf(&buf, `<g transform="scale(0.001) translate(0 %d) scale(1 -1)">`+"\n", die.Height)
	r.element(&buf, die)
	buf.WriteString("</g>\n")
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *renderer) element(buf *bytes.Buffer, e *floorplan.Element) {
	if c, ok := r.colors[e.Kind]; ok {
		fmt.Fprintf(buf, `<rect class="%s" width="%d" height="%d" fill="%s"/>`+"\n", e.Kind, e.Width, e.Height, c)
	}
	if !r.noPins {
		r.elementPins(buf, e)
	}
	if r.labels && e.Kind == floorplan.KindBlock && e.Module != nil {
		// Undo the y flip so the text is upright.
		fmt.Fprintf(buf, `<text transform="translate(%d %d) scale(1 -1)" font-size="%d" text-anchor="middle" fill="white">%s</text>`+"\n",
			e.Width/2, e.Height/2, e.Height/8, e.Module.Name)
	}

	for _, c := range e.Children {
		fmt.Fprintf(buf, `<g transform="%s">`+"\n", childTransform(c))
		r.element(buf, c.Elem)
		buf.WriteString("</g>\n")
	}
}

// childTransform places a child at its position and applies its
// orientation about its own frame.
func childTransform(c floorplan.Child) string {
	t := fmt.Sprintf("translate(%d %d)", c.Pos.X, c.Pos.Y)
	switch c.Orient {
	case floorplan.FN:
		t += fmt.Sprintf(" translate(%d 0) scale(-1 1)", c.Elem.Width)
	case floorplan.FS:
		t += fmt.Sprintf(" translate(0 %d) scale(1 -1)", c.Elem.Height)
	case floorplan.S:
		t += fmt.Sprintf(" translate(%d %d) scale(-1 -1)", c.Elem.Width, c.Elem.Height)
	}
	return t
}

func (r *renderer) elementPins(buf *bytes.Buffer, e *floorplan.Element) {
	p := r.pins
	switch e.Kind {
	case floorplan.KindBlock:
		vpins(buf, p.Block, e.Height-pinDepth, pinDepth)
	case floorplan.KindMux:
		vpins(buf, p.MuxBot, 0, pinDepth)
		vpins(buf, p.MuxTop, e.Height-pinDepth, pinDepth)
		for _, t := range sorted(p.MuxPort) {
			fmt.Fprintf(buf, `<rect x="%d" y="%d" width="%d" height="%d"/>`+"\n", e.Width-pinDepth, t-pinWidth/2, pinDepth, pinWidth)
		}
	case floorplan.KindController:
		vpins(buf, p.CtrlVSpine, 0, e.Height)
		vpins(buf, p.CtrlIOTop, e.Height-pinDepth, pinDepth)
		vpins(buf, p.CtrlIOBot, 0, pinDepth)
	}
}

// vpins draws vertical pin markers at every track of a.
func vpins(buf *bytes.Buffer, a tracks.Assignment, y, h int) {
	for _, t := range sorted(a) {
		fmt.Fprintf(buf, `<rect x="%d" y="%d" width="%d" height="%d"/>`+"\n", t-pinWidth/2, y, pinWidth, h)
	}
}

func sorted(a tracks.Assignment) []int {
	return slices.Sorted(maps.Values(a))
}
