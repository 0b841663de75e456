package floorplan

import (
	"github.com/htfab/tt-multiplexer/pkg/errors"
	"github.com/htfab/tt-multiplexer/pkg/geom"
)

// Orientation is a DEF placement orientation. Only the four axis-aligned
// variants without rotation by 90 degrees are supported.
type Orientation string

const (
	N  Orientation = "N"  // as drawn
	S  Orientation = "S"  // rotated 180 degrees
	FN Orientation = "FN" // mirrored in x
	FS Orientation = "FS" // mirrored in y
)

type flips struct{ x, y bool }

var orientFlips = map[Orientation]flips{
	N:  {false, false},
	FN: {true, false},
	FS: {false, true},
	S:  {true, true},
}

var flipOrient = map[flips]Orientation{
	{false, false}: N,
	{true, false}:  FN,
	{false, true}:  FS,
	{true, true}:   S,
}

// ParseOrientation validates a DEF orientation name.
func ParseOrientation(s string) (Orientation, error) {
	o := Orientation(s)
	if _, ok := orientFlips[o]; !ok {
		return "", errors.New(errors.ErrCodeUnsupportedOrientation, "unsupported orientation %q", s)
	}
	return o, nil
}

// Valid reports whether o is one of the supported orientations.
func (o Orientation) Valid() bool {
	_, ok := orientFlips[o]
	return ok
}

// Then returns the orientation of an element placed with inner inside a
// parent placed with o.
func (o Orientation) Then(inner Orientation) (Orientation, error) {
	a, ok := orientFlips[o]
	if !ok {
		return "", errors.New(errors.ErrCodeUnsupportedOrientation, "unsupported orientation %q", o)
	}
	b, ok := orientFlips[inner]
	if !ok {
		return "", errors.New(errors.ErrCodeUnsupportedOrientation, "unsupported orientation %q", inner)
	}
	return flipOrient[flips{a.x != b.x, a.y != b.y}], nil
}

// Place maps r, given in the frame of a parent of size w×h, through o.
// The result is again normalized with X0 <= X1 and Y0 <= Y1.
func (o Orientation) Place(w, h int, r geom.Rect) (geom.Rect, error) {
	f, ok := orientFlips[o]
	if !ok {
		return geom.Rect{}, errors.New(errors.ErrCodeUnsupportedOrientation, "unsupported orientation %q", o)
	}
	if f.x {
		r.X0, r.X1 = w-r.X1, w-r.X0
	}
	if f.y {
		r.Y0, r.Y1 = h-r.Y1, h-r.Y0
	}
	return r, nil
}
