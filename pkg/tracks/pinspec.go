package tracks

import (
	"strconv"

	"github.com/htfab/tt-multiplexer/pkg/errors"
)

// Gap marks a padding slot in an expanded pin sequence.
const Gap = ""

// Kind is the shape of a width specifier.
type Kind int

const (
	invalidKind Kind = iota
	Scalar           // one unindexed pin
	Bus              // name[n-1] .. name[0]
	Range            // name[off+n-1] .. name[off]
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Bus:
		return "bus"
	case Range:
		return "range"
	default:
		return "invalid"
	}
}

// Width is the width specifier of a PinSpec entry. The zero value is
// malformed; build one with [One], [N] or [Sub].
type Width struct {
	Kind   Kind
	N      int
	Offset int
}

// One is a single unindexed pin.
func One() Width { return Width{Kind: Scalar, N: 1} }

// N is an n-bit bus with indices n-1 down to 0.
func N(n int) Width { return Width{Kind: Bus, N: n} }

// Sub is the slice [off+n-1:off] of a wider bus.
func Sub(off, n int) Width { return Width{Kind: Range, N: n, Offset: off} }

// Slots returns the number of track slots the specifier occupies.
func (w Width) Slots() int {
	if w.Kind == Scalar {
		return 1
	}
	return w.N
}

func (w Width) validate() error {
	switch w.Kind {
	case Scalar:
		return nil
	case Bus:
		if w.N < 0 {
			return errors.New(errors.ErrCodeInvalidPinSpec, "negative bus width %d", w.N)
		}
		return nil
	case Range:
		if w.N < 0 || w.Offset < 0 {
			return errors.New(errors.ErrCodeInvalidPinSpec, "invalid range [%d +%d]", w.Offset, w.N)
		}
		return nil
	default:
		return errors.New(errors.ErrCodeInvalidPinSpec, "width must be scalar, bus or range")
	}
}

func (w Width) String() string {
	switch w.Kind {
	case Scalar:
		return "1"
	case Bus:
		return strconv.Itoa(w.N)
	case Range:
		return "(" + strconv.Itoa(w.Offset) + "," + strconv.Itoa(w.N) + ")"
	default:
		return "?"
	}
}

// Entry is one element of a PinSpec. An empty Name makes the entry a run
// of padding slots.
type Entry struct {
	Name  string
	Width Width
}

// Pin is a scalar pin.
func Pin(name string) Entry { return Entry{Name: name, Width: One()} }

// BusOf is an n-bit bus.
func BusOf(name string, n int) Entry { return Entry{Name: name, Width: N(n)} }

// RangeOf is n bits of a bus starting at index off.
func RangeOf(name string, off, n int) Entry { return Entry{Name: name, Width: Sub(off, n)} }

// Skip is n padding slots.
func Skip(n int) Entry { return Entry{Width: N(n)} }

// PinSpec is an ordered interface declaration.
type PinSpec []Entry

// Expand flattens s into one pin name per track slot. Bus and range indices
// run from high to low; padding slots are [Gap].
func (s PinSpec) Expand() ([]string, error) {
	n, err := s.Len()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, n)
	for _, e := range s {
		out = e.appendTo(out)
	}
	return out, nil
}

// Len returns the number of track slots s occupies, padding included.
func (s PinSpec) Len() (int, error) {
	n := 0
	for i, e := range s {
		if err := e.Width.validate(); err != nil {
			return 0, errors.Wrap(errors.ErrCodeInvalidPinSpec, err, "entry %d (%q)", i, e.Name)
		}
		n += e.Width.Slots()
	}
	return n, nil
}

func (e Entry) appendTo(out []string) []string {
	w := e.Width
	if e.Name == Gap {
		for range w.Slots() {
			out = append(out, Gap)
		}
		return out
	}
	switch w.Kind {
	case Scalar:
		out = append(out, e.Name)
	case Bus:
		for i := w.N - 1; i >= 0; i-- {
			out = append(out, indexed(e.Name, i))
		}
	case Range:
		for i := w.Offset + w.N - 1; i >= w.Offset; i-- {
			out = append(out, indexed(e.Name, i))
		}
	}
	return out
}

func indexed(name string, i int) string {
	return name + "[" + strconv.Itoa(i) + "]"
}

// CheckAgreement expands both sides of an interface and fails unless they
// occupy the same number of track slots.
func CheckAgreement(aName string, a PinSpec, bName string, b PinSpec) (ea, eb []string, err error) {
	if ea, err = a.Expand(); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidPinSpec, err, "%s pin layout", aName)
	}
	if eb, err = b.Expand(); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidPinSpec, err, "%s pin layout", bName)
	}
	if len(ea) != len(eb) {
		return nil, nil, errors.New(errors.ErrCodePinLayoutMismatch,
			"%s and %s pin layout mismatch: %d vs %d slots", aName, bName, len(ea), len(eb))
	}
	return ea, eb, nil
}
