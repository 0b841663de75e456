package tracks

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/htfab/tt-multiplexer/pkg/errors"
	"github.com/htfab/tt-multiplexer/pkg/geom"
)

// Grid is the set of routing tracks of one layer along one axis.
type Grid struct {
	Offset int
	Pitch  int
}

// Candidates returns the tracks below end, starting from the grid line
// floor((start-offset)/pitch)*pitch + offset. When start is off-grid that
// line lies below start and still counts as a candidate.
func (g Grid) Candidates(start, end int) []int {
	if g.Pitch <= 0 {
		return nil
	}
	var out []int
	for p := geom.FloorDiv(start-g.Offset, g.Pitch)*g.Pitch + g.Offset; p < end; p += g.Pitch {
		out = append(out, p)
	}
	return out
}

// Distribute selects nPins tracks of g in [start, end), step candidates
// apart and centered among the candidates. A step of zero or less picks
// the widest step that fits.
func Distribute(nPins, start, end, step int, g Grid) ([]int, error) {
	if g.Pitch <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "track pitch must be positive, got %d", g.Pitch)
	}
	if nPins <= 0 {
		return []int{}, nil
	}
	cand := g.Candidates(start, end)

	if step <= 0 {
		step = 1
		if nPins > 1 {
			step = (len(cand) - 1) / (nPins - 1)
		}
	}
	needed := (nPins-1)*step + 1
	if step == 0 || needed > len(cand) {
		return nil, errors.New(errors.ErrCodeTrackSaturation,
			"too many pins for the area: %d pins on %d tracks in [%d, %d)", nPins, len(cand), start, end)
	}

	first := (len(cand) - needed) / 2
	out := make([]int, 0, nPins)
	for i := first; i < first+needed; i += step {
		out = append(out, cand[i])
	}
	return out, nil
}

// Assignment maps pin names to track coordinates.
type Assignment map[string]int

// Finalize pairs pins with tracks positionally and drops padding slots.
func Finalize(pins []string, tracks []int) (Assignment, error) {
	if len(pins) != len(tracks) {
		return nil, errors.New(errors.ErrCodePinLayoutMismatch,
			"pin/track list mismatch: %d pins, %d tracks", len(pins), len(tracks))
	}
	a := make(Assignment, len(pins))
	for i, p := range pins {
		if p == Gap {
			continue
		}
		if _, dup := a[p]; dup {
			return nil, errors.New(errors.ErrCodePinLayoutMismatch, "pin %s assigned twice", p)
		}
		a[p] = tracks[i]
	}
	return a, nil
}

// Allocate expands spec and distributes it over [start, end).
func Allocate(spec PinSpec, start, end, step int, g Grid) (Assignment, error) {
	pins, err := spec.Expand()
	if err != nil {
		return nil, err
	}
	ts, err := Distribute(len(pins), start, end, step, g)
	if err != nil {
		return nil, err
	}
	return Finalize(pins, ts)
}

// Names returns the pin names ordered by track, ties broken by name.
func (a Assignment) Names() []string {
	names := slices.Collect(maps.Keys(a))
	slices.SortFunc(names, func(x, y string) int {
		if c := cmp.Compare(a[x], a[y]); c != 0 {
			return c
		}
		return strings.Compare(x, y)
	})
	return names
}

// Span returns the lowest and highest assigned track.
func (a Assignment) Span() (lo, hi int, ok bool) {
	for _, t := range a {
		if !ok || t < lo {
			lo = t
		}
		if !ok || t > hi {
			hi = t
		}
		ok = true
	}
	return lo, hi, ok
}

// Shift returns a copy of a with every track moved by d.
func (a Assignment) Shift(d int) Assignment {
	out := make(Assignment, len(a))
	for k, v := range a {
		out[k] = v + d
	}
	return out
}

// Merge copies every pin of b into a, failing on a duplicate name.
func (a Assignment) Merge(b Assignment) error {
	for k, v := range b {
		if _, dup := a[k]; dup {
			return errors.New(errors.ErrCodePinLayoutMismatch, "pin %s assigned twice", k)
		}
		a[k] = v
	}
	return nil
}
