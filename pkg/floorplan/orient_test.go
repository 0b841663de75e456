package floorplan

import (
	"testing"

	"github.com/htfab/tt-multiplexer/pkg/errors"
	"github.com/htfab/tt-multiplexer/pkg/geom"
)

func TestOrientationThen(t *testing.T) {
	tests := []struct {
		outer, inner, want Orientation
	}{
		{N, N, N},
		{N, FS, FS},
		{FN, N, FN},
		{FN, FS, S},
		{FN, FN, N},
		{FS, FS, N},
		{FS, FN, S},
		{S, FN, FS},
		{S, FS, FN},
		{S, S, N},
	}

	for _, tt := range tests {
		t.Run(string(tt.outer)+"∘"+string(tt.inner), func(t *testing.T) {
			got, err := tt.outer.Then(tt.inner)
			if err != nil {
				t.Fatalf("Then() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Then() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestOrientationPlace(t *testing.T) {
	r := geom.RectWH(10, 20, 30, 5)

	tests := []struct {
		o    Orientation
		want geom.Rect
	}{
		{N, geom.Rect{X0: 10, Y0: 20, X1: 40, Y1: 25}},
		{FN, geom.Rect{X0: 60, Y0: 20, X1: 90, Y1: 25}},
		{FS, geom.Rect{X0: 10, Y0: 25, X1: 40, Y1: 30}},
		{S, geom.Rect{X0: 60, Y0: 25, X1: 90, Y1: 30}},
	}

	for _, tt := range tests {
		t.Run(string(tt.o), func(t *testing.T) {
			got, err := tt.o.Place(100, 50, r)
			if err != nil {
				t.Fatalf("Place() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Place() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestUnsupportedOrientation(t *testing.T) {
	for _, s := range []string{"E", "W", "FE", "FW", "", "n"} {
		if _, err := ParseOrientation(s); !errors.Is(err, errors.ErrCodeUnsupportedOrientation) {
			t.Errorf("ParseOrientation(%q) error = %v, want UNSUPPORTED_ORIENTATION", s, err)
		}
	}
	if _, err := N.Then("E"); !errors.Is(err, errors.ErrCodeUnsupportedOrientation) {
		t.Errorf("Then(E) error = %v", err)
	}

	parent := &Element{Kind: KindTop, Width: 100, Height: 100}
	child := &Element{Kind: KindBranch, Width: 50, Height: 50}
	child.add(&Element{Kind: KindMux, ModName: "m", Width: 10, Height: 10}, geom.Pt(0, 0), N, "leaf")
	parent.add(child, geom.Pt(0, 0), "W", "rotated")
	if _, err := parent.SubMacros(); !errors.Is(err, errors.ErrCodeUnsupportedOrientation) {
		t.Errorf("SubMacros() error = %v, want UNSUPPORTED_ORIENTATION", err)
	}
}

func TestSubMacrosFlippedSouth(t *testing.T) {
	root := &Element{Kind: KindDie, Width: 1000, Height: 1000}
	mid := &Element{Kind: KindBranch, Width: 200, Height: 100}
	mid.add(&Element{Kind: KindMux, ModName: "leaf", Width: 20, Height: 10}, geom.Pt(5, 0), FN, "a")
	mid.add(&Element{Kind: KindBlock, Width: 20, Height: 10}, geom.Pt(50, 50), N, "")
	root.add(mid, geom.Pt(100, 300), FS, "mid")

	got, err := root.SubMacros()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1 (unnamed and anonymous elements are skipped)", len(got))
	}
	m := got[0]
	if m.InstName != "mid.a" || m.X != 105 || m.Y != 390 || m.Orient != S {
		t.Errorf("got %s, want mid.a leaf (105,390) S", m)
	}
}
