package placer

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/htfab/tt-multiplexer/pkg/config"
	"github.com/htfab/tt-multiplexer/pkg/errors"
)

func mustGrid(t *testing.T, w, h, half int) Grid {
	t.Helper()
	g, err := NewGrid(w, h, half)
	if err != nil {
		t.Fatalf("NewGrid(%d, %d, %d): %v", w, h, half, err)
	}
	return g
}

func anchorsByName(p *Placement) map[string]Cell {
	out := make(map[string]Cell, p.Len())
	for _, pm := range p.Placed() {
		out[pm.Module.Name] = pm.Anchor
	}
	return out
}

func TestPlaceRowMajorScan(t *testing.T) {
	g := mustGrid(t, 4, 2, 2)
	modules := []ModuleSlot{Module("A", 2, 1), Module("B", 2, 1)}

	p, err := Place(g, modules)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}

	want := map[string]Cell{"A": {0, 0}, "B": {2, 0}}
	if diff := cmp.Diff(want, anchorsByName(p)); diff != "" {
		t.Errorf("anchors mismatch (-want +got):\n%s", diff)
	}
	if p.FreeCount() != 4 {
		t.Errorf("FreeCount() = %d, want 4", p.FreeCount())
	}
}

func TestPlaceBucketsAndSizeOrder(t *testing.T) {
	g := mustGrid(t, 32, 16, 16)
	modules := []ModuleSlot{
		Module("counter", 1, 1),
		Module("big", 8, 2),
		Module("fixed", 2, 1).At(16, 4),
		Module("col", 1, 2).AtX(3),
		Module("rowed", 4, 1).AtY(6),
		Module("wide", 4, 1),
	}

	p, err := Place(g, modules)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}

	want := map[string]Cell{
		"fixed":   {16, 4},
		"col":     {3, 1},
		"rowed":   {0, 6},
		"big":     {4, 1},
		"wide":    {0, 0},
		"counter": {4, 0},
	}
	if diff := cmp.Diff(want, anchorsByName(p)); diff != "" {
		t.Errorf("anchors mismatch (-want +got):\n%s", diff)
	}

	used := 1 + 16 + 2 + 2 + 4 + 4
	if got := p.FreeCount(); got != 32*16-used {
		t.Errorf("FreeCount() = %d, want %d", got, 32*16-used)
	}

	if m, ok := p.At(Cell{4, 1}); !ok || m.Name != "big" {
		t.Errorf("At(4,1) = %v, %v; want big", m.Name, ok)
	}
	if owner, ok := p.Owner(Cell{11, 2}); !ok || owner.Module.Name != "big" || owner.Anchor != (Cell{4, 1}) {
		t.Errorf("Owner(11,2) = %+v, %v; want big at (4, 1)", owner, ok)
	}
	if _, ok := p.At(Cell{5, 1}); ok {
		t.Error("At(5,1) should only match anchors")
	}
}

func TestPlaceSemiFixed(t *testing.T) {
	g := mustGrid(t, 32, 16, 16)

	t.Run("x fixed scans rows upward", func(t *testing.T) {
		p, err := Place(g, []ModuleSlot{
			Module("a", 2, 1).At(16, 0),
			Module("b", 2, 2).AtX(16),
		})
		if err != nil {
			t.Fatalf("Place: %v", err)
		}
		if got := anchorsByName(p)["b"]; got != (Cell{16, 1}) {
			t.Errorf("b at %v, want (16, 1)", got)
		}
	})

	t.Run("y fixed scans left then right half", func(t *testing.T) {
		p, err := Place(g, []ModuleSlot{
			Module("left", 8, 1).At(0, 5),
			Module("left2", 8, 1).At(8, 5),
			Module("b", 4, 1).AtY(5),
		})
		if err != nil {
			t.Fatalf("Place: %v", err)
		}
		if got := anchorsByName(p)["b"]; got != (Cell{16, 5}) {
			t.Errorf("b at %v, want (16, 5)", got)
		}
	})

	t.Run("even row for tall module", func(t *testing.T) {
		_, err := Place(g, []ModuleSlot{Module("tall", 1, 2).AtY(4)})
		if !errors.Is(err, errors.ErrCodePlacementFailed) {
			t.Fatalf("error = %v, want PLACEMENT_FAILED", err)
		}
	})
}

func TestPlaceFixedFailures(t *testing.T) {
	g := mustGrid(t, 32, 16, 16)

	tests := []struct {
		name    string
		modules []ModuleSlot
	}{
		{
			name:    "tall module on even row",
			modules: []ModuleSlot{Module("tall", 2, 2).At(0, 2)},
		},
		{
			name: "site consumed by earlier fixed module",
			modules: []ModuleSlot{
				Module("first", 2, 1).At(0, 0),
				Module("second", 1, 1).At(1, 0),
			},
		},
		{
			name:    "straddles half boundary",
			modules: []ModuleSlot{Module("straddle", 2, 1).At(15, 0)},
		},
		{
			name:    "footprint leaves the grid",
			modules: []ModuleSlot{Module("edge", 1, 2).At(0, 15)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Place(g, tt.modules)
			if !errors.Is(err, errors.ErrCodePlacementFailed) {
				t.Fatalf("error = %v, want PLACEMENT_FAILED", err)
			}
			if p != nil {
				t.Error("failed placement must not return a partial result")
			}
		})
	}
}

func TestPlaceEvenRowFailsRegardlessOfSpace(t *testing.T) {
	tests := []struct {
		name    string
		grid    Grid
		modules []ModuleSlot
	}{
		{
			name:    "free grid",
			grid:    mustGrid(t, 4, 2, 2),
			modules: []ModuleSlot{Module("tall", 1, 2).At(0, 0)},
		},
		{
			// big is placed first and covers (0, 1), the second row of tall.
			name: "site already taken",
			grid: mustGrid(t, 4, 4, 2),
			modules: []ModuleSlot{
				Module("big", 2, 2).At(0, 1),
				Module("tall", 1, 2).At(0, 0),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Place(tt.grid, tt.modules)
			if !errors.Is(err, errors.ErrCodePlacementFailed) {
				t.Fatalf("error = %v, want PLACEMENT_FAILED", err)
			}
			if !strings.Contains(err.Error(), "odd row") {
				t.Errorf("error = %q, want the odd row rule", err)
			}
			if strings.Contains(err.Error(), "taken by") {
				t.Errorf("error = %q, alignment must be reported before occupancy", err)
			}
		})
	}
}

func TestPlaceNarrowGridGap(t *testing.T) {
	// 16 columns with the default offset leave columns 8..15 unused.
	g := mustGrid(t, 16, 4, 16)

	_, err := Place(g, []ModuleSlot{Module("gap", 1, 1).At(8, 0)})
	if !errors.Is(err, errors.ErrCodePlacementFailed) {
		t.Fatalf("error = %v, want PLACEMENT_FAILED", err)
	}

	p, err := Place(g, []ModuleSlot{Module("a", 8, 1), Module("b", 8, 1)})
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	want := map[string]Cell{"a": {0, 0}, "b": {16, 0}}
	if diff := cmp.Diff(want, anchorsByName(p)); diff != "" {
		t.Errorf("anchors mismatch (-want +got):\n%s", diff)
	}
}

func TestPlaceGridExhausted(t *testing.T) {
	g := mustGrid(t, 4, 2, 2)
	modules := []ModuleSlot{
		Module("a", 2, 1), Module("b", 2, 1),
		Module("c", 2, 1), Module("d", 2, 1),
		Module("e", 1, 1),
	}
	_, err := Place(g, modules)
	if !errors.Is(err, errors.ErrCodePlacementFailed) {
		t.Fatalf("error = %v, want PLACEMENT_FAILED", err)
	}
	if want := "module 'e' couldn't be placed"; errors.UserMessage(err) != want {
		t.Errorf("message = %q, want %q", errors.UserMessage(err), want)
	}
}

func TestPlaceInvalidModules(t *testing.T) {
	g := mustGrid(t, 32, 16, 16)

	tests := []struct {
		name   string
		module ModuleSlot
	}{
		{"width 3", Module("m", 3, 1)},
		{"width 16", Module("m", 16, 1)},
		{"height 0", Module("m", 1, 0)},
		{"height 3", Module("m", 1, 3)},
		{"x negative", Module("m", 1, 1).AtX(-1)},
		{"x beyond both halves", Module("m", 1, 1).AtX(32)},
		{"y beyond grid", Module("m", 1, 1).AtY(16)},
		{"y negative", Module("m", 1, 1).AtY(-1)},
		{"bad name", Module("my-module", 1, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Place(g, []ModuleSlot{tt.module})
			if !errors.Is(err, errors.ErrCodeInvalidModule) {
				t.Errorf("error = %v, want INVALID_MODULE", err)
			}
		})
	}

	t.Run("duplicate names", func(t *testing.T) {
		_, err := Place(g, []ModuleSlot{Module("m", 1, 1), Module("m", 2, 1)})
		if !errors.Is(err, errors.ErrCodeInvalidModule) {
			t.Errorf("error = %v, want INVALID_MODULE", err)
		}
	})
}

func TestPlaceDoesNotMutateInput(t *testing.T) {
	g := mustGrid(t, 32, 16, 16)
	modules := []ModuleSlot{Module("a", 1, 1), Module("b", 2, 1).AtY(3)}

	p, err := Place(g, modules)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if modules[0].X != nil || modules[0].Y != nil || modules[1].X != nil {
		t.Error("Place modified its input")
	}
	for _, m := range p.Modules() {
		if m.X == nil || m.Y == nil {
			t.Errorf("module %s has unresolved anchor", m.Name)
		}
	}
}

func TestPlaceFrozenRoundTrip(t *testing.T) {
	g := mustGrid(t, 32, 16, 16)
	modules := randomModules(rand.New(rand.NewPCG(1, 2)), 40)

	first, err := Place(g, modules)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	second, err := Place(g, first.Modules())
	if err != nil {
		t.Fatalf("Place(frozen): %v", err)
	}
	if diff := cmp.Diff(anchorsByName(first), anchorsByName(second)); diff != "" {
		t.Errorf("frozen placement differs (-first +second):\n%s", diff)
	}
}

func TestPlaceInvariants(t *testing.T) {
	g := mustGrid(t, 32, 16, 16)

	for seed := uint64(0); seed < 25; seed++ {
		t.Run("seed "+strconv.FormatUint(seed, 10), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(seed, 7))
			modules := randomModules(rng, 10+rng.IntN(40))

			p, err := Place(g, modules)
			if err != nil {
				if !errors.Is(err, errors.ErrCodePlacementFailed) {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			covered := make(map[Cell]string)
			for _, pm := range p.Placed() {
				m, a := pm.Module, pm.Anchor
				if m.Height > 1 && a.Y%2 != 1 {
					t.Errorf("%s: %d-row module at even row %d", m.Name, m.Height, a.Y)
				}
				if m.Width > 1 && (a.X^(a.X+m.Width-1))&g.HalfOffset != 0 {
					t.Errorf("%s: footprint at %v crosses the half boundary", m.Name, a)
				}
				for _, c := range m.Cells(a) {
					if !g.Contains(c) {
						t.Errorf("%s: cell %v outside grid", m.Name, c)
					}
					if other, dup := covered[c]; dup {
						t.Errorf("cell %v covered by %s and %s", c, other, m.Name)
					}
					covered[c] = m.Name
				}
			}
			if len(covered)+p.FreeCount() != g.Width*g.Height {
				t.Errorf("covered %d + free %d != %d cells", len(covered), p.FreeCount(), g.Width*g.Height)
			}

			again, err := Place(g, modules)
			if err != nil {
				t.Fatalf("second run failed: %v", err)
			}
			if diff := cmp.Diff(anchorsByName(p), anchorsByName(again)); diff != "" {
				t.Errorf("placement not deterministic (-first +second):\n%s", diff)
			}
		})
	}
}

func randomModules(rng *rand.Rand, n int) []ModuleSlot {
	modules := make([]ModuleSlot, n)
	for i := range modules {
		w := ValidWidths[rng.IntN(len(ValidWidths))]
		if rng.IntN(3) > 0 {
			w = 1
		}
		h := 1
		if rng.IntN(4) == 0 {
			h = 2
		}
		modules[i] = Module("m"+strconv.Itoa(i), w, h)
	}
	return modules
}

func TestGridCells(t *testing.T) {
	g := mustGrid(t, 8, 2, 16)
	cells := g.Cells()
	if len(cells) != 16 {
		t.Fatalf("len(Cells()) = %d, want 16", len(cells))
	}
	want := []Cell{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {16, 0}, {17, 0}, {18, 0}, {19, 0}}
	if diff := cmp.Diff(want, cells[:8]); diff != "" {
		t.Errorf("first row mismatch (-want +got):\n%s", diff)
	}
	if g.Column(Cell{17, 0}) != 5 {
		t.Errorf("Column(17,0) = %d, want 5", g.Column(Cell{17, 0}))
	}
	if g.Contains(Cell{4, 0}) || !g.Contains(Cell{19, 1}) || g.Contains(Cell{20, 0}) {
		t.Error("Contains() disagrees with the half layout")
	}
}

func TestNewGrid(t *testing.T) {
	tests := []struct {
		name       string
		w, h, half int
		wantErr    bool
	}{
		{"default", 32, 16, 16, false},
		{"tiny", 4, 2, 2, false},
		{"offset larger than half", 16, 4, 16, false},
		{"width not multiple of 4", 6, 2, 4, true},
		{"odd height", 8, 3, 4, true},
		{"offset not power of two", 24, 2, 12, true},
		{"offset below half width", 64, 2, 16, true},
		{"zero", 0, 0, 16, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGrid(tt.w, tt.h, tt.half)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewGrid() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("NewGrid() error = %v, want INVALID_CONFIG", err)
			}

			// The placer and the config loader must agree on every grid.
			cerr := config.Grid{X: tt.w, Y: tt.h, HalfOffset: tt.half}.Validate()
			if fmt.Sprint(err) != fmt.Sprint(cerr) {
				t.Errorf("NewGrid() error = %v, config.Grid.Validate() = %v", err, cerr)
			}
		})
	}
}
