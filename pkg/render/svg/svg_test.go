package svg

import (
	"strings"
	"testing"

	"github.com/htfab/tt-multiplexer/pkg/config"
	"github.com/htfab/tt-multiplexer/pkg/floorplan"
	"github.com/htfab/tt-multiplexer/pkg/placer"
)

func sampleFloorplan(t *testing.T) *floorplan.Floorplan {
	t.Helper()
	cfg := config.Default()
	g, err := placer.GridFromConfig(cfg.TT.Grid)
	if err != nil {
		t.Fatal(err)
	}
	p, err := placer.Place(g, []placer.ModuleSlot{
		placer.Module("counter", 1, 1),
		placer.Module("wide", 4, 1).At(16, 1),
	})
	if err != nil {
		t.Fatal(err)
	}
	fp, err := floorplan.New(cfg, p)
	if err != nil {
		t.Fatal(err)
	}
	return fp
}

func TestRender(t *testing.T) {
	fp := sampleFloorplan(t)
	out := string(Render(fp))

	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 2920.000 3520.000"`) {
		t.Errorf("unexpected header: %.120s", out)
	}
	if !strings.HasSuffix(out, "</svg>\n") {
		t.Error("output not terminated")
	}

	counts := map[string]int{
		`fill="crimson"`:         2,
		`fill="mediumslateblue"`: 16,
		`fill="yellowgreen"`:     1,
		`fill="silver"`:          1,
	}
	for needle, want := range counts {
		if got := strings.Count(out, needle); got != want {
			t.Errorf("count(%s) = %d, want %d", needle, got, want)
		}
	}
	if !strings.Contains(out, "scale(-1 1)") {
		t.Error("mirrored branches missing")
	}
	if !strings.Contains(out, "scale(1 -1)") {
		t.Error("flipped blocks missing")
	}
}

func TestRenderOptions(t *testing.T) {
	fp := sampleFloorplan(t)
	full := string(Render(fp))
	bare := string(Render(fp, WithoutPins(), WithColors(map[floorplan.Kind]string{floorplan.KindBlock: "gold"})))

	if len(bare) >= len(full) {
		t.Errorf("WithoutPins() output (%d bytes) not smaller than default (%d bytes)", len(bare), len(full))
	}
	if strings.Contains(bare, "crimson") || strings.Count(bare, `fill="gold"`) != 2 {
		t.Error("WithColors() did not override the block colour")
	}

	labelled := string(Render(fp, WithLabels()))
	for _, name := range []string{">counter</text>", ">wide</text>"} {
		if !strings.Contains(labelled, name) {
			t.Errorf("WithLabels() output missing %s", name)
		}
	}
}
