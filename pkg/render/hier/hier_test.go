package hier

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/htfab/tt-multiplexer/pkg/config"
	"github.com/htfab/tt-multiplexer/pkg/errors"
	"github.com/htfab/tt-multiplexer/pkg/floorplan"
	"github.com/htfab/tt-multiplexer/pkg/placer"
)

func sampleDie(t *testing.T) *floorplan.Element {
	t.Helper()
	cfg := config.Default()
	g, err := placer.GridFromConfig(cfg.TT.Grid)
	if err != nil {
		t.Fatal(err)
	}
	p, err := placer.Place(g, []placer.ModuleSlot{placer.Module("counter", 1, 1)})
	if err != nil {
		t.Fatal(err)
	}
	fp, err := floorplan.New(cfg, p)
	if err != nil {
		t.Fatal(err)
	}
	return fp.Die
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sampleDie(t), Options{})

	for _, want := range []string{
		`"die" -> "top_I";`,
		`"top_I" -> "top_I.branch\\[0\\]";`,
		`"top_I.branch\\[0\\]" -> "top_I.branch\\[0\\].mux_I";`,
		`"top_I" -> "top_I.ctrl_I";`,
		`label="col_um[0].um_bot_I.block_0_0.tt_um_I"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %s", want)
		}
	}
	if got := strings.Count(dot, "->"); got != 1+16+1+16+1 {
		t.Errorf("edge count = %d, want 35", got)
	}
	if strings.Contains(dot, "tt_um_counter") {
		t.Error("plain output should not include macro names")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(sampleDie(t), Options{Detailed: true})
	for _, want := range []string{`tt_um_counter`, `branch[1]\nFN`, `tt_ctrl\nN`} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT(Detailed) missing %s", want)
		}
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), `digraph G { a -> b; }`)
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Error("RenderSVG() output missing <svg> tag")
	}
}

func TestRenderPNG(t *testing.T) {
	png, err := RenderPNG(context.Background(), `digraph G { a -> b; }`)
	if err != nil {
		t.Fatalf("RenderPNG() error: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("RenderPNG() output is not a PNG")
	}
}

func TestRenderInvalidDOT(t *testing.T) {
	_, err := RenderSVG(context.Background(), `not valid DOT {{{`)
	if !errors.Is(err, errors.ErrCodeRenderFailed) {
		t.Errorf("RenderSVG() error = %v, want RENDER_FAILED", err)
	}
}
