package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/htfab/tt-multiplexer/pkg/cache"
	"github.com/htfab/tt-multiplexer/pkg/errors"
	"github.com/htfab/tt-multiplexer/pkg/placer"
)

func sampleModules() []placer.ModuleSlot {
	return []placer.ModuleSlot{
		placer.Module("counter", 1, 1),
		placer.Module("big", 8, 2),
		placer.Module("fixed", 2, 1).At(16, 4),
		placer.Module("col", 1, 2).AtX(3),
		placer.Module("rowed", 4, 1).AtY(6),
		placer.Module("wide", 4, 1),
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"dot", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Invalid format error = %v, want INVALID_FORMAT", err)
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	opts.SetDefaults()

	if opts.Config == nil || opts.Logger == nil {
		t.Fatal("SetDefaults left config or logger unset")
	}
	if diff := cmp.Diff([]string{FormatSVG}, opts.Formats); diff != "" {
		t.Errorf("default formats (-want +got):\n%s", diff)
	}

	opts.Formats = []string{FormatDOT}
	if err := opts.Validate(); err == nil {
		t.Error("dot without the hierarchy view should fail")
	}
	opts.Hier = true
	if err := opts.Validate(); err != nil {
		t.Errorf("dot with the hierarchy view: %v", err)
	}
}

func TestExecute(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	res, err := runner.Execute(context.Background(), Options{
		Modules: sampleModules(),
		Formats: []string{FormatSVG, FormatJSON},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.Stats.Modules != 6 || res.Stats.Macros != 23 {
		t.Errorf("stats = %+v, want 6 modules and 23 macros", res.Stats)
	}
	if res.CacheInfo.PlaceHit || res.CacheInfo.RenderHit {
		t.Errorf("null cache reported a hit: %+v", res.CacheInfo)
	}
	if !bytes.HasPrefix(res.Artifacts[FormatSVG], []byte("<svg")) {
		t.Errorf("svg artifact does not start with <svg")
	}

	var summary Summary
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &summary); err != nil {
		t.Fatalf("decode json artifact: %v", err)
	}
	if len(summary.Modules) != 6 || len(summary.Macros) != 23 {
		t.Errorf("summary has %d modules and %d macros", len(summary.Modules), len(summary.Macros))
	}
	for _, m := range summary.Modules {
		if m.Fixed() != 2 {
			t.Errorf("module %s not frozen in summary", m.Name)
		}
	}
	if len(summary.Layout.Pins.Block) == 0 {
		t.Error("summary is missing the block pin table")
	}
}

func TestExecuteCaching(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)
	ctx := context.Background()
	opts := Options{Modules: sampleModules(), Formats: []string{FormatSVG, FormatJSON}}

	first, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}

	if !second.CacheInfo.PlaceHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run cache info = %+v, want both hits", second.CacheInfo)
	}
	if first.Hash != second.Hash {
		t.Error("cached placement produced a different floorplan")
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("cached svg differs from rendered svg")
	}

	opts.Refresh = true
	third, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.PlaceHit || third.CacheInfo.RenderHit {
		t.Errorf("refresh run cache info = %+v, want no hits", third.CacheInfo)
	}

	opts.Refresh = false
	opts.Labels = true
	fourth, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !fourth.CacheInfo.PlaceHit || fourth.CacheInfo.RenderHit {
		t.Errorf("labels run cache info = %+v, want placement hit only", fourth.CacheInfo)
	}
}

func TestExecuteHier(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	res, err := runner.Execute(context.Background(), Options{
		Modules: sampleModules(),
		Formats: []string{FormatDOT},
		Hier:    true,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	dot := string(res.Artifacts[FormatDOT])
	if !strings.HasPrefix(dot, "digraph") || !strings.Contains(dot, "tt_um_counter") {
		t.Errorf("unexpected DOT output:\n%s", dot)
	}
}

func TestExecuteErrors(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{
			name: "placement failure",
			opts: Options{Modules: []placer.ModuleSlot{
				placer.Module("first", 2, 1).At(0, 0),
				placer.Module("second", 1, 1).At(1, 0),
			}},
			code: errors.ErrCodePlacementFailed,
		},
		{
			name: "invalid module",
			opts: Options{Modules: []placer.ModuleSlot{placer.Module("zero", 0, 1)}},
			code: errors.ErrCodeInvalidModule,
		},
		{
			name: "bad format",
			opts: Options{Formats: []string{"gif"}},
			code: errors.ErrCodeInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := runner.Execute(ctx, tt.opts)
			if !errors.Is(err, tt.code) {
				t.Fatalf("error = %v, want %s", err, tt.code)
			}
			if res != nil {
				t.Error("failed run must not return a partial result")
			}
		})
	}
}

func TestLoadConfigDefault(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TT.Grid.X != 32 || cfg.TT.Grid.Y != 16 {
		t.Errorf("default grid = %+v", cfg.TT.Grid)
	}
	if _, err := LoadConfig("does/not/exist.yaml"); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing config error = %v, want FILE_NOT_FOUND", err)
	}
}
