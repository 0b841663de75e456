package placer

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/htfab/tt-multiplexer/pkg/errors"
)

func TestReadModulesDefaults(t *testing.T) {
	input := `
modules:
  - name: counter
  - name: wide
    width: 4
  - name: pinned
    x: 16
    y: 3
    height: 2
`
	got, err := ReadModules(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadModules: %v", err)
	}
	want := []ModuleSlot{
		Module("counter", 1, 1),
		Module("wide", 4, 1),
		Module("pinned", 1, 2).At(16, 3),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadModules() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadModulesErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown field", "modules:\n  - name: a\n    colour: red\n"},
		{"wrong type", "modules:\n  - name: a\n    width: wide\n"},
		{"not a list", "modules: 3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadModules(strings.NewReader(tt.input))
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestReadModulesEmpty(t *testing.T) {
	got, err := ReadModules(strings.NewReader(""))
	if err != nil || len(got) != 0 {
		t.Errorf("ReadModules(empty) = %v, %v; want no modules", got, err)
	}
}

func TestFreezeRoundTrip(t *testing.T) {
	g := mustGrid(t, 32, 16, 16)
	modules := []ModuleSlot{
		Module("counter", 1, 1),
		Module("big", 8, 2),
		Module("col", 1, 2).AtX(3),
		Module("rowed", 4, 1).AtY(6),
	}
	p, err := Place(g, modules)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteModules(&buf, p.Modules()); err != nil {
		t.Fatalf("WriteModules: %v", err)
	}
	frozen, err := ReadModules(&buf)
	if err != nil {
		t.Fatalf("ReadModules: %v", err)
	}
	if diff := cmp.Diff(p.Modules(), frozen); diff != "" {
		t.Errorf("frozen list mismatch (-want +got):\n%s", diff)
	}
	for _, m := range frozen {
		if m.Fixed() != 2 {
			t.Errorf("module %s is not fully fixed after freezing", m.Name)
		}
	}

	again, err := Place(g, frozen)
	if err != nil {
		t.Fatalf("Place(frozen): %v", err)
	}
	if diff := cmp.Diff(anchorsByName(p), anchorsByName(again)); diff != "" {
		t.Errorf("anchors mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveLoadModules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modules.yaml")
	modules := []ModuleSlot{Module("a", 2, 1).At(0, 0), Module("b", 1, 2)}

	if err := SaveModules(path, modules); err != nil {
		t.Fatalf("SaveModules: %v", err)
	}
	got, err := LoadModules(path)
	if err != nil {
		t.Fatalf("LoadModules: %v", err)
	}
	if diff := cmp.Diff(modules, got); diff != "" {
		t.Errorf("LoadModules() mismatch (-want +got):\n%s", diff)
	}

	_, err = LoadModules(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
}
