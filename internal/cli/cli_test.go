package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/htfab/tt-multiplexer/pkg/placer"
)

// captureStdout redirects status output into a buffer for the test.
func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = old })
	return &buf
}

func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func writeModules(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "modules.yaml")
	data := "modules:\n" +
		"  - {name: counter}\n" +
		"  - {name: big, width: 8, height: 2}\n" +
		"  - {name: fixed, width: 2, x: 16, y: 4}\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "png", []string{"png"}},
		{"multiple formats", "svg,pdf,json", []string{"svg", "pdf", "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, parseFormats(tt.input)); diff != "" {
				t.Errorf("parseFormats(%q) (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output string
		hier   bool
		want   string
	}{
		{"", false, "floorplan"},
		{"", true, "hierarchy"},
		{"out/die.svg", false, "out/die"},
		{"out/die.layout", false, "out/die.layout"},
		{"tree.dot", true, "tree"},
	}

	for _, tt := range tests {
		if got := basePath(tt.output, tt.hier); got != tt.want {
			t.Errorf("basePath(%q, %v) = %q, want %q", tt.output, tt.hier, got, tt.want)
		}
	}
}

func TestResolvePath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	if err := os.Mkdir(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"local.yaml", filepath.Join(cfgDir, "local.yaml"), filepath.Join(cfgDir, "shared.yaml")} {
		if err := os.WriteFile(name, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"local.yaml", "local.yaml"},
		{"shared.yaml", filepath.Join(cfgDir, "shared.yaml")},
		{"missing.yaml", "missing.yaml"},
		{"/abs/path.yaml", "/abs/path.yaml"},
	}
	for _, tt := range tests {
		if got := resolvePath(tt.in); got != tt.want {
			t.Errorf("resolvePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestModulesFlagFromEnv(t *testing.T) {
	t.Setenv(envModules, "from-env.yaml")
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	if got := root.PersistentFlags().Lookup("modules").DefValue; got != "from-env.yaml" {
		t.Errorf("modules default = %q, want from-env.yaml", got)
	}
}

func TestPlaceCommandFreeze(t *testing.T) {
	out := captureStdout(t)
	dir := t.TempDir()
	modules := writeModules(t, dir)
	frozen := filepath.Join(dir, "frozen.yaml")

	if err := runCLI(t, "place", "-m", modules, "--no-cache", "--freeze", frozen); err != nil {
		t.Fatalf("place: %v", err)
	}

	got, err := placer.LoadModules(frozen)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("frozen list has %d modules, want 3", len(got))
	}
	for _, m := range got {
		if m.Fixed() != 2 {
			t.Errorf("module %s not frozen: %+v", m.Name, m)
		}
	}
	if !strings.Contains(out.String(), "counter") {
		t.Errorf("module table missing from output:\n%s", out.String())
	}
}

func TestPlaceCommandArchive(t *testing.T) {
	captureStdout(t)
	dir := t.TempDir()
	modules := writeModules(t, dir)
	archiveDir := filepath.Join(dir, "archive")

	if err := runCLI(t, "place", "-q", "-m", modules, "--no-cache", "--archive", archiveDir); err != nil {
		t.Fatalf("place --archive: %v", err)
	}
	if err := runCLI(t, "place", "-q", "-m", modules, "--no-cache", "--archive", archiveDir, "--restore"); err != nil {
		t.Fatalf("place --restore: %v", err)
	}

	entries, err := os.ReadDir(archiveDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("archive has %d records, want 2", len(entries))
	}
}

func TestPlaceCommandMissingModules(t *testing.T) {
	captureStdout(t)
	err := runCLI(t, "place", "-m", filepath.Join(t.TempDir(), "nope.yaml"), "--no-cache")
	if err == nil {
		t.Fatal("place with a missing module list should fail")
	}
}

func TestTracksCommand(t *testing.T) {
	out := captureStdout(t)
	if err := runCLI(t, "tracks", "--table", "block", "-o", "-"); err != nil {
		t.Fatalf("tracks: %v", err)
	}
	if !strings.Contains(out.String(), `"block"`) || strings.Contains(out.String(), `"mux_bot"`) {
		t.Errorf("unexpected tracks output:\n%s", out.String())
	}

	if err := runCLI(t, "tracks", "--table", "nope"); err == nil {
		t.Error("unknown table should fail")
	}
}

func TestRenderCommand(t *testing.T) {
	captureStdout(t)
	dir := t.TempDir()
	modules := writeModules(t, dir)
	base := filepath.Join(dir, "die")

	err := runCLI(t, "render", "-m", modules, "--cache-url", filepath.Join(dir, "cache"), "-f", "svg,json", "-o", base)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, ext := range []string{".svg", ".json"} {
		if _, err := os.Stat(base + ext); err != nil {
			t.Errorf("missing output %s: %v", base+ext, err)
		}
	}

	if err := runCLI(t, "render", "-m", modules, "--no-cache", "-f", "dot"); err == nil {
		t.Error("dot without --hier should fail")
	}
}

func TestCacheCommands(t *testing.T) {
	out := captureStdout(t)
	dir := filepath.Join(t.TempDir(), "cache")

	if err := runCLI(t, "cache", "path", "--cache-url", dir); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out.String()) != dir {
		t.Errorf("cache path = %q, want %q", out.String(), dir)
	}

	if err := runCLI(t, "cache", "clear", "--cache-url", dir); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Cleared 0 cached entries") {
		t.Errorf("unexpected clear output:\n%s", out.String())
	}
}

func TestCompleteFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{"dot", "json", "pdf", "png", "svg"}},
		{"p", []string{"pdf", "png"}},
		{"svg,", []string{"svg,dot", "svg,json", "svg,pdf", "svg,png"}},
		{"svg,png,p", []string{"svg,png,pdf"}},
		{"x", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, _ := completeFormats(nil, nil, tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("completeFormats(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestShellCompletion(t *testing.T) {
	complete := func(args ...string) string {
		t.Helper()
		var buf bytes.Buffer
		root := New(io.Discard, LogInfo).RootCommand()
		root.SetArgs(append([]string{cobra.ShellCompRequestCmd}, args...))
		root.SetOut(&buf)
		root.SetErr(io.Discard)
		if err := root.Execute(); err != nil {
			t.Fatal(err)
		}
		return buf.String()
	}

	if out := complete("render", "-f", ""); !strings.Contains(out, "svg\n") || !strings.Contains(out, "dot\n") {
		t.Errorf("render --format completion:\n%s", out)
	}
	out := complete("tracks", "--table", "mux_")
	for _, name := range []string{"mux_bot", "mux_bus", "mux_port", "mux_top"} {
		if !strings.Contains(out, name+"\n") {
			t.Errorf("tracks --table completion is missing %s:\n%s", name, out)
		}
	}
	if strings.Contains(out, "block") {
		t.Errorf("tracks --table completion ignores the prefix:\n%s", out)
	}

	root := New(io.Discard, LogInfo).RootCommand()
	for _, name := range []string{"config", "modules"} {
		f := root.PersistentFlags().Lookup(name)
		if diff := cmp.Diff(inputExts, f.Annotations[cobra.BashCompFilenameExt]); diff != "" {
			t.Errorf("--%s file extensions mismatch (-want +got):\n%s", name, diff)
		}
	}
}
