package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbolino/go-includecpp/engine"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[bindings]
package = "nk"
output = "nk_bindings.go"
include-dir = "include"
defines = ["NK_INCLUDE_FIXED_TYPES"]
headers = ["nuklear.h", "extra.h"]
allow = ["nk_begin"]
allow-types = ["nk_color"]
allow-functions = ["nk_.*_label"]
block = ["nk_.*_internal"]
typemap = "typemap.csv"
done = "done.txt"
trim-prefix = "nk_"
generator = "cc"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Bindings.Package != "nk" {
		t.Errorf("package = %q, want nk", m.Bindings.Package)
	}
	if m.Bindings.Generator != "cc" {
		t.Errorf("generator = %q, want cc", m.Bindings.Generator)
	}
	if got, want := m.OutputPath(), filepath.Join(m.Dir, "nk_bindings.go"); got != want {
		t.Errorf("output path = %q, want %q", got, want)
	}
	if got, want := m.TypemapPath(), filepath.Join(m.Dir, "typemap.csv"); got != want {
		t.Errorf("typemap path = %q, want %q", got, want)
	}
	if got, want := m.DonePath(), filepath.Join(m.Dir, "done.txt"); got != want {
		t.Errorf("done path = %q, want %q", got, want)
	}
	if m.Bindings.TrimPrefix != "nk_" {
		t.Errorf("trim-prefix = %q, want nk_", m.Bindings.TrimPrefix)
	}

	cfg, err := m.Config()
	if err != nil {
		t.Fatalf("Config failed: %v", err)
	}
	wantHeader := "#define NK_INCLUDE_FIXED_TYPES\n#include \"nuklear.h\"\n#include \"extra.h\"\n"
	if cfg.Header() != wantHeader {
		t.Errorf("header = %q, want %q", cfg.Header(), wantHeader)
	}
	if got, want := cfg.IncludeDir(), filepath.Join(m.Dir, "include"); got != want {
		t.Errorf("include dir = %q, want %q", got, want)
	}
	rules, err := cfg.Rules()
	if err != nil {
		t.Fatalf("Rules: %v", err)
	}
	// allow: 2, allow-types: 1, allow-functions: 1, block: 2
	if len(rules) != 6 {
		t.Errorf("got %d rules, want 6: %v", len(rules), rules)
	}
	if !rules[len(rules)-1].Negate {
		t.Error("block entries should produce negated rules")
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[bindings]
headers = ["a.h"]
`)
	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Bindings.Output != engine.DefaultOutput {
		t.Errorf("output = %q, want %q", m.Bindings.Output, engine.DefaultOutput)
	}
	if m.IncludeDirPath() != "" {
		t.Errorf("include dir = %q, want empty", m.IncludeDirPath())
	}
}

func TestLoadManifestUnknownKey(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[bindings]
header = ["a.h"]
`)
	_, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), "unknown key") {
		t.Fatalf("err = %v, want unknown key error", err)
	}
}

func TestManifestConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[bindings]
defines = ["NOT VALID"]
`)
	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	_, err = m.Config()
	if stage, ok := engine.StageOf(err); !ok || stage != engine.StageConfig {
		t.Fatalf("err = %v, want configuration error", err)
	}
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[bindings]\npackage = \"root\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	m, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m == nil || m.Bindings.Package != "root" {
		t.Fatalf("manifest = %+v, want package root", m)
	}
}

func TestManifestOutputIsPortable(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[bindings]
package = "nk"
output = "gen/nk.go"
include-dir = "third_party"
headers = ["nuklear.h"]
`)
	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg, err := m.Config()
	if err != nil {
		t.Fatalf("Config failed: %v", err)
	}
	gen := engine.GeneratorFunc(func(engine.Request) (string, error) { return "package bindings\n", nil })
	res, err := engine.Run(cfg, gen, engine.SpliceOptions{
		Package:   m.Bindings.Package,
		FileName:  m.OutputPath(),
		OutputDir: filepath.Dir(m.OutputPath()),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	src := string(res.Source)
	if !strings.Contains(src, "#cgo CFLAGS: -I${SRCDIR}/../third_party\n") {
		t.Errorf("include directory not relative to the output file:\n%s", src)
	}
	if strings.Contains(src, m.Dir) {
		t.Errorf("output mentions %s:\n%s", m.Dir, src)
	}
}
