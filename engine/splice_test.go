package engine

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestCgoIncludeDir(t *testing.T) {
	root := t.TempDir()
	tests := []struct {
		dir, outputDir, want string
	}{
		{"include", "", "${SRCDIR}/include"},
		{"./include/", "", "${SRCDIR}/include"},
		{".", "", "${SRCDIR}"},
		{filepath.Join(root, "third_party"), root, "${SRCDIR}/third_party"},
		{filepath.Join(root, "third_party", "nk"), filepath.Join(root, "pkg"), "${SRCDIR}/../third_party/nk"},
		{root, root, "${SRCDIR}"},
		{filepath.Join(root, "inc"), "", filepath.Join(root, "inc")},
	}
	for _, tt := range tests {
		if got := cgoIncludeDir(tt.dir, tt.outputDir); got != tt.want {
			t.Errorf("cgoIncludeDir(%q, %q) = %q, want %q", tt.dir, tt.outputDir, got, tt.want)
		}
	}
}

func TestSpliceIncludeDirRelativeToOutput(t *testing.T) {
	root := t.TempDir()
	cfg, err := NewConfig([]Inclusion{Header("greet.h")}, nil, filepath.Join(root, "third_party"))
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	gen := GeneratorFunc(func(Request) (string, error) { return fakeBindings, nil })
	res, err := Run(cfg, gen, SpliceOptions{Package: "greeter", OutputDir: root})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	src := string(res.Source)
	if !strings.Contains(src, "#cgo CFLAGS: -I${SRCDIR}/third_party\n") {
		t.Errorf("include directory not relative to output:\n%s", src)
	}
	if strings.Contains(src, root) {
		t.Errorf("output mentions the generating machine's path %s:\n%s", root, src)
	}
}

func TestSpliceQuotesIncludeDirWithSpaces(t *testing.T) {
	cfg, err := NewConfig([]Inclusion{Header("greet.h")}, nil, "third party")
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	gen := GeneratorFunc(func(Request) (string, error) { return "package bindings\n", nil })
	res, err := Run(cfg, gen, SpliceOptions{Package: "greeter"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := `#cgo CFLAGS: "-I${SRCDIR}/third party"`; !strings.Contains(string(res.Source), want) {
		t.Errorf("output missing %s:\n%s", want, res.Source)
	}
}

func TestSpliceKeepsImportNames(t *testing.T) {
	const bindings = `package bindings

import (
	u "unsafe"
	_ "embed"
)

// Release frees p.
func Release(p *C.char) {
	C.free(u.Pointer(p))
}
`
	cfg, err := NewConfig([]Inclusion{Header("greet.h")}, nil, "")
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	gen := GeneratorFunc(func(Request) (string, error) { return bindings, nil })
	res, err := Run(cfg, gen, SpliceOptions{Package: "greeter"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	src := string(res.Source)
	for _, want := range []string{`u "unsafe"`, `_ "embed"`, "C.free(u.Pointer(p))", "#include <stdlib.h>"} {
		if !strings.Contains(src, want) {
			t.Errorf("spliced source missing %q:\n%s", want, src)
		}
	}
}
