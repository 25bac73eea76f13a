package engine

import (
	"errors"
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"
	"testing"
)

const fakeBindings = `package bindings

import "unsafe"

// Color mirrors enum color.
type Color int32

const (
	Red   Color = C.RED
	Green Color = C.GREEN
)

// Greet calls greet.
func Greet(name string) int32 {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))
	return (int32)(C.greet(cName))
}
`

func testConfig(t *testing.T) Config {
	t.Helper()
	cfg, err := NewConfig(
		[]Inclusion{Define("GREET_API"), Header("greet.h")},
		[]AllowEntry{Allow("greet"), {Pattern: "color", Kinds: KindType}},
		"include",
	)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	return cfg
}

func TestRun(t *testing.T) {
	cfg := testConfig(t)
	var got Request
	gen := GeneratorFunc(func(req Request) (string, error) {
		got = req
		return fakeBindings, nil
	})
	res, err := Run(cfg, gen, SpliceOptions{Package: "greeter"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got.HeaderName != HeaderName {
		t.Errorf("header name = %q, want %q", got.HeaderName, HeaderName)
	}
	if want := "#define GREET_API\n#include \"greet.h\"\n"; got.Header != want {
		t.Errorf("header = %q, want %q", got.Header, want)
	}
	if len(got.IncludeDirs) != 1 || got.IncludeDirs[0] != "include" {
		t.Errorf("include dirs = %v, want [include]", got.IncludeDirs)
	}
	if len(got.Rules) != 3 {
		t.Errorf("got %d rules, want 3", len(got.Rules))
	}
	if res.Header != got.Header {
		t.Errorf("result header = %q, want %q", res.Header, got.Header)
	}
	if res.File == nil || res.File.Name.Name != "bindings" {
		t.Errorf("reparsed file missing or misnamed")
	}

	src := string(res.Source)
	for _, want := range []string{
		"// Code generated by go-includecpp. DO NOT EDIT.",
		"package greeter",
		"#cgo CFLAGS: -I${SRCDIR}/include",
		"#include <stdlib.h>",
		"#define GREET_API",
		"#include \"greet.h\"",
		"import \"C\"",
		"\"unsafe\"",
		"// Greet calls greet.",
		"func Greet(name string) int32 {",
		"Red   Color = C.RED",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("spliced source missing %q:\n%s", want, src)
		}
	}
	if strings.Contains(src, "package bindings") {
		t.Error("generator package name leaked into output")
	}
	if _, err := parser.ParseFile(token.NewFileSet(), "out.go", res.Source, parser.ParseComments); err != nil {
		t.Errorf("spliced source does not parse: %v", err)
	}

	goldenFile := filepath.Join("testdata", "greeter.go.golden")
	updateGolden(t, goldenFile, src)
	compareGolden(t, goldenFile, src)
}

func TestRunGenerateFailure(t *testing.T) {
	boom := errors.New("boom")
	gen := GeneratorFunc(func(Request) (string, error) { return "", boom })
	_, err := Run(testConfig(t), gen, SpliceOptions{Package: "p"})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
	if stage, _ := StageOf(err); stage != StageGenerate {
		t.Errorf("stage = %v, want %v", stage, StageGenerate)
	}
}

func TestRunReparseFailure(t *testing.T) {
	gen := GeneratorFunc(func(Request) (string, error) { return "mod bindings { }", nil })
	_, err := Run(testConfig(t), gen, SpliceOptions{Package: "p"})
	if stage, ok := StageOf(err); !ok || stage != StageReparse {
		t.Fatalf("err = %v, want %v stage", err, StageReparse)
	}
}

func TestRunSpliceFailure(t *testing.T) {
	gen := GeneratorFunc(func(Request) (string, error) { return "package bindings\n", nil })
	_, err := Run(testConfig(t), gen, SpliceOptions{Package: "not a name"})
	if stage, ok := StageOf(err); !ok || stage != StageSplice {
		t.Fatalf("err = %v, want %v stage", err, StageSplice)
	}
}

func TestSpliceEmptyBindings(t *testing.T) {
	fset, file, err := Reparse("package bindings\n")
	if err != nil {
		t.Fatalf("Reparse: %v", err)
	}
	cfg, err := NewConfig(nil, nil, "")
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	req, err := cfg.Request()
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	src, err := Splice(fset, file, req, SpliceOptions{})
	if err != nil {
		t.Fatalf("Splice: %v", err)
	}
	out := string(src)
	if !strings.Contains(out, "package bindings") {
		t.Errorf("expected generator package name to be kept:\n%s", out)
	}
	if strings.Contains(out, "#cgo") || strings.Contains(out, "stdlib.h") {
		t.Errorf("unexpected preamble content:\n%s", out)
	}
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Stage: StageGenerate, Err: errors.New("cpp not found")}
	if got, want := err.Error(), "binding generation: cpp not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
