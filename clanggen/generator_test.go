//go:build clang

package clanggen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbolino/go-includecpp/cgowrap"
	"github.com/kbolino/go-includecpp/engine"
)

const widgetHeader = `#pragma once
#include <cstddef>

namespace widgets {
class Widget {
public:
	int size() const;
};
}

struct widget_info { int id; };
enum widget_kind { widget_button, widget_label };

extern "C" {
int widget_count(void);
void widget_rename(int id, const char *name);
const struct widget_info *widget_lookup(int id);
int widget_log(const char *fmt, ...);
}

int widget_cpp_only(int x);
`

func widgetRequest(t *testing.T, allow ...engine.AllowEntry) engine.Request {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "widget.hpp"), []byte(widgetHeader), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := engine.NewConfig([]engine.Inclusion{engine.Header("widget.hpp")}, allow, dir)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	req, err := cfg.Request()
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	return req
}

func TestModelOnlyWrapsExternC(t *testing.T) {
	m, err := New(cgowrap.Options{}).Model(widgetRequest(t))
	if err != nil {
		t.Fatalf("Model: %v", err)
	}
	var names []string
	for _, f := range m.Funcs {
		names = append(names, f.Name)
	}
	want := "widget_count,widget_lookup,widget_rename"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("functions = %s, want %s", got, want)
	}
	for _, f := range m.Funcs {
		if f.Name == "widget_lookup" && f.Return != "const struct widget_info *" {
			t.Errorf("widget_lookup returns %q", f.Return)
		}
	}
	if len(m.Enums) != 1 || m.Enums[0].Name != "widget_kind" {
		t.Errorf("enums = %+v", m.Enums)
	}
}

func TestModelLeavesNoFiles(t *testing.T) {
	req := widgetRequest(t)
	wd := t.TempDir()
	chdir(t, wd)
	t.Setenv("TMPDIR", wd)
	if _, err := New(cgowrap.Options{}).Model(req); err != nil {
		t.Fatalf("Model: %v", err)
	}
	entries, err := os.ReadDir(wd)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("Model left %d entries behind, first %s", len(entries), entries[0].Name())
	}
}

func TestGenerateWithAllowlist(t *testing.T) {
	req := widgetRequest(t, engine.Allow("widget_(count|rename)"))
	text, err := New(cgowrap.Options{TrimPrefix: "widget_"}).Generate(req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, s := range []string{"func Count() int32 {", "func Rename(id int32, name string) {"} {
		if !strings.Contains(text, s) {
			t.Errorf("generated text missing %q:\n%s", s, text)
		}
	}
	if strings.Contains(text, "Lookup") {
		t.Errorf("generated text should not wrap widget_lookup:\n%s", text)
	}
}

func TestGenerateReportsErrors(t *testing.T) {
	cfg, err := engine.NewConfig([]engine.Inclusion{engine.Header("missing.hpp")}, nil, "")
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	req, err := cfg.Request()
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if _, err := New(cgowrap.Options{}).Generate(req); err == nil {
		t.Fatal("expected error for missing header")
	}
}

// chdir changes the working directory for the duration of the test,
// like testing.T.Chdir (Go 1.24+), including updating PWD.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv("PWD", abs)
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			panic("testing: chdir: " + err.Error())
		}
	})
}
