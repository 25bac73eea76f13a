package cgowrap

import (
	"go/parser"
	"go/token"
	"strings"
	"testing"
)

func sampleModel() Model {
	return Model{
		Structs:  []StructDecl{{Name: "point"}},
		Typedefs: []TypedefDecl{{Name: "vec2"}},
		Enums:    []EnumDecl{{Name: "color", Constants: []string{"color_red", "color_green"}}},
		Funcs: []FunctionDecl{
			{Name: "do_math", Return: "int", Params: []FunctionParam{{"a", "int"}, {"b", "int"}}},
			{Name: "greet", Return: "void", Params: []FunctionParam{{"name", "const char *"}}},
			{Name: "scale", Return: "void", Params: []FunctionParam{{"p", "struct point *"}, {"f", "float"}}},
			{Name: "buf", Return: "char *"},
		},
	}
}

const sampleWant = `package bindings

import "unsafe"

// Point mirrors struct point.
type Point = C.struct_point

// Vec2 mirrors vec2.
type Vec2 = C.vec2

// Color mirrors enum color.
type Color = C.enum_color

const (
	ColorRed Color = C.color_red
	ColorGreen Color = C.color_green
)

// DoMath calls do_math.
func DoMath(a int32, b int32) int32 {
	return (int32)(C.do_math((C.int)(a), (C.int)(b)))
}

// Greet calls greet.
func Greet(name string) {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))
	C.greet(cName)
}

// Scale calls scale.
func Scale(p *Point, f float32) {
	C.scale((*C.struct_point)(p), (C.float)(f))
}

// Buf calls buf.
func Buf() *int8 {
	return (*int8)(unsafe.Pointer(C.buf()))
}
`

func TestEmit(t *testing.T) {
	got := Emit(sampleModel(), Options{})
	if got != sampleWant {
		t.Errorf("Emit() mismatch\n got:\n%s\nwant:\n%s", got, sampleWant)
	}
	if _, err := parser.ParseFile(token.NewFileSet(), "bindings.go", got, 0); err != nil {
		t.Errorf("emitted source does not parse: %v", err)
	}
}

func TestEmitTrimPrefixAndClashes(t *testing.T) {
	m := Model{
		Structs: []StructDecl{{Name: "nk_context"}},
		Funcs: []FunctionDecl{
			{Name: "nk_begin", Return: "int", Params: []FunctionParam{{"ctx", "struct nk_context *"}}},
			{Name: "begin", Return: "void"},
			{Name: "nk_context", Return: "void"},
		},
	}
	got := Emit(m, Options{Package: "nk", TrimPrefix: "nk_"})
	for _, want := range []string{
		"package nk\n",
		"type Context = C.struct_nk_context\n",
		"func Begin(ctx *Context) int32 {\n",
		"C.nk_begin((*C.struct_nk_context)(ctx))",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "C.begin()") || strings.Contains(got, "C.nk_context()") {
		t.Errorf("clashing declarations were not skipped:\n%s", got)
	}
	if strings.Contains(got, "import \"unsafe\"") {
		t.Errorf("unexpected unsafe import:\n%s", got)
	}
}

func TestEmitSkipsUnconvertible(t *testing.T) {
	m := Model{
		Funcs: []FunctionDecl{
			{Name: "bad", Return: "void", Params: []FunctionParam{{"x", "void"}}},
			{Name: "weird", Return: "complex double"},
			{Name: "ok", Return: "void"},
		},
	}
	got := Emit(m, Options{})
	if strings.Contains(got, "Bad(") || strings.Contains(got, "Weird(") {
		t.Errorf("unconvertible functions emitted:\n%s", got)
	}
	if !strings.Contains(got, "func Ok() {\n\tC.ok()\n}\n") {
		t.Errorf("missing Ok wrapper:\n%s", got)
	}
}

func TestEmitAnonymousEnumAndKeywordParams(t *testing.T) {
	m := Model{
		Enums: []EnumDecl{{Name: Anonymous, Constants: []string{"max_items"}}},
		Funcs: []FunctionDecl{
			{Name: "set_type", Return: "void", Params: []FunctionParam{{"type", "unsigned int"}, {"", "long"}}},
		},
	}
	got := Emit(m, Options{})
	for _, want := range []string{
		"\tMaxItems = C.max_items\n",
		"func SetType(type_ uint32, param2 int64) {\n",
		"C.set_type((C.uint)(type_), (C.long)(param2))",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}
