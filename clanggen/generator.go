//go:build clang

// Package clanggen generates bindings by parsing the synthetic header as C++
// through libclang. Only declarations with C language linkage are wrapped,
// since cgo can call nothing else.
package clanggen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-clang/clang-v13/clang"
	"github.com/tliron/commonlog"

	"github.com/kbolino/go-includecpp/cgowrap"
	"github.com/kbolino/go-includecpp/engine"
)

var log = commonlog.GetLogger("includecpp.clanggen")

// DefaultStd is the language standard passed to clang.
const DefaultStd = "c++17"

type Generator struct {
	Std     string
	Args    []string
	Options cgowrap.Options
}

func New(opts cgowrap.Options) *Generator {
	return &Generator{Std: DefaultStd, Options: opts}
}

func (g *Generator) Generate(req engine.Request) (string, error) {
	model, err := g.Model(req)
	if err != nil {
		return "", err
	}
	return cgowrap.Emit(model, g.Options), nil
}

func (g *Generator) args(req engine.Request) []string {
	std := g.Std
	if std == "" {
		std = DefaultStd
	}
	args := []string{"-x", "c++", "-std=" + std}
	for _, dir := range req.IncludeDirs {
		args = append(args, "-I"+dir)
	}
	return append(args, g.Args...)
}

// Model parses the request's header and returns the declarations it lets
// through.
func (g *Generator) Model(req engine.Request) (cgowrap.Model, error) {
	args := g.args(req)
	log.Debugf("parsing %s with args %v", req.HeaderName, args)
	idx := clang.NewIndex(0, 0)
	defer idx.Dispose()
	// The header only exists in memory.
	unsaved := []clang.UnsavedFile{clang.NewUnsavedFile(req.HeaderName, req.Header)}
	tu := idx.ParseTranslationUnit(req.HeaderName, args, unsaved, 0)
	if tu == (clang.TranslationUnit{}) {
		return cgowrap.Model{}, fmt.Errorf("failed to parse translation unit %s", req.HeaderName)
	}
	defer tu.Dispose()

	var problems []string
	for _, d := range tu.Diagnostics() {
		if d.Severity() >= clang.Diagnostic_Error {
			problems = append(problems, d.Spelling())
		}
		d.Dispose()
	}
	if len(problems) > 0 {
		return cgowrap.Model{}, fmt.Errorf("parsing %s: %s", req.HeaderName, strings.Join(problems, "; "))
	}

	w := walker{matcher: req.Matcher(), seen: make(map[string]bool)}
	w.visit(tu.TranslationUnitCursor(), false)
	sort.Slice(w.model.Funcs, func(i, j int) bool {
		return w.model.Funcs[i].Name < w.model.Funcs[j].Name
	})
	log.Infof("found %d functions, %d enums, %d structs, %d typedefs",
		len(w.model.Funcs), len(w.model.Enums), len(w.model.Structs), len(w.model.Typedefs))
	return w.model, nil
}

type walker struct {
	matcher engine.Matcher
	model   cgowrap.Model
	seen    map[string]bool
}

// visit walks the direct children of cursor. externC is set inside
// extern "C" blocks.
func (w *walker) visit(cursor clang.Cursor, externC bool) {
	cursor.Visit(func(c, parent clang.Cursor) clang.ChildVisitResult {
		if c.Location().IsInSystemHeader() {
			return clang.ChildVisit_Continue
		}
		switch c.Kind() {
		case clang.Cursor_LinkageSpec:
			w.visit(c, true)
		case clang.Cursor_FunctionDecl:
			if externC {
				w.function(c)
			} else {
				log.Debugf("ignoring %s: not declared extern \"C\"", c.Spelling())
			}
		case clang.Cursor_EnumDecl:
			w.enum(c)
		case clang.Cursor_StructDecl, clang.Cursor_UnionDecl:
			w.record(c)
		case clang.Cursor_TypedefDecl:
			w.typedef(c)
		}
		return clang.ChildVisit_Continue
	})
}

func (w *walker) allowType(name string) bool {
	if w.matcher.Empty() {
		return !strings.HasPrefix(name, "__")
	}
	return w.matcher.MatchType(name)
}

func (w *walker) allowFunction(name string) bool {
	if w.matcher.Empty() {
		return !strings.HasPrefix(name, "__")
	}
	return w.matcher.MatchFunction(name)
}

func (w *walker) function(c clang.Cursor) {
	name := c.Spelling()
	if name == "" || w.seen["func "+name] || !w.allowFunction(name) {
		return
	}
	if c.IsVariadic() {
		log.Debugf("ignoring varargs function %s", name)
		return
	}
	ret, err := typeName(c.ResultType())
	if err != nil {
		log.Debugf("skipping function %s due to error computing return type: %s", name, err)
		return
	}
	var params []cgowrap.FunctionParam
	for i := int32(0); i < c.NumArguments(); i++ {
		arg := c.Argument(uint32(i))
		t, err := typeName(arg.Type())
		if err != nil {
			log.Debugf("skipping function %s due to error making parameters: %s", name, err)
			return
		}
		params = append(params, cgowrap.FunctionParam{Name: arg.Spelling(), Type: t})
	}
	w.seen["func "+name] = true
	w.model.Funcs = append(w.model.Funcs, cgowrap.FunctionDecl{
		Name:   name,
		Return: ret,
		Params: params,
	})
}

func (w *walker) enum(c clang.Cursor) {
	if !c.IsCursorDefinition() {
		return
	}
	name := c.Spelling()
	if name == "" || c.IsAnonymous() {
		name = cgowrap.Anonymous
	}
	if name != cgowrap.Anonymous && (w.seen["enum "+name] || !w.allowType(name)) {
		return
	}
	var constants []string
	c.Visit(func(child, parent clang.Cursor) clang.ChildVisitResult {
		if child.Kind() == clang.Cursor_EnumConstantDecl {
			constant := child.Spelling()
			if name != cgowrap.Anonymous || w.allowType(constant) {
				constants = append(constants, constant)
			}
		}
		return clang.ChildVisit_Continue
	})
	if len(constants) == 0 {
		return
	}
	if name != cgowrap.Anonymous {
		w.seen["enum "+name] = true
	}
	w.model.Enums = append(w.model.Enums, cgowrap.EnumDecl{Name: name, Constants: constants})
}

func (w *walker) record(c clang.Cursor) {
	if !c.IsCursorDefinition() || c.IsAnonymous() {
		return
	}
	name := c.Spelling()
	union := c.Kind() == clang.Cursor_UnionDecl
	key := "struct " + name
	if union {
		key = "union " + name
	}
	if name == "" || w.seen[key] || !w.allowType(name) {
		return
	}
	w.seen[key] = true
	w.model.Structs = append(w.model.Structs, cgowrap.StructDecl{Name: name, Union: union})
}

func (w *walker) typedef(c clang.Cursor) {
	name := c.Spelling()
	if w.seen["typedef "+name] || !w.allowType(name) {
		return
	}
	switch c.TypedefDeclUnderlyingType().CanonicalType().Kind() {
	case clang.Type_Pointer, clang.Type_FunctionProto, clang.Type_FunctionNoProto:
		log.Debugf("ignoring pointer typedef %s", name)
		return
	}
	w.seen["typedef "+name] = true
	w.model.Typedefs = append(w.model.Typedefs, cgowrap.TypedefDecl{Name: name})
}

// typeName spells t the way the C declaration would, keeping typedef names
// and struct/union/enum tags, so the emitter can map it.
func typeName(t clang.Type) (string, error) {
	var qual string
	if t.IsConstQualifiedType() {
		qual = "const "
	}
	switch t.Kind() {
	case clang.Type_Elaborated:
		name, err := typeName(t.NamedType())
		if err != nil {
			return "", err
		}
		return qual + strings.TrimPrefix(name, "const "), nil
	case clang.Type_Pointer:
		elem, err := typeName(t.PointeeType())
		if err != nil {
			return "", err
		}
		return elem + " *", nil
	case clang.Type_Record:
		decl := t.Declaration()
		if decl.IsAnonymous() {
			return "", fmt.Errorf("anonymous record type %s", t.Spelling())
		}
		tag := "struct "
		if decl.Kind() == clang.Cursor_UnionDecl {
			tag = "union "
		}
		return qual + tag + decl.Spelling(), nil
	case clang.Type_Enum:
		decl := t.Declaration()
		if decl.IsAnonymous() {
			return "", fmt.Errorf("anonymous enum type %s", t.Spelling())
		}
		return qual + "enum " + decl.Spelling(), nil
	case clang.Type_Typedef:
		return qual + t.Declaration().Spelling(), nil
	case clang.Type_LValueReference, clang.Type_RValueReference:
		return "", fmt.Errorf("reference type %s has no C equivalent", t.Spelling())
	}
	return t.Spelling(), nil
}
