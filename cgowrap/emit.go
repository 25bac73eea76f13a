package cgowrap

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/iancoleman/strcase"
)

// DefaultPackage is the package clause of emitted bindings. The splice step
// replaces it with the caller's package.
const DefaultPackage = "bindings"

// Options controls how a Model is rendered.
type Options struct {
	Package string
	// TrimPrefix is removed from C names before they are converted to Go
	// names, e.g. "nk_" turns nk_begin into Begin.
	TrimPrefix string
	TypeMap    TypeMap
	// Done holds signatures of functions already written by hand, in the
	// form "func Name(int32, string) bool". Matching wrappers are not
	// emitted, see ReadDone.
	Done map[string]struct{}
}

type emitter struct {
	opts      Options
	conv      *converter
	used      map[string]string
	body      strings.Builder
	useUnsafe bool
}

// Emit renders m as a Go source file. Declarations that cannot be expressed
// (unhandled types, name clashes) are skipped and logged.
func Emit(m Model, opts Options) string {
	if opts.Package == "" {
		opts.Package = DefaultPackage
	}
	if opts.TypeMap == nil {
		opts.TypeMap = DefaultTypeMap()
	}
	e := &emitter{
		opts: opts,
		conv: &converter{typeMap: opts.TypeMap, names: make(map[string]string)},
		used: make(map[string]string),
	}
	e.declareTypes(m)
	for _, s := range m.Structs {
		e.emitStruct(s)
	}
	for _, td := range m.Typedefs {
		e.emitTypedef(td)
	}
	for _, en := range m.Enums {
		e.emitEnum(en)
	}
	for _, f := range m.Funcs {
		if err := e.emitFunc(f); err != nil {
			log.Debugf("skipping function %s: %s", f.Name, err)
		}
	}

	var out strings.Builder
	fmt.Fprintf(&out, "package %s\n", opts.Package)
	if e.useUnsafe {
		out.WriteString("\nimport \"unsafe\"\n")
	}
	out.WriteString(e.body.String())
	return out.String()
}

// goName converts a C identifier to an exported Go identifier.
func (e *emitter) goName(cName string) string {
	trimmed := strings.TrimPrefix(cName, e.opts.TrimPrefix)
	if trimmed == "" {
		trimmed = cName
	}
	return strcase.ToCamel(trimmed)
}

// reserve claims goName for what. It fails for invalid or taken names.
func (e *emitter) reserve(goName, what string) bool {
	if !token.IsIdentifier(goName) || !token.IsExported(goName) {
		log.Debugf("skipping %s: '%s' is not an exported Go identifier", what, goName)
		return false
	}
	if prev, ok := e.used[goName]; ok {
		log.Debugf("skipping %s: Go name %s already used by %s", what, goName, prev)
		return false
	}
	e.used[goName] = what
	return true
}

// declareTypes reserves Go names for every emitted type up front so function
// signatures can refer to them regardless of declaration order.
func (e *emitter) declareTypes(m Model) {
	for _, s := range m.Structs {
		key := structKey(s)
		if e.reserve(e.goName(s.Name), key) {
			e.conv.names[key] = e.goName(s.Name)
		}
	}
	for _, td := range m.Typedefs {
		if e.reserve(e.goName(td.Name), "typedef "+td.Name) {
			e.conv.names[td.Name] = e.goName(td.Name)
		}
	}
	for _, en := range m.Enums {
		if en.Name == Anonymous {
			continue
		}
		key := "enum " + en.Name
		if e.reserve(e.goName(en.Name), key) {
			e.conv.names[key] = e.goName(en.Name)
		}
	}
}

func structKey(s StructDecl) string {
	if s.Union {
		return "union " + s.Name
	}
	return "struct " + s.Name
}

func (e *emitter) emitStruct(s StructDecl) {
	key := structKey(s)
	goName, ok := e.conv.names[key]
	if !ok {
		return
	}
	fmt.Fprintf(&e.body, "\n// %s mirrors %s.\n", goName, key)
	fmt.Fprintf(&e.body, "type %s = %s\n", goName, cgoName(key))
}

func (e *emitter) emitTypedef(td TypedefDecl) {
	goName, ok := e.conv.names[td.Name]
	if !ok {
		return
	}
	fmt.Fprintf(&e.body, "\n// %s mirrors %s.\n", goName, td.Name)
	fmt.Fprintf(&e.body, "type %s = C.%s\n", goName, td.Name)
}

func (e *emitter) emitEnum(en EnumDecl) {
	goType := ""
	if en.Name != Anonymous {
		var ok bool
		if goType, ok = e.conv.names["enum "+en.Name]; !ok {
			return
		}
		fmt.Fprintf(&e.body, "\n// %s mirrors enum %s.\n", goType, en.Name)
		fmt.Fprintf(&e.body, "type %s = C.enum_%s\n", goType, en.Name)
	}
	var lines []string
	for _, c := range en.Constants {
		goName := e.goName(c)
		if !e.reserve(goName, "enumerator "+c) {
			continue
		}
		if goType != "" {
			lines = append(lines, fmt.Sprintf("\t%s %s = C.%s\n", goName, goType, c))
		} else {
			lines = append(lines, fmt.Sprintf("\t%s = C.%s\n", goName, c))
		}
	}
	if len(lines) == 0 {
		return
	}
	e.body.WriteString("\nconst (\n")
	for _, l := range lines {
		e.body.WriteString(l)
	}
	e.body.WriteString(")\n")
}

func (e *emitter) emitFunc(f FunctionDecl) error {
	goFuncName := e.goName(f.Name)
	retConv, err := e.conv.convertType(f.Return, ConvertTypeDefault)
	if err != nil {
		return fmt.Errorf("converting return type '%s': %w", f.Return, err)
	}

	paramNames := make(map[string]bool)
	goParams := make([]string, len(f.Params))
	cArgs := make([]string, len(f.Params))
	var prelude []string
	unsafeUsed := needsUnsafe(retConv)
	for i, p := range f.Params {
		conv, err := e.conv.convertType(p.Type, ConvertTypeDefault)
		if err != nil {
			return fmt.Errorf("converting type '%s' of parameter %d: %w", p.Type, i+1, err)
		}
		if conv.GoType == "" {
			return fmt.Errorf("parameter %d of type '%s' has no Go type", i+1, p.Type)
		}
		if needsUnsafe(conv) {
			unsafeUsed = true
		}
		goName := paramName(p.Name, i+1, paramNames)
		goParams[i] = fmt.Sprintf("%s %s", goName, conv.GoType)
		switch {
		case conv.String:
			tmp := paramName("c"+strcase.ToCamel(goName), i+1, paramNames)
			prelude = append(prelude,
				fmt.Sprintf("\t%s := C.CString(%s)\n", tmp, goName),
				fmt.Sprintf("\tdefer C.free(unsafe.Pointer(%s))\n", tmp))
			cArgs[i] = tmp
			unsafeUsed = true
		case conv.Unsafe:
			cArgs[i] = fmt.Sprintf("(%s)(unsafe.Pointer(%s))", conv.CgoType, goName)
			unsafeUsed = true
		default:
			cArgs[i] = fmt.Sprintf("(%s)(%s)", conv.CgoType, goName)
		}
	}
	if !e.reserve(goFuncName, "function "+f.Name) {
		return fmt.Errorf("name %s unavailable", goFuncName)
	}
	if sig := signature(goFuncName, goParams, retConv.GoType); e.done(sig) {
		log.Debugf("skipping function %s because it matches done signature '%s'", f.Name, sig)
		return nil
	}
	if unsafeUsed {
		e.useUnsafe = true
	}

	call := fmt.Sprintf("C.%s(%s)", f.Name, strings.Join(cArgs, ", "))
	fmt.Fprintf(&e.body, "\n// %s calls %s.\n", goFuncName, f.Name)
	if retConv.GoType == "" {
		fmt.Fprintf(&e.body, "func %s(%s) {\n", goFuncName, strings.Join(goParams, ", "))
	} else {
		fmt.Fprintf(&e.body, "func %s(%s) %s {\n", goFuncName, strings.Join(goParams, ", "), retConv.GoType)
	}
	for _, line := range prelude {
		e.body.WriteString(line)
	}
	switch {
	case retConv.GoType == "":
		fmt.Fprintf(&e.body, "\t%s\n", call)
	case retConv.String:
		fmt.Fprintf(&e.body, "\treturn C.GoString(%s)\n", call)
	case retConv.Unsafe:
		fmt.Fprintf(&e.body, "\treturn (%s)(unsafe.Pointer(%s))\n", retConv.GoType, call)
	default:
		fmt.Fprintf(&e.body, "\treturn (%s)(%s)\n", retConv.GoType, call)
	}
	e.body.WriteString("}\n")
	return nil
}

func (e *emitter) done(sig string) bool {
	_, ok := e.opts.Done[sig]
	return ok
}

// signature renders a wrapper's signature without parameter names.
func signature(name string, params []string, ret string) string {
	types := make([]string, len(params))
	for i, p := range params {
		types[i] = p[strings.IndexByte(p, ' ')+1:]
	}
	sig := fmt.Sprintf("func %s(%s)", name, strings.Join(types, ", "))
	if ret != "" {
		sig += " " + ret
	}
	return sig
}

func needsUnsafe(conv TypeConv) bool {
	return conv.Unsafe || strings.Contains(conv.GoType, "unsafe.") || strings.Contains(conv.CgoType, "unsafe.")
}

// paramName picks a unique, non-keyword Go name for a C parameter.
func paramName(cName string, index int, taken map[string]bool) string {
	name := strcase.ToLowerCamel(cName)
	if name == "" || !token.IsIdentifier(name) && !token.IsKeyword(name) {
		name = fmt.Sprintf("param%d", index)
	}
	for token.IsKeyword(name) || name == "C" || name == "unsafe" || taken[name] {
		name += "_"
	}
	taken[name] = true
	return name
}
