package engine

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/printer"
	"go/token"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/tools/imports"
)

const (
	DefaultOutput = "zz_includecpp.go"
	DefaultTool   = "go-includecpp"
)

// SpliceOptions controls how bindings are rendered into the caller's package.
type SpliceOptions struct {
	// Package is the caller's package name. Empty keeps the name the
	// generator used.
	Package string
	// FileName is the output file name, used for import resolution.
	FileName string
	// Tool is named in the generated-code marker.
	Tool string
	// OutputDir is the directory the output is written to. Absolute include
	// directories are written relative to it so the generated file does not
	// depend on where it was generated.
	OutputDir string
}

func (o SpliceOptions) withDefaults() SpliceOptions {
	if o.FileName == "" {
		o.FileName = DefaultOutput
	}
	if o.Tool == "" {
		o.Tool = DefaultTool
	}
	return o
}

// Splice renders file's declarations below a cgo preamble built from req and
// returns the formatted source of the caller's generated file.
func Splice(fset *token.FileSet, file *ast.File, req Request, opts SpliceOptions) ([]byte, error) {
	opts = opts.withDefaults()
	pkg := opts.Package
	if pkg == "" {
		pkg = file.Name.Name
	}
	if !token.IsIdentifier(pkg) || pkg == "_" {
		return nil, stageErrf(StageSplice, "invalid package name '%s'", pkg)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Code generated by %s. DO NOT EDIT.\n\n", opts.Tool)
	fmt.Fprintf(&buf, "package %s\n\n", pkg)
	writePreamble(&buf, req, opts.OutputDir, usesCFree(file))
	buf.WriteString("import \"C\"\n")

	var specs []string
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil || path == "C" {
			continue
		}
		if spec.Name != nil {
			specs = append(specs, spec.Name.Name+" "+spec.Path.Value)
		} else {
			specs = append(specs, spec.Path.Value)
		}
	}
	switch len(specs) {
	case 0:
	case 1:
		fmt.Fprintf(&buf, "\nimport %s\n", specs[0])
	default:
		buf.WriteString("\nimport (\n")
		for _, s := range specs {
			fmt.Fprintf(&buf, "\t%s\n", s)
		}
		buf.WriteString(")\n")
	}

	for _, decl := range file.Decls {
		if gd, ok := decl.(*ast.GenDecl); ok && gd.Tok == token.IMPORT {
			continue
		}
		buf.WriteString("\n")
		node := &printer.CommentedNode{Node: decl, Comments: file.Comments}
		if err := format.Node(&buf, fset, node); err != nil {
			return nil, stageErrf(StageSplice, "printing declaration at %s: %w", fset.Position(decl.Pos()), err)
		}
		buf.WriteString("\n")
	}

	out, err := imports.Process(opts.FileName, buf.Bytes(), &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return nil, stageErrf(StageSplice, "formatting %s: %w", opts.FileName, err)
	}
	return out, nil
}

func writePreamble(buf *bytes.Buffer, req Request, outputDir string, needStdlib bool) {
	buf.WriteString("/*\n")
	if len(req.IncludeDirs) > 0 {
		flags := make([]string, len(req.IncludeDirs))
		for i, dir := range req.IncludeDirs {
			flag := "-I" + cgoIncludeDir(dir, outputDir)
			if strings.ContainsAny(flag, " \t") {
				flag = strconv.Quote(flag)
			}
			flags[i] = flag
		}
		fmt.Fprintf(buf, "#cgo CFLAGS: %s\n", strings.Join(flags, " "))
	}
	if needStdlib {
		buf.WriteString("#include <stdlib.h>\n")
	}
	buf.WriteString(strings.ReplaceAll(req.Header, "*/", "* /"))
	buf.WriteString("*/\n")
}

// cgoIncludeDir spells dir for a #cgo directive. cgo runs the compiler
// outside the package, so directories are anchored at ${SRCDIR}: relative
// ones as given, absolute ones relative to outputDir when that is known.
func cgoIncludeDir(dir, outputDir string) string {
	if filepath.IsAbs(dir) {
		if outputDir == "" {
			return dir
		}
		absOut, err := filepath.Abs(outputDir)
		if err != nil {
			return dir
		}
		rel, err := filepath.Rel(absOut, dir)
		if err != nil {
			return dir
		}
		dir = rel
	}
	if dir = filepath.Clean(dir); dir == "." {
		return "${SRCDIR}"
	}
	return "${SRCDIR}/" + filepath.ToSlash(dir)
}

// usesCFree reports whether the bindings release C memory, which needs
// stdlib.h in the preamble.
func usesCFree(file *ast.File) bool {
	found := false
	ast.Inspect(file, func(n ast.Node) bool {
		if found {
			return false
		}
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if x, ok := sel.X.(*ast.Ident); ok && x.Name == "C" && sel.Sel.Name == "free" {
			found = true
		}
		return true
	})
	return found
}
