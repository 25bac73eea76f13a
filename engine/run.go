package engine

import (
	"go/ast"
	"go/parser"
	"go/token"
)

// BindingsFileName is the name the generator's output is parsed under.
const BindingsFileName = "bindings.go"

// Result carries every intermediate product of a successful Run.
type Result struct {
	Header   string
	Bindings string
	Fset     *token.FileSet
	File     *ast.File
	Source   []byte
}

// Run assembles the header for cfg, hands it to gen, reparses the returned
// text and splices it into a cgo source file. Failures are reported as *Error
// carrying the stage that failed; nothing is partially written.
func Run(cfg Config, gen Generator, opts SpliceOptions) (*Result, error) {
	req, err := cfg.Request()
	if err != nil {
		return nil, err
	}
	log.Debugf("full header:\n%s", req.Header)
	for _, rule := range req.Rules {
		log.Debugf("allow rule %s", rule)
	}

	bindings, err := gen.Generate(req)
	if err != nil {
		return nil, stageErr(StageGenerate, err)
	}
	log.Debugf("bindings:\n%s", bindings)

	fset, file, err := Reparse(bindings)
	if err != nil {
		return nil, err
	}

	src, err := Splice(fset, file, req, opts)
	if err != nil {
		return nil, err
	}
	return &Result{
		Header:   req.Header,
		Bindings: bindings,
		Fset:     fset,
		File:     file,
		Source:   src,
	}, nil
}

// Reparse parses generator output back into a Go syntax tree.
func Reparse(bindings string) (*token.FileSet, *ast.File, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, BindingsFileName, bindings, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, nil, stageErr(StageReparse, err)
	}
	return fset, file, nil
}
