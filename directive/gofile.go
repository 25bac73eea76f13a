package directive

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/kbolino/go-includecpp/engine"
)

var log = commonlog.GetLogger("includecpp.directive")

// Prefix starts a directive comment in Go source, in the style of go:generate.
const Prefix = "//includecpp:"

// GoFile is the result of scanning a Go source file for directives.
type GoFile struct {
	Package string
	Config  engine.Config
	// Directives is the number of directive comments found.
	Directives int
}

// ParseGoFile reads the Go source file at path and parses its directive
// comments, in source order, into a configuration.
func ParseGoFile(path string) (*GoFile, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseGoSource(path, src)
}

// ParseGoSource is ParseGoFile for source already in memory.
func ParseGoSource(name string, src []byte) (*GoFile, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, name, src, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("parsing Go source: %w", err)
	}
	b := &builder{}
	count := 0
	for _, group := range file.Comments {
		for _, c := range group.List {
			if !strings.HasPrefix(c.Text, Prefix) {
				continue
			}
			pos := fset.Position(c.Slash)
			pos.Column += len(Prefix)
			pos.Offset += len(Prefix)
			text := c.Text[len(Prefix):]
			log.Debugf("directive at %s: %s", pos, text)
			if err := b.parse(pos, text); err != nil {
				return nil, err
			}
			count++
		}
	}
	cfg, err := b.config()
	if err != nil {
		return nil, err
	}
	return &GoFile{
		Package:    file.Name.Name,
		Config:     cfg,
		Directives: count,
	}, nil
}
