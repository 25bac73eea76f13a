// Package ccgen generates cgo bindings in-process by parsing the synthetic
// header with modernc.org/cc/v3.
//
// cc is a C front end, so headers must expose their API through an
// extern "C" surface; C++-only declarations are out of reach of cgo anyway.
package ccgen

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tliron/commonlog"
	"modernc.org/cc/v3"

	"github.com/kbolino/go-includecpp/cgowrap"
	"github.com/kbolino/go-includecpp/engine"
)

var log = commonlog.GetLogger("includecpp.ccgen")

// Generator implements engine.Generator.
type Generator struct {
	// CPP is the C preprocessor queried for the host configuration. Empty
	// means "cpp".
	CPP     string
	Options cgowrap.Options

	host *hostConfig
}

type hostConfig struct {
	predefined      string
	includePaths    []string
	sysIncludePaths []string
}

// loadHost asks the C preprocessor for its predefined macros and include
// paths once per Generator.
func (g *Generator) loadHost() (*hostConfig, error) {
	if g.host != nil {
		return g.host, nil
	}
	log.Debug("determining host configuration from C preprocessor")
	predefined, includePaths, sysIncludePaths, err := cc.HostConfig(g.CPP)
	if err != nil {
		return nil, fmt.Errorf("obtaining host configuration: %w", err)
	}
	log.Debugf("includePaths = %v", includePaths)
	log.Debugf("sysIncludePaths = %v", sysIncludePaths)
	g.host = &hostConfig{
		predefined:      predefined,
		includePaths:    includePaths,
		sysIncludePaths: sysIncludePaths,
	}
	return g.host, nil
}

func New(cpp string, opts cgowrap.Options) *Generator {
	return &Generator{CPP: cpp, Options: opts}
}

func (g *Generator) Generate(req engine.Request) (string, error) {
	model, err := g.Model(req)
	if err != nil {
		return "", err
	}
	return cgowrap.Emit(model, g.Options), nil
}

// Model parses the request's header and returns the declarations it lets
// through, without rendering them.
func (g *Generator) Model(req engine.Request) (cgowrap.Model, error) {
	host, err := g.loadHost()
	if err != nil {
		return cgowrap.Model{}, err
	}
	for _, name := range cppOnlyHeaders(req.Header) {
		log.Warningf("%s looks like a C++ header, which cc cannot parse; use the clang generator for C++ APIs", name)
	}
	predefined, sysIncludePaths := host.predefined, host.sysIncludePaths
	// "@" is the directory of the including file
	includePaths := append([]string{"@"}, host.includePaths...)
	for _, dir := range req.IncludeDirs {
		log.Debugf("appending %s to includePaths", dir)
		includePaths = append(includePaths, dir)
	}
	sources := []cc.Source{
		{Name: "<predefined>", Value: predefined},
		{Name: "<builtin>", Value: builtinBase},
		{Name: req.HeaderName, Value: req.Header, DoNotCache: true},
	}
	log.Debugf("parsing %s", req.HeaderName)
	model, err := NewParser(req.Matcher(), sysIncludePaths).Parse(includePaths, sources)
	if err != nil {
		return cgowrap.Model{}, err
	}
	log.Infof("found %d functions, %d enums, %d structs, %d typedefs",
		len(model.Funcs), len(model.Enums), len(model.Structs), len(model.Typedefs))
	return model, nil
}

var cppExtensions = []string{".hpp", ".hh", ".hxx", ".h++", ".H"}

// cppOnlyHeaders returns the headers included by header whose extension
// marks them as C++.
func cppOnlyHeaders(header string) []string {
	var names []string
	for _, line := range strings.Split(header, "\n") {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), "#include")
		if !ok {
			continue
		}
		rest = strings.TrimSpace(rest)
		if len(rest) < 2 {
			continue
		}
		name := rest[1 : len(rest)-1]
		if slices.Contains(cppExtensions, filepath.Ext(name)) {
			names = append(names, name)
		}
	}
	return names
}
