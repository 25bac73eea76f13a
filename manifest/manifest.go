// Package manifest handles includecpp.toml binding configuration, an
// alternative to directive comments for packages that prefer a file.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/kbolino/go-includecpp/engine"
)

// FileName is the manifest file looked up by Load and FindAndLoad.
const FileName = "includecpp.toml"

// Manifest represents an includecpp.toml file.
type Manifest struct {
	Bindings Bindings `toml:"bindings"`

	// Dir is the directory containing the manifest (set at load time).
	Dir string `toml:"-"`
}

// Bindings configures a single generated file.
type Bindings struct {
	Package        string   `toml:"package"`
	Output         string   `toml:"output"`
	IncludeDir     string   `toml:"include-dir"`
	Defines        []string `toml:"defines"`
	Headers        []string `toml:"headers"`
	Allow          []string `toml:"allow"`
	AllowTypes     []string `toml:"allow-types"`
	AllowFunctions []string `toml:"allow-functions"`
	Block          []string `toml:"block"`
	Typemap        string   `toml:"typemap"`
	Done           string   `toml:"done"`
	TrimPrefix     string   `toml:"trim-prefix"`
	Generator      string   `toml:"generator"`
}

// Load parses the includecpp.toml file in dir.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %s in %s", undecoded[0], path)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if m.Bindings.Output == "" {
		m.Bindings.Output = engine.DefaultOutput
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find an includecpp.toml file, then
// loads and returns it. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// Config validates the manifest into an engine configuration. Defines come
// before headers so every header sees them.
func (m *Manifest) Config() (engine.Config, error) {
	b := m.Bindings
	inclusions := make([]engine.Inclusion, 0, len(b.Defines)+len(b.Headers))
	for _, d := range b.Defines {
		inclusions = append(inclusions, engine.Define(d))
	}
	for _, h := range b.Headers {
		inclusions = append(inclusions, engine.Header(h))
	}
	var allow []engine.AllowEntry
	for _, p := range b.Allow {
		allow = append(allow, engine.Allow(p))
	}
	for _, p := range b.AllowTypes {
		allow = append(allow, engine.AllowEntry{Pattern: p, Kinds: engine.KindType})
	}
	for _, p := range b.AllowFunctions {
		allow = append(allow, engine.AllowEntry{Pattern: p, Kinds: engine.KindFunction})
	}
	for _, p := range b.Block {
		allow = append(allow, engine.AllowEntry{Pattern: p, Kinds: engine.KindAll, Negate: true})
	}
	cfg, err := engine.NewConfig(inclusions, allow, m.IncludeDirPath())
	if err != nil {
		return engine.Config{}, fmt.Errorf("invalid %s: %w", filepath.Join(m.Dir, FileName), err)
	}
	return cfg, nil
}

// IncludeDirPath returns the include directory resolved against the manifest
// directory, or "" when none is configured.
func (m *Manifest) IncludeDirPath() string {
	return m.resolve(m.Bindings.IncludeDir)
}

// OutputPath returns the absolute path of the generated file.
func (m *Manifest) OutputPath() string {
	return m.resolve(m.Bindings.Output)
}

// TypemapPath returns the absolute path of the type map, or "".
func (m *Manifest) TypemapPath() string {
	return m.resolve(m.Bindings.Typemap)
}

// DonePath returns the absolute path of the done signatures file, or "".
func (m *Manifest) DonePath() string {
	return m.resolve(m.Bindings.Done)
}

func (m *Manifest) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}
