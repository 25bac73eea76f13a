package engine

import (
	"strings"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvDefines    = "INCLUDECPP_DEFINES"
	EnvHeaders    = "INCLUDECPP_HEADERS"
	EnvIncludeDir = "INCLUDECPP_INCLUDE_DIR"
)

// ApplyEnv returns a copy of cfg extended from the environment. Defines from
// EnvDefines go in front of the existing inclusions so they are visible to
// every header; headers from EnvHeaders go at the end. EnvIncludeDir is used
// only when cfg has no include directory. Lists are comma separated.
func ApplyEnv(cfg Config, lookup func(string) (string, bool)) (Config, error) {
	var defines, headers []Inclusion
	if v, ok := lookup(EnvDefines); ok {
		for _, name := range splitList(v) {
			defines = append(defines, Define(name))
		}
	}
	if v, ok := lookup(EnvHeaders); ok {
		for _, path := range splitList(v) {
			headers = append(headers, Header(path))
		}
	}
	incDir := cfg.incDir
	if v, ok := lookup(EnvIncludeDir); ok && incDir == "" {
		incDir = strings.TrimSpace(v)
	}
	if len(defines) == 0 && len(headers) == 0 && incDir == cfg.incDir {
		return cfg, nil
	}
	inclusions := make([]Inclusion, 0, len(defines)+len(cfg.inclusions)+len(headers))
	inclusions = append(inclusions, defines...)
	inclusions = append(inclusions, cfg.inclusions...)
	inclusions = append(inclusions, headers...)
	log.Debugf("environment added %d defines, %d headers", len(defines), len(headers))
	return NewConfig(inclusions, cfg.allowlist, incDir)
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
