package engine

import (
	"fmt"
	"strings"
)

// Config is the validated input of a single generation run. It is built once
// with NewConfig and never mutated afterwards.
type Config struct {
	inclusions []Inclusion
	allowlist  []AllowEntry
	incDir     string
}

// NewConfig validates its arguments and copies them into a Config. The
// returned error is an *Error with StageConfig.
func NewConfig(inclusions []Inclusion, allowlist []AllowEntry, incDir string) (Config, error) {
	for i, incl := range inclusions {
		if err := CheckInclusion(incl); err != nil {
			return Config{}, stageErrf(StageConfig, "inclusion %d: %w", i+1, err)
		}
	}
	for i, e := range allowlist {
		if err := CheckPattern(e.Pattern); err != nil {
			return Config{}, stageErrf(StageConfig, "allowlist entry %d: %w", i+1, err)
		}
	}
	if strings.ContainsAny(incDir, "\n\r") {
		return Config{}, stageErrf(StageConfig, "include directory '%s' contains a line break", incDir)
	}
	return Config{
		inclusions: append([]Inclusion(nil), inclusions...),
		allowlist:  append([]AllowEntry(nil), allowlist...),
		incDir:     incDir,
	}, nil
}

// CheckInclusion reports whether incl renders to a well-formed preprocessor
// line.
func CheckInclusion(incl Inclusion) error {
	switch incl.Kind {
	case InclusionDefine:
		if !IsCIdentifier(incl.Value) {
			return fmt.Errorf("define '%s' is not a valid C identifier", incl.Value)
		}
	case InclusionHeader:
		if incl.Value == "" {
			return fmt.Errorf("empty header path")
		}
		if strings.ContainsAny(incl.Value, "\"\n\r") {
			return fmt.Errorf("header path '%s' contains a quote or line break", incl.Value)
		}
	default:
		return fmt.Errorf("unknown inclusion kind %s", incl.Kind)
	}
	return nil
}

// IsCIdentifier reports whether s is a valid C preprocessor identifier.
func IsCIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func (c Config) Inclusions() []Inclusion {
	return append([]Inclusion(nil), c.inclusions...)
}

func (c Config) Allowlist() []AllowEntry {
	return append([]AllowEntry(nil), c.allowlist...)
}

func (c Config) IncludeDir() string {
	return c.incDir
}

// Header renders the config's inclusions. See BuildHeader.
func (c Config) Header() string {
	return BuildHeader(c.inclusions)
}

// Rules returns the compiled allow rules. Patterns were validated by
// NewConfig so this only fails for a zero-value Config that was hand built.
func (c Config) Rules() ([]AllowRule, error) {
	rules, err := Rules(c.allowlist)
	if err != nil {
		return nil, stageErr(StageConfig, err)
	}
	return rules, nil
}

// Request builds the generator input for this config.
func (c Config) Request() (Request, error) {
	rules, err := c.Rules()
	if err != nil {
		return Request{}, err
	}
	req := Request{
		HeaderName: HeaderName,
		Header:     c.Header(),
		Rules:      rules,
	}
	if c.incDir != "" {
		req.IncludeDirs = []string{c.incDir}
	}
	return req, nil
}
