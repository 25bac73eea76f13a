// Package engine assembles a synthetic header from a Config, drives a binding
// Generator over it and splices the resulting Go declarations into a cgo
// source file for the calling package.
package engine

import (
	"fmt"
	"strings"
)

// InclusionKind tells a define from a header.
type InclusionKind int

const (
	InclusionDefine InclusionKind = iota
	InclusionHeader
)

func (k InclusionKind) String() string {
	switch k {
	case InclusionDefine:
		return "define"
	case InclusionHeader:
		return "header"
	default:
		return fmt.Sprintf("InclusionKind(%d)", int(k))
	}
}

// Inclusion is a single preprocessor define or header folded into the
// synthetic header.
type Inclusion struct {
	Kind  InclusionKind
	Value string
}

func Define(name string) Inclusion {
	return Inclusion{Kind: InclusionDefine, Value: name}
}

func Header(path string) Inclusion {
	return Inclusion{Kind: InclusionHeader, Value: path}
}

// Line renders the inclusion as a single preprocessor line, including the
// trailing newline.
func (i Inclusion) Line() string {
	switch i.Kind {
	case InclusionDefine:
		return fmt.Sprintf("#define %s\n", i.Value)
	case InclusionHeader:
		return fmt.Sprintf("#include \"%s\"\n", i.Value)
	default:
		return ""
	}
}

func (i Inclusion) String() string {
	return i.Kind.String() + " " + i.Value
}

// BuildHeader renders inclusions in order, one line each. The result is
// empty for an empty slice.
func BuildHeader(inclusions []Inclusion) string {
	var sb strings.Builder
	for _, incl := range inclusions {
		sb.WriteString(incl.Line())
	}
	return sb.String()
}
