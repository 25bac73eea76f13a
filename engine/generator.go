package engine

// HeaderName is the file name the synthetic header is presented under. The
// .hpp extension puts extension-sensitive front ends into C++ mode.
const HeaderName = "includecpp.hpp"

// Request is everything a Generator gets to see.
type Request struct {
	HeaderName  string
	Header      string
	IncludeDirs []string
	Rules       []AllowRule
}

// Matcher builds a Matcher over the request's rules.
func (r Request) Matcher() Matcher {
	return NewMatcher(r.Rules)
}

// Generator turns a header into Go binding source text. The text must parse
// as a complete Go file; its package name is replaced when spliced.
type Generator interface {
	Generate(req Request) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(req Request) (string, error)

func (f GeneratorFunc) Generate(req Request) (string, error) {
	return f(req)
}
