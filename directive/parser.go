// Package directive parses the declarative includecpp directive language
// into an engine.Config.
//
// A directive source is a list of statements, one per line or separated by
// ';'. Each statement is a keyword followed by one or more comma separated
// arguments:
//
//	header "nuklear.h", "extra.h"
//	define NK_INCLUDE_FIXED_TYPES
//	allow nk_.*
//	allow_type nk_color; allow_function nk_begin
//	block nk_.*_internal
//	include_dir "third_party/nuklear"
//
// Paths must be quoted. Defines and allowlist patterns may be bare words.
// Text from "//" to the end of a line is a comment.
package directive

import (
	"fmt"
	"go/token"

	"github.com/kbolino/go-includecpp/engine"
)

// Error is a parse error with the position of the offending input.
type Error struct {
	Pos token.Position
	Msg string
}

func (e *Error) Error() string {
	if e.Pos.IsValid() || e.Pos.Filename != "" {
		return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
	}
	return e.Msg
}

// Keywords understood by the parser.
const (
	KeywordHeader        = "header"
	KeywordDefine        = "define"
	KeywordAllow         = "allow"
	KeywordAllowType     = "allow_type"
	KeywordAllowFunction = "allow_function"
	KeywordBlock         = "block"
	KeywordIncludeDir    = "include_dir"
)

type argForm int

const (
	argQuoted argForm = 1 << iota
	argBare

	argAny = argQuoted | argBare
)

type keywordSpec struct {
	form   argForm
	single bool
}

var keywords = map[string]keywordSpec{
	KeywordHeader:        {form: argQuoted},
	KeywordDefine:        {form: argAny},
	KeywordAllow:         {form: argAny},
	KeywordAllowType:     {form: argAny},
	KeywordAllowFunction: {form: argAny},
	KeywordBlock:         {form: argAny},
	KeywordIncludeDir:    {form: argQuoted, single: true},
}

// builder accumulates statements from one or more directive sources.
type builder struct {
	inclusions []engine.Inclusion
	allowlist  []engine.AllowEntry
	incDir     string
	incDirPos  token.Position
	haveIncDir bool
}

// Parse parses a complete directive source. name is used in error positions.
func Parse(name string, src []byte) (engine.Config, error) {
	b := &builder{}
	if err := b.parse(token.Position{Filename: name, Line: 1, Column: 1}, string(src)); err != nil {
		return engine.Config{}, err
	}
	return b.config()
}

func (b *builder) config() (engine.Config, error) {
	cfg, err := engine.NewConfig(b.inclusions, b.allowlist, b.incDir)
	if err != nil {
		return engine.Config{}, fmt.Errorf("building configuration: %w", err)
	}
	return cfg, nil
}

func (b *builder) parse(base token.Position, src string) error {
	lex := newLexer(base, src)
	for {
		it, err := lex.next()
		if err != nil {
			return err
		}
		switch it.kind {
		case itemEOF:
			return nil
		case itemEnd:
			continue
		case itemWord:
			if err := b.statement(lex, it); err != nil {
				return err
			}
		default:
			return &Error{Pos: it.pos, Msg: fmt.Sprintf("expected directive keyword, found %s", it)}
		}
	}
}

func (b *builder) statement(lex *lexer, kw item) error {
	spec, ok := keywords[kw.text]
	if !ok {
		return &Error{Pos: kw.pos, Msg: fmt.Sprintf("unknown directive %s", kw)}
	}
	args, err := parseArgs(lex, kw, spec)
	if err != nil {
		return err
	}
	switch kw.text {
	case KeywordHeader:
		for _, a := range args {
			incl := engine.Header(a.text)
			if err := engine.CheckInclusion(incl); err != nil {
				return &Error{Pos: a.pos, Msg: err.Error()}
			}
			b.inclusions = append(b.inclusions, incl)
		}
	case KeywordDefine:
		for _, a := range args {
			incl := engine.Define(a.text)
			if err := engine.CheckInclusion(incl); err != nil {
				return &Error{Pos: a.pos, Msg: err.Error()}
			}
			b.inclusions = append(b.inclusions, incl)
		}
	case KeywordAllow, KeywordAllowType, KeywordAllowFunction, KeywordBlock:
		entry := engine.AllowEntry{Kinds: engine.KindAll}
		switch kw.text {
		case KeywordAllowType:
			entry.Kinds = engine.KindType
		case KeywordAllowFunction:
			entry.Kinds = engine.KindFunction
		case KeywordBlock:
			entry.Negate = true
		}
		for _, a := range args {
			if err := engine.CheckPattern(a.text); err != nil {
				return &Error{Pos: a.pos, Msg: err.Error()}
			}
			entry.Pattern = a.text
			b.allowlist = append(b.allowlist, entry)
		}
	case KeywordIncludeDir:
		if b.haveIncDir {
			return &Error{Pos: kw.pos, Msg: fmt.Sprintf("include_dir already set at %s", b.incDirPos)}
		}
		if args[0].text == "" {
			return &Error{Pos: args[0].pos, Msg: "empty include_dir"}
		}
		b.incDir = args[0].text
		b.incDirPos = kw.pos
		b.haveIncDir = true
	}
	return nil
}

// parseArgs reads `arg { "," arg }` followed by the end of the statement.
func parseArgs(lex *lexer, kw item, spec keywordSpec) ([]item, error) {
	var args []item
	for {
		it, err := lex.next()
		if err != nil {
			return nil, err
		}
		switch {
		case it.kind == itemString && spec.form&argQuoted != 0,
			it.kind == itemWord && spec.form&argBare != 0:
			args = append(args, it)
		case it.kind == itemWord && spec.form&argBare == 0:
			return nil, &Error{Pos: it.pos, Msg: fmt.Sprintf("%s expects a quoted string, found %s", kw.text, it)}
		case len(args) == 0:
			return nil, &Error{Pos: it.pos, Msg: fmt.Sprintf("%s expects an argument, found %s", kw.text, it)}
		default:
			return nil, &Error{Pos: it.pos, Msg: fmt.Sprintf("expected argument after ',', found %s", it)}
		}

		sep, err := lex.next()
		if err != nil {
			return nil, err
		}
		switch sep.kind {
		case itemComma:
			if spec.single {
				return nil, &Error{Pos: sep.pos, Msg: fmt.Sprintf("%s takes a single argument", kw.text)}
			}
			continue
		case itemEnd, itemEOF:
			return args, nil
		default:
			return nil, &Error{Pos: sep.pos, Msg: fmt.Sprintf("unexpected %s after %s argument, want ',' or end of statement", sep, kw.text)}
		}
	}
}
