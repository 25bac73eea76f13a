package directive

import (
	"fmt"
	"go/token"
	"strconv"
	"strings"
	"unicode/utf8"
)

type itemKind int

const (
	itemEOF itemKind = iota
	itemWord
	itemString
	itemComma
	itemEnd // ';' or newline
)

func (k itemKind) String() string {
	switch k {
	case itemEOF:
		return "end of input"
	case itemWord:
		return "word"
	case itemString:
		return "string"
	case itemComma:
		return "','"
	case itemEnd:
		return "end of statement"
	default:
		return fmt.Sprintf("itemKind(%d)", int(k))
	}
}

type item struct {
	kind itemKind
	// text is the unquoted value for strings and the literal text otherwise.
	text string
	pos  token.Position
}

func (i item) String() string {
	switch i.kind {
	case itemWord:
		return fmt.Sprintf("'%s'", i.text)
	case itemString:
		return strconv.Quote(i.text)
	default:
		return i.kind.String()
	}
}

// lexer splits directive text into items. Words are runs of anything but
// white space, quotes, ',' and ';', so regexps need no quoting. A "//"
// ends a word and starts a comment.
type lexer struct {
	src string
	off int
	pos token.Position
}

func newLexer(base token.Position, src string) *lexer {
	if base.Line == 0 {
		base.Line = 1
	}
	if base.Column == 0 {
		base.Column = 1
	}
	return &lexer{src: src, pos: base}
}

func (l *lexer) advance(n int) {
	for _, r := range l.src[l.off : l.off+n] {
		if r == '\n' {
			l.pos.Line++
			l.pos.Column = 1
		} else {
			l.pos.Column++
		}
	}
	l.off += n
	l.pos.Offset += n
}

func (l *lexer) next() (item, error) {
	return l.scan()
}

func (l *lexer) scan() (item, error) {
	for l.off < len(l.src) {
		c := l.src[l.off]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			l.advance(1)
		case strings.HasPrefix(l.src[l.off:], "//"):
			end := strings.IndexByte(l.src[l.off:], '\n')
			if end < 0 {
				end = len(l.src) - l.off
			}
			l.advance(end)
		default:
			return l.scanItem()
		}
	}
	return item{kind: itemEOF, pos: l.pos}, nil
}

func (l *lexer) scanItem() (item, error) {
	start := l.pos
	switch c := l.src[l.off]; c {
	case '\n', ';':
		l.advance(1)
		return item{kind: itemEnd, text: string(c), pos: start}, nil
	case ',':
		l.advance(1)
		return item{kind: itemComma, text: ",", pos: start}, nil
	case '"', '`':
		return l.scanString(c)
	case '\'':
		return item{}, &Error{Pos: start, Msg: "single-quoted strings are not supported, use \" or `"}
	}
	n := 0
	for l.off+n < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.off+n:])
		if r == utf8.RuneError && size == 1 {
			return item{}, &Error{Pos: start, Msg: "invalid UTF-8 encoding"}
		}
		if strings.ContainsRune(" \t\r\n,;\"`'", r) || strings.HasPrefix(l.src[l.off+n:], "//") {
			break
		}
		n += size
	}
	text := l.src[l.off : l.off+n]
	l.advance(n)
	return item{kind: itemWord, text: text, pos: start}, nil
}

func (l *lexer) scanString(quote byte) (item, error) {
	start := l.pos
	i := l.off + 1
	for i < len(l.src) {
		c := l.src[i]
		if c == quote {
			break
		}
		if quote == '"' {
			if c == '\n' {
				return item{}, &Error{Pos: start, Msg: "string literal not terminated"}
			}
			if c == '\\' {
				i++
			}
		}
		i++
	}
	if i >= len(l.src) {
		return item{}, &Error{Pos: start, Msg: "string literal not terminated"}
	}
	lit := l.src[l.off : i+1]
	value, err := strconv.Unquote(lit)
	if err != nil {
		return item{}, &Error{Pos: start, Msg: fmt.Sprintf("malformed string literal %s", lit)}
	}
	l.advance(len(lit))
	return item{kind: itemString, text: value, pos: start}, nil
}
