// Package lexer transforms UTF-8 source text into the token stream the
// parser consumes. Its scanning loop — a current-rune cursor with
// advance/peek and an error callback reporting through token.Position —
// stays small because this language's token set is small (no operators,
// no long-bracket strings, no hashbang/BOM handling needed for a
// from-stdin-or-file s-expression source).
package lexer

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/openSVM/eshkol/lang/diag"
	"github.com/openSVM/eshkol/lang/intern"
	"github.com/openSVM/eshkol/lang/token"
)

// Lexer tokenizes one source file.
type Lexer struct {
	file   *token.File
	src    []byte
	sink   *diag.Sink
	intern *intern.Table

	cur  rune // current rune, -1 at EOF
	off  int  // byte offset of cur
	roff int  // byte offset following cur
}

// New creates a Lexer over src, whose positions are reported against file.
// sink receives LexicalError diagnostics; interner receives identifier and
// string literal text.
func New(file *token.File, src []byte, sink *diag.Sink, interner *intern.Table) *Lexer {
	l := &Lexer{file: file, src: src, sink: sink, intern: interner}
	l.cur = ' '
	l.advance()
	return l
}

func (l *Lexer) peekByte() byte {
	if l.roff < len(l.src) {
		return l.src[l.roff]
	}
	return 0
}

func (l *Lexer) advance() {
	if l.roff >= len(l.src) {
		l.off = len(l.src)
		if l.cur == '\n' {
			l.file.AddLine(l.off)
		}
		l.cur = -1
		return
	}
	l.off = l.roff
	if l.cur == '\n' {
		l.file.AddLine(l.off)
	}
	r, w := rune(l.src[l.roff]), 1
	if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRune(l.src[l.roff:])
		if r == utf8.RuneError && w == 1 {
			l.error(l.off, "illegal UTF-8 encoding")
		}
	}
	l.roff += w
	l.cur = r
}

func (l *Lexer) error(off int, format string, args ...any) {
	l.sink.Add(diag.Error, l.file.Position(off), format, args...)
}

func (l *Lexer) span(start int) token.Span {
	pos := l.file.Position(start)
	return token.Span{
		Start:      token.MakePos(pos.Line, pos.Column),
		ByteOffset: start,
		Length:     l.off - start,
	}
}

func isDelimiter(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', -1, '(', ')', '[', ']', '"', ';', '\'':
		return true
	}
	return false
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// Next scans and returns the next token and its value. At end of input it
// returns token.EOF forever, with a Value carrying only the end Span.
func (l *Lexer) Next() (token.Token, token.Value) {
	l.skipTrivia()

	start := l.off
	if l.cur == -1 {
		return token.EOF, token.Value{Span: l.span(start)}
	}

	switch {
	case l.cur == '(':
		l.advance()
		return token.LPAREN, token.Value{Span: l.span(start), Raw: "("}
	case l.cur == ')':
		l.advance()
		return token.RPAREN, token.Value{Span: l.span(start), Raw: ")"}
	case l.cur == '[':
		l.advance()
		return token.LBRACKET, token.Value{Span: l.span(start), Raw: "["}
	case l.cur == ']':
		l.advance()
		return token.RBRACKET, token.Value{Span: l.span(start), Raw: "]"}
	case l.cur == '\'':
		l.advance()
		return token.QUOTE, token.Value{Span: l.span(start), Raw: "'"}
	case l.cur == '`':
		l.advance()
		return token.BACKTICK, token.Value{Span: l.span(start), Raw: "`"}
	case l.cur == ',':
		l.advance()
		if l.cur == '@' {
			l.advance()
			return token.COMMA_AT, token.Value{Span: l.span(start), Raw: ",@"}
		}
		return token.COMMA, token.Value{Span: l.span(start), Raw: ","}
	case l.cur == '.' && !isDigit(rune(l.peekByte())):
		l.advance()
		return token.DOT, token.Value{Span: l.span(start), Raw: "."}
	case l.cur == '"':
		return l.scanString(start)
	case l.cur == '#':
		return l.scanHash(start)
	case isDigit(l.cur) || ((l.cur == '+' || l.cur == '-') && isDigit(rune(l.peekByte()))) ||
		(l.cur == '.' && isDigit(rune(l.peekByte()))):
		return l.scanNumber(start)
	default:
		return l.scanIdentLike(start)
	}
}

func (l *Lexer) skipTrivia() {
	for {
		switch {
		case l.cur == ' ' || l.cur == '\t' || l.cur == '\n' || l.cur == '\r':
			l.advance()
		case l.cur == ';':
			for l.cur != '\n' && l.cur != -1 {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *Lexer) scanString(start int) (token.Token, token.Value) {
	l.advance() // consume opening quote
	var sb strings.Builder
	for {
		if l.cur == -1 || l.cur == '\n' {
			l.error(start, "unterminated string literal")
			return token.ILLEGAL, token.Value{Span: l.span(start)}
		}
		if l.cur == '"' {
			l.advance()
			break
		}
		if l.cur == '\\' {
			l.advance()
			switch l.cur {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			case 'r':
				sb.WriteByte('\r')
			case '0':
				sb.WriteByte(0)
			default:
				l.error(l.off, "unknown escape sequence '\\%c'", l.cur)
			}
			l.advance()
			continue
		}
		sb.WriteRune(l.cur)
		l.advance()
	}
	text := sb.String()
	return token.STRING, token.Value{
		Span:     l.span(start),
		Raw:      l.rawSlice(start),
		StringID: uint32(l.intern.Intern(text)),
	}
}

var namedChars = map[string]rune{
	"space":   ' ',
	"newline": '\n',
	"tab":     '\t',
	"return":  '\r',
	"null":    0,
}

func (l *Lexer) scanHash(start int) (token.Token, token.Value) {
	l.advance() // consume '#'
	switch l.cur {
	case 't':
		l.advance()
		return token.BOOL, token.Value{Span: l.span(start), Raw: "#t", Bool: true}
	case 'f':
		l.advance()
		return token.BOOL, token.Value{Span: l.span(start), Raw: "#f", Bool: false}
	case '\\':
		l.advance()
		return l.scanChar(start)
	default:
		l.error(start, "illegal character after '#'")
		l.resync()
		return token.ILLEGAL, token.Value{Span: l.span(start)}
	}
}

func (l *Lexer) scanChar(start int) (token.Token, token.Value) {
	if l.cur == -1 {
		l.error(start, "unterminated character literal")
		return token.ILLEGAL, token.Value{Span: l.span(start)}
	}
	// Collect the run of non-delimiter runes following '#\': a named form
	// like "space", or a single character.
	var sb strings.Builder
	sb.WriteRune(l.cur)
	first := l.cur
	l.advance()
	for !isDelimiter(l.cur) {
		sb.WriteRune(l.cur)
		l.advance()
	}
	name := sb.String()
	if len(name) == 1 {
		return token.CHAR, token.Value{Span: l.span(start), Raw: name, Char: first}
	}
	if r, ok := namedChars[name]; ok {
		return token.CHAR, token.Value{Span: l.span(start), Raw: name, Char: r}
	}
	l.error(start, "unknown character name %q", name)
	return token.ILLEGAL, token.Value{Span: l.span(start)}
}

func (l *Lexer) scanNumber(start int) (token.Token, token.Value) {
	var sb strings.Builder
	if l.cur == '+' || l.cur == '-' {
		sb.WriteRune(l.cur)
		l.advance()
	}
	isFloat := false
	for isDigit(l.cur) {
		sb.WriteRune(l.cur)
		l.advance()
	}
	if l.cur == '.' {
		isFloat = true
		sb.WriteRune(l.cur)
		l.advance()
		for isDigit(l.cur) {
			sb.WriteRune(l.cur)
			l.advance()
		}
	}
	lit := sb.String()
	v := token.Value{Span: l.span(start), Raw: lit, IsFloat: isFloat}
	if isFloat {
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			l.error(start, "malformed float literal %q: %v", lit, err)
		}
		v.Float = f
	} else {
		n, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			l.error(start, "malformed integer literal %q: %v", lit, err)
		}
		v.Int = n
	}
	return token.NUMBER, v
}

func (l *Lexer) scanIdentLike(start int) (token.Token, token.Value) {
	if isDelimiter(l.cur) {
		l.error(start, "unexpected character %q", l.cur)
		l.advance()
		return token.ILLEGAL, token.Value{Span: l.span(start)}
	}
	var sb strings.Builder
	for !isDelimiter(l.cur) {
		sb.WriteRune(l.cur)
		l.advance()
	}
	lit := sb.String()
	tok := token.LookupIdent(lit)
	v := token.Value{Span: l.span(start), Raw: lit}
	if tok == token.IDENTIFIER {
		v.StringID = uint32(l.intern.Intern(lit))
	}
	return tok, v
}

// resync skips forward to the next whitespace or delimiter byte after a
// lexical error so scanning can continue past it.
func (l *Lexer) resync() {
	for !isDelimiter(l.cur) && l.cur != -1 {
		l.advance()
	}
}

func (l *Lexer) rawSlice(start int) string {
	if l.off > len(l.src) {
		return ""
	}
	return string(l.src[start:l.off])
}
