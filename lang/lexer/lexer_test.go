package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openSVM/eshkol/lang/diag"
	"github.com/openSVM/eshkol/lang/intern"
	"github.com/openSVM/eshkol/lang/token"
)

func scanAll(t *testing.T, src string) ([]token.Token, []token.Value) {
	t.Helper()
	file := token.NewFile("test", len(src))
	sink := diag.NewSink()
	it := intern.New()
	l := New(file, []byte(src), sink, it)

	var toks []token.Token
	var vals []token.Value
	for {
		tok, val := l.Next()
		toks = append(toks, tok)
		vals = append(vals, val)
		if tok == token.EOF {
			break
		}
	}
	return toks, vals
}

func TestLexSimpleCall(t *testing.T) {
	toks, _ := scanAll(t, "(+ 1 2)")
	require.Equal(t, []token.Token{
		token.LPAREN, token.IDENTIFIER, token.NUMBER, token.NUMBER, token.RPAREN, token.EOF,
	}, toks)
}

func TestLexKeyword(t *testing.T) {
	toks, _ := scanAll(t, "(define x 1)")
	require.Equal(t, []token.Token{
		token.LPAREN, token.KEYWORD, token.IDENTIFIER, token.NUMBER, token.RPAREN, token.EOF,
	}, toks)
}

func TestLexFloat(t *testing.T) {
	toks, vals := scanAll(t, "3.14")
	require.Equal(t, token.NUMBER, toks[0])
	assert.True(t, vals[0].IsFloat)
	assert.InDelta(t, 3.14, vals[0].Float, 1e-9)
}

func TestLexNegativeInteger(t *testing.T) {
	toks, vals := scanAll(t, "-42")
	require.Equal(t, token.NUMBER, toks[0])
	assert.False(t, vals[0].IsFloat)
	assert.EqualValues(t, -42, vals[0].Int)
}

func TestLexString(t *testing.T) {
	it := intern.New()
	file := token.NewFile("test", len(`"hi\nthere"`))
	sink := diag.NewSink()
	l := New(file, []byte(`"hi\nthere"`), sink, it)
	tok, val := l.Next()
	require.Equal(t, token.STRING, tok)
	assert.Equal(t, "hi\nthere", it.Lookup(intern.ID(val.StringID)))
}

func TestLexCharLiterals(t *testing.T) {
	toks, vals := scanAll(t, `#\a #\space #\newline`)
	require.Equal(t, token.CHAR, toks[0])
	require.Equal(t, token.CHAR, toks[1])
	require.Equal(t, token.CHAR, toks[2])
	assert.Equal(t, 'a', vals[0].Char)
	assert.Equal(t, ' ', vals[1].Char)
	assert.Equal(t, '\n', vals[2].Char)
}

func TestLexBool(t *testing.T) {
	toks, vals := scanAll(t, "#t #f")
	require.Equal(t, []token.Token{token.BOOL, token.BOOL, token.EOF}, toks)
	assert.True(t, vals[0].Bool)
	assert.False(t, vals[1].Bool)
}

func TestLexQuoteBacktickComma(t *testing.T) {
	toks, _ := scanAll(t, "'x `(a ,b ,@c)")
	require.Equal(t, []token.Token{
		token.QUOTE, token.IDENTIFIER,
		token.BACKTICK, token.LPAREN, token.IDENTIFIER, token.COMMA, token.IDENTIFIER,
		token.COMMA_AT, token.IDENTIFIER, token.RPAREN, token.EOF,
	}, toks)
}

func TestLexTypeAnnotationMarkers(t *testing.T) {
	toks, _ := scanAll(t, "[x : Integer] (-> Integer Integer)")
	require.Equal(t, []token.Token{
		token.LBRACKET, token.IDENTIFIER, token.COLON, token.IDENTIFIER, token.RBRACKET,
		token.LPAREN, token.ARROW, token.IDENTIFIER, token.IDENTIFIER, token.RPAREN, token.EOF,
	}, toks)
}

func TestLexCommentSkipped(t *testing.T) {
	toks, _ := scanAll(t, "; a comment\n(+ 1 2) ; trailing")
	require.Equal(t, []token.Token{
		token.LPAREN, token.IDENTIFIER, token.NUMBER, token.NUMBER, token.RPAREN, token.EOF,
	}, toks)
}

func TestLexUnterminatedString(t *testing.T) {
	file := token.NewFile("test", len(`"oops`))
	sink := diag.NewSink()
	it := intern.New()
	l := New(file, []byte(`"oops`), sink, it)
	tok, _ := l.Next()
	require.Equal(t, token.ILLEGAL, tok)
	require.True(t, sink.HasErrors())
}

func TestLexDotVsFloat(t *testing.T) {
	toks, _ := scanAll(t, "(a . b)")
	require.Equal(t, []token.Token{
		token.LPAREN, token.IDENTIFIER, token.DOT, token.IDENTIFIER, token.RPAREN, token.EOF,
	}, toks)
}
