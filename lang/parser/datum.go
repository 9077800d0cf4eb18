package parser

import (
	"github.com/openSVM/eshkol/lang/ast"
	"github.com/openSVM/eshkol/lang/intern"
	"github.com/openSVM/eshkol/lang/token"
)

// parseDatum parses the restricted data subset a "quote" form can produce:
// literals, symbols, proper lists, and dotted pairs. A bare "," or ",@" is
// meaningless here (they only make sense inside a quasiquote template) and
// is reported as an error.
func (p *parser) parseDatum() ast.Datum {
	span := p.val.Span
	switch p.tok {
	case token.NUMBER:
		v := p.val
		p.advance()
		if v.IsFloat {
			return ast.NewFloatDatum(span, v.Float)
		}
		return ast.NewIntDatum(span, v.Int)
	case token.STRING:
		v := p.val
		p.advance()
		return ast.NewStringDatum(span, intern.ID(v.StringID))
	case token.CHAR:
		v := p.val
		p.advance()
		return ast.NewCharDatum(span, v.Char)
	case token.BOOL:
		v := p.val
		p.advance()
		return ast.NewBoolDatum(span, v.Bool)
	case token.IDENTIFIER, token.KEYWORD, token.COLON, token.ARROW:
		v := p.val
		p.advance()
		return ast.NewSymbolDatum(span, p.intern.Intern(v.Raw))
	case token.QUOTE:
		p.advance()
		inner := p.parseDatum()
		quoteSym := ast.NewSymbolDatum(span, p.intern.Intern("quote"))
		return ast.NewPairDatum(span, quoteSym, ast.NewPairDatum(span, inner, ast.NewNilDatum(span)))
	case token.LPAREN, token.LBRACKET:
		return p.parseDatumList()
	default:
		p.errorf("unexpected token %s in quoted data", p.tok.GoString())
		panic(errPanicMode{})
	}
}

// parseDatumList parses "(d1 d2 … [. dn])" into a PairDatum chain, or
// NilDatum for "()".
func (p *parser) parseDatumList() ast.Datum {
	start := p.val.Span
	open := p.tok
	p.advance()
	close := closeTok(open)

	if p.tok == close {
		end := p.val.Span
		p.advance()
		return ast.NewNilDatum(spanUnion(start, end))
	}

	var elems []ast.Datum
	var tail ast.Datum
	for p.tok != close && p.tok != token.EOF {
		if p.tok == token.DOT {
			p.advance()
			tail = p.parseDatum()
			break
		}
		elems = append(elems, p.parseDatum())
	}
	end := p.val.Span
	p.expect(close)
	span := spanUnion(start, end)

	if tail == nil {
		tail = ast.NewNilDatum(span)
	}
	result := tail
	for i := len(elems) - 1; i >= 0; i-- {
		result = ast.NewPairDatum(span, elems[i], result)
	}
	return result
}

// parseQuasiDatum parses a quasiquote template: like parseDatum, but
// "," and ",@" introduce Unquote/UnquoteSplice escapes wrapping a full
// expression (parsed with parseForm, not parseDatum, since the escaped
// content is ordinary code).
func (p *parser) parseQuasiDatum() ast.Datum {
	span := p.val.Span
	switch p.tok {
	case token.COMMA:
		p.advance()
		expr := p.parseForm()
		return ast.NewUnquoteDatum(spanUnion(span, expr.Span()), expr)
	case token.COMMA_AT:
		p.advance()
		expr := p.parseForm()
		return ast.NewUnquoteSpliceDatum(spanUnion(span, expr.Span()), expr)
	case token.LPAREN, token.LBRACKET:
		return p.parseQuasiDatumList()
	default:
		return p.parseDatum()
	}
}

func (p *parser) parseQuasiDatumList() ast.Datum {
	start := p.val.Span
	open := p.tok
	p.advance()
	close := closeTok(open)

	if p.tok == close {
		end := p.val.Span
		p.advance()
		return ast.NewNilDatum(spanUnion(start, end))
	}

	var elems []ast.Datum
	var tail ast.Datum
	for p.tok != close && p.tok != token.EOF {
		if p.tok == token.DOT {
			p.advance()
			tail = p.parseQuasiDatum()
			break
		}
		elems = append(elems, p.parseQuasiDatum())
	}
	end := p.val.Span
	p.expect(close)
	span := spanUnion(start, end)

	if tail == nil {
		tail = ast.NewNilDatum(span)
	}
	result := tail
	for i := len(elems) - 1; i >= 0; i-- {
		result = ast.NewPairDatum(span, elems[i], result)
	}
	return result
}
