// Package parser implements a recursive-descent, pull-model parser that
// turns a token stream into the untyped AST. Its driving loop — a
// one-token lookahead held in p.tok/p.val, advance() pulling the next
// token, panic-mode recovery resynchronizing at a list boundary — gives
// this language's single "everything is a list" grammar the same shape as
// a statement/expression grammar, just with one production instead of
// many.
package parser

import (
	"github.com/openSVM/eshkol/lang/arena"
	"github.com/openSVM/eshkol/lang/ast"
	"github.com/openSVM/eshkol/lang/diag"
	"github.com/openSVM/eshkol/lang/intern"
	"github.com/openSVM/eshkol/lang/lexer"
	"github.com/openSVM/eshkol/lang/token"
)

// errPanicMode is returned internally by sub-parsers to unwind to the
// nearest recovery point (the enclosing list or top-level form) without
// duplicating diagnostics at every level of the call stack.
type errPanicMode struct{}

func (errPanicMode) Error() string { return "panic mode" }

// Node is a local alias kept for readability in this package's signatures.
type Node = ast.Node

// parser holds the mutable state of one parse.
type parser struct {
	arena  *arena.Arena
	sink   *diag.Sink
	intern *intern.Table
	file   *token.File
	lex    *lexer.Lexer

	tok token.Token
	val token.Value

	// pendingDecls maps a declared function name to its standalone type
	// declaration, consumed by the next matching `define`.
	pendingDecls map[intern.ID]*ast.TypeDeclaration
}

// ParseProgram parses one source file into a *ast.Program. Diagnostics are
// reported to sink; src's positions are recorded against file. The returned
// error, if non-nil, is the sink's *diag.ErrorList.
func ParseProgram(a *arena.Arena, interner *intern.Table, sink *diag.Sink, file *token.File, src []byte) (*ast.Program, error) {
	p := &parser{
		arena:        a,
		sink:         sink,
		intern:       interner,
		file:         file,
		lex:          lexer.New(file, src, sink, interner),
		pendingDecls: make(map[intern.ID]*ast.TypeDeclaration),
	}
	p.advance()

	start := p.val.Span
	forms := p.parseTopLevel()
	span := spanUnion(start, p.val.Span)
	prog := ast.NewProgram(p.nodeID(), span, forms)
	return prog, sink.Err()
}

func (p *parser) nodeID() ast.NodeID {
	return ast.NodeID(p.arena.NewNode())
}

func (p *parser) advance() {
	p.tok, p.val = p.lex.Next()
}

func (p *parser) pos() token.Position {
	return p.file.Position(p.val.Span.ByteOffset)
}

func (p *parser) errorf(format string, args ...any) {
	p.sink.Add(diag.Error, p.pos(), format, args...)
}

// expect consumes the current token if it matches tok, else reports an
// error and panics with errPanicMode so the nearest recovery point can
// resynchronize.
func (p *parser) expect(tok token.Token) token.Value {
	if p.tok != tok {
		p.errorf("expected %s, got %s", tok.GoString(), p.tok.GoString())
		panic(errPanicMode{})
	}
	v := p.val
	p.advance()
	return v
}

// recoverToForm resynchronizes the token stream to the next top-level
// boundary: the first RPAREN/RBRACKET that closes back to depth 0, or EOF.
// Used after a panic-mode unwind from a top-level form.
func (p *parser) recoverToForm() {
	depth := 0
	for {
		switch p.tok {
		case token.EOF:
			return
		case token.LPAREN, token.LBRACKET:
			depth++
		case token.RPAREN, token.RBRACKET:
			if depth == 0 {
				p.advance()
				return
			}
			depth--
		}
		p.advance()
	}
}

func spanUnion(a, b token.Span) token.Span {
	end := b.ByteOffset + b.Length
	if end < a.ByteOffset+a.Length {
		end = a.ByteOffset + a.Length
	}
	return token.Span{Start: a.Start, ByteOffset: a.ByteOffset, Length: end - a.ByteOffset}
}

// parseTopLevel parses the sequence of top-level forms until EOF.
func (p *parser) parseTopLevel() []Node {
	var forms []Node
	for p.tok != token.EOF {
		forms = append(forms, p.parseTopLevelForm())
	}
	return forms
}

func (p *parser) parseTopLevelForm() (n Node) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(errPanicMode); !ok {
				panic(r)
			}
			start := p.val.Span
			p.recoverToForm()
			n = ast.NewErroneous(p.nodeID(), start, "malformed top-level form")
		}
	}()
	return p.parseForm()
}

// parseForm parses one expression-or-form, dispatching on the current
// token: an atom, a quote/backtick shorthand, or a parenthesized list whose
// head selects a special form or falls through to Call.
func (p *parser) parseForm() Node {
	switch p.tok {
	case token.LPAREN, token.LBRACKET:
		return p.parseList()
	case token.QUOTE:
		start := p.val.Span
		p.advance()
		d := p.parseDatum()
		return ast.NewQuote(p.nodeID(), spanUnion(start, d.Span()), d)
	case token.BACKTICK:
		start := p.val.Span
		p.advance()
		d := p.parseQuasiDatum()
		return ast.NewQuasiquote(p.nodeID(), spanUnion(start, d.Span()), d)
	default:
		return p.parseAtom()
	}
}

func (p *parser) parseAtom() Node {
	start := p.val.Span
	switch p.tok {
	case token.NUMBER:
		v := p.val
		p.advance()
		if v.IsFloat {
			return ast.NewFloatLiteral(p.nodeID(), start, v.Float)
		}
		return ast.NewIntegerLiteral(p.nodeID(), start, v.Int)
	case token.STRING:
		v := p.val
		p.advance()
		return ast.NewStringLiteral(p.nodeID(), start, intern.ID(v.StringID))
	case token.CHAR:
		v := p.val
		p.advance()
		return ast.NewCharLiteral(p.nodeID(), start, v.Char)
	case token.BOOL:
		v := p.val
		p.advance()
		return ast.NewBoolLiteral(p.nodeID(), start, v.Bool)
	case token.IDENTIFIER, token.COLON, token.ARROW:
		v := p.val
		name := p.intern.Intern(v.Raw)
		p.advance()
		return ast.NewIdentifier(p.nodeID(), start, name)
	default:
		p.errorf("unexpected token %s", p.tok.GoString())
		panic(errPanicMode{})
	}
}

// closeTok returns the RPAREN/RBRACKET matching openTok.
func closeTok(openTok token.Token) token.Token {
	if openTok == token.LBRACKET {
		return token.RBRACKET
	}
	return token.RPAREN
}

// parseList parses a parenthesized or bracketed form, dispatching on its
// head token to a special-form sub-parser, or else parsing it as a Call.
func (p *parser) parseList() Node {
	open := p.tok
	start := p.val.Span
	p.advance()
	close := closeTok(open)

	if p.tok == close {
		p.errorf("empty form")
		p.advance()
		return ast.NewErroneous(p.nodeID(), start, "empty form")
	}

	if p.tok == token.KEYWORD {
		head := p.val.Raw
		if fn, ok := specialForms[head]; ok {
			return fn(p, start, close)
		}
	}
	if p.tok == token.COLON {
		return p.parseTypeDeclaration(start, close)
	}

	return p.parseCall(start, close)
}

func (p *parser) parseCall(start token.Span, close token.Token) Node {
	callee := p.parseForm()
	var args []Node
	for p.tok != close && p.tok != token.EOF {
		args = append(args, p.parseForm())
	}
	end := p.val.Span
	p.expect(close)
	return ast.NewCall(p.nodeID(), spanUnion(start, end), callee, args)
}

// parseBody parses zero or more forms up to close.
func (p *parser) parseBody(close token.Token) []Node {
	var forms []Node
	for p.tok != close && p.tok != token.EOF {
		forms = append(forms, p.parseForm())
	}
	return forms
}

// wrapBegin wraps forms in a Begin when there is more than one, the usual
// rule for multi-expression bodies.
func wrapBegin(p *parser, start token.Span, forms []Node) Node {
	if len(forms) == 0 {
		return ast.NewBegin(p.nodeID(), start, nil)
	}
	if len(forms) == 1 {
		return forms[0]
	}
	return ast.NewBegin(p.nodeID(), start, forms)
}
