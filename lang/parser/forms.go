package parser

import (
	"github.com/openSVM/eshkol/lang/ast"
	"github.com/openSVM/eshkol/lang/intern"
	"github.com/openSVM/eshkol/lang/token"
	"github.com/openSVM/eshkol/lang/types"
)

// specialFormFunc parses one special form's body, given that the head
// keyword has already been recognized but not yet consumed. start is the
// span of the opening paren/bracket; close is the matching close token.
type specialFormFunc func(p *parser, start token.Span, close token.Token) Node

// specialForms dispatches list heads to their sub-parser: "define lambda
// if let let* letrec set! begin quote quasiquote and or cond case when
// unless do".
var specialForms = map[string]specialFormFunc{
	"define":     (*parser).parseDefine,
	"lambda":     (*parser).parseLambda,
	"if":         (*parser).parseIf,
	"let":        parseLetPlain,
	"let*":       parseLetStar,
	"letrec":     parseLetRec,
	"set!":       (*parser).parseSet,
	"begin":      (*parser).parseBeginForm,
	"quote":      (*parser).parseQuoteForm,
	"quasiquote": (*parser).parseQuasiquoteForm,
	"and":        (*parser).parseAnd,
	"or":         (*parser).parseOr,
	"cond":       (*parser).parseCond,
	"case":       (*parser).parseCase,
	"when":       (*parser).parseWhen,
	"unless":     (*parser).parseUnless,
	"do":         (*parser).parseDo,
}

// parseDefine parses "(define name value)" and the sugar
// "(define (name params…) body…)", desugaring the latter to
// "(define name (lambda (params…) body…))" before constructing the node.
func (p *parser) parseDefine(start token.Span, close token.Token) Node {
	p.advance() // "define"

	if p.tok == token.LPAREN || p.tok == token.LBRACKET {
		open := p.tok
		p.advance()
		nameTok := p.expect(token.IDENTIFIER)
		name := p.intern.Intern(nameTok.Raw)
		params := p.parseParamList(closeTok(open))
		p.expect(closeTok(open))

		bodyForms := p.parseBody(close)
		lambdaSpan := spanUnion(start, p.val.Span)
		lambda := ast.NewLambda(p.nodeID(), lambdaSpan, params, p.consumeDeclaredReturn(name), bodyForms)
		end := p.val.Span
		p.expect(close)
		return ast.NewDefine(p.nodeID(), spanUnion(start, end), name, lambda)
	}

	nameTok := p.expect(token.IDENTIFIER)
	name := p.intern.Intern(nameTok.Raw)
	value := p.parseForm()
	end := p.val.Span
	p.expect(close)
	return ast.NewDefine(p.nodeID(), spanUnion(start, end), name, value)
}

// consumeDeclaredReturn looks up and removes any pending TypeDeclaration
// for name, returning its result type, or nil if none exists
// (the lambda's own return annotation, if present, is set by the caller
// separately when it's written directly in a "lambda" form; "define"
// sugar has no inline return annotation syntax, so this is its only
// source of a return type).
func (p *parser) consumeDeclaredReturn(name intern.ID) types.Type {
	decl, ok := p.pendingDecls[name]
	if !ok {
		return nil
	}
	delete(p.pendingDecls, name)
	return decl.Annotation.Result
}

// parseParamList parses a parameter list up to close (not consumed),
// accepting both bare "name" and annotated "[name : type]" parameters.
func (p *parser) parseParamList(close token.Token) []ast.Param {
	var params []ast.Param
	for p.tok != close && p.tok != token.EOF {
		params = append(params, p.parseParam())
	}
	return params
}

func (p *parser) parseParam() ast.Param {
	if p.tok == token.LBRACKET {
		start := p.val.Span
		p.advance()
		nameTok := p.expect(token.IDENTIFIER)
		p.expect(token.COLON)
		typ := p.parseTypeAnnotation()
		end := p.val.Span
		p.expect(token.RBRACKET)
		return ast.Param{Name: p.intern.Intern(nameTok.Raw), Annotation: typ, Span: spanUnion(start, end)}
	}
	nameTok := p.expect(token.IDENTIFIER)
	return ast.Param{Name: p.intern.Intern(nameTok.Raw), Span: nameTok.Span}
}

// parseLambda parses "(lambda (params…) body…)".
func (p *parser) parseLambda(start token.Span, close token.Token) Node {
	p.advance() // "lambda"
	open := p.tok
	p.expect(open) // LPAREN or LBRACKET for the parameter list
	params := p.parseParamList(closeTok(open))
	p.expect(closeTok(open))

	var ret types.Type
	if p.tok == token.ARROW {
		p.advance()
		ret = p.parseTypeAnnotation()
	}

	bodyForms := p.parseBody(close)
	end := p.val.Span
	p.expect(close)
	return ast.NewLambda(p.nodeID(), spanUnion(start, end), params, ret, bodyForms)
}

// parseIf parses "(if test consequent [alternate])".
func (p *parser) parseIf(start token.Span, close token.Token) Node {
	p.advance() // "if"
	test := p.parseForm()
	cons := p.parseForm()
	var alt Node
	if p.tok != close {
		alt = p.parseForm()
	}
	end := p.val.Span
	p.expect(close)
	return ast.NewIf(p.nodeID(), spanUnion(start, end), test, cons, alt)
}

// parseLetBindings parses the "((name init) (name [: type] init) …)"
// binding list common to let/let*/letrec.
func (p *parser) parseLetBindings() []ast.LetBinding {
	open := p.tok
	p.expect(open)
	inner := closeTok(open)
	var bindings []ast.LetBinding
	for p.tok != inner && p.tok != token.EOF {
		bopen := p.tok
		bstart := p.val.Span
		p.expect(bopen)
		bclose := closeTok(bopen)
		nameTok := p.expect(token.IDENTIFIER)
		var ann types.Type
		if p.tok == token.COLON {
			p.advance()
			ann = p.parseTypeAnnotation()
		}
		value := p.parseForm()
		bend := p.val.Span
		p.expect(bclose)
		bindings = append(bindings, ast.LetBinding{
			Name:       p.intern.Intern(nameTok.Raw),
			Annotation: ann,
			Value:      value,
			Span:       spanUnion(bstart, bend),
		})
	}
	p.expect(inner)
	return bindings
}

func parseLetPlain(p *parser, start token.Span, close token.Token) Node {
	p.advance() // "let"
	bindings := p.parseLetBindings()
	body := p.parseBody(close)
	end := p.val.Span
	p.expect(close)
	return ast.NewLetForm(p.nodeID(), spanUnion(start, end), ast.LetPlain, bindings, body)
}

func parseLetStar(p *parser, start token.Span, close token.Token) Node {
	p.advance() // "let*"
	bindings := p.parseLetBindings()
	body := p.parseBody(close)
	end := p.val.Span
	p.expect(close)
	return ast.NewLetForm(p.nodeID(), spanUnion(start, end), ast.LetStar, bindings, body)
}

func parseLetRec(p *parser, start token.Span, close token.Token) Node {
	p.advance() // "letrec"
	bindings := p.parseLetBindings()
	body := p.parseBody(close)
	end := p.val.Span
	p.expect(close)
	return ast.NewLetForm(p.nodeID(), spanUnion(start, end), ast.LetRec, bindings, body)
}

// parseSet parses "(set! target value)".
func (p *parser) parseSet(start token.Span, close token.Token) Node {
	p.advance() // "set!"
	nameTok := p.expect(token.IDENTIFIER)
	target := ast.NewIdentifier(p.nodeID(), nameTok.Span, p.intern.Intern(nameTok.Raw))
	value := p.parseForm()
	end := p.val.Span
	p.expect(close)
	return ast.NewSet(p.nodeID(), spanUnion(start, end), target, value)
}

// parseBeginForm parses "(begin expr…)".
func (p *parser) parseBeginForm(start token.Span, close token.Token) Node {
	p.advance() // "begin"
	exprs := p.parseBody(close)
	end := p.val.Span
	p.expect(close)
	return ast.NewBegin(p.nodeID(), spanUnion(start, end), exprs)
}

// parseQuoteForm parses "(quote datum)".
func (p *parser) parseQuoteForm(start token.Span, close token.Token) Node {
	p.advance() // "quote"
	d := p.parseDatum()
	end := p.val.Span
	p.expect(close)
	return ast.NewQuote(p.nodeID(), spanUnion(start, end), d)
}

// parseQuasiquoteForm parses "(quasiquote template)".
func (p *parser) parseQuasiquoteForm(start token.Span, close token.Token) Node {
	p.advance() // "quasiquote"
	d := p.parseQuasiDatum()
	end := p.val.Span
	p.expect(close)
	return ast.NewQuasiquote(p.nodeID(), spanUnion(start, end), d)
}

// parseAnd parses "(and e…)", any arity including zero.
func (p *parser) parseAnd(start token.Span, close token.Token) Node {
	p.advance() // "and"
	operands := p.parseBody(close)
	end := p.val.Span
	p.expect(close)
	return ast.NewAnd(p.nodeID(), spanUnion(start, end), operands)
}

// parseOr parses "(or e…)", any arity including zero.
func (p *parser) parseOr(start token.Span, close token.Token) Node {
	p.advance() // "or"
	operands := p.parseBody(close)
	end := p.val.Span
	p.expect(close)
	return ast.NewOr(p.nodeID(), spanUnion(start, end), operands)
}

// parseTypeDeclaration parses a standalone "(: name (-> arg-types… ret-type))"
// form, recording it in p.pendingDecls for the next matching "define" and
// returning a TypeDeclaration node for the AST (so it still appears in the
// tree, e.g. for tooling that prints the source back out).
func (p *parser) parseTypeDeclaration(start token.Span, close token.Token) Node {
	p.advance() // ":"
	nameTok := p.expect(token.IDENTIFIER)
	name := p.intern.Intern(nameTok.Raw)

	p.expect(token.LPAREN)
	p.expect(token.ARROW)
	var args []types.Type
	for p.tok != token.RPAREN && p.tok != token.EOF {
		args = append(args, p.parseTypeAnnotation())
	}
	if len(args) == 0 {
		p.errorf("type declaration requires at least a return type")
		panic(errPanicMode{})
	}
	result := args[len(args)-1]
	args = args[:len(args)-1]
	p.expect(token.RPAREN)

	end := p.val.Span
	p.expect(close)

	fn := types.Function{Params: args, Result: result}
	decl := ast.NewTypeDeclaration(p.nodeID(), spanUnion(start, end), name, fn)
	p.pendingDecls[name] = decl
	return decl
}
