package parser

import (
	"github.com/openSVM/eshkol/lang/ast"
	"github.com/openSVM/eshkol/lang/intern"
	"github.com/openSVM/eshkol/lang/token"
)

// This file desugars cond/case/when/unless/do at parse time into the
// existing If/LetRec/Begin/Call node variants, rather than adding five
// more AST node kinds the resolver, inferencer and codegen would each
// need their own case for.

func (p *parser) ident(name string, span token.Span) *ast.Identifier {
	return ast.NewIdentifier(p.nodeID(), span, p.intern.Intern(name))
}

// parseCond parses "(cond (test expr…)… [(else expr…)])", desugaring to a
// chain of nested If nodes. "else" is recognized by name, not as a
// keyword: it is an ordinary identifier whose clause is simply the final
// fallback.
func (p *parser) parseCond(start token.Span, close token.Token) Node {
	p.advance() // "cond"

	type clause struct {
		span     token.Span
		test     Node
		isElse   bool
		body     []Node
	}
	var clauses []clause
	for p.tok != close && p.tok != token.EOF {
		cStart := p.val.Span
		cOpen := p.tok
		p.expect(cOpen)
		cClose := closeTok(cOpen)

		isElse := p.tok == token.IDENTIFIER && p.val.Raw == "else"
		var test Node
		if isElse {
			p.advance()
		} else {
			test = p.parseForm()
		}
		body := p.parseBody(cClose)
		cEnd := p.val.Span
		p.expect(cClose)
		clauses = append(clauses, clause{span: spanUnion(cStart, cEnd), test: test, isElse: isElse, body: body})
	}
	end := p.val.Span
	p.expect(close)
	span := spanUnion(start, end)

	var result Node
	for i := len(clauses) - 1; i >= 0; i-- {
		c := clauses[i]
		if c.isElse {
			result = wrapBegin(p, c.span, c.body)
			continue
		}
		cons := wrapBegin(p, c.span, c.body)
		result = ast.NewIf(p.nodeID(), span, c.test, cons, result)
	}
	if result == nil {
		result = ast.NewBegin(p.nodeID(), span, nil)
	}
	return result
}

// parseCase parses "(case key ((datum…) expr…)… [(else expr…)])",
// desugaring to a let binding the key once, then a chain of Ifs whose
// tests are "(or (eqv? tmp d1) (eqv? tmp d2) …)".
func (p *parser) parseCase(start token.Span, close token.Token) Node {
	p.advance() // "case"
	keySpan := p.val.Span
	keyExpr := p.parseForm()

	type clause struct {
		span   token.Span
		datums []ast.Datum
		isElse bool
		body   []Node
	}
	var clauses []clause
	for p.tok != close && p.tok != token.EOF {
		cStart := p.val.Span
		cOpen := p.tok
		p.expect(cOpen)
		cClose := closeTok(cOpen)

		isElse := p.tok == token.IDENTIFIER && p.val.Raw == "else"
		var datums []ast.Datum
		if isElse {
			p.advance()
		} else {
			dOpen := p.tok
			p.expect(dOpen)
			dClose := closeTok(dOpen)
			for p.tok != dClose && p.tok != token.EOF {
				datums = append(datums, p.parseDatum())
			}
			p.expect(dClose)
		}
		body := p.parseBody(cClose)
		cEnd := p.val.Span
		p.expect(cClose)
		clauses = append(clauses, clause{span: spanUnion(cStart, cEnd), datums: datums, isElse: isElse, body: body})
	}
	end := p.val.Span
	p.expect(close)
	span := spanUnion(start, end)

	tmpName := p.intern.Intern("%case-key")
	tmpIdent := func() *ast.Identifier { return ast.NewIdentifier(p.nodeID(), keySpan, tmpName) }

	var chain Node
	for i := len(clauses) - 1; i >= 0; i-- {
		c := clauses[i]
		if c.isElse {
			chain = wrapBegin(p, c.span, c.body)
			continue
		}
		var tests []Node
		for _, d := range c.datums {
			q := ast.NewQuote(p.nodeID(), d.Span(), d)
			eq := p.ident("eqv?", c.span)
			tests = append(tests, ast.NewCall(p.nodeID(), c.span, eq, []Node{tmpIdent(), q}))
		}
		var test Node
		if len(tests) == 1 {
			test = tests[0]
		} else {
			test = ast.NewOr(p.nodeID(), c.span, tests)
		}
		cons := wrapBegin(p, c.span, c.body)
		chain = ast.NewIf(p.nodeID(), span, test, cons, chain)
	}
	if chain == nil {
		chain = ast.NewBegin(p.nodeID(), span, nil)
	}

	binding := ast.LetBinding{Name: tmpName, Value: keyExpr, Span: keySpan}
	return ast.NewLetForm(p.nodeID(), span, ast.LetPlain, []ast.LetBinding{binding}, []Node{chain})
}

// parseWhen parses "(when test body…)", desugaring to an If with no
// alternate.
func (p *parser) parseWhen(start token.Span, close token.Token) Node {
	p.advance() // "when"
	test := p.parseForm()
	body := p.parseBody(close)
	end := p.val.Span
	p.expect(close)
	span := spanUnion(start, end)
	return ast.NewIf(p.nodeID(), span, test, wrapBegin(p, span, body), nil)
}

// parseUnless parses "(unless test body…)", desugaring to
// "(if (not test) (begin body…))".
func (p *parser) parseUnless(start token.Span, close token.Token) Node {
	p.advance() // "unless"
	test := p.parseForm()
	body := p.parseBody(close)
	end := p.val.Span
	p.expect(close)
	span := spanUnion(start, end)
	notTest := ast.NewCall(p.nodeID(), test.Span(), p.ident("not", test.Span()), []Node{test})
	return ast.NewIf(p.nodeID(), span, notTest, wrapBegin(p, span, body), nil)
}

// parseDo parses Scheme's iteration form
// "(do ((var init step…)…) (test result…) body…)", desugaring to a
// letrec-bound recursive loop lambda: there is no dedicated loop node, and
// this is the standard desugaring (the one R7RS itself specifies) into
// tail-recursive lambda application, so it reuses LetForm(LetRec)/Lambda/If
// exactly like any other recursive function would lower.
func (p *parser) parseDo(start token.Span, close token.Token) Node {
	p.advance() // "do"

	specOpen := p.tok
	p.expect(specOpen)
	specClose := closeTok(specOpen)

	type varSpec struct {
		name intern.ID
		init Node
		step Node // nil if omitted (variable does not change across iterations)
	}
	var vars []varSpec
	for p.tok != specClose && p.tok != token.EOF {
		vOpen := p.tok
		p.expect(vOpen)
		vClose := closeTok(vOpen)
		nameTok := p.expect(token.IDENTIFIER)
		init := p.parseForm()
		var step Node
		if p.tok != vClose {
			step = p.parseForm()
		}
		p.expect(vClose)
		vars = append(vars, varSpec{name: p.intern.Intern(nameTok.Raw), init: init, step: step})
	}
	p.expect(specClose)

	tOpen := p.tok
	p.expect(tOpen)
	tClose := closeTok(tOpen)
	test := p.parseForm()
	resultForms := p.parseBody(tClose)
	p.expect(tClose)

	bodyForms := p.parseBody(close)
	end := p.val.Span
	p.expect(close)
	span := spanUnion(start, end)

	loopName := p.intern.Intern("%do-loop")

	params := make([]ast.Param, len(vars))
	stepArgs := make([]Node, len(vars))
	for i, v := range vars {
		params[i] = ast.Param{Name: v.name, Span: span}
		if v.step != nil {
			stepArgs[i] = v.step
		} else {
			stepArgs[i] = ast.NewIdentifier(p.nodeID(), span, v.name)
		}
	}

	loopIdent := func() *ast.Identifier { return ast.NewIdentifier(p.nodeID(), span, loopName) }
	recurCall := ast.NewCall(p.nodeID(), span, loopIdent(), stepArgs)

	thenBody := append(append([]Node{}, bodyForms...), recurCall)
	loopBody := ast.NewIf(p.nodeID(), span, test, wrapBegin(p, span, resultForms), wrapBegin(p, span, thenBody))

	loopLambda := ast.NewLambda(p.nodeID(), span, params, nil, []Node{loopBody})
	binding := ast.LetBinding{Name: loopName, Value: loopLambda, Span: span}

	initArgs := make([]Node, len(vars))
	for i, v := range vars {
		initArgs[i] = v.init
	}
	initialCall := ast.NewCall(p.nodeID(), span, loopIdent(), initArgs)

	return ast.NewLetForm(p.nodeID(), span, ast.LetRec, []ast.LetBinding{binding}, []Node{initialCall})
}
