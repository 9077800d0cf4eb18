package infer

import (
	"github.com/openSVM/eshkol/lang/ast"
	"github.com/openSVM/eshkol/lang/resolver"
	"github.com/openSVM/eshkol/lang/types"
)

// infer generates constraints for n and every descendant, recording and
// returning the (possibly still-unresolved) type assigned to n.
func (inf *inferencer) infer(n ast.Node) types.Type {
	switch v := n.(type) {
	case nil:
		return types.Unknown

	case *ast.IntegerLiteral:
		return inf.record(v, types.Int)
	case *ast.FloatLiteral:
		return inf.record(v, types.Float_)
	case *ast.BoolLiteral:
		return inf.record(v, types.Bool)
	case *ast.StringLiteral:
		return inf.record(v, types.Str)
	case *ast.CharLiteral:
		return inf.record(v, types.Char_)

	case *ast.Identifier:
		b := inf.res.Idents[v.ID()]
		return inf.record(v, inf.varForBinding(b))

	case *ast.Lambda:
		return inf.inferLambda(v)
	case *ast.Define:
		return inf.inferDefine(v)
	case *ast.If:
		return inf.inferIf(v)
	case *ast.LetForm:
		return inf.inferLetForm(v)
	case *ast.Set:
		return inf.inferSet(v)

	case *ast.Begin:
		var last types.Type = types.Void
		for _, e := range v.Exprs {
			last = inf.infer(e)
		}
		return inf.record(v, last)

	case *ast.Quote:
		return inf.record(v, quoteDatumType(v.Datum))

	case *ast.Quasiquote:
		inf.errorf(v.Span(), "quasiquote is not supported")
		return inf.record(v, types.Unknown)

	case *ast.And:
		return inf.record(v, inf.inferShortCircuit(v.Operands))
	case *ast.Or:
		return inf.record(v, inf.inferShortCircuit(v.Operands))

	case *ast.Call:
		return inf.inferCall(v)

	case *ast.TypeDeclaration:
		return inf.record(v, types.Void)
	case *ast.Erroneous:
		return inf.record(v, types.Unknown)

	default:
		inf.errorf(n.Span(), "inferencer: unhandled node type %T", n)
		return types.Unknown
	}
}

func (inf *inferencer) inferLambda(l *ast.Lambda) types.Type {
	info := inf.res.Lambdas[l.ID()]
	paramTypes := make([]types.Type, len(l.Params))
	for i, p := range l.Params {
		var b *resolver.Binding
		if info != nil && i < len(info.ParameterBindings) {
			b = info.ParameterBindings[i]
		}
		pt := inf.varForBinding(b)
		if p.Annotation != nil {
			inf.unify(p.Span, pt, p.Annotation)
		}
		paramTypes[i] = pt
	}

	var bodyType types.Type = types.Void
	for _, stmt := range l.Body {
		bodyType = inf.infer(stmt)
	}
	if l.ReturnAnnotation != nil {
		inf.unify(l.Span(), bodyType, l.ReturnAnnotation)
	}

	return inf.record(l, types.Function{Params: paramTypes, Result: bodyType})
}

func (inf *inferencer) inferDefine(d *ast.Define) types.Type {
	b := inf.idx.lookup(d, d.Name)
	selfType := inf.varForBinding(b)

	if decl, ok := inf.declared[d.Name]; ok {
		inf.unify(d.Span(), selfType, decl)
	}

	valType := inf.infer(d.Value)
	inf.unify(d.Span(), selfType, valType)

	return inf.record(d, types.Void)
}

func (inf *inferencer) inferIf(iff *ast.If) types.Type {
	testType := inf.infer(iff.Test)
	inf.unify(iff.Test.Span(), testType, types.Bool)

	rt := inf.solver.NewVar()
	consType := inf.infer(iff.Consequent)
	inf.unify(iff.Consequent.Span(), rt, consType)

	if iff.Alternate != nil {
		altType := inf.infer(iff.Alternate)
		inf.unify(iff.Alternate.Span(), rt, altType)
	}

	return inf.record(iff, rt)
}

func (inf *inferencer) inferLetForm(lf *ast.LetForm) types.Type {
	bindingTypes := make([]types.Type, len(lf.Bindings))
	for i, b := range lf.Bindings {
		binding := inf.idx.lookup(lf, b.Name)
		bt := inf.varForBinding(binding)
		if b.Annotation != nil {
			inf.unify(b.Span, bt, b.Annotation)
		}
		bindingTypes[i] = bt
	}

	// let, let*, and letrec differ only in the scoping the resolver already
	// resolved each Identifier against; constraint generation over the
	// (already-resolved) bindings and body is identical for all three kinds.
	for i, b := range lf.Bindings {
		valType := inf.infer(b.Value)
		inf.unify(b.Span, bindingTypes[i], valType)
	}

	var bodyType types.Type = types.Void
	for _, stmt := range lf.Body {
		bodyType = inf.infer(stmt)
	}
	return inf.record(lf, bodyType)
}

func (inf *inferencer) inferSet(s *ast.Set) types.Type {
	b := inf.res.SetTargets[s.ID()]
	targetType := inf.varForBinding(b)
	valType := inf.infer(s.Value)
	inf.unify(s.Span(), targetType, valType)
	return inf.record(s, types.Void)
}

// inferShortCircuit handles both And and Or: the form types as Bool when it
// has zero operands (and's identity, or's vacuous-false identity) or when
// any operand is itself Bool — a short-circuiting test like `x` in
// `(or (> x 0) 0)` means the form can produce a Bool without ever reaching
// the other operands, so its operands are never unified with each other in
// that case. Otherwise it returns the common type the operands unify to.
func (inf *inferencer) inferShortCircuit(operands []ast.Node) types.Type {
	if len(operands) == 0 {
		return types.Bool
	}
	operandTypes := make([]types.Type, len(operands))
	anyBool := false
	for i, o := range operands {
		ot := inf.infer(o)
		operandTypes[i] = ot
		if inf.solver.Prune(ot) == types.Bool {
			anyBool = true
		}
	}
	if anyBool {
		return types.Bool
	}
	rt := inf.solver.NewVar()
	for i, o := range operands {
		inf.unify(o.Span(), rt, operandTypes[i])
	}
	return rt
}

// quoteDatumType assigns a type to quoted data: scalar data gets its exact
// type, and any list/pair shape gets Unknown since the type system has no
// list-element inference (the type sum is Pair/Vector/Function plus
// scalars, not a recursive list-of-T).
func quoteDatumType(d ast.Datum) types.Type {
	switch d.(type) {
	case ast.IntDatum:
		return types.Int
	case ast.FloatDatum:
		return types.Float_
	case ast.BoolDatum:
		return types.Bool
	case ast.StringDatum:
		return types.Str
	case ast.CharDatum:
		return types.Char_
	case ast.SymbolDatum:
		return types.Sym
	default:
		return types.Unknown
	}
}
