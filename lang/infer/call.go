package infer

import (
	"github.com/openSVM/eshkol/lang/ast"
	"github.com/openSVM/eshkol/lang/resolver"
	"github.com/openSVM/eshkol/lang/types"
)

// Names handled by special-cased constraint rules instead of a fixed arrow
// type: their arity and/or parameter types vary per call site (mixed-arity
// arithmetic is resolved via left-fold), which a single types.Function
// signature in the Intrinsics table can't express.
var arithmeticOps = map[string]bool{"+": true, "-": true, "*": true, "/": true}
var comparisonOps = map[string]bool{"=": true, "<": true, ">": true, "<=": true, ">=": true}
var equalityOps = map[string]bool{"eq?": true, "eqv?": true, "equal?": true}

func (inf *inferencer) inferCall(c *ast.Call) types.Type {
	if ident, ok := c.Callee.(*ast.Identifier); ok {
		if b := inf.res.Idents[ident.ID()]; b != nil && b.Scope == resolver.Predeclared {
			name := inf.interner.Lookup(b.Name)
			if result, handled := inf.inferSpecialCall(c, name); handled {
				inf.record(ident, types.Unknown)
				return inf.record(c, result)
			}
		}
	}

	calleeType := inf.infer(c.Callee)
	argTypes := make([]types.Type, len(c.Args))
	for i, a := range c.Args {
		argTypes[i] = inf.infer(a)
	}
	resultVar := inf.solver.NewVar()
	inf.unify(c.Span(), calleeType, types.Function{Params: argTypes, Result: resultVar})
	return inf.record(c, resultVar)
}

func (inf *inferencer) inferSpecialCall(c *ast.Call, name string) (types.Type, bool) {
	switch {
	case arithmeticOps[name]:
		return inf.inferArithmetic(c), true
	case comparisonOps[name]:
		return inf.inferComparison(c), true
	case equalityOps[name]:
		return inf.inferEquality(c), true
	case name == "not":
		return inf.inferNot(c), true
	case name == "string-append":
		return inf.inferVariadicSame(c, types.Str), true
	case name == "printf":
		return inf.inferPrintf(c), true
	case name == "vector":
		return inf.inferVector(c), true
	default:
		return nil, false
	}
}

// combineNumeric folds two already-inferred operand types into the
// arithmetic result type they'd promote to: Int+Int stays Int, any Float
// operand promotes the pair to Float, and Unknown absorbs. An operand that
// is still an unresolved type variable is unified with the other operand
// when that one is Integer, Float or another variable, so `(= n 0)` or
// `(+ x 1)` pins an unannotated parameter to Integer; a variable paired
// with any other type is left unbound and the combination is Unknown.
func (inf *inferencer) combineNumeric(span ast.Node, a, b types.Type) types.Type {
	pa, pb := inf.solver.Prune(a), inf.solver.Prune(b)
	_, aVar := pa.(types.Var)
	_, bVar := pb.(types.Var)
	switch {
	case aVar && bVar:
		inf.unify(span.Span(), pa, pb)
		return pa
	case aVar && (pb == types.Int || pb == types.Float_):
		inf.unify(span.Span(), pa, pb)
		return pb
	case bVar && (pa == types.Int || pa == types.Float_):
		inf.unify(span.Span(), pb, pa)
		return pa
	case aVar || bVar:
		return types.Unknown
	}
	if pa == types.Unknown || pb == types.Unknown {
		return types.Unknown
	}
	if pa == types.Int && pb == types.Int {
		return types.Int
	}
	if (pa == types.Int || pa == types.Float_) && (pb == types.Int || pb == types.Float_) {
		return types.Float_
	}
	inf.errorf(span.Span(), "cannot apply arithmetic operator to %s and %s", pa, pb)
	return types.Unknown
}

func (inf *inferencer) inferArithmetic(c *ast.Call) types.Type {
	if len(c.Args) == 0 {
		inf.errorf(c.Span(), "arithmetic operator requires at least one argument")
		return types.Unknown
	}
	acc := inf.infer(c.Args[0])
	if len(c.Args) == 1 {
		return acc
	}
	for _, a := range c.Args[1:] {
		next := inf.infer(a)
		acc = inf.combineNumeric(a, acc, next)
	}
	return acc
}

func (inf *inferencer) inferComparison(c *ast.Call) types.Type {
	if len(c.Args) == 0 {
		inf.errorf(c.Span(), "comparison operator requires at least one argument")
		return types.Bool
	}
	acc := inf.infer(c.Args[0])
	for _, a := range c.Args[1:] {
		next := inf.infer(a)
		acc = inf.combineNumeric(a, acc, next)
	}
	return types.Bool
}

func (inf *inferencer) inferEquality(c *ast.Call) types.Type {
	if len(c.Args) != 2 {
		inf.errorf(c.Span(), "%s requires exactly two arguments", inf.calleeName(c))
		return types.Bool
	}
	at := inf.infer(c.Args[0])
	bt := inf.infer(c.Args[1])
	inf.unify(c.Span(), at, bt)
	return types.Bool
}

func (inf *inferencer) inferNot(c *ast.Call) types.Type {
	if len(c.Args) != 1 {
		inf.errorf(c.Span(), "not requires exactly one argument")
		return types.Bool
	}
	at := inf.infer(c.Args[0])
	inf.unify(c.Args[0].Span(), at, types.Bool)
	return types.Bool
}

func (inf *inferencer) inferVariadicSame(c *ast.Call, elemType types.Type) types.Type {
	for _, a := range c.Args {
		at := inf.infer(a)
		inf.unify(a.Span(), at, elemType)
	}
	return elemType
}

func (inf *inferencer) inferPrintf(c *ast.Call) types.Type {
	if len(c.Args) == 0 {
		inf.errorf(c.Span(), "printf requires a format string argument")
		return types.Void
	}
	fmtType := inf.infer(c.Args[0])
	inf.unify(c.Args[0].Span(), fmtType, types.Str)
	for _, a := range c.Args[1:] {
		inf.infer(a)
	}
	return types.Void
}

func (inf *inferencer) inferVector(c *ast.Call) types.Type {
	for _, a := range c.Args {
		at := inf.infer(a)
		inf.unify(a.Span(), at, types.Float_)
	}
	return types.Vector{Elem: types.Float_}
}

func (inf *inferencer) calleeName(c *ast.Call) string {
	if ident, ok := c.Callee.(*ast.Identifier); ok {
		return inf.interner.Lookup(ident.Name)
	}
	return "<call>"
}
