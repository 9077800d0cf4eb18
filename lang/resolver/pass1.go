package resolver

import "github.com/openSVM/eshkol/lang/ast"

// declareTopLevel introduces the module-scope binding for a top-level
// `define` before any value is visited, supporting self-reference and
// mutual top-level recursion.
func (r *resolver) declareTopLevel(n ast.Node) {
	if d, ok := n.(*ast.Define); ok {
		r.bind(d.Name, d)
	}
}

// resolveNode dispatches pass 1 (scope construction and binding
// resolution) over n and its descendants.
func (r *resolver) resolveNode(n ast.Node) {
	switch v := n.(type) {
	case nil:
		return
	case *ast.IntegerLiteral, *ast.FloatLiteral, *ast.BoolLiteral, *ast.StringLiteral, *ast.CharLiteral:
		// atoms, nothing to resolve
	case *ast.Identifier:
		r.use(v)
	case *ast.Lambda:
		r.resolveLambda(v)
	case *ast.Define:
		// A nested (internal) define: top-level defines were already bound by
		// declareTopLevel before pass 1 started, so only bind here if this
		// Define is encountered inside a lambda/let body.
		if _, known := r.result.Idents[v.ID()]; !known {
			if cur := r.lookup(v.Name); cur == nil || !r.isOwnScope(cur) {
				r.bind(v.Name, v)
			}
		}
		r.resolveNode(v.Value)
	case *ast.If:
		r.resolveNode(v.Test)
		r.resolveNode(v.Consequent)
		if v.Alternate != nil {
			r.resolveNode(v.Alternate)
		}
	case *ast.LetForm:
		r.resolveLetForm(v)
	case *ast.Set:
		b := r.use(v.Target)
		b.Mutable = true
		r.result.SetTargets[v.ID()] = b
		r.resolveNode(v.Value)
	case *ast.Begin:
		for _, e := range v.Exprs {
			r.resolveNode(e)
		}
	case *ast.Quote:
		// quoted data: symbols inside never resolve to bindings.
	case *ast.Quasiquote:
		r.resolveQuasiTemplate(v.Template)
	case *ast.And:
		for _, o := range v.Operands {
			r.resolveNode(o)
		}
	case *ast.Or:
		for _, o := range v.Operands {
			r.resolveNode(o)
		}
	case *ast.Call:
		r.resolveNode(v.Callee)
		for _, a := range v.Args {
			r.resolveNode(a)
		}
	case *ast.TypeDeclaration:
		// no identifiers to resolve
	case *ast.Erroneous:
		// already diagnosed by the parser
	default:
		r.errorf(n.Span(), "resolver: unhandled node type %T", n)
	}
}

// isOwnScope reports whether b was bound directly in the innermost (top)
// scope, as opposed to an enclosing one — used so a repeated internal
// `define` of the same name shadows rather than silently reusing an outer
// binding.
func (r *resolver) isOwnScope(b *Binding) bool {
	top := r.top()
	existing, ok := top.bindingsByID[b.Name]
	return ok && existing == b
}

func (r *resolver) resolveLambda(l *ast.Lambda) {
	scope := r.push(LambdaScope, l.ID())
	var params []*Binding
	for _, p := range l.Params {
		params = append(params, r.bind(p.Name, l))
	}
	for _, b := range l.Body {
		r.resolveNode(b)
	}
	r.pop()

	r.result.Lambdas[l.ID()] = &LambdaInfo{Scope: scope, ParameterBindings: params}
}

func (r *resolver) resolveLetForm(lf *ast.LetForm) {
	switch lf.Kind {
	case ast.LetPlain:
		for _, b := range lf.Bindings {
			r.resolveNode(b.Value)
		}
		r.push(LetScope, lf.ID())
		for _, b := range lf.Bindings {
			r.bind(b.Name, lf)
		}
		for _, body := range lf.Body {
			r.resolveNode(body)
		}
		r.pop()

	case ast.LetStar:
		depth := 0
		for _, b := range lf.Bindings {
			r.resolveNode(b.Value)
			r.push(LetScope, lf.ID())
			depth++
			r.bind(b.Name, lf)
		}
		if depth == 0 {
			r.push(LetScope, lf.ID())
			depth++
		}
		for _, body := range lf.Body {
			r.resolveNode(body)
		}
		for ; depth > 0; depth-- {
			r.pop()
		}

	case ast.LetRec:
		r.push(LetRecScope, lf.ID())
		for _, b := range lf.Bindings {
			r.bind(b.Name, lf)
		}
		for _, b := range lf.Bindings {
			r.resolveNode(b.Value)
		}
		for _, body := range lf.Body {
			r.resolveNode(body)
		}
		r.pop()
	}
}

// resolveQuasiTemplate walks a quasiquote template looking only for
// Unquote/UnquoteSplice escapes, whose contents are ordinary code that must
// still be resolved against the current scope.
func (r *resolver) resolveQuasiTemplate(d ast.Datum) {
	switch v := d.(type) {
	case ast.PairDatum:
		r.resolveQuasiTemplate(v.Head)
		r.resolveQuasiTemplate(v.Tail)
	case ast.UnquoteDatum:
		r.resolveNode(v.Expr)
	case ast.UnquoteSpliceDatum:
		r.resolveNode(v.Expr)
	default:
		// literal, symbol, or nil: nothing to resolve
	}
}
