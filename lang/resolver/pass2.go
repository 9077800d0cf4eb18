package resolver

import "github.com/openSVM/eshkol/lang/ast"

// captureAnalysis is the resolver's second pass: for every Lambda, compute
// the ordered set of bindings it captures from a strictly enclosing
// scope, and flag each such binding Captured.
func (r *resolver) captureAnalysis(prog *ast.Program) {
	ast.Inspect(prog, func(n ast.Node) bool {
		l, ok := n.(*ast.Lambda)
		if !ok {
			return true
		}
		info := r.result.Lambdas[l.ID()]
		if info == nil {
			return true
		}
		r.computeFreeBindings(l, info)
		return true
	})
}

func (r *resolver) computeFreeBindings(l *ast.Lambda, info *LambdaInfo) {
	seen := make(map[*Binding]bool)
	ast.Inspect(l, func(n ast.Node) bool {
		ident, ok := n.(*ast.Identifier)
		if !ok {
			return true
		}
		b, ok := r.result.Idents[ident.ID()]
		if !ok || b.OwnerScope == nil {
			return true
		}
		if !isStrictAncestor(b.OwnerScope, info.Scope) {
			return true
		}
		b.Captured = true
		if !seen[b] {
			seen[b] = true
			info.FreeBindings = append(info.FreeBindings, b)
		}
		return true
	})
}

// isStrictAncestor reports whether owner is a strict ancestor of scope in
// the scope tree (owner != scope, and owner appears somewhere on scope's
// parent chain).
func isStrictAncestor(owner, scope *ScopeInfo) bool {
	for s := scope.Parent; s != nil; s = s.Parent {
		if s == owner {
			return true
		}
	}
	return false
}
