// Package infer implements a gradual type inferencer: a single
// constraint-generating walk over the resolved AST, feeding lang/types'
// union-find Solver, followed by a widening pass that turns any variable
// the program left unconstrained into Unknown.
//
// The walk follows lang/resolver's own two-pass structure (one recursive
// walk producing side tables keyed by node id, same as the resolver's own
// Idents/Lambdas maps) generalized from binding resolution to type
// constraint generation; arithmetic/comparison operators are special-cased
// with left-fold promotion since no fixed arrow type can express a
// dynamically variadic "+".
package infer

import (
	"github.com/openSVM/eshkol/lang/ast"
	"github.com/openSVM/eshkol/lang/diag"
	"github.com/openSVM/eshkol/lang/intern"
	"github.com/openSVM/eshkol/lang/resolver"
	"github.com/openSVM/eshkol/lang/token"
	"github.com/openSVM/eshkol/lang/types"
)

// Result is the solved type of every node and binding in one inference run.
type Result struct {
	NodeTypes    map[ast.NodeID]types.Type
	BindingTypes map[resolver.BindingID]types.Type
}

// TypeOf returns the solved type of n, or Unknown if n was never visited
// (which should not happen for any node reachable from the Program passed
// to Infer).
func (r *Result) TypeOf(n ast.Node) types.Type {
	if t, ok := r.NodeTypes[n.ID()]; ok {
		return t
	}
	return types.Unknown
}

// bindingIndex recovers, for a resolver.Binding, the node that introduced
// it. The resolver records this as Binding.DefiningNode already; bindingIndex
// exists only to group the bindings a single Define/LetForm/Lambda node
// introduced by name, since Lambda and LetForm attach the same DefiningNode
// to every one of their bindings.
type bindingIndex map[ast.NodeID]map[intern.ID]*resolver.Binding

func buildBindingIndex(res *resolver.Result) bindingIndex {
	idx := make(bindingIndex)
	for _, b := range res.Bindings {
		if b.DefiningNode == nil {
			continue
		}
		nid := b.DefiningNode.ID()
		m, ok := idx[nid]
		if !ok {
			m = make(map[intern.ID]*resolver.Binding)
			idx[nid] = m
		}
		m[b.Name] = b
	}
	return idx
}

func (idx bindingIndex) lookup(n ast.Node, name intern.ID) *resolver.Binding {
	m, ok := idx[n.ID()]
	if !ok {
		return nil
	}
	return m[name]
}

type inferencer struct {
	solver   *types.Solver
	res      *resolver.Result
	interner *intern.Table
	sink     *diag.Sink

	idx         bindingIndex
	bindingVars map[*resolver.Binding]types.Type
	nodeVars    map[ast.NodeID]types.Type
	declared    map[intern.ID]types.Function
}

// Infer type-checks prog, given the resolver.Result already computed for it,
// and returns the solved type of every node. The returned error, when
// non-nil, is the sink's accumulated *diag.ErrorList — the same shape every
// other pass returns.
func Infer(prog *ast.Program, res *resolver.Result, interner *intern.Table, sink *diag.Sink) (*Result, error) {
	inf := &inferencer{
		solver:      types.NewSolver(),
		res:         res,
		interner:    interner,
		sink:        sink,
		idx:         buildBindingIndex(res),
		bindingVars: make(map[*resolver.Binding]types.Type),
		nodeVars:    make(map[ast.NodeID]types.Type),
		declared:    make(map[intern.ID]types.Function),
	}

	for _, form := range prog.Body {
		if td, ok := form.(*ast.TypeDeclaration); ok {
			inf.declared[td.Name] = td.Annotation
		}
	}

	for _, form := range prog.Body {
		inf.infer(form)
	}

	out := &Result{
		NodeTypes:    make(map[ast.NodeID]types.Type, len(inf.nodeVars)),
		BindingTypes: make(map[resolver.BindingID]types.Type, len(inf.bindingVars)),
	}
	for id, t := range inf.nodeVars {
		out.NodeTypes[id] = inf.solver.Resolve(t)
	}
	for b, t := range inf.bindingVars {
		out.BindingTypes[b.ID] = inf.solver.Resolve(t)
	}
	return out, sink.Err()
}

func (inf *inferencer) record(n ast.Node, t types.Type) types.Type {
	inf.nodeVars[n.ID()] = t
	return t
}

func (inf *inferencer) errorf(span token.Span, format string, args ...any) {
	line, col := span.Start.LineCol()
	inf.sink.Add(diag.Error, token.Position{Line: line, Column: col}, format, args...)
}

func (inf *inferencer) unify(span token.Span, a, b types.Type) {
	if err := inf.solver.Unify(a, b); err != nil {
		inf.errorf(span, "%s", err.Error())
	}
}

// varForBinding returns the type (variable or fixed) standing for b,
// allocating a fresh variable the first time a user binding is seen.
// Predeclared names resolve directly to their intrinsic or builtin arrow
// type rather than to a variable, since the compiler — not the program —
// fixes their signature.
func (inf *inferencer) varForBinding(b *resolver.Binding) types.Type {
	if b == nil || b.Scope == resolver.Undefined {
		return types.Unknown
	}
	if b.Scope == resolver.Predeclared {
		return inf.predeclaredType(inf.interner.Lookup(b.Name))
	}
	if t, ok := inf.bindingVars[b]; ok {
		return t
	}
	v := inf.solver.NewVar()
	inf.bindingVars[b] = v
	return v
}

// predeclaredType returns the fixed arrow type of a builtin/intrinsic name
// that has one. The variadic arithmetic/comparison/logical/string-append
// family has no single arrow type (its arity and parameter types vary per
// call site) and is handled in inferCall instead; for those this returns
// Unknown, which only matters if such a name is ever referenced as a value
// rather than called directly (an edge case the language gives no syntax
// for closing over, since these are never user-reassignable).
func (inf *inferencer) predeclaredType(name string) types.Type {
	if fn, ok := types.Intrinsics[name]; ok {
		return fn
	}
	return types.Unknown
}
