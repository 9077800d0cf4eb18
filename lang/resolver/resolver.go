// Package resolver implements a two-pass binding resolver: pass one walks
// the tree pushing/popping a stack of scopes and binding every Identifier
// to a Binding; pass two computes, for every Lambda, the ordered set of
// bindings it captures from an enclosing scope.
//
// Its scope-stack/bind/use machinery follows the same shape
// starlark-go-derived resolvers use, with no label/goto scope or
// class/field binding kind (the source language has neither) and a
// ScopeKind vocabulary of Module/Lambda/Let/LetRec in their place.
// Bindings are recorded in node-id-keyed side tables rather than as
// fields on ast.Node, so that lang/ast never needs to import
// lang/resolver.
package resolver

import (
	"github.com/openSVM/eshkol/lang/ast"
	"github.com/openSVM/eshkol/lang/diag"
	"github.com/openSVM/eshkol/lang/intern"
	"github.com/openSVM/eshkol/lang/token"
)

// ScopeKind classifies the form that introduced a Scope.
type ScopeKind int

const (
	ModuleScope ScopeKind = iota
	LambdaScope
	LetScope
	LetRecScope
)

// ScopeID identifies a Scope within one compilation, assigned in creation
// order.
type ScopeID int

// ScopeInfo is the resolved record of one scope.
type ScopeInfo struct {
	ID           ScopeID
	Parent       *ScopeInfo // nil for the module (root) scope
	Kind         ScopeKind
	IntroNode    ast.NodeID
	bindingsByID map[intern.ID]*Binding
	order        []*Binding
}

// LambdaInfo is the capture-analysis result attached to one Lambda node.
type LambdaInfo struct {
	Scope             *ScopeInfo
	ParameterBindings []*Binding
	FreeBindings      []*Binding // ordered set of outer binding ids referenced from the body
}

// Result is the full output of resolving one Program: every side table a
// later pass needs, keyed by node id so ast.Node itself stays free of any
// resolver-owned field.
type Result struct {
	// Idents maps every *ast.Identifier's node id to the Binding it resolved
	// to. An identifier absent from this map, or mapped to a Binding whose
	// Scope is Undefined, was unresolved: a diagnostic was already emitted
	// for it and downstream passes must treat it as erroneous (this
	// implementation has no parent links to splice a replacement node into
	// the tree in place, so the poisoning is tracked here instead of by
	// rewriting the node).
	Idents map[ast.NodeID]*Binding

	// Scopes maps a scope-introducing node's id (Program, Lambda, or
	// LetForm) to its resolved ScopeInfo.
	Scopes map[ast.NodeID]*ScopeInfo

	// Lambdas maps a *ast.Lambda's node id to its capture-analysis result.
	Lambdas map[ast.NodeID]*LambdaInfo

	// Bindings lists every Binding created during resolution, indexed by
	// BindingID.
	Bindings []*Binding

	// SetTargets maps a *ast.Set node's id to the Binding it assigns, so
	// codegen does not need to re-resolve the target identifier.
	SetTargets map[ast.NodeID]*Binding
}

func newResult() *Result {
	return &Result{
		Idents:     make(map[ast.NodeID]*Binding),
		Scopes:     make(map[ast.NodeID]*ScopeInfo),
		Lambdas:    make(map[ast.NodeID]*LambdaInfo),
		SetTargets: make(map[ast.NodeID]*Binding),
	}
}

// IsPredeclaredFunc reports whether name is one of the intrinsics/builtins
// provided to every module (arithmetic, vector ops, autodiff, `display`,
// etc.) without needing a binding of their own.
type IsPredeclaredFunc func(name string) bool

// resolver holds the mutable state of one resolve pass.
type resolver struct {
	sink          *diag.Sink
	interner      *intern.Table
	isPredeclared IsPredeclaredFunc

	scopes     []*ScopeInfo // stack, innermost last
	nextScope  ScopeID
	nextBindID BindingID

	result *Result
}

// Resolve runs both passes over prog and returns the resolved side tables.
// The returned error, if non-nil, is the sink's *diag.ErrorList.
func Resolve(prog *ast.Program, interner *intern.Table, sink *diag.Sink, isPredeclared IsPredeclaredFunc) (*Result, error) {
	if isPredeclared == nil {
		isPredeclared = func(string) bool { return false }
	}
	r := &resolver{sink: sink, interner: interner, isPredeclared: isPredeclared, result: newResult()}

	r.push(ModuleScope, prog.ID())
	for _, form := range prog.Body {
		r.declareTopLevel(form)
	}
	for _, form := range prog.Body {
		r.resolveNode(form)
	}
	r.pop()

	r.captureAnalysis(prog)

	return r.result, sink.Err()
}

func (r *resolver) push(kind ScopeKind, introNode ast.NodeID) *ScopeInfo {
	var parent *ScopeInfo
	if len(r.scopes) > 0 {
		parent = r.scopes[len(r.scopes)-1]
	}
	s := &ScopeInfo{
		ID:           r.nextScope,
		Parent:       parent,
		Kind:         kind,
		IntroNode:    introNode,
		bindingsByID: make(map[intern.ID]*Binding),
	}
	r.nextScope++
	r.scopes = append(r.scopes, s)
	r.result.Scopes[introNode] = s
	return s
}

func (r *resolver) pop() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *resolver) top() *ScopeInfo {
	return r.scopes[len(r.scopes)-1]
}

// bind introduces a new Binding for name in the current scope. Shadowing
// is always permitted: a second bind of the same name in the same scope
// simply replaces the lookup target going forward.
func (r *resolver) bind(name intern.ID, defNode ast.Node) *Binding {
	scope := r.top()
	b := &Binding{ID: r.nextBindID, Scope: Local, Name: name, OwnerScope: scope, Index: len(scope.order), DefiningNode: defNode}
	r.nextBindID++
	scope.bindingsByID[name] = b
	scope.order = append(scope.order, b)
	r.result.Bindings = append(r.result.Bindings, b)
	return b
}

// lookup walks the scope stack innermost-outward for name.
func (r *resolver) lookup(name intern.ID) *Binding {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if b, ok := r.scopes[i].bindingsByID[name]; ok {
			return b
		}
	}
	return nil
}

// use resolves ident against the current scope stack, recording the
// result (or a diagnostic) in the side tables.
func (r *resolver) use(ident *ast.Identifier) *Binding {
	if b := r.lookup(ident.Name); b != nil {
		r.result.Idents[ident.ID()] = b
		return b
	}
	name := r.interner.Lookup(ident.Name)
	if r.isPredeclared(name) {
		b := &Binding{ID: -1, Scope: Predeclared, Name: ident.Name}
		r.result.Idents[ident.ID()] = b
		return b
	}
	r.errorf(ident.Span(), "undefined identifier %q", name)
	undef := &Binding{ID: -1, Scope: Undefined, Name: ident.Name}
	r.result.Idents[ident.ID()] = undef
	return undef
}

func (r *resolver) errorf(span token.Span, format string, args ...any) {
	r.sink.Add(diag.Error, positionOf(span), format, args...)
}

// positionOf renders a Span's line/column without a filename: the resolver
// operates purely on an already-parsed tree and is never handed the
// token.File the span came from, so diagnostics it raises carry position
// but not filename.
func positionOf(span token.Span) token.Position {
	line, col := span.Start.LineCol()
	return token.Position{Line: line, Column: col}
}
