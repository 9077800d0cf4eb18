// Package codegen lowers a resolved, typed Program to a single C
// translation unit: a runtime prelude, environment struct definitions,
// forward declarations, top-level initializers, lifted function bodies,
// and a driver main, in that fixed order, with an in-function flag
// controlling whether a given AST shape is lowered as a statement or an
// expression.
package codegen

import (
	"github.com/openSVM/eshkol/lang/ast"
	"github.com/openSVM/eshkol/lang/diag"
	"github.com/openSVM/eshkol/lang/infer"
	"github.com/openSVM/eshkol/lang/intern"
	"github.com/openSVM/eshkol/lang/resolver"
	"github.com/openSVM/eshkol/lang/token"
)

// bindingIndex recovers, for a node that introduces one or more bindings by
// name (a Define, LetForm, or Lambda), the specific Binding for a given
// name — the same device lang/infer uses, duplicated here rather than
// exported across packages since each package's need for it is purely
// internal bookkeeping over resolver.Result.
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

// discoverLambdas returns every Lambda in prog, in the order a depth-first
// walk encounters them — the order struct definitions, prototypes, and
// bodies are all emitted in.
func discoverLambdas(prog *ast.Program) []*ast.Lambda {
	var out []*ast.Lambda
	ast.Inspect(prog, func(n ast.Node) bool {
		if l, ok := n.(*ast.Lambda); ok {
			out = append(out, l)
		}
		return true
	})
	return out
}

// generator holds the mutable state of one Generate call.
type generator struct {
	out      *outputWriter
	res      *resolver.Result
	types    *infer.Result
	interner *intern.Table
	sink     *diag.Sink
	failed   bool

	idx            bindingIndex
	bindingNames   map[*resolver.Binding]string
	lambdaFnNames  map[ast.NodeID]string
	lambdaEnvNames map[ast.NodeID]string
	topLevelLambda map[ast.NodeID]bool

	// currentFree is the set of bindings the lambda currently being
	// emitted reads through its env parameter, rebound by emitLambdaDef
	// for the duration of one lambda body and nil outside any lambda
	// (global initializers, top-level statements). The resolver's own
	// Binding.Scope never distinguishes Free from Local (see
	// lang/resolver/pass2.go: only Captured is set, membership is
	// per-lambda), so codegen tracks "is this binding free in the
	// function I'm generating right now" itself instead.
	currentFree map[*resolver.Binding]bool

	// mainCall is the C statement invoking the source program's top-level
	// "main" define, if one exists; set while walking top-level defines,
	// consumed once by writeDriverMain.
	mainCall string

	// globalInits holds one assignment statement per plain (non-lambda)
	// top-level define, run by eshkol_init_globals before any top-level
	// statement executes — see genTopDefine.
	globalInits []string

	// topExprs holds every top-level form that is neither a Define nor a
	// standalone TypeDeclaration — a bare top-level `(display (f 10))`
	// alongside a `define` is common, so a source program's side effects
	// are not always routed through a `main` function. These are lowered
	// as statements directly inside the emitted driver main, in source
	// order.
	topExprs []ast.Node
}

// fail records an UnsupportedForm diagnostic and marks the pass failed: no
// C text is returned once any fail call occurs — no partial output is ever
// written once a failure occurs.
func (g *generator) fail(span token.Span, format string, args ...any) {
	g.failed = true
	line, col := span.Start.LineCol()
	g.sink.Add(diag.Error, token.Position{Line: line, Column: col}, format, args...)
}

// Generate lowers prog to a C translation unit. res and typeResult must be
// the resolver/inferencer output already computed for prog. The returned
// error, when non-nil, is the sink's *diag.ErrorList; on any failure the
// empty string is returned rather than partial output.
func Generate(prog *ast.Program, res *resolver.Result, typeResult *infer.Result, interner *intern.Table, sink *diag.Sink) (string, error) {
	g := &generator{
		out:            newOutputWriter(),
		res:            res,
		types:          typeResult,
		interner:       interner,
		sink:           sink,
		idx:            buildBindingIndex(res),
		bindingNames:   make(map[*resolver.Binding]string),
		lambdaFnNames:  make(map[ast.NodeID]string),
		lambdaEnvNames: make(map[ast.NodeID]string),
		topLevelLambda: make(map[ast.NodeID]bool),
	}

	var topDefines []*ast.Define
	for _, form := range prog.Body {
		switch f := form.(type) {
		case *ast.Define:
			topDefines = append(topDefines, f)
		case *ast.TypeDeclaration:
			// carries no codegen obligation of its own
		default:
			g.topExprs = append(g.topExprs, f)
		}
	}
	for _, d := range topDefines {
		if l, ok := d.Value.(*ast.Lambda); ok {
			g.topLevelLambda[l.ID()] = true
		}
	}

	lambdas := discoverLambdas(prog)

	g.writeRuntimePrelude()

	for _, l := range lambdas {
		g.writeEnvStruct(l)
	}
	g.out.writel("")

	for _, d := range topDefines {
		b := g.idx.lookup(d, d.Name)
		if l, ok := d.Value.(*ast.Lambda); ok {
			g.writeForwardDecl(g.lambdaSignature(l, g.cNameForLambdaFn(l)))
			g.writeForwardDecl("extern EshkolClosure " + g.cNameForBinding(b))
		} else {
			g.writeForwardDecl("extern " + ctype(g.types.TypeOf(d.Value)) + " " + g.cNameForBinding(b))
		}
	}
	g.out.writel("")

	for _, l := range lambdas {
		g.writeSingletonEnvIfTopLevel(l)
	}
	g.out.writel("")

	for _, d := range topDefines {
		g.genTopDefine(d)
	}
	g.out.writel("")

	for _, l := range lambdas {
		g.emitLambdaDef(l)
	}

	g.writeGlobalInitFunc()
	g.writeDriverMain()

	if g.failed || sink.HasErrors() {
		return "", sink.Err()
	}
	return g.out.String(), sink.Err()
}

// writeGlobalInitFunc emits the function that fills in every plain
// top-level global's value (see genTopDefine).
func (g *generator) writeGlobalInitFunc() {
	o := g.out
	o.writel("static void eshkol_init_globals(void) {")
	o.indent()
	for _, stmt := range g.globalInits {
		o.writeil(stmt)
	}
	o.unindent()
	o.writel("}")
	o.writel("")
}

// writeDriverMain emits the translation unit's C main: it sets up the
// arena and, if the source program defined a "main", calls it.
func (g *generator) writeDriverMain() {
	o := g.out
	o.writel("int main(void) {")
	o.indent()
	o.writeil("Arena *arena = arena_create();")
	o.writeil("g_arena = arena;")
	o.writeil("eshkol_init_globals();")
	o.inFunction = true
	for _, e := range g.topExprs {
		g.lowerStmt(e)
	}
	o.inFunction = false
	if g.mainCall != "" {
		o.writeil(g.mainCall)
	}
	o.writeil("arena_destroy(arena);")
	o.writeil("return 0;")
	o.unindent()
	o.writel("}")
}
