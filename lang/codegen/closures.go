package codegen

import (
	"fmt"
	"strings"

	"github.com/openSVM/eshkol/lang/ast"
	"github.com/openSVM/eshkol/lang/resolver"
	"github.com/openSVM/eshkol/lang/types"
)

// trueFreeBindings filters a Lambda's resolver-reported free bindings down
// to the ones that actually need an environment slot: the resolver's
// capture analysis (lang/resolver's isStrictAncestor) marks a reference to
// any enclosing-scope binding as "captured", including a module-scope
// (top-level) one, since it only reasons about lexical nesting. A
// top-level `define` is emitted as a plain C global, though, so a lambda
// "capturing" one needs no env slot for it — it reads the global directly.
// This is the one place that distinction matters, so it is made here
// rather than by complicating the resolver's scope-purely-lexical model.
func trueFreeBindings(info *resolver.LambdaInfo) []*resolver.Binding {
	var out []*resolver.Binding
	for _, b := range info.FreeBindings {
		if isModuleScope(b) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func isModuleScope(b *resolver.Binding) bool {
	return b.OwnerScope != nil && b.OwnerScope.Kind == resolver.ModuleScope
}

// indirect reports whether b's storage is a pointer cell rather than a
// plain value: true for any mutable-and-captured binding (Boxed), and also
// for any binding introduced by a letrec, since a sibling letrec lambda
// may capture it before its own initializer has run (mutual recursion) —
// capturing the cell's address rather than a value snapshot means every
// closure sees the binding's final value once the whole letrec has
// finished initializing, regardless of definition order.
func (g *generator) indirect(b *resolver.Binding) bool {
	if b.Boxed() {
		return true
	}
	return b.OwnerScope != nil && b.OwnerScope.Kind == resolver.LetRecScope
}

// envFieldType returns the C type of the environment-struct field that
// holds b's value: the solved type of whatever node introduced it, boxed
// behind a pointer when indirect(b) (see above) so every reader/writer of
// the cell sees the same storage.
func (g *generator) envFieldType(b *resolver.Binding) string {
	t := g.bindingType(b)
	ct := ctype(t)
	if g.indirect(b) {
		return ct + "*"
	}
	return ct
}

// bindingType resolves the solved type of whatever value b holds: a
// parameter's annotation/inferred type, or a let/define value's inferred
// type, recovered by looking at the defining node and binding index the
// same way lang/infer's bindingIndex.lookup does when building constraints.
func (g *generator) bindingType(b *resolver.Binding) types.Type {
	switch def := b.DefiningNode.(type) {
	case *ast.Lambda:
		fnType, _ := g.types.TypeOf(def).(types.Function)
		for i, p := range def.Params {
			if p.Name == b.Name && i < len(fnType.Params) {
				return fnType.Params[i]
			}
		}
	case *ast.LetForm:
		for _, lb := range def.Bindings {
			if lb.Name == b.Name {
				return g.types.TypeOf(lb.Value)
			}
		}
	case *ast.Define:
		return g.types.TypeOf(def.Value)
	}
	return types.Unknown
}

// writeEnvStruct emits the full struct definition for l's environment.
// Every field's type is a scalar/Vector/Pair/EshkolClosure/pointer type, so
// struct definitions never depend on each other and can all be emitted up
// front regardless of lexical nesting order.
func (g *generator) writeEnvStruct(l *ast.Lambda) {
	o := g.out
	envName := g.cNameForLambdaEnv(l)
	o.writel(fmt.Sprintf("typedef struct %s {", envName))
	o.indent()
	info := g.res.Lambdas[l.ID()]
	free := trueFreeBindings(info)
	if len(free) == 0 {
		o.writeil("int _unused;")
	}
	for _, b := range free {
		o.writeil(fmt.Sprintf("%s %s;", g.envFieldType(b), g.cNameForBinding(b)))
	}
	o.unindent()
	o.writel(fmt.Sprintf("} %s;", envName))
}

// writeSingletonEnvIfTopLevel emits the single static environment instance
// a top-level lambda's lifted function is always invoked with: a top-level
// define has no enclosing lambda, so it is provably free of true captures
// once module-scope references are filtered out by trueFreeBindings, and
// needs exactly one environment value for the program's whole lifetime.
func (g *generator) writeSingletonEnvIfTopLevel(l *ast.Lambda) {
	if !g.topLevelLambda[l.ID()] {
		return
	}
	envName := g.cNameForLambdaEnv(l)
	g.out.writel(fmt.Sprintf("static %s %s_singleton;", envName, envName))
}

// lambdaSignature renders the C function signature for l's lifted
// function, named cName, with the env struct pointer as its first
// parameter.
func (g *generator) lambdaSignature(l *ast.Lambda, cName string) string {
	fnType, _ := g.types.TypeOf(l).(types.Function)
	ret := ctype(fnType.Result)
	var params []string
	params = append(params, fmt.Sprintf("%s *env", g.cNameForLambdaEnv(l)))
	for i, p := range l.Params {
		pt := types.Type(types.Unknown)
		if i < len(fnType.Params) {
			pt = fnType.Params[i]
		}
		params = append(params, fmt.Sprintf("%s %s", ctype(pt), g.paramCName(l, p)))
	}
	return fmt.Sprintf("%s %s(%s)", ret, cName, strings.Join(params, ", "))
}

// paramCName finds p's Binding (via the shared-DefiningNode bindingIndex
// lookup every multi-binding node needs) and names it the same way any
// other binding is named, so a parameter read inside the body and the
// parameter declared in the signature always agree.
func (g *generator) paramCName(l *ast.Lambda, p ast.Param) string {
	b := g.idx.lookup(l, p.Name)
	return g.cNameForBinding(b)
}

// emitLambdaDef emits l's lifted function definition: the signature (again,
// as a definition rather than a forward declaration), unpacking boxed
// parameters is not needed since the box belongs to the binding's storage
// inside the body, not to the parameter itself, and the lowered body.
func (g *generator) emitLambdaDef(l *ast.Lambda) {
	o := g.out
	cName := g.cNameForLambdaFn(l)
	fnType, _ := g.types.TypeOf(l).(types.Function)

	prevFree := g.currentFree
	info := g.res.Lambdas[l.ID()]
	free := make(map[*resolver.Binding]bool)
	for _, b := range trueFreeBindings(info) {
		free[b] = true
	}
	g.currentFree = free

	o.writel(g.lambdaSignature(l, cName) + " {")
	o.indent()
	o.inFunction = true
	g.lowerBody(l.Body, fnType.Result == types.Void)
	o.inFunction = false
	o.unindent()
	o.writel("}")
	o.writel("")

	g.currentFree = prevFree
}
