package codegen

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/openSVM/eshkol/lang/ast"
	"github.com/openSVM/eshkol/lang/resolver"
)

// sanitizeCIdent maps an arbitrary Scheme identifier (which may contain
// "!", "?", "-", "*", etc.) to a valid C identifier fragment: replace any
// byte that isn't a C identifier constituent with '_', and guard against a
// leading digit.
func sanitizeCIdent(s string) string {
	if s == "" {
		return "X"
	}
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		if i == 0 {
			if r == '_' || unicode.IsLetter(r) {
				b.WriteRune(r)
				continue
			}
			if unicode.IsDigit(r) {
				b.WriteRune('_')
				b.WriteRune(r)
				continue
			}
			b.WriteRune('_')
			continue
		}
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// cNameForBinding synthesizes the C variable name for a binding: its
// sanitized source name suffixed with its binding id, so that two bindings
// that shadow one another (or two top-level defines of the same name) never
// collide in the emitted C.
func (g *generator) cNameForBinding(b *resolver.Binding) string {
	if b == nil {
		return "_unknown"
	}
	if c, ok := g.bindingNames[b]; ok {
		return c
	}
	base := sanitizeCIdent(g.interner.Lookup(b.Name))
	name := fmt.Sprintf("%s_b%d", base, b.ID)
	g.bindingNames[b] = name
	return name
}

func (g *generator) cNameForLambdaFn(l *ast.Lambda) string {
	if c, ok := g.lambdaFnNames[l.ID()]; ok {
		return c
	}
	name := fmt.Sprintf("fn_l%d", l.ID())
	g.lambdaFnNames[l.ID()] = name
	return name
}

func (g *generator) cNameForLambdaEnv(l *ast.Lambda) string {
	if c, ok := g.lambdaEnvNames[l.ID()]; ok {
		return c
	}
	name := fmt.Sprintf("env_l%d", l.ID())
	g.lambdaEnvNames[l.ID()] = name
	return name
}
