package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/openSVM/eshkol/lang/ast"
	"github.com/openSVM/eshkol/lang/resolver"
	"github.com/openSVM/eshkol/lang/types"
)

// Predeclared names whose codegen shape varies by arity, mirroring
// lang/infer's call.go dispatch table — duplicated here for the same
// reason bindingIndex is duplicated: each package's copy is purely
// internal wiring over its own lowering rules, not a shared abstraction.
var arithmeticOps = map[string]bool{"+": true, "-": true, "*": true, "/": true}
var comparisonOps = map[string]bool{"=": true, "<": true, ">": true, "<=": true, ">=": true}
var equalityOps = map[string]bool{"eq?": true, "eqv?": true, "equal?": true}

// genTopDefine emits one top-level define. A lambda-valued define gets a
// global EshkolClosure descriptor (its struct/body are emitted separately
// by the lambda emission pass) so a reference to its name anywhere other
// than a direct call — passed as a value, stored, compared — resolves to a
// real symbol; a plain value gets a global variable definition.
func (g *generator) genTopDefine(d *ast.Define) {
	b := g.idx.lookup(d, d.Name)
	cName := g.cNameForBinding(b)
	if l, ok := d.Value.(*ast.Lambda); ok {
		fnName := g.cNameForLambdaFn(l)
		envName := g.cNameForLambdaEnv(l)
		g.out.writel(fmt.Sprintf("EshkolClosure %s = { .fn = (void*)%s, .env = &%s_singleton };", cName, fnName, envName))
		if g.interner.Lookup(d.Name) == "main" {
			g.mainCall = fmt.Sprintf("%s(&%s_singleton);", fnName, envName)
		}
		return
	}
	// A top-level value's initializer may call into the runtime (a vector
	// literal, an autodiff call) rather than being a compile-time constant
	// C expects of a file-scope initializer, so every global is declared
	// bare here and filled in by eshkol_init_globals, run once at the top
	// of main before any top-level statement (the generated driver main
	// already sets up the arena those initializers may need).
	t := g.types.TypeOf(d.Value)
	g.out.writel(fmt.Sprintf("%s %s;", ctype(t), cName))
	g.globalInits = append(g.globalInits, fmt.Sprintf("%s = %s;", cName, g.lowerExpr(d.Value)))
}

// lowerBody emits body as a function's statement sequence: every form but
// the last is lowered for effect, and the last is returned unless the
// enclosing function's result type is Void, in which case it too is
// lowered for effect only.
func (g *generator) lowerBody(body []ast.Node, voidReturn bool) {
	o := g.out
	for i, n := range body {
		if i == len(body)-1 {
			if voidReturn {
				g.lowerStmt(n)
			} else {
				o.writeil("return " + g.lowerExpr(n) + ";")
			}
			return
		}
		g.lowerStmt(n)
	}
	if voidReturn {
		return
	}
	o.writeil("return (void*)0; /* empty body, non-void return type */")
}

// lowerStmt lowers n for effect: its value, if any, is discarded.
func (g *generator) lowerStmt(n ast.Node) {
	o := g.out
	switch v := n.(type) {
	case *ast.If:
		g.lowerIfStmt(v)
	case *ast.LetForm:
		g.lowerLetStmt(v)
	case *ast.Begin:
		for _, e := range v.Exprs {
			g.lowerStmt(e)
		}
	case *ast.Define:
		g.lowerInternalDefine(v)
	case *ast.TypeDeclaration, *ast.Erroneous:
		// nothing to emit
	default:
		expr := g.lowerExpr(n)
		if expr == "" {
			return
		}
		o.writeil(expr + ";")
	}
}

func (g *generator) lowerInternalDefine(d *ast.Define) {
	b := g.idx.lookup(d, d.Name)
	cName := g.cNameForBinding(b)
	if _, ok := d.Value.(*ast.Lambda); ok {
		// Nested named lambdas are lifted to top-level fn_lN symbols just
		// like every other Lambda; the internal define only needs a local
		// closure descriptor value bound to its name.
		g.out.writeil(fmt.Sprintf("EshkolClosure %s = %s;", cName, g.lowerExpr(d.Value)))
		return
	}
	t := g.types.TypeOf(d.Value)
	decl := ctype(t)
	if g.indirect(b) {
		g.out.writeil(fmt.Sprintf("%s *%s = arena_alloc(g_arena, sizeof(%s));", decl, cName, decl))
		g.out.writeil(fmt.Sprintf("*%s = %s;", cName, g.lowerExpr(d.Value)))
		return
	}
	g.out.writeil(fmt.Sprintf("%s %s = %s;", decl, cName, g.lowerExpr(d.Value)))
}

func (g *generator) lowerIfStmt(v *ast.If) {
	o := g.out
	o.writeil("if (" + g.lowerExpr(v.Test) + ") {")
	o.indent()
	g.lowerStmt(v.Consequent)
	o.unindent()
	if v.Alternate != nil {
		o.writeil("} else {")
		o.indent()
		g.lowerStmt(v.Alternate)
		o.unindent()
	}
	o.writeil("}")
}

func (g *generator) lowerLetStmt(v *ast.LetForm) {
	o := g.out
	o.writeil("{")
	o.indent()
	if v.Kind == ast.LetRec {
		// letrec's every name is in scope for every initializer (pass1.go
		// binds them all before resolving any value), so a forward
		// reference from an earlier binding to a later one must see a cell
		// that already exists: declare every cell first, then run each
		// initializer.
		for _, lb := range v.Bindings {
			g.declareLetCell(v, lb)
		}
		for _, lb := range v.Bindings {
			g.initLetCell(v, lb)
		}
	} else {
		for _, lb := range v.Bindings {
			g.declareLetCell(v, lb)
			g.initLetCell(v, lb)
		}
	}
	for _, e := range v.Body {
		g.lowerStmt(e)
	}
	o.unindent()
	o.writeil("}")
}

// declareLetCell emits the C variable declaration for one let/let*/letrec
// binding, uninitialized. indirect bindings (letrec members, and any
// mutable-and-captured binding) declare a pointer and arena-allocate their
// backing cell immediately, since that allocation itself never depends on
// any other binding's value; initLetCell fills the cell in afterward.
func (g *generator) declareLetCell(lf *ast.LetForm, lb ast.LetBinding) {
	b := g.idx.lookup(lf, lb.Name)
	cName := g.cNameForBinding(b)
	decl := ctype(g.types.TypeOf(lb.Value))
	if g.indirect(b) {
		g.out.writeil(fmt.Sprintf("%s *%s = arena_alloc(g_arena, sizeof(%s));", decl, cName, decl))
		return
	}
	g.out.writeil(fmt.Sprintf("%s %s;", decl, cName))
}

func (g *generator) initLetCell(lf *ast.LetForm, lb ast.LetBinding) {
	b := g.idx.lookup(lf, lb.Name)
	cName := g.cNameForBinding(b)
	if g.indirect(b) {
		g.out.writeil(fmt.Sprintf("*%s = %s;", cName, g.lowerExpr(lb.Value)))
		return
	}
	g.out.writeil(fmt.Sprintf("%s = %s;", cName, g.lowerExpr(lb.Value)))
}

// lowerExpr renders n as a C expression. LetForm and multi-statement Begin
// in expression position use a GNU statement expression (as does
// lowerLambdaValue for a nested closure), a compiler extension rather than
// standard C, since plain C99 has no expression-with-local-bindings form
// to lower a Scheme let into.
func (g *generator) lowerExpr(n ast.Node) string {
	switch v := n.(type) {
	case *ast.IntegerLiteral:
		return strconv.FormatInt(v.Value, 10)
	case *ast.FloatLiteral:
		return formatCFloat(v.Value)
	case *ast.BoolLiteral:
		if v.Value {
			return "true"
		}
		return "false"
	case *ast.StringLiteral:
		return strconv.Quote(g.interner.Lookup(v.StrID))
	case *ast.CharLiteral:
		return fmt.Sprintf("%d /* '%c' */", v.Value, v.Value)
	case *ast.Identifier:
		return g.lowerIdentifier(v)
	case *ast.Lambda:
		return g.lowerLambdaValue(v)
	case *ast.If:
		alt := "0"
		if v.Alternate != nil {
			alt = g.lowerExpr(v.Alternate)
		}
		return fmt.Sprintf("(%s ? %s : %s)", g.lowerExpr(v.Test), g.lowerExpr(v.Consequent), alt)
	case *ast.LetForm:
		return g.lowerLetExpr(v)
	case *ast.Set:
		return g.lowerSet(v)
	case *ast.Begin:
		return g.lowerBeginExpr(v)
	case *ast.And:
		return g.lowerShortCircuit(v.Operands, "&&", "true")
	case *ast.Or:
		return g.lowerShortCircuit(v.Operands, "||", "false")
	case *ast.Call:
		return g.lowerCall(v)
	case *ast.Quote:
		return g.lowerQuote(v.Datum)
	case *ast.Quasiquote:
		g.fail(v.Span(), "quasiquote is not supported by codegen")
		return "0"
	case *ast.TypeDeclaration:
		return ""
	case *ast.Erroneous:
		return "0"
	default:
		g.fail(n.Span(), "codegen: unhandled node type %T", n)
		return "0"
	}
}

// formatCFloat renders f so it always round-trips as a double literal
// (always carrying a decimal point or exponent, so "1" doesn't become the
// integer 1 in C).
func formatCFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// lowerIdentifier reads an identifier's value: a module-scope binding is a
// plain C global, a boxed binding dereferences its heap cell, a captured
// (Free) binding reads through env->field, and everything else is a plain
// local.
func (g *generator) lowerIdentifier(ident *ast.Identifier) string {
	b := g.res.Idents[ident.ID()]
	if b == nil || b.Scope == resolver.Undefined {
		return "0 /* unresolved */"
	}
	if b.Scope == resolver.Predeclared {
		return "0 /* predeclared used as a value */"
	}
	return g.accessBinding(b)
}

// accessBinding renders the C lvalue/expression that reads b's current
// value, independent of any particular Identifier node — used both for a
// literal identifier reference and for reading a captured binding while
// building a closure's environment struct at its creation site.
func (g *generator) accessBinding(b *resolver.Binding) string {
	cName := g.cNameForBinding(b)
	if isModuleScope(b) {
		return cName
	}
	accessor := cName
	if g.currentFree[b] {
		accessor = "env->" + cName
	}
	if g.indirect(b) {
		return "(*" + accessor + ")"
	}
	return accessor
}

// lowerLambdaValue constructs a closure descriptor value at the Lambda's
// position: a top-level lambda's descriptor always points at the static
// singleton environment; a nested lambda allocates and fills a fresh
// environment from the arena on every evaluation, since each enclosing
// invocation may close over different values.
func (g *generator) lowerLambdaValue(l *ast.Lambda) string {
	fnName := g.cNameForLambdaFn(l)
	envName := g.cNameForLambdaEnv(l)
	if g.topLevelLambda[l.ID()] {
		return fmt.Sprintf("((EshkolClosure){ .fn = (void*)%s, .env = &%s_singleton })", fnName, envName)
	}
	info := g.res.Lambdas[l.ID()]
	free := trueFreeBindings(info)
	var assigns []string
	for _, b := range free {
		// The captured binding is read from the *enclosing* function's
		// storage, i.e. the scope lowerExpr is currently emitting into, not
		// from this new lambda's own env — accessBinding(b) does exactly
		// that, since b's Scope there is whatever the enclosing function
		// sees it as (Local/Cell/Free), not Free relative to this lambda.
		val := g.accessBinding(b)
		if g.indirect(b) {
			// The env field of an indirect binding is a pointer (see
			// envFieldType): store the cell's address, not its value.
			val = strings.TrimSuffix(strings.TrimPrefix(val, "(*"), ")")
		}
		assigns = append(assigns, fmt.Sprintf("__e->%s = %s;", g.cNameForBinding(b), val))
	}
	inner := fmt.Sprintf("%s *__e = arena_alloc(g_arena, sizeof(%s)); %s (EshkolClosure){ .fn = (void*)%s, .env = __e };",
		envName, envName, strings.Join(assigns, " "), fnName)
	return "({ " + inner + " })"
}

func (g *generator) lowerSet(v *ast.Set) string {
	b := g.res.SetTargets[v.ID()]
	cName := g.cNameForBinding(b)
	accessor := cName
	if !isModuleScope(b) && g.currentFree[b] {
		accessor = "env->" + cName
	}
	if g.indirect(b) {
		return fmt.Sprintf("(*%s = %s)", accessor, g.lowerExpr(v.Value))
	}
	return fmt.Sprintf("(%s = %s)", accessor, g.lowerExpr(v.Value))
}

func (g *generator) lowerBeginExpr(v *ast.Begin) string {
	if len(v.Exprs) == 0 {
		return "0"
	}
	if len(v.Exprs) == 1 {
		return g.lowerExpr(v.Exprs[0])
	}
	var parts []string
	for _, e := range v.Exprs {
		parts = append(parts, g.lowerExpr(e)+";")
	}
	return "({ " + strings.Join(parts, " ") + " })"
}

func (g *generator) lowerLetExpr(v *ast.LetForm) string {
	var decls, inits []string
	for _, lb := range v.Bindings {
		b := g.idx.lookup(v, lb.Name)
		cName := g.cNameForBinding(b)
		decl := ctype(g.types.TypeOf(lb.Value))
		if g.indirect(b) {
			decls = append(decls, fmt.Sprintf("%s *%s = arena_alloc(g_arena, sizeof(%s));", decl, cName, decl))
			inits = append(inits, fmt.Sprintf("*%s = %s;", cName, g.lowerExpr(lb.Value)))
			continue
		}
		decls = append(decls, fmt.Sprintf("%s %s;", decl, cName))
		inits = append(inits, fmt.Sprintf("%s = %s;", cName, g.lowerExpr(lb.Value)))
	}
	var parts []string
	parts = append(parts, decls...)
	if v.Kind == ast.LetRec {
		parts = append(parts, inits...)
	} else {
		// let/let* never need a binding to see a later sibling, so
		// declaring and initializing each in turn (rather than all
		// declarations up front) is equally correct; kept interleaved here
		// only to mirror how lowerLetStmt shares this helper's shape.
		interleaved := make([]string, 0, len(decls)+len(inits))
		for i := range decls {
			interleaved = append(interleaved, decls[i], inits[i])
		}
		parts = interleaved
	}
	for _, e := range v.Body {
		parts = append(parts, g.lowerExpr(e)+";")
	}
	return "({ " + strings.Join(parts, " ") + " })"
}

func (g *generator) lowerShortCircuit(operands []ast.Node, cop, identity string) string {
	if len(operands) == 0 {
		return identity
	}
	parts := make([]string, len(operands))
	for i, o := range operands {
		parts[i] = g.lowerExpr(o)
	}
	return "(" + strings.Join(parts, " "+cop+" ") + ")"
}

func (g *generator) lowerQuote(d ast.Datum) string {
	switch v := d.(type) {
	case ast.IntDatum:
		return strconv.FormatInt(v.Value, 10)
	case ast.FloatDatum:
		return formatCFloat(v.Value)
	case ast.BoolDatum:
		if v.Value {
			return "true"
		}
		return "false"
	case ast.StringDatum:
		return strconv.Quote(g.interner.Lookup(v.ID))
	case ast.CharDatum:
		return fmt.Sprintf("%d", v.Value)
	case ast.SymbolDatum:
		return strconv.Quote(g.interner.Lookup(v.Name))
	case ast.NilDatum:
		return "eshkol_pair_nil()"
	case ast.PairDatum:
		return fmt.Sprintf("eshkol_pair_cons(g_arena, (void*)(intptr_t)(%s), %s)", g.lowerQuote(v.Head), g.lowerQuote(v.Tail))
	default:
		return "0"
	}
}

// lowerCall dispatches a Call: predeclared intrinsics are lowered directly
// to their runtime/C-operator shape, everything else goes through the
// generic closure-descriptor call path.
func (g *generator) lowerCall(c *ast.Call) string {
	if ident, ok := c.Callee.(*ast.Identifier); ok {
		if b := g.res.Idents[ident.ID()]; b != nil && b.Scope == resolver.Predeclared {
			name := g.interner.Lookup(b.Name)
			if s, handled := g.lowerPredeclaredCall(c, name); handled {
				return s
			}
		}
		if b := g.res.Idents[ident.ID()]; b != nil && g.isDirectTopLevelCall(b) {
			return g.lowerDirectCall(b, c.Args)
		}
	}
	return g.lowerClosureCall(c)
}

// isDirectTopLevelCall reports whether b is a module-scope binding whose
// value is itself a top-level Lambda: calls through it skip the
// closure-descriptor cast/invoke dance and call the lifted function
// directly with its singleton environment.
func (g *generator) isDirectTopLevelCall(b *resolver.Binding) bool {
	d, ok := b.DefiningNode.(*ast.Define)
	if !ok {
		return false
	}
	l, ok := d.Value.(*ast.Lambda)
	return ok && g.topLevelLambda[l.ID()]
}

func (g *generator) lowerDirectCall(b *resolver.Binding, args []ast.Node) string {
	d := b.DefiningNode.(*ast.Define)
	l := d.Value.(*ast.Lambda)
	fnName := g.cNameForLambdaFn(l)
	envName := g.cNameForLambdaEnv(l)
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, "&"+envName+"_singleton")
	for _, a := range args {
		parts = append(parts, g.lowerExpr(a))
	}
	return fmt.Sprintf("%s(%s)", fnName, strings.Join(parts, ", "))
}

// lowerClosureCall invokes a first-class closure value: the callee
// expression is evaluated to an EshkolClosure descriptor, its fn pointer
// cast to the call's real signature, and invoked with env first.
func (g *generator) lowerClosureCall(c *ast.Call) string {
	calleeType, _ := g.types.TypeOf(c.Callee).(types.Function)
	retC := ctype(calleeType.Result)
	var paramCTypes []string
	paramCTypes = append(paramCTypes, "void*")
	argExprs := make([]string, len(c.Args))
	for i, a := range c.Args {
		pt := types.Type(types.Unknown)
		if i < len(calleeType.Params) {
			pt = calleeType.Params[i]
		}
		paramCTypes = append(paramCTypes, ctype(pt))
		argExprs[i] = g.lowerExpr(a)
	}
	calleeExpr := g.lowerExpr(c.Callee)
	castSig := fmt.Sprintf("%s (*)(%s)", retC, strings.Join(paramCTypes, ", "))
	callArgs := append([]string{"__clos.env"}, argExprs...)
	return fmt.Sprintf("({ EshkolClosure __clos = %s; ((%s)__clos.fn)(%s); })", calleeExpr, castSig, strings.Join(callArgs, ", "))
}

func (g *generator) lowerPredeclaredCall(c *ast.Call, name string) (string, bool) {
	switch {
	case arithmeticOps[name]:
		return g.lowerArithmetic(c, name), true
	case comparisonOps[name]:
		return g.lowerComparison(c, name), true
	case equalityOps[name]:
		return g.lowerEquality(c), true
	case name == "not":
		return fmt.Sprintf("(!(%s))", g.lowerExpr(c.Args[0])), true
	case name == "printf":
		return g.lowerPrintf(c), true
	case name == "vector":
		return g.lowerVectorLiteral(c), true
	case name == "display":
		return g.lowerDisplay(c), true
	case vectorRuntimeFn[name] != "":
		return g.lowerRuntimeCall(vectorRuntimeFn[name], c.Args), true
	case autodiffRuntimeFn[name] != "":
		return g.lowerAutodiffCall(autodiffRuntimeFn[name], c), true
	case schemeRuntimeFn[name] != "":
		return g.lowerSchemeRuntimeCall(name, c), true
	default:
		return "", false
	}
}

func (g *generator) lowerArithmetic(c *ast.Call, op string) string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = g.lowerExpr(a)
	}
	if len(parts) == 0 {
		return "0"
	}
	if len(parts) == 1 {
		switch op {
		case "-":
			return fmt.Sprintf("(-(%s))", parts[0])
		case "/":
			return fmt.Sprintf("(1 / (%s))", parts[0])
		default:
			return parts[0]
		}
	}
	return "(" + strings.Join(parts, " "+op+" ") + ")"
}

func (g *generator) lowerComparison(c *ast.Call, op string) string {
	if len(c.Args) < 2 {
		return "true"
	}
	var parts []string
	for i := 0; i < len(c.Args)-1; i++ {
		parts = append(parts, fmt.Sprintf("(%s %s %s)", g.lowerExpr(c.Args[i]), op, g.lowerExpr(c.Args[i+1])))
	}
	return "(" + strings.Join(parts, " && ") + ")"
}

// lowerEquality lowers eq?/eqv?/equal?: scalar-typed operands compare with
// C's own ==, everything else (strings, pairs, anything that resolved to
// Unknown) defers to the runtime's generic eshkol_equal, which knows how
// to compare those representations.
func (g *generator) lowerEquality(c *ast.Call) string {
	if len(c.Args) != 2 {
		return "false"
	}
	at := g.types.TypeOf(c.Args[0])
	switch at {
	case types.Int, types.Float_, types.Bool, types.Char_:
		return fmt.Sprintf("(%s == %s)", g.lowerExpr(c.Args[0]), g.lowerExpr(c.Args[1]))
	}
	return fmt.Sprintf("eshkol_equal((void*)(intptr_t)(%s), (void*)(intptr_t)(%s))", g.lowerExpr(c.Args[0]), g.lowerExpr(c.Args[1]))
}

func (g *generator) lowerPrintf(c *ast.Call) string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = g.lowerExpr(a)
	}
	return fmt.Sprintf("printf(%s)", strings.Join(parts, ", "))
}

// lowerDisplay dispatches on the argument's static type, since the
// runtime's single eshkol_display entry point would otherwise need its own
// dynamic tag.
func (g *generator) lowerDisplay(c *ast.Call) string {
	if len(c.Args) != 1 {
		return "(void)0"
	}
	arg := c.Args[0]
	at := g.types.TypeOf(arg)
	expr := g.lowerExpr(arg)
	switch at {
	case types.Int:
		return fmt.Sprintf("printf(\"%%lld\", (long long)(%s))", expr)
	case types.Float_:
		return fmt.Sprintf("printf(\"%%g\", (double)(%s))", expr)
	case types.Bool:
		return fmt.Sprintf("printf(\"%%s\", (%s) ? \"#t\" : \"#f\")", expr)
	case types.Str, types.Sym:
		return fmt.Sprintf("printf(\"%%s\", (%s))", expr)
	default:
		return fmt.Sprintf("eshkol_display((void*)(intptr_t)(%s))", expr)
	}
}

func (g *generator) lowerVectorLiteral(c *ast.Call) string {
	elems := make([]string, len(c.Args))
	for i, a := range c.Args {
		elems[i] = g.lowerExpr(a)
	}
	arr := fmt.Sprintf("(double[]){ %s }", strings.Join(elems, ", "))
	return fmt.Sprintf("vector_f_create_from_array(g_arena, %s, %d)", arr, len(elems))
}

func (g *generator) lowerRuntimeCall(fn string, args []ast.Node) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, "g_arena")
	for _, a := range args {
		parts = append(parts, g.lowerExpr(a))
	}
	return fmt.Sprintf("%s(%s)", fn, strings.Join(parts, ", "))
}

// lowerAutodiffCall passes the user function argument through as a raw
// closure descriptor: the runtime casts EshkolClosure's fn pointer to the
// scalar-or-vector signature it actually needs internally.
func (g *generator) lowerAutodiffCall(fn string, c *ast.Call) string {
	return g.lowerRuntimeCall(fn, c.Args)
}

func (g *generator) lowerSchemeRuntimeCall(name string, c *ast.Call) string {
	fn := schemeRuntimeFn[name]
	if name != "string-append" {
		if len(c.Args) == 0 {
			return fn + "()"
		}
		return fmt.Sprintf("%s(%s)", fn, g.lowerExpr(c.Args[0]))
	}
	if len(c.Args) == 0 {
		return `""`
	}
	acc := g.lowerExpr(c.Args[0])
	for _, a := range c.Args[1:] {
		acc = fmt.Sprintf("%s(%s, %s)", fn, acc, g.lowerExpr(a))
	}
	return acc
}
