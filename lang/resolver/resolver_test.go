package resolver_test

import (
	"testing"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openSVM/eshkol/lang/arena"
	"github.com/openSVM/eshkol/lang/ast"
	"github.com/openSVM/eshkol/lang/diag"
	"github.com/openSVM/eshkol/lang/intern"
	"github.com/openSVM/eshkol/lang/parser"
	"github.com/openSVM/eshkol/lang/resolver"
	"github.com/openSVM/eshkol/lang/token"
)

func parseOne(t *testing.T, src string) (*ast.Program, *intern.Table, *diag.Sink) {
	t.Helper()
	a := arena.New()
	it := intern.New()
	sink := diag.NewSink()
	file := token.NewFile("test", len(src))
	prog, err := parser.ParseProgram(a, it, sink, file, []byte(src))
	require.NoError(t, err)
	return prog, it, sink
}

func TestResolveSimpleDefine(t *testing.T) {
	prog, it, sink := parseOne(t, "(define x 1) (define y x)")
	res, err := resolver.Resolve(prog, it, sink, resolver.DefaultIsPredeclared)
	require.NoError(t, err)

	yDefine := prog.Body[1].(*ast.Define)
	yIdent := yDefine.Value.(*ast.Identifier)
	b, ok := res.Idents[yIdent.ID()]
	require.True(t, ok)
	assert.Equal(t, resolver.Local, b.Scope)
}

func TestResolveUndefinedIdentifier(t *testing.T) {
	prog, it, sink := parseOne(t, "(display nope)")
	_, err := resolver.Resolve(prog, it, sink, resolver.DefaultIsPredeclared)
	require.Error(t, err)
}

func TestResolveClosureCapture(t *testing.T) {
	prog, it, sink := parseOne(t, "(define (make-adder k) (lambda (x) (+ x k)))")
	res, err := resolver.Resolve(prog, it, sink, resolver.DefaultIsPredeclared)
	require.NoError(t, err)

	outer := prog.Body[0].(*ast.Define).Value.(*ast.Lambda)
	inner := outer.Body[0].(*ast.Lambda)

	info := res.Lambdas[inner.ID()]
	require.NotNil(t, info)
	require.Len(t, info.FreeBindings, 1)
	assert.Equal(t, "k", it.Lookup(info.FreeBindings[0].Name))
	assert.True(t, info.FreeBindings[0].Captured)
}

func TestResolveMutualTopLevelRecursion(t *testing.T) {
	src := `(define (even? n) (if (= n 0) #t (odd? (- n 1))))
	        (define (odd? n) (if (= n 0) #f (even? (- n 1))))`
	prog, it, sink := parseOne(t, src)
	_, err := resolver.Resolve(prog, it, sink, resolver.DefaultIsPredeclared)
	require.NoError(t, err)
}

func TestResolveSetMarksMutable(t *testing.T) {
	prog, it, sink := parseOne(t, "(define (f) (let ((x 1)) (set! x 2) x))")
	res, err := resolver.Resolve(prog, it, sink, resolver.DefaultIsPredeclared)
	require.NoError(t, err)

	lambda := prog.Body[0].(*ast.Define).Value.(*ast.Lambda)
	letForm := lambda.Body[0].(*ast.LetForm)
	setNode := letForm.Body[0].(*ast.Set)

	b, ok := res.SetTargets[setNode.ID()]
	require.True(t, ok)
	assert.True(t, b.Mutable)
}

// capturedNames summarizes a LambdaInfo as plain strings/bools so two
// independent resolutions of the same source can be diffed structurally
// without comparing *Binding pointer identity (which necessarily differs
// across separate Resolve calls).
type capturedName struct {
	Name     string
	Captured bool
}

func freeBindingSummary(it *intern.Table, info *resolver.LambdaInfo) []capturedName {
	out := make([]capturedName, len(info.FreeBindings))
	for i, b := range info.FreeBindings {
		out[i] = capturedName{Name: it.Lookup(b.Name), Captured: b.Captured}
	}
	return out
}

// TestResolveCaptureAnalysisIsDeterministic resolves the same closure twice
// and requires the free-binding summaries to match exactly: capture
// analysis must not depend on map iteration order or any other incidental
// state. go-test/deep gives a field-by-field diff when this regresses,
// rather than just "not equal".
func TestResolveCaptureAnalysisIsDeterministic(t *testing.T) {
	src := "(define (make-adder k) (lambda (x) (+ x k)))"

	prog1, it1, sink1 := parseOne(t, src)
	res1, err := resolver.Resolve(prog1, it1, sink1, resolver.DefaultIsPredeclared)
	require.NoError(t, err)
	inner1 := prog1.Body[0].(*ast.Define).Value.(*ast.Lambda).Body[0].(*ast.Lambda)

	prog2, it2, sink2 := parseOne(t, src)
	res2, err := resolver.Resolve(prog2, it2, sink2, resolver.DefaultIsPredeclared)
	require.NoError(t, err)
	inner2 := prog2.Body[0].(*ast.Define).Value.(*ast.Lambda).Body[0].(*ast.Lambda)

	got1 := freeBindingSummary(it1, res1.Lambdas[inner1.ID()])
	got2 := freeBindingSummary(it2, res2.Lambdas[inner2.ID()])
	if diff := deep.Equal(got1, got2); diff != nil {
		t.Errorf("capture analysis diverged between independent resolutions: %v", diff)
	}
}

func TestResolveLetStarSeesPrecedingBindings(t *testing.T) {
	prog, it, sink := parseOne(t, "(let* ((x 1) (y x)) y)")
	res, err := resolver.Resolve(prog, it, sink, resolver.DefaultIsPredeclared)
	require.NoError(t, err)

	letForm := prog.Body[0].(*ast.LetForm)
	yInit := letForm.Bindings[1].Value.(*ast.Identifier)
	b, ok := res.Idents[yInit.ID()]
	require.True(t, ok)
	assert.Equal(t, "x", it.Lookup(b.Name))
}
