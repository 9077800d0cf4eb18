package parser_test

import (
	"testing"

	"github.com/openSVM/eshkol/lang/arena"
	"github.com/openSVM/eshkol/lang/ast"
	"github.com/openSVM/eshkol/lang/diag"
	"github.com/openSVM/eshkol/lang/intern"
	"github.com/openSVM/eshkol/lang/parser"
	"github.com/openSVM/eshkol/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) (*ast.Program, *diag.Sink) {
	t.Helper()
	a := arena.New()
	interner := intern.New()
	sink := diag.NewSink()
	file := token.NewFile("test.esh", len(src))
	prog, _ := parser.ParseProgram(a, interner, sink, file, []byte(src))
	return prog, sink
}

func TestParseAtoms(t *testing.T) {
	prog, sink := parse(t, `42 3.5 #t "hi" #\a foo`)
	require.False(t, sink.HasErrors())
	require.Len(t, prog.Body, 6)
	assert.IsType(t, &ast.IntegerLiteral{}, prog.Body[0])
	assert.IsType(t, &ast.FloatLiteral{}, prog.Body[1])
	assert.IsType(t, &ast.BoolLiteral{}, prog.Body[2])
	assert.IsType(t, &ast.StringLiteral{}, prog.Body[3])
	assert.IsType(t, &ast.CharLiteral{}, prog.Body[4])
	assert.IsType(t, &ast.Identifier{}, prog.Body[5])
}

func TestParseDefine(t *testing.T) {
	prog, sink := parse(t, `(define (square x) (* x x))`)
	require.False(t, sink.HasErrors())
	require.Len(t, prog.Body, 1)
	def, ok := prog.Body[0].(*ast.Define)
	require.True(t, ok)
	lambda, ok := def.Value.(*ast.Lambda)
	require.True(t, ok)
	assert.Len(t, lambda.Params, 1)
	assert.Len(t, lambda.Body, 1)
}

func TestParseLetVariants(t *testing.T) {
	src := `
(let ((a 1) (b 2)) (+ a b))
(let* ((a 1) (b (+ a 1))) b)
(letrec ((even? (lambda (n) (if (= n 0) #t (odd? (- n 1)))))
         (odd? (lambda (n) (if (= n 0) #f (even? (- n 1))))))
  (even? 10))
`
	prog, sink := parse(t, src)
	require.False(t, sink.HasErrors())
	require.Len(t, prog.Body, 3)

	lf, ok := prog.Body[0].(*ast.LetForm)
	require.True(t, ok)
	assert.Equal(t, ast.LetPlain, lf.Kind)

	lf, ok = prog.Body[1].(*ast.LetForm)
	require.True(t, ok)
	assert.Equal(t, ast.LetStar, lf.Kind)

	lf, ok = prog.Body[2].(*ast.LetForm)
	require.True(t, ok)
	assert.Equal(t, ast.LetRec, lf.Kind)
	assert.Len(t, lf.Bindings, 2)
}

func TestParseIfSetBeginAndOr(t *testing.T) {
	src := `
(if #t 1 2)
(if #t 1)
(set! x 5)
(begin 1 2 3)
(and 1 2 3)
(or)
`
	prog, sink := parse(t, src)
	require.False(t, sink.HasErrors())
	require.Len(t, prog.Body, 6)

	ifn := prog.Body[0].(*ast.If)
	assert.NotNil(t, ifn.Alternate)

	ifn = prog.Body[1].(*ast.If)
	assert.Nil(t, ifn.Alternate)

	set := prog.Body[2].(*ast.Set)
	assert.NotNil(t, set.Target)

	beg := prog.Body[3].(*ast.Begin)
	assert.Len(t, beg.Exprs, 3)

	and := prog.Body[4].(*ast.And)
	assert.Len(t, and.Operands, 3)

	or := prog.Body[5].(*ast.Or)
	assert.Len(t, or.Operands, 0)
}

func TestParseQuoteAndQuasiquote(t *testing.T) {
	prog, sink := parse(t, "'(1 2 3) `(1 ,x)")
	require.False(t, sink.HasErrors())
	require.Len(t, prog.Body, 2)
	assert.IsType(t, &ast.Quote{}, prog.Body[0])
	assert.IsType(t, &ast.Quasiquote{}, prog.Body[1])
}

func TestParseTypeDeclaration(t *testing.T) {
	prog, sink := parse(t, `(: add (-> Integer Integer Integer)) (define (add x y) (+ x y))`)
	require.False(t, sink.HasErrors())
	require.Len(t, prog.Body, 2)
	assert.IsType(t, &ast.TypeDeclaration{}, prog.Body[0])
}

func TestParseErrorRecovery(t *testing.T) {
	// An unclosed form should be reported and recovered from, parsing
	// continues at the next top-level boundary rather than aborting.
	prog, sink := parse(t, `(define (broken x`+"\n"+`(define ok 1)`)
	assert.True(t, sink.HasErrors())
	assert.NotEmpty(t, prog.Body)
}
