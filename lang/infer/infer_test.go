package infer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openSVM/eshkol/lang/arena"
	"github.com/openSVM/eshkol/lang/ast"
	"github.com/openSVM/eshkol/lang/diag"
	"github.com/openSVM/eshkol/lang/infer"
	"github.com/openSVM/eshkol/lang/intern"
	"github.com/openSVM/eshkol/lang/parser"
	"github.com/openSVM/eshkol/lang/resolver"
	"github.com/openSVM/eshkol/lang/token"
	"github.com/openSVM/eshkol/lang/types"
)

func compile(t *testing.T, src string) (*ast.Program, *resolver.Result, *infer.Result) {
	t.Helper()
	a := arena.New()
	it := intern.New()
	sink := diag.NewSink()
	file := token.NewFile("test", len(src))
	prog, err := parser.ParseProgram(a, it, sink, file, []byte(src))
	require.NoError(t, err)
	res, err := resolver.Resolve(prog, it, sink, resolver.DefaultIsPredeclared)
	require.NoError(t, err)
	result, err := infer.Infer(prog, res, it, sink)
	require.NoError(t, err)
	return prog, res, result
}

func TestInferLiterals(t *testing.T) {
	prog, _, result := compile(t, "1 2.5 #t")
	assert.Equal(t, types.Int, result.TypeOf(prog.Body[0]))
	assert.Equal(t, types.Float_, result.TypeOf(prog.Body[1]))
	assert.Equal(t, types.Bool, result.TypeOf(prog.Body[2]))
}

func TestInferArithmeticPromotesToFloat(t *testing.T) {
	prog, _, result := compile(t, "(+ 1 2.0 3)")
	assert.Equal(t, types.Float_, result.TypeOf(prog.Body[0]))
}

func TestInferArithmeticStaysInteger(t *testing.T) {
	prog, _, result := compile(t, "(+ 1 2 3)")
	assert.Equal(t, types.Int, result.TypeOf(prog.Body[0]))
}

func TestInferComparisonIsBool(t *testing.T) {
	prog, _, result := compile(t, "(< 1 2 3)")
	assert.Equal(t, types.Bool, result.TypeOf(prog.Body[0]))
}

func TestInferIfUnifiesBranches(t *testing.T) {
	prog, _, result := compile(t, "(if #t 1 2)")
	assert.Equal(t, types.Int, result.TypeOf(prog.Body[0]))
}

func TestInferLambdaFunctionType(t *testing.T) {
	prog, _, result := compile(t, "(define (add1 x) (+ x 1))")
	define := prog.Body[0].(*ast.Define)
	lambda := define.Value.(*ast.Lambda)
	ft, ok := result.TypeOf(lambda).(types.Function)
	require.True(t, ok)
	require.Len(t, ft.Params, 1)
	assert.Equal(t, types.Int, ft.Params[0])
	assert.Equal(t, types.Int, ft.Result)
}

func TestInferAnnotatedParamConstrainsBody(t *testing.T) {
	prog, _, result := compile(t, "(define (scale [x : Float]) (* x 2))")
	define := prog.Body[0].(*ast.Define)
	lambda := define.Value.(*ast.Lambda)
	ft, ok := result.TypeOf(lambda).(types.Function)
	require.True(t, ok)
	assert.Equal(t, types.Float_, ft.Params[0])
	assert.Equal(t, types.Float_, ft.Result)
}

func TestInferVectorIntrinsic(t *testing.T) {
	prog, _, result := compile(t, "(define (f x) x) (gradient f (vector 1.0 2.0 3.0))")
	assert.Equal(t, types.Vector{Elem: types.Float_}, result.TypeOf(prog.Body[1]))
}

// TestInferAutodiffScalarIntrinsicWithFunctionArgument covers the two-argument
// shape every autodiff/vector-calculus intrinsic actually takes: the user
// function being differentiated, followed by the numeric argument it's
// differentiated at. Earlier, Intrinsics only listed the numeric parameter,
// so this call shape failed to unify on arity alone.
func TestInferAutodiffScalarIntrinsicWithFunctionArgument(t *testing.T) {
	prog, _, result := compile(t, "(define (f x) (* x x)) (autodiff-forward f 3.0)")
	assert.Equal(t, types.Float_, result.TypeOf(prog.Body[1]))
}

// TestInferOrWithOneBoolOperandTypesAsBool covers the short-circuiting idiom
// `(or (> x 0) 0)`: one operand is Bool and the other Int, so the form must
// type as Bool rather than trying to unify Bool against Int.
func TestInferOrWithOneBoolOperandTypesAsBool(t *testing.T) {
	prog, _, result := compile(t, "(define (x) 1) (or (> (x) 0) 0)")
	assert.Equal(t, types.Bool, result.TypeOf(prog.Body[1]))
}

// TestInferAndWithAllNonBoolOperandsUnifiesCommonType covers and/or's other
// branch: with no Bool operand present, the form types as the operands'
// common unified type.
func TestInferAndWithAllNonBoolOperandsUnifiesCommonType(t *testing.T) {
	prog, _, result := compile(t, "(and 1 2)")
	assert.Equal(t, types.Int, result.TypeOf(prog.Body[0]))
}

func TestInferUnannotatedUnconstrainedBindingWidensToUnknown(t *testing.T) {
	prog, _, result := compile(t, "(define (identity x) x)")
	define := prog.Body[0].(*ast.Define)
	lambda := define.Value.(*ast.Lambda)
	ft, ok := result.TypeOf(lambda).(types.Function)
	require.True(t, ok)
	assert.Equal(t, types.Unknown, ft.Params[0])
	assert.Equal(t, types.Unknown, ft.Result)
}
