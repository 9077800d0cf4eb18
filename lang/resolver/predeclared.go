package resolver

// predeclaredNames is every identifier the code generator recognizes as an
// intrinsic and therefore never requires a user binding for.
// DefaultIsPredeclared wraps this set as an IsPredeclaredFunc for callers
// that don't need to extend or restrict it.
var predeclaredNames = map[string]bool{
	// arithmetic and comparison
	"+": true, "-": true, "*": true, "/": true,
	"=": true, "<": true, ">": true, "<=": true, ">=": true,
	"not": true, "eq?": true, "eqv?": true, "equal?": true,

	// vector calculus
	"vector": true, "v+": true, "v-": true, "v*": true,
	"dot": true, "cross": true, "norm": true,

	// autodiff and calculus
	"gradient": true, "divergence": true, "curl": true, "laplacian": true,
	"autodiff-forward": true, "autodiff-reverse": true,
	"autodiff-forward-gradient": true, "autodiff-reverse-gradient": true,
	"autodiff-jacobian": true, "autodiff-hessian": true,
	"derivative": true,

	// Scheme compatibility runtime
	"display": true, "string-append": true, "number->string": true, "printf": true,
}

// DefaultIsPredeclared reports whether name is one of the builtin
// intrinsics every module is given without a binding.
func DefaultIsPredeclared(name string) bool {
	return predeclaredNames[name]
}
