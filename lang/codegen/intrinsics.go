package codegen

// vectorRuntimeFn maps a vector-calculus intrinsic name to its runtime
// entry point.
var vectorRuntimeFn = map[string]string{
	"v+":   "vector_f_add",
	"v-":   "vector_f_sub",
	"v*":   "vector_f_mul_scalar",
	"dot":  "vector_f_dot",
	"cross": "vector_f_cross",
	"norm":  "vector_f_magnitude",
}

// autodiffRuntimeFn maps an autodiff/calculus intrinsic name to the runtime
// entry point it adapts a user closure to. autodiff-forward/-reverse
// operate on scalars (arity-1 vectors under the hood); their *-gradient
// siblings operate on full vectors; gradient/divergence/curl/
// laplacian/derivative are the plain vector-calculus operators already
// typed by the Intrinsics table.
var autodiffRuntimeFn = map[string]string{
	"gradient":                  "compute_gradient",
	"divergence":                "compute_divergence",
	"curl":                      "compute_curl",
	"laplacian":                 "compute_laplacian",
	"derivative":                "compute_nth_derivative",
	"autodiff-forward":          "compute_gradient_autodiff",
	"autodiff-reverse":          "compute_gradient_reverse_mode",
	"autodiff-forward-gradient": "compute_gradient_autodiff",
	"autodiff-reverse-gradient": "compute_gradient_reverse_mode",
	"autodiff-jacobian":         "compute_jacobian",
	"autodiff-hessian":          "compute_hessian",
}

// schemeRuntimeFn maps the Scheme-compatibility intrinsics to their runtime
// entry points, except "printf" which passes straight through to libc's
// printf and "display" which dispatches on the argument's static type
// instead of calling a single fixed entry point (see lower.go's
// lowerDisplay).
var schemeRuntimeFn = map[string]string{
	"string-append":   "eshkol_string_append",
	"number->string":  "eshkol_number_to_string",
}
