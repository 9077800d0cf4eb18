package types

// Intrinsics maps builtin names to their fixed arrow type. Vector calculus
// and autodiff builtins operate on Vector(Float) points, except derivative,
// autodiff-forward and autodiff-reverse, which take a scalar Float: the
// source language has no other numeric
// vector shape, so there is nothing to generalize over. Each of them also
// takes the user function being differentiated/analyzed as its leading
// argument; that function's own arity and parameter types vary per call
// site (a scalar derivative vs. a vector gradient each close over a
// differently-shaped function), so the leading parameter is typed Unknown
// rather than pinned to one Function shape — it unifies against whatever
// callee the call site actually passes.
var Intrinsics = map[string]Function{
	"gradient":    {Params: []Type{Unknown, Vector{Elem: Float_}}, Result: Vector{Elem: Float_}},
	"divergence":  {Params: []Type{Unknown, Vector{Elem: Float_}}, Result: Float_},
	"curl":        {Params: []Type{Unknown, Vector{Elem: Float_}}, Result: Vector{Elem: Float_}},
	"laplacian":   {Params: []Type{Unknown, Vector{Elem: Float_}}, Result: Float_},
	"derivative":  {Params: []Type{Unknown, Float_}, Result: Float_},

	"autodiff-forward": {Params: []Type{Unknown, Float_}, Result: Float_},
	"autodiff-reverse": {Params: []Type{Unknown, Float_}, Result: Float_},

	"autodiff-forward-gradient": {Params: []Type{Unknown, Vector{Elem: Float_}}, Result: Vector{Elem: Float_}},
	"autodiff-reverse-gradient": {Params: []Type{Unknown, Vector{Elem: Float_}}, Result: Vector{Elem: Float_}},

	// Jacobian and Hessian are matrices: there is no Matrix constructor in
	// the type sum, so they are represented as a vector of row vectors.
	"autodiff-jacobian": {Params: []Type{Unknown, Vector{Elem: Float_}}, Result: Vector{Elem: Vector{Elem: Float_}}},
	"autodiff-hessian":  {Params: []Type{Unknown, Vector{Elem: Float_}}, Result: Vector{Elem: Vector{Elem: Float_}}},

	// Fixed-arity vector calculus operators. "vector" and the variadic
	// arithmetic/comparison/logical operators are not listed here: they are
	// arity-polymorphic and handled specially by the inferencer's call
	// dispatch instead of through this fixed-signature table.
	"v+":   {Params: []Type{Vector{Elem: Float_}, Vector{Elem: Float_}}, Result: Vector{Elem: Float_}},
	"v-":   {Params: []Type{Vector{Elem: Float_}, Vector{Elem: Float_}}, Result: Vector{Elem: Float_}},
	"v*":   {Params: []Type{Vector{Elem: Float_}, Float_}, Result: Vector{Elem: Float_}},
	"dot":  {Params: []Type{Vector{Elem: Float_}, Vector{Elem: Float_}}, Result: Float_},
	"cross": {Params: []Type{Vector{Elem: Float_}, Vector{Elem: Float_}}, Result: Vector{Elem: Float_}},
	"norm":  {Params: []Type{Vector{Elem: Float_}}, Result: Float_},

	// Scheme-compatibility runtime surface.
	"display":         {Params: []Type{Unknown}, Result: Void},
	"number->string":  {Params: []Type{Unknown}, Result: Str},
}
