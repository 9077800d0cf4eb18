package codegen

import "github.com/openSVM/eshkol/lang/types"

// ctype maps a solved types.Type to the C type lowering represents it
// with. Vector(Float) maps to the runtime's VectorF*;
// Vector(Vector(Float)) (the Jacobian/Hessian shape, since the type sum has
// no dedicated Matrix constructor) maps to the runtime's MatrixF*. Function
// values are always passed around as the fixed-shape EshkolClosure
// descriptor regardless of arity — the lifted function pointer it carries is
// cast to the right signature at each call site instead of having one
// struct shape per arity.
func ctype(t types.Type) string {
	if t == nil {
		return "void*"
	}
	switch vv := t.(type) {
	case types.Vector:
		if _, nested := vv.Elem.(types.Vector); nested {
			return "MatrixF*"
		}
		return "VectorF*"
	case types.Pair:
		return "EshkolPair*"
	case types.Function:
		return "EshkolClosure"
	}
	switch t {
	case types.Int:
		return "int64_t"
	case types.Float_:
		return "double"
	case types.Bool:
		return "bool"
	case types.Str:
		return "const char*"
	case types.Char_:
		return "int32_t"
	case types.Sym:
		return "const char*"
	case types.Void:
		return "void"
	default: // types.Unknown, or an unresolved var that slipped through
		return "void*"
	}
}
