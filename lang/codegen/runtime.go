package codegen

// writeRuntimePrelude emits the translation unit's fixed header: standard
// includes, the stable runtime header this unit depends on, the
// compiler-owned closure descriptor typedef (EshkolClosure), and the arena
// global every lowering rule below allocates from. Arena, VectorF, MatrixF,
// and the vector/autodiff/string runtime entry
// points are declared in eshkol_runtime.h and merely assumed here, not
// redeclared, since that header is this compiler's one stable contract
// with the linked runtime: Arena, VectorF, ClosureEnv_*, compute_gradient,
// compute_divergence, compute_curl, compute_laplacian,
// compute_gradient_autodiff, compute_gradient_reverse_mode,
// compute_jacobian, compute_hessian, compute_nth_derivative,
// vector_f_create_from_array, vector_f_add, vector_f_sub,
// vector_f_mul_scalar, vector_f_dot, vector_f_cross, vector_f_magnitude,
// vector_f_get — plus the MatrixF/EshkolPair/eshkol_equal/eshkol_display/
// eshkol_string_append/eshkol_number_to_string surface this code generator
// additionally relies on for Jacobian/Hessian results, quoted pairs, and
// the Scheme-compatibility intrinsics.
func (g *generator) writeRuntimePrelude() {
	o := g.out
	o.writel("/* Generated by the eshkol compiler. Do not edit by hand. */")
	o.writel("")
	o.writel("#include <stdint.h>")
	o.writel("#include <stdbool.h>")
	o.writel("#include <stdlib.h>")
	o.writel("#include \"eshkol_runtime.h\"")
	o.writel("")
	o.writel("/* Closure descriptor: fn points to a lifted top-level function whose")
	o.writel(" * first parameter is env; callers cast fn to the lifted function's real")
	o.writel(" * signature before invoking it. */")
	o.writel("typedef struct EshkolClosure {")
	o.writel("    void *fn;")
	o.writel("    void *env;")
	o.writel("} EshkolClosure;")
	o.writel("")
	o.writel("/* Single arena for the process lifetime: every allocating runtime call")
	o.writel(" * below takes it implicitly rather than threading it through every")
	o.writel(" * lowered function, since this compiler targets single-threaded batch")
	o.writel(" * programs. */")
	o.writel("static Arena *g_arena;")
	o.writel("")
}

// writeForwardDecl emits a forward declaration for one top-level define.
func (g *generator) writeForwardDecl(sig string) {
	g.out.writel(sig + ";")
}
