// Package types implements a gradual type system: a small sum of concrete
// type constructors plus Unknown, the absorbing "I don't know, and that's
// fine" type that lets partially annotated programs still compile, unified
// by a union-find solver.
package types

import (
	"fmt"
	"strings"
)

// Type is implemented by every type constructor in the sum.
type Type interface {
	// String renders the type the way diagnostics and the codegen's debug
	// dumps display it.
	String() string

	isType()
}

// Concrete scalar and atom types. These are interned as singletons since
// they carry no fields: every Integer in a program is the same value.
var (
	Int    Type = integerType{}
	Float_ Type = floatType{}
	Bool   Type = boolType{}
	Str    Type = stringType{}
	Char_  Type = charType{}
	Sym    Type = symbolType{}
	Void   Type = voidType{}

	// Unknown is the gradual type: it unifies successfully with anything
	// without constraining it further.
	Unknown Type = unknownType{}
)

type integerType struct{}
type floatType struct{}
type boolType struct{}
type stringType struct{}
type charType struct{}
type symbolType struct{}
type voidType struct{}
type unknownType struct{}

func (integerType) isType() {}
func (floatType) isType()   {}
func (boolType) isType()    {}
func (stringType) isType()  {}
func (charType) isType()    {}
func (symbolType) isType()  {}
func (voidType) isType()    {}
func (unknownType) isType() {}

func (integerType) String() string { return "Integer" }
func (floatType) String() string   { return "Float" }
func (boolType) String() string    { return "Bool" }
func (stringType) String() string  { return "String" }
func (charType) String() string    { return "Char" }
func (symbolType) String() string  { return "Symbol" }
func (voidType) String() string    { return "Void" }
func (unknownType) String() string { return "Unknown" }

// Pair is a cons cell type, Pair(Head, Tail).
type Pair struct {
	Head, Tail Type
}

func (Pair) isType() {}
func (p Pair) String() string { return fmt.Sprintf("Pair(%s, %s)", p.Head, p.Tail) }

// Vector is a homogeneous numeric vector type, used for both literal
// vectors and the result of vector/autodiff intrinsics. Elem is normally
// Float but is left general so Vector(Vector(Float)) can stand in for a
// Jacobian/Hessian's matrix shape (the type sum has no dedicated Matrix
// constructor).
type Vector struct {
	Elem Type
}

func (Vector) isType() {}
func (v Vector) String() string { return fmt.Sprintf("Vector(%s)", v.Elem) }

// Function is an arrow type over zero or more parameter types to a single
// result type.
type Function struct {
	Params []Type
	Result Type
}

func (Function) isType() {}

func (f Function) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("(%s -> %s)", strings.Join(parts, ", "), f.Result)
}

// Var is an unresolved type variable created by the solver during
// inference. Solver.Prune may return one while inference is still running;
// Solver.Resolve never does.
type Var struct {
	id int
}

func (Var) isType() {}
func (v Var) String() string { return fmt.Sprintf("t%d", v.id) }
