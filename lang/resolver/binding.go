package resolver

import (
	"fmt"

	"github.com/openSVM/eshkol/lang/ast"
	"github.com/openSVM/eshkol/lang/intern"
)

// Scope indicates what kind of scope a Binding has. There is no Label
// scope: the source language has no goto.
type Scope uint8

const (
	Undefined   Scope = iota // name is not defined
	Local                    // name is local to its enclosing scope
	Cell                     // name is local but captured by a nested lambda
	Free                     // name is a captured cell of some enclosing lambda
	Predeclared              // name is a builtin/intrinsic provided to every module
	Universal                // reserved for language-level universals (unused presently)
)

var scopeNames = [...]string{
	Undefined:   "undefined",
	Local:       "local",
	Cell:        "cell",
	Free:        "free",
	Predeclared: "predeclared",
	Universal:   "universal",
}

func (s Scope) String() string {
	if int(s) >= len(scopeNames) {
		return fmt.Sprintf("<invalid Scope %d>", s)
	}
	return scopeNames[s]
}

// BindingID uniquely identifies a Binding within one compilation, assigned
// in allocation order.
type BindingID int

// Binding is resolver information about one declaration: a `define` at
// module scope, a `let`/`let*`/`letrec` binding, or a lambda parameter.
type Binding struct {
	ID    BindingID
	Scope Scope
	Name  intern.ID

	// OwnerScope is the scope this binding was introduced in. Nil for
	// Predeclared/Undefined bindings, which belong to no lexical scope.
	OwnerScope *ScopeInfo

	// Index records the position of this binding among the bindings
	// introduced in its OwnerScope, in introduction order. It is
	// meaningless for Predeclared/Universal/Undefined.
	Index int

	// Mutable is set the first time a `set!` targets this binding (it starts
	// false and is never reset — set! marks the binding mutable
	// retroactively, even for uses that lexically precede the set!).
	Mutable bool

	// Captured is true iff some lambda references it and this binding's
	// OwnerScope is a strict ancestor of that lambda's own scope.
	Captured bool

	// DefiningNode is the node that introduced this binding: the Define,
	// LetForm, or Lambda node that owns the name (for a let binding or
	// parameter, its exact position within that node is found via Name).
	DefiningNode ast.Node
}

// Boxed reports whether this binding needs heap-cell indirection at code
// generation time: any binding that is both mutable and captured must
// live in a heap cell shared by every closure that captures it.
func (b *Binding) Boxed() bool { return b.Mutable && b.Captured }

// Function groups the bindings introduced directly within one lambda (or
// the module-level implicit function for top-level defines).
type Function struct {
	// Definition is the *ast.Lambda this Function was built for, or nil for
	// the module-level pseudo-function.
	Definition *ast.Lambda

	Locals   []*Binding // parameters first, then let/letrec-introduced locals
	FreeVars []*Binding // enclosing bindings captured by this function, in reference order
}
