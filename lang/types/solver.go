package types

import "fmt"

// Solver implements union-find constraint solving over Type values. It is
// grounded on the classic union-find algorithm with path compression
// (unions are not weighted) rather than on any one example repo (none of the retrieved repos carry a
// type inferencer); the type-variable vocabulary — fresh Var per
// unannotated binding, Unify folding constraints left to right — follows
// the parser/type-annotation handling sketched in the ailang reference
// material pulled into the pack.
type Solver struct {
	// parent[i] == i means i is its own representative. bound[i], when
	// non-nil, is the concrete (non-Var) type i's class has been unified
	// with, if any.
	parent []int
	bound  []Type
}

// NewSolver creates an empty Solver.
func NewSolver() *Solver {
	return &Solver{}
}

// NewVar allocates a fresh, unbound type variable.
func (s *Solver) NewVar() Var {
	id := len(s.parent)
	s.parent = append(s.parent, id)
	s.bound = append(s.bound, nil)
	return Var{id: id}
}

// find returns the representative id of v's class, compressing the path.
func (s *Solver) find(id int) int {
	for s.parent[id] != id {
		s.parent[id] = s.parent[s.parent[id]]
		id = s.parent[id]
	}
	return id
}

// TypeMismatch reports that two concrete types could not be unified.
type TypeMismatch struct {
	Left, Right Type
}

func (e *TypeMismatch) Error() string {
	return fmt.Sprintf("cannot unify %s with %s", e.Left, e.Right)
}

// OccursError reports that a type variable would have to contain itself.
type OccursError struct {
	V Var
	T Type
}

func (e *OccursError) Error() string {
	return fmt.Sprintf("%s occurs in %s", e.V, e.T)
}

// Unify constrains a and b to denote the same type, returning an error if
// they are structurally incompatible. Unifying with Unknown always
// succeeds and never binds a type variable: a var left unconstrained by
// every other use site stays free so a later widening pass can turn it
// into Unknown rather than prematurely committing it.
func (s *Solver) Unify(a, b Type) error {
	a, b = s.prune(a), s.prune(b)

	if _, ok := a.(unknownType); ok {
		return nil
	}
	if _, ok := b.(unknownType); ok {
		return nil
	}

	av, aIsVar := a.(Var)
	bv, bIsVar := b.(Var)

	switch {
	case aIsVar && bIsVar:
		s.union(av, bv)
		return nil
	case aIsVar:
		return s.bindVar(av, b)
	case bIsVar:
		return s.bindVar(bv, a)
	}

	return s.unifyConcrete(a, b)
}

// Prune resolves t one step toward its solved form: if t is a Var whose
// class has been bound to a concrete type, that type is returned; otherwise
// t's unbound representative Var is returned as-is. Unlike Resolve, Prune
// never widens an unbound Var to Unknown — callers that need to inspect a
// type while inference constraints are still being gathered (arithmetic's
// Int/Float promotion, for instance) use this instead of Resolve so an
// operand that later turns out to be constrained elsewhere isn't prematurely
// forced to Unknown.
func (s *Solver) Prune(t Type) Type { return s.prune(t) }

// prune follows a Var to its class representative and returns the class's
// bound concrete type if one exists, otherwise the representative Var
// itself.
func (s *Solver) prune(t Type) Type {
	v, ok := t.(Var)
	if !ok {
		return t
	}
	r := s.find(v.id)
	if bt := s.bound[r]; bt != nil {
		return bt
	}
	return Var{id: r}
}

func (s *Solver) union(a, b Var) {
	ra, rb := s.find(a.id), s.find(b.id)
	if ra == rb {
		return
	}
	// Prefer keeping a class's existing bound type, if either side has one.
	if s.bound[ra] == nil {
		s.bound[ra] = s.bound[rb]
	}
	s.parent[rb] = ra
}

func (s *Solver) bindVar(v Var, t Type) error {
	if occurs(v, t, s) {
		return &OccursError{V: v, T: t}
	}
	r := s.find(v.id)
	if existing := s.bound[r]; existing != nil {
		return s.unifyConcrete(existing, t)
	}
	s.bound[r] = t
	return nil
}

func occurs(v Var, t Type, s *Solver) bool {
	t = s.prune(t)
	switch tt := t.(type) {
	case Var:
		return tt.id == s.find(v.id)
	case Pair:
		return occurs(v, tt.Head, s) || occurs(v, tt.Tail, s)
	case Vector:
		return occurs(v, tt.Elem, s)
	case Function:
		for _, p := range tt.Params {
			if occurs(v, p, s) {
				return true
			}
		}
		return occurs(v, tt.Result, s)
	default:
		return false
	}
}

// unifyConcrete unifies two non-Var, non-Unknown types structurally.
func (s *Solver) unifyConcrete(a, b Type) error {
	switch at := a.(type) {
	case Pair:
		bt, ok := b.(Pair)
		if !ok {
			return &TypeMismatch{Left: a, Right: b}
		}
		if err := s.Unify(at.Head, bt.Head); err != nil {
			return err
		}
		return s.Unify(at.Tail, bt.Tail)
	case Vector:
		bt, ok := b.(Vector)
		if !ok {
			return &TypeMismatch{Left: a, Right: b}
		}
		return s.Unify(at.Elem, bt.Elem)
	case Function:
		bt, ok := b.(Function)
		if !ok || len(at.Params) != len(bt.Params) {
			return &TypeMismatch{Left: a, Right: b}
		}
		for i := range at.Params {
			if err := s.Unify(at.Params[i], bt.Params[i]); err != nil {
				return err
			}
		}
		return s.Unify(at.Result, bt.Result)
	default:
		if a == b {
			return nil
		}
		return &TypeMismatch{Left: a, Right: b}
	}
}

// Resolve returns t with every reachable Var replaced by its solved
// concrete type, or by Unknown if the class was never bound to anything
// concrete. It recurses into compound types so a partially-solved
// Vector(t3) resolves to e.g. Vector(Float).
func (s *Solver) Resolve(t Type) Type {
	t = s.prune(t)
	switch tt := t.(type) {
	case Var:
		return Unknown
	case Pair:
		return Pair{Head: s.Resolve(tt.Head), Tail: s.Resolve(tt.Tail)}
	case Vector:
		return Vector{Elem: s.Resolve(tt.Elem)}
	case Function:
		params := make([]Type, len(tt.Params))
		for i, p := range tt.Params {
			params[i] = s.Resolve(p)
		}
		return Function{Params: params, Result: s.Resolve(tt.Result)}
	default:
		return t
	}
}
