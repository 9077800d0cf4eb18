// Package ast defines the untyped abstract syntax tree produced by the
// parser: a tagged variant per node kind, each carrying a stable node id
// and a source span.
package ast

import (
	"github.com/openSVM/eshkol/lang/token"
)

// NodeID is a dense, monotonically increasing identifier minted by the
// arena as nodes are allocated.
type NodeID int

// Node is implemented by every AST variant.
type Node interface {
	// ID returns the node's stable identifier.
	ID() NodeID

	// Span returns the node's source location.
	Span() token.Span

	// Walk visits this node's direct children, in evaluation order, as part
	// of the Visitor pattern implemented by Walk.
	Walk(v Visitor)
}

// base is embedded by every concrete Node to provide its id and span.
type base struct {
	NodeIDVal NodeID
	SpanVal   token.Span
}

func (b base) ID() NodeID      { return b.NodeIDVal }
func (b base) Span() token.Span { return b.SpanVal }

// VisitDirection indicates whether a call to Visit enters or exits a node.
type VisitDirection int

const (
	VisitEnter VisitDirection = iota
	VisitExit
)

// Visitor is called for each node participating in a Walk. Returning a nil
// Visitor from Visit skips that node's children.
type Visitor interface {
	Visit(n Node, dir VisitDirection) (w Visitor)
}

// VisitorFunc adapts a plain func to the Visitor interface, entry-only (it
// is never called on VisitExit).
type VisitorFunc func(n Node) Visitor

func (f VisitorFunc) Visit(n Node, dir VisitDirection) Visitor {
	if dir == VisitExit {
		return nil
	}
	return f(n)
}

// Walk visits node and its descendants with v, entering and exiting each
// node in turn.
func Walk(v Visitor, node Node) {
	if node == nil {
		return
	}
	if v = v.Visit(node, VisitEnter); v == nil {
		return
	}
	node.Walk(v)
	v.Visit(node, VisitExit)
}

// Inspect walks node and its descendants, calling fn on entry to each node.
// Returning false from fn prunes that node's subtree.
func Inspect(node Node, fn func(Node) bool) {
	var v VisitorFunc
	v = func(n Node) Visitor {
		if !fn(n) {
			return nil
		}
		return v
	}
	Walk(v, node)
}
