package ast

import (
	"github.com/openSVM/eshkol/lang/intern"
	"github.com/openSVM/eshkol/lang/token"
)

// Datum is quoted data: the restricted subset of shapes a "(quote …)" form
// can produce. It deliberately shares no type with Node:
// a symbol inside quoted data is never resolved to a binding, so giving it
// an Identifier's shape would invite the resolver to walk into it by
// mistake.
type Datum interface {
	Span() token.Span
	isDatum()
}

type datumBase struct {
	SpanVal token.Span
}

func (d datumBase) Span() token.Span { return d.SpanVal }

type IntDatum struct {
	datumBase
	Value int64
}

func (IntDatum) isDatum() {}

type FloatDatum struct {
	datumBase
	Value float64
}

func (FloatDatum) isDatum() {}

type BoolDatum struct {
	datumBase
	Value bool
}

func (BoolDatum) isDatum() {}

type StringDatum struct {
	datumBase
	ID intern.ID
}

func (StringDatum) isDatum() {}

type CharDatum struct {
	datumBase
	Value rune
}

func (CharDatum) isDatum() {}

// SymbolDatum is a bare identifier-shaped atom inside quoted data. Unlike
// Identifier, it is never looked up against a scope.
type SymbolDatum struct {
	datumBase
	Name intern.ID
}

func (SymbolDatum) isDatum() {}

// NilDatum is the empty list, "()".
type NilDatum struct {
	datumBase
}

func (NilDatum) isDatum() {}

// PairDatum is a cons cell; a proper list is a chain of PairDatum ending in
// NilDatum, a dotted pair one ending in anything else.
type PairDatum struct {
	datumBase
	Head Datum
	Tail Datum
}

func (PairDatum) isDatum() {}

// UnquoteDatum and UnquoteSpliceDatum appear only inside a Quasiquote
// template (never inside a plain Quote, which rejects ",", ",@" at parse
// time since they are meaningless outside a template).
type UnquoteDatum struct {
	datumBase
	Expr Node
}

func (UnquoteDatum) isDatum() {}

type UnquoteSpliceDatum struct {
	datumBase
	Expr Node
}

func (UnquoteSpliceDatum) isDatum() {}

// Constructors. Datum variants have no node id (they are data, not tree
// nodes the resolver/inferencer index by id), just a span.

func NewIntDatum(span token.Span, v int64) IntDatum       { return IntDatum{datumBase{span}, v} }
func NewFloatDatum(span token.Span, v float64) FloatDatum { return FloatDatum{datumBase{span}, v} }
func NewBoolDatum(span token.Span, v bool) BoolDatum      { return BoolDatum{datumBase{span}, v} }
func NewStringDatum(span token.Span, id intern.ID) StringDatum {
	return StringDatum{datumBase{span}, id}
}
func NewCharDatum(span token.Span, v rune) CharDatum { return CharDatum{datumBase{span}, v} }
func NewSymbolDatum(span token.Span, name intern.ID) SymbolDatum {
	return SymbolDatum{datumBase{span}, name}
}
func NewNilDatum(span token.Span) NilDatum { return NilDatum{datumBase{span}} }
func NewPairDatum(span token.Span, head, tail Datum) PairDatum {
	return PairDatum{datumBase{span}, head, tail}
}
func NewUnquoteDatum(span token.Span, expr Node) UnquoteDatum {
	return UnquoteDatum{datumBase{span}, expr}
}
func NewUnquoteSpliceDatum(span token.Span, expr Node) UnquoteSpliceDatum {
	return UnquoteSpliceDatum{datumBase{span}, expr}
}
