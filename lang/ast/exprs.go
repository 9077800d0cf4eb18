package ast

import (
	"github.com/openSVM/eshkol/lang/intern"
	"github.com/openSVM/eshkol/lang/token"
	"github.com/openSVM/eshkol/lang/types"
)

// Program is the root node: the ordered top-level sequence of a compilation
// unit.
type Program struct {
	base
	Body []Node
}

func (n *Program) Walk(v Visitor) {
	for _, c := range n.Body {
		Walk(v, c)
	}
}

// NewProgram allocates a Program node.
func NewProgram(id NodeID, span token.Span, body []Node) *Program {
	return &Program{base: base{id, span}, Body: body}
}

// IntegerLiteral is a signed 64-bit integer constant.
type IntegerLiteral struct {
	base
	Value int64
}

func (n *IntegerLiteral) Walk(Visitor) {}

func NewIntegerLiteral(id NodeID, span token.Span, v int64) *IntegerLiteral {
	return &IntegerLiteral{base{id, span}, v}
}

// FloatLiteral is a 64-bit floating point constant.
type FloatLiteral struct {
	base
	Value float64
}

func (n *FloatLiteral) Walk(Visitor) {}

func NewFloatLiteral(id NodeID, span token.Span, v float64) *FloatLiteral {
	return &FloatLiteral{base{id, span}, v}
}

// BoolLiteral is a boolean constant.
type BoolLiteral struct {
	base
	Value bool
}

func (n *BoolLiteral) Walk(Visitor) {}

func NewBoolLiteral(id NodeID, span token.Span, v bool) *BoolLiteral {
	return &BoolLiteral{base{id, span}, v}
}

// StringLiteral is a string constant, held as an interned id. The field is
// named StrID, not ID, so it does not shadow base's promoted ID() method
// (the node's own NodeID).
type StringLiteral struct {
	base
	StrID intern.ID
}

func (n *StringLiteral) Walk(Visitor) {}

func NewStringLiteral(id NodeID, span token.Span, strID intern.ID) *StringLiteral {
	return &StringLiteral{base{id, span}, strID}
}

// CharLiteral is a single Unicode code point.
type CharLiteral struct {
	base
	Value rune
}

func (n *CharLiteral) Walk(Visitor) {}

func NewCharLiteral(id NodeID, span token.Span, v rune) *CharLiteral {
	return &CharLiteral{base{id, span}, v}
}

// Identifier is a reference to a name, resolved later to a binding id by
// the resolver (in a side table — see lang/resolver — never as a field
// here, to keep this package free of a dependency on resolver).
type Identifier struct {
	base
	Name intern.ID
}

func (n *Identifier) Walk(Visitor) {}

func NewIdentifier(id NodeID, span token.Span, name intern.ID) *Identifier {
	return &Identifier{base{id, span}, name}
}

// Param is a lambda or let-binding parameter: a name plus an optional type
// annotation (nil when unannotated).
type Param struct {
	Name       intern.ID
	Annotation types.Type
	Span       token.Span
}

// Lambda is an anonymous function: a parameter list, an optional return
// annotation, and a body.
type Lambda struct {
	base
	Params           []Param
	ReturnAnnotation types.Type // nil if unannotated
	Body             []Node
}

func (n *Lambda) Walk(v Visitor) {
	for _, b := range n.Body {
		Walk(v, b)
	}
}

func NewLambda(id NodeID, span token.Span, params []Param, ret types.Type, body []Node) *Lambda {
	return &Lambda{base: base{id, span}, Params: params, ReturnAnnotation: ret, Body: body}
}

// Define binds Name to Value. The parser expands the "(define (name
// params…) body…)" sugar into a plain Define whose Value is a *Lambda
// before this node is ever constructed, so this variant only ever sees the
// plain two-field shape.
type Define struct {
	base
	Name  intern.ID
	Value Node
}

func (n *Define) Walk(v Visitor) {
	Walk(v, n.Value)
}

func NewDefine(id NodeID, span token.Span, name intern.ID, value Node) *Define {
	return &Define{base{id, span}, name, value}
}

// If is a conditional. Alternate is nil when the form omits it ("unspecified").
type If struct {
	base
	Test       Node
	Consequent Node
	Alternate  Node // nil if omitted
}

func (n *If) Walk(v Visitor) {
	Walk(v, n.Test)
	Walk(v, n.Consequent)
	if n.Alternate != nil {
		Walk(v, n.Alternate)
	}
}

func NewIf(id NodeID, span token.Span, test, cons, alt Node) *If {
	return &If{base: base{id, span}, Test: test, Consequent: cons, Alternate: alt}
}

// LetKind distinguishes let, let*, and letrec: they share binding and body
// shape and differ only in scoping/initialization order, handled by the
// resolver (§4.3), not by having three separate node types.
type LetKind int

const (
	LetPlain LetKind = iota
	LetStar
	LetRec
)

func (k LetKind) String() string {
	switch k {
	case LetPlain:
		return "let"
	case LetStar:
		return "let*"
	case LetRec:
		return "letrec"
	default:
		return "let?"
	}
}

// LetBinding is one (name, annotation?, value) entry of a let/let*/letrec
// form.
type LetBinding struct {
	Name       intern.ID
	Annotation types.Type // nil if unannotated
	Value      Node
	Span       token.Span
}

// LetForm is let, let*, or letrec, discriminated by Kind.
type LetForm struct {
	base
	Kind     LetKind
	Bindings []LetBinding
	Body     []Node
}

func (n *LetForm) Walk(v Visitor) {
	for _, b := range n.Bindings {
		Walk(v, b.Value)
	}
	for _, b := range n.Body {
		Walk(v, b)
	}
}

func NewLetForm(id NodeID, span token.Span, kind LetKind, bindings []LetBinding, body []Node) *LetForm {
	return &LetForm{base: base{id, span}, Kind: kind, Bindings: bindings, Body: body}
}

// Set is "(set! target value)".
type Set struct {
	base
	Target *Identifier
	Value  Node
}

func (n *Set) Walk(v Visitor) {
	Walk(v, n.Target)
	Walk(v, n.Value)
}

func NewSet(id NodeID, span token.Span, target *Identifier, value Node) *Set {
	return &Set{base: base{id, span}, Target: target, Value: value}
}

// Begin is an ordered sequence of expressions evaluated for effect, the
// last for value.
type Begin struct {
	base
	Exprs []Node
}

func (n *Begin) Walk(v Visitor) {
	for _, e := range n.Exprs {
		Walk(v, e)
	}
}

func NewBegin(id NodeID, span token.Span, exprs []Node) *Begin {
	return &Begin{base: base{id, span}, Exprs: exprs}
}

// Quote wraps a quoted Datum: data, not an expression tree. Symbols inside
// Datum never resolve to bindings.
type Quote struct {
	base
	Datum Datum
}

func (n *Quote) Walk(Visitor) {}

func NewQuote(id NodeID, span token.Span, d Datum) *Quote {
	return &Quote{base{id, span}, d}
}

// Quasiquote wraps a template that may contain Unquote/UnquoteSplice
// escapes. It is lexed and parsed but always rejected with UnsupportedForm
// at inference/codegen time: unquote splicing into arbitrary positions of
// a quoted datum has no defined lowering to a fixed C value yet.
type Quasiquote struct {
	base
	Template Datum
}

func (n *Quasiquote) Walk(Visitor) {}

func NewQuasiquote(id NodeID, span token.Span, t Datum) *Quasiquote {
	return &Quasiquote{base{id, span}, t}
}

// And is "(and e…)", short-circuiting: zero arity is true.
type And struct {
	base
	Operands []Node
}

func (n *And) Walk(v Visitor) {
	for _, o := range n.Operands {
		Walk(v, o)
	}
}

func NewAnd(id NodeID, span token.Span, operands []Node) *And {
	return &And{base: base{id, span}, Operands: operands}
}

// Or is "(or e…)", short-circuiting: zero arity is false.
type Or struct {
	base
	Operands []Node
}

func (n *Or) Walk(v Visitor) {
	for _, o := range n.Operands {
		Walk(v, o)
	}
}

func NewOr(id NodeID, span token.Span, operands []Node) *Or {
	return &Or{base: base{id, span}, Operands: operands}
}

// Call is function application: callee applied to positional arguments.
type Call struct {
	base
	Callee Node
	Args   []Node
}

func (n *Call) Walk(v Visitor) {
	Walk(v, n.Callee)
	for _, a := range n.Args {
		Walk(v, a)
	}
}

func NewCall(id NodeID, span token.Span, callee Node, args []Node) *Call {
	return &Call{base: base{id, span}, Callee: callee, Args: args}
}

// TypeDeclaration is a standalone "(: name (-> arg-types… ret-type))" form,
// attached by name to a later Define by the inferencer.
type TypeDeclaration struct {
	base
	Name       intern.ID
	Annotation types.Function
}

func (n *TypeDeclaration) Walk(Visitor) {}

func NewTypeDeclaration(id NodeID, span token.Span, name intern.ID, fn types.Function) *TypeDeclaration {
	return &TypeDeclaration{base{id, span}, name, fn}
}

// Erroneous is the sentinel node substituted wherever a parse failure
// occurred; it poisons every ancestor up to the enclosing top-level form
// (an ancestor containing an Erroneous child is not, itself, additionally
// wrapped — each pass simply treats any subtree containing one as already
// diagnosed and skips re-reporting it).
type Erroneous struct {
	base
	Reason string
}

func (n *Erroneous) Walk(Visitor) {}

func NewErroneous(id NodeID, span token.Span, reason string) *Erroneous {
	return &Erroneous{base{id, span}, reason}
}
