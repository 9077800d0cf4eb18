package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/openSVM/eshkol/lang/intern"
)

// RenderDatum re-renders a parsed Datum to its canonical source text. It
// needs the interner that produced the
// source's string/symbol ids to recover their text.
func RenderDatum(d Datum, t *intern.Table) string {
	var b strings.Builder
	renderDatum(&b, d, t)
	return b.String()
}

func renderDatum(b *strings.Builder, d Datum, t *intern.Table) {
	switch v := d.(type) {
	case IntDatum:
		b.WriteString(strconv.FormatInt(v.Value, 10))
	case FloatDatum:
		b.WriteString(strconv.FormatFloat(v.Value, 'g', -1, 64))
	case BoolDatum:
		if v.Value {
			b.WriteString("#t")
		} else {
			b.WriteString("#f")
		}
	case StringDatum:
		fmt.Fprintf(b, "%q", t.Lookup(v.ID))
	case CharDatum:
		b.WriteString(renderChar(v.Value))
	case SymbolDatum:
		b.WriteString(t.Lookup(v.Name))
	case NilDatum:
		b.WriteString("()")
	case PairDatum:
		renderList(b, v, t)
	case UnquoteDatum:
		b.WriteString(",")
	case UnquoteSpliceDatum:
		b.WriteString(",@")
	default:
		b.WriteString("?")
	}
}

func renderChar(r rune) string {
	switch r {
	case ' ':
		return `#\space`
	case '\n':
		return `#\newline`
	case '\t':
		return `#\tab`
	case '\r':
		return `#\return`
	case 0:
		return `#\null`
	default:
		return `#\` + string(r)
	}
}

// renderList prints a PairDatum chain as "(a b c)" for a proper list, or
// "(a b . c)" once the chain ends in something other than NilDatum.
func renderList(b *strings.Builder, p PairDatum, t *intern.Table) {
	b.WriteByte('(')
	renderDatum(b, p.Head, t)
	cur := p.Tail
	for {
		switch v := cur.(type) {
		case NilDatum:
			b.WriteByte(')')
			return
		case PairDatum:
			b.WriteByte(' ')
			renderDatum(b, v.Head, t)
			cur = v.Tail
		default:
			b.WriteString(" . ")
			renderDatum(b, cur, t)
			b.WriteByte(')')
			return
		}
	}
}
