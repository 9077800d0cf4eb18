package parser

import (
	"github.com/openSVM/eshkol/lang/token"
	"github.com/openSVM/eshkol/lang/types"
)

// groundTypeNames maps the source-level spelling of each ground type to its
// types.Type singleton.
var groundTypeNames = map[string]types.Type{
	"Integer": types.Int,
	"Float":   types.Float_,
	"Bool":    types.Bool,
	"String":  types.Str,
	"Char":    types.Char_,
	"Symbol":  types.Sym,
	"Void":    types.Void,
	"Unknown": types.Unknown,
}

// parseTypeAnnotation parses one type annotation: a bare ground-type name,
// "(Pair t t)", "(Vector t)", or "(-> arg-types… ret-type)".
func (p *parser) parseTypeAnnotation() types.Type {
	if p.tok == token.IDENTIFIER {
		name := p.val.Raw
		if t, ok := groundTypeNames[name]; ok {
			p.advance()
			return t
		}
		p.errorf("unknown type name %q", name)
		p.advance()
		return types.Unknown
	}

	if p.tok != token.LPAREN {
		p.errorf("expected a type annotation, got %s", p.tok.GoString())
		panic(errPanicMode{})
	}
	p.advance()

	switch {
	case p.tok == token.ARROW:
		p.advance()
		var parts []types.Type
		for p.tok != token.RPAREN && p.tok != token.EOF {
			parts = append(parts, p.parseTypeAnnotation())
		}
		p.expect(token.RPAREN)
		if len(parts) == 0 {
			p.errorf("function type requires at least a return type")
			return types.Unknown
		}
		result := parts[len(parts)-1]
		return types.Function{Params: parts[:len(parts)-1], Result: result}

	case p.tok == token.IDENTIFIER && p.val.Raw == "Pair":
		p.advance()
		head := p.parseTypeAnnotation()
		tail := p.parseTypeAnnotation()
		p.expect(token.RPAREN)
		return types.Pair{Head: head, Tail: tail}

	case p.tok == token.IDENTIFIER && p.val.Raw == "Vector":
		p.advance()
		elem := p.parseTypeAnnotation()
		p.expect(token.RPAREN)
		return types.Vector{Elem: elem}

	default:
		p.errorf("unrecognized compound type form")
		panic(errPanicMode{})
	}
}
