package maincmd

import (
	"fmt"
	"io"
	"os"

	"github.com/mna/mainer"

	"github.com/openSVM/eshkol/lang/arena"
	"github.com/openSVM/eshkol/lang/ast"
	"github.com/openSVM/eshkol/lang/codegen"
	"github.com/openSVM/eshkol/lang/diag"
	"github.com/openSVM/eshkol/lang/infer"
	"github.com/openSVM/eshkol/lang/intern"
	"github.com/openSVM/eshkol/lang/lexer"
	"github.com/openSVM/eshkol/lang/parser"
	"github.com/openSVM/eshkol/lang/resolver"
	"github.com/openSVM/eshkol/lang/token"
)

// pipeline owns the per-compilation resources every command shares: a
// fresh arena, interner, and diagnostic sink, released by close once the
// command is done. The diagnostic sink is drained before arena
// destruction.
type pipeline struct {
	arena    *arena.Arena
	interner *intern.Table
	sink     *diag.Sink
	file     *token.File
	src      []byte
}

func newPipeline(minSeverity diag.Severity) *pipeline {
	return &pipeline{
		arena:    arena.New(),
		interner: intern.New(),
		sink:     &diag.Sink{MinSeverity: minSeverity},
	}
}

func (p *pipeline) readSource(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	p.file = token.NewFile(path, len(src))
	p.src = src
	return nil
}

func (p *pipeline) close() { p.arena.Close() }

func (p *pipeline) printDiagnostics(stdio mainer.Stdio) {
	p.sink.Sort()
	p.sink.Fprint(stdio.Stderr)
}

func runLex(stdio mainer.Stdio, p *pipeline) error {
	lx := lexer.New(p.file, p.src, p.sink, p.interner)
	for {
		tok, val := lx.Next()
		pos := p.file.Position(val.Span.ByteOffset)
		fmt.Fprintf(stdio.Stdout, "%s: %s", pos, tok)
		if tok == token.IDENTIFIER || tok == token.STRING {
			fmt.Fprintf(stdio.Stdout, " %q", val.Raw)
		}
		fmt.Fprintln(stdio.Stdout)
		if tok == token.EOF {
			break
		}
	}
	p.printDiagnostics(stdio)
	return p.sink.Err()
}

func runParse(stdio mainer.Stdio, p *pipeline) (*ast.Program, error) {
	prog, _ := parser.ParseProgram(p.arena, p.interner, p.sink, p.file, p.src)
	return prog, p.sink.Err()
}

func runResolve(prog *ast.Program, p *pipeline) (*resolver.Result, error) {
	res, _ := resolver.Resolve(prog, p.interner, p.sink, resolver.DefaultIsPredeclared)
	return res, p.sink.Err()
}

func runInfer(prog *ast.Program, res *resolver.Result, p *pipeline) (*infer.Result, error) {
	types, _ := infer.Infer(prog, res, p.interner, p.sink)
	return types, p.sink.Err()
}

func runEmit(prog *ast.Program, res *resolver.Result, types *infer.Result, p *pipeline) (string, error) {
	out, err := codegen.Generate(prog, res, types, p.interner, p.sink)
	return out, err
}

// dumpProgram renders prog as an indented textual tree: a small,
// dependency-free AST printer, since this language's AST has no
// comment-attachment or block-statement shapes to special-case.
func dumpProgram(w io.Writer, prog *ast.Program) {
	d := &dumper{w: w}
	for _, n := range prog.Body {
		ast.Walk(d, n)
	}
}

type dumper struct {
	w     io.Writer
	depth int
}

func (d *dumper) Visit(n ast.Node, dir ast.VisitDirection) ast.Visitor {
	if dir == ast.VisitExit {
		d.depth--
		return nil
	}
	indent := make([]byte, d.depth*2)
	for i := range indent {
		indent[i] = ' '
	}
	line, col := n.Span().Start.LineCol()
	fmt.Fprintf(d.w, "%s%T @%d:%d\n", indent, n, line, col)
	d.depth++
	return d
}
