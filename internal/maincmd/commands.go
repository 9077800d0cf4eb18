package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/openSVM/eshkol/lang/diag"
)

// severityArg derives the diagnostic sink's minimum severity from the
// -V/--verbose and -d/--debug flags: --debug implies --verbose, threaded
// the same way a WithComments-style flag gates an orthogonal parser mode.
func (c *Cmd) severityArg() diag.Severity {
	switch {
	case c.Debug:
		return diag.Debug
	case c.Verbose:
		return diag.Verbose
	default:
		return diag.Info
	}
}

// Lex runs the lexer stage and prints the resulting token stream.
func (c *Cmd) Lex(ctx context.Context, stdio mainer.Stdio, args []string) error {
	p := newPipeline(c.severityArg())
	defer p.close()
	if err := p.readSource(args[0]); err != nil {
		return err
	}
	return runLex(stdio, p)
}

// Parse runs the lexer and parser and prints the resulting AST.
func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	p := newPipeline(c.severityArg())
	defer p.close()
	if err := p.readSource(args[0]); err != nil {
		return err
	}
	prog, err := runParse(stdio, p)
	dumpProgram(stdio.Stdout, prog)
	p.printDiagnostics(stdio)
	return err
}

// Resolve runs the pipeline through binding resolution and prints the AST
// alongside resolution diagnostics.
func (c *Cmd) Resolve(ctx context.Context, stdio mainer.Stdio, args []string) error {
	p := newPipeline(c.severityArg())
	defer p.close()
	if err := p.readSource(args[0]); err != nil {
		return err
	}
	prog, err := runParse(stdio, p)
	if err != nil {
		p.printDiagnostics(stdio)
		return err
	}
	_, err = runResolve(prog, p)
	dumpProgram(stdio.Stdout, prog)
	p.printDiagnostics(stdio)
	return err
}

// Infer runs the pipeline through type inference and prints the AST
// alongside inference diagnostics.
func (c *Cmd) Infer(ctx context.Context, stdio mainer.Stdio, args []string) error {
	p := newPipeline(c.severityArg())
	defer p.close()
	if err := p.readSource(args[0]); err != nil {
		return err
	}
	prog, err := runParse(stdio, p)
	if err != nil {
		p.printDiagnostics(stdio)
		return err
	}
	res, err := runResolve(prog, p)
	if err != nil {
		p.printDiagnostics(stdio)
		return err
	}
	_, err = runInfer(prog, res, p)
	dumpProgram(stdio.Stdout, prog)
	p.printDiagnostics(stdio)
	return err
}

// Emit runs the full pipeline and writes the generated C to args[1], or to
// stdout when no output path is given ("<input> [output.c]").
func (c *Cmd) Emit(ctx context.Context, stdio mainer.Stdio, args []string) error {
	p := newPipeline(c.severityArg())
	defer p.close()
	if err := p.readSource(args[0]); err != nil {
		return err
	}
	prog, err := runParse(stdio, p)
	if err != nil {
		p.printDiagnostics(stdio)
		return err
	}
	res, err := runResolve(prog, p)
	if err != nil {
		p.printDiagnostics(stdio)
		return err
	}
	types, err := runInfer(prog, res, p)
	if err != nil {
		p.printDiagnostics(stdio)
		return err
	}
	out, err := runEmit(prog, res, types, p)
	p.printDiagnostics(stdio)
	if err != nil {
		return err
	}

	if len(args) < 2 {
		fmt.Fprint(stdio.Stdout, out)
		return nil
	}
	// Output file descriptors are opened at code-generation start and
	// closed at end even on failure; here generation has already
	// succeeded, so a plain WriteFile closing on return suffices.
	if err := os.WriteFile(args[1], []byte(out), 0644); err != nil {
		return fmt.Errorf("%s: %w", args[1], err)
	}
	return nil
}

// Build emits C then would invoke the host C compiler to produce and run an
// executable: without an output path, generate C to a temporary alongside
// the input and invoke the host C compiler. That step is out of this
// repository's scope; Build always fails with ErrNotImplemented so callers
// get a clear, documented seam rather than a silent no-op.
func (c *Cmd) Build(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ErrNotImplemented
}

