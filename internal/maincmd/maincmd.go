// Package maincmd implements the eshkolc command-line driver: argument
// parsing and command dispatch over the compiler pipeline in lang/*, using
// a mainer.Cmd shape with reflection-based command dispatch (buildCmds)
// over this language's five pipeline stages.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/maloquacious/semver"
	"github.com/mna/mainer"
)

const binName = "eshkolc"

// ErrNotImplemented is returned by Build: invoking the host C compiler to
// produce and run an executable is a documented, unimplemented seam —
// this repository's scope is the semantic pipeline through C emission.
var ErrNotImplemented = errors.New("eshkolc: build: invoking the host C compiler is not implemented by this driver")

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> <input> [output.c]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> <input> [output.c]
       %[1]s -h|--help
       %[1]s -v|--version

Compiler for the eshkol language: lexer, parser, binding resolver, type
inferencer, and C code generator.

The <command> can be one of:
       lex                       Run the lexer and print the resulting
                                  token stream.
       parse                     Run the lexer and parser and print the
                                  resulting abstract syntax tree.
       resolve                   Additionally run the binding resolver and
                                  print resolution information.
       infer                     Additionally run the type inferencer and
                                  print solved types.
       emit                      Run the full pipeline and print (or, with
                                  an output path, write) the generated C.
       build                     Emit C and invoke the host C compiler
                                  (not implemented by this driver).

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       -V --verbose              Enable verbose diagnostics.
       -d --debug                Enable debug diagnostics (implies verbose).

More information on the eshkol project:
       https://github.com/openSVM/eshkol
`, binName)
)

// Cmd holds one invocation's parsed flags and dispatches to the matching
// pipeline-stage method via a reflection-based command table (buildCmds
// below).
type Cmd struct {
	BuildVersion semver.Version

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`
	Verbose bool `flag:"V,verbose"`
	Debug   bool `flag:"d,debug"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string) { c.args = args }

func (c *Cmd) SetFlags(flags map[string]bool) { c.flags = flags }

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := c.args[0]
	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	if len(c.args[1:]) == 0 {
		return fmt.Errorf("%s: an input file must be provided", cmdName)
	}
	if len(c.args[1:]) > 2 {
		return fmt.Errorf("%s: too many arguments", cmdName)
	}

	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s\n", binName, c.BuildVersion.String())
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return mainer.Failure
	}
	return mainer.Success
}

// buildCmds reflects over v's exported methods to find the ones matching
// the (context.Context, mainer.Stdio, []string) error shape, keyed by
// lowercased method name.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
