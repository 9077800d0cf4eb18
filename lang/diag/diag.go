// Package diag implements the diagnostic sink the compiler's passes report
// into: a growable list of severity-tagged messages with source spans,
// printable with optional terminal coloring, across five severities
// (debug, verbose, info, warning, error) instead of a single error kind.
package diag

import (
	"fmt"
	"io"
	"sort"

	"github.com/mattn/go-isatty"

	"github.com/openSVM/eshkol/lang/token"
)

// Severity ranks a Diagnostic from least to most urgent.
type Severity int

const (
	Debug Severity = iota
	Verbose
	Info
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Debug:
		return "debug"
	case Verbose:
		return "verbose"
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// ansiColor returns the terminal color escape for a severity, or "" if none.
func (s Severity) ansiColor() string {
	switch s {
	case Warning:
		return "\x1b[33m" // yellow
	case Error:
		return "\x1b[31m" // red
	default:
		return ""
	}
}

// Diagnostic is one reported message.
type Diagnostic struct {
	Severity Severity
	Message  string
	Pos      token.Position
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Message)
}

// Sink accumulates diagnostics produced by one compilation. Every pass in
// the pipeline shares the same Sink instance and appends to it; each pass
// derives its returned error from it via Sink.Err.
type Sink struct {
	MinSeverity Severity // diagnostics below this severity are dropped silently
	items       []Diagnostic
}

// NewSink creates a Sink that records every severity by default.
func NewSink() *Sink {
	return &Sink{MinSeverity: Debug}
}

// Add records a diagnostic at pos with the given severity, unless it falls
// below MinSeverity.
func (s *Sink) Add(sev Severity, pos token.Position, format string, args ...any) {
	if sev < s.MinSeverity {
		return
	}
	s.items = append(s.items, Diagnostic{Severity: sev, Message: fmt.Sprintf(format, args...), Pos: pos})
}

// Diagnostics returns the accumulated diagnostics in report order.
func (s *Sink) Diagnostics() []Diagnostic { return s.items }

// HasErrors reports whether any Error-severity diagnostic was recorded.
func (s *Sink) HasErrors() bool {
	for _, d := range s.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Sort orders diagnostics by filename, then line, then column, stable
// otherwise (so diagnostics from the same pos keep their report order).
func (s *Sink) Sort() {
	sort.SliceStable(s.items, func(i, j int) bool {
		a, b := s.items[i].Pos, s.items[j].Pos
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

// Err returns an *ErrorList wrapping every Error-severity diagnostic, or nil
// if there are none. Every pass in the pipeline returns exactly this shape
// of error, so callers can always type-assert rather than guess.
func (s *Sink) Err() error {
	var el ErrorList
	for _, d := range s.items {
		if d.Severity == Error {
			el = append(el, d)
		}
	}
	if len(el) == 0 {
		return nil
	}
	return &el
}

// ErrorList is a non-empty slice of error-severity diagnostics.
type ErrorList []Diagnostic

func (el ErrorList) Error() string {
	switch len(el) {
	case 0:
		return "no errors"
	case 1:
		return el[0].String()
	default:
		return fmt.Sprintf("%s (and %d more error(s))", el[0], len(el)-1)
	}
}

// Fprint renders every diagnostic in s to w, one per line, coloring the
// severity label when w is a terminal (detected via go-isatty, mirroring
// the pattern used for terminal-aware CLI output in the reference corpus).
func (s *Sink) Fprint(w io.Writer) {
	color := false
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	for _, d := range s.items {
		if !color {
			fmt.Fprintln(w, d.String())
			continue
		}
		fmt.Fprintf(w, "%s: %s%s\x1b[0m: %s\n", d.Pos, d.Severity.ansiColor(), d.Severity, d.Message)
	}
}
