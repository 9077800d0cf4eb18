package token

import "fmt"

// Span locates a range of source text: the 1-based line/column of its first
// byte (packed into a Pos), the byte offset of that first byte within the
// file, and the span's length in bytes.
type Span struct {
	Start      Pos
	ByteOffset int
	Length     int
}

// Position is the fully-expanded, file-qualified rendering of a Span, the
// shape diagnostics are printed with.
type Position struct {
	Filename string
	Line     int
	Column   int
}

func (p Position) String() string {
	if p.Line == 0 {
		return p.Filename
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// End returns the byte offset one past the last byte of the span.
func (s Span) End() int {
	return s.ByteOffset + s.Length
}
