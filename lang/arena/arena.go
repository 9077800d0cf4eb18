// Package arena provides the single allocation region a compilation unit's
// AST, bindings, scopes and types live in. It does not manage raw memory
// (Go's runtime already does that); what it provides is a lifecycle
// contract: every core-owned id is minted from one arena, and closing that
// arena invalidates further minting, so a second compilation can never
// accidentally share state with a previous one.
package arena

import (
	"fmt"

	"github.com/google/uuid"
)

// Arena owns the node-id sequence for one compilation unit.
type Arena struct {
	// ID uniquely tags this compilation for cross-referencing diagnostics and
	// debug dumps against a specific run, useful once several compilations'
	// logs are interleaved (e.g. a build running several files concurrently
	// at a layer above this package, which is itself single-threaded).
	ID uuid.UUID

	nextNode int
	closed   bool
}

// New creates a fresh, open Arena.
func New() *Arena {
	return &Arena{ID: uuid.New(), nextNode: 0}
}

// NewNode mints the next node id. It panics if the arena has been closed:
// allocating after Close is a programming error in the core, never a
// user-triggerable one.
func (a *Arena) NewNode() int {
	if a.closed {
		panic(fmt.Sprintf("arena %s: NewNode after Close", a.ID))
	}
	a.nextNode++
	return a.nextNode
}

// Len returns the number of node ids minted so far.
func (a *Arena) Len() int { return a.nextNode }

// Closed reports whether Close has been called.
func (a *Arena) Closed() bool { return a.closed }

// Close releases the arena. It is idempotent, so callers can safely defer
// it immediately after New regardless of which pipeline stage panics.
func (a *Arena) Close() {
	a.closed = true
}
