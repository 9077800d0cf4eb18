// Package intern implements the string interning table: a map from source
// text to a stable integer id, shared read-mostly by every stage of one
// compilation. The forward lookup is backed by github.com/dolthub/swiss, a
// good fit since interning is a pure high-churn string-keyed lookup with
// no ordering requirement.
package intern

import "github.com/dolthub/swiss"

// ID is a stable identifier for an interned string.
type ID uint32

// Table interns strings to stable ids and back.
type Table struct {
	fwd *swiss.Map[string, ID]
	rev []string
}

// New creates an empty Table.
func New() *Table {
	return &Table{fwd: swiss.NewMap[string, ID](64)}
}

// Intern returns the stable id for s, assigning a new one if this is the
// first time s is seen.
func (t *Table) Intern(s string) ID {
	if id, ok := t.fwd.Get(s); ok {
		return id
	}
	id := ID(len(t.rev))
	t.rev = append(t.rev, s)
	t.fwd.Put(s, id)
	return id
}

// Lookup returns the text previously interned as id. It panics if id was
// never returned by Intern on this table.
func (t *Table) Lookup(id ID) string {
	return t.rev[id]
}

// Len returns the number of distinct strings interned so far.
func (t *Table) Len() int { return len(t.rev) }
