package snapshot

import (
	"errors"
	"fmt"

	"github.com/roach88/nemhist/internal/queryir"
	"github.com/roach88/nemhist/internal/store"
)

// ErrUnknownTable is returned for a table name the registry does not hold.
var ErrUnknownTable = errors.New("unknown table")

// Entry binds one table to how it is ingested and how it is resolved.
type Entry struct {
	Def        store.TableDef
	Discipline store.Discipline
	Strategy   queryir.Strategy
}

// Registry is an ordered, validated set of entries.
type Registry struct {
	entries []Entry
	index   map[string]int
}

// NewRegistry validates entries and indexes them by table name.
//
// Every table definition must be valid, names must be unique, and every
// strategy must only name columns of its own table or of other registered
// tables.
func NewRegistry(entries ...Entry) (*Registry, error) {
	r := &Registry{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if err := e.Def.Validate(); err != nil {
			return nil, fmt.Errorf("registry: %w", err)
		}
		if _, dup := r.index[e.Def.Name]; dup {
			return nil, fmt.Errorf("registry: table %s registered twice", e.Def.Name)
		}
		if e.Discipline != store.Replacing && e.Discipline != store.Appending {
			return nil, fmt.Errorf("registry: table %s: unknown discipline %q", e.Def.Name, e.Discipline)
		}
		r.index[e.Def.Name] = len(r.entries)
		r.entries = append(r.entries, e)
	}

	lookup := func(table string) ([]string, bool) {
		e, ok := r.Lookup(table)
		if !ok {
			return nil, false
		}
		return e.Def.Columns, true
	}
	for _, e := range r.entries {
		if err := queryir.Validate(e.Strategy, e.Def.Columns, lookup); err != nil {
			return nil, fmt.Errorf("registry: table %s: %w", e.Def.Name, err)
		}
	}
	return r, nil
}

// Lookup returns the entry for a table.
func (r *Registry) Lookup(table string) (Entry, bool) {
	i, ok := r.index[table]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Entries returns the entries in registration order.
func (r *Registry) Entries() []Entry {
	return append([]Entry(nil), r.entries...)
}

// Names returns the table names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Def.Name
	}
	return names
}
