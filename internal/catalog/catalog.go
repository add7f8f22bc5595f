// Package catalog maps MMS column names to their SQLite storage type.
//
// The catalog is static configuration: a CUE document embedded in the
// binary (catalog.cue) and validated against the #Type disjunction when
// loaded. A different document can be supplied with Parse or LoadFile.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/nemhist/internal/ir"
)

//go:embed catalog.cue
var defaultCatalog []byte

// ColumnType is a primitive storage type.
type ColumnType string

const (
	Text ColumnType = "TEXT"
	Real ColumnType = "REAL"
)

// Catalog is an immutable column → type mapping.
type Catalog struct {
	types map[string]ColumnType
}

// New creates a catalog from an explicit mapping.
func New(types map[string]ColumnType) (*Catalog, error) {
	c := &Catalog{types: make(map[string]ColumnType, len(types))}
	for col, typ := range types {
		if typ != Text && typ != Real {
			return nil, fmt.Errorf("catalog: column %s has unsupported type %q", col, typ)
		}
		c.types[col] = typ
	}
	return c, nil
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse("catalog.cue", defaultCatalog)
}

// MustDefault is Default for program initialization and tests.
// The embedded document is validated by tests, so a panic here is a build defect.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// LoadFile reads a catalog from a CUE file.
func LoadFile(path string) (*Catalog, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(path, src)
}

// Parse compiles a CUE catalog document. The document must define a
// "columns" struct whose fields are concrete "TEXT" or "REAL" strings.
func Parse(filename string, src []byte) (*Catalog, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile catalog: %w", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}

	columnsVal := v.LookupPath(cue.ParsePath("columns"))
	if !columnsVal.Exists() {
		return nil, fmt.Errorf("catalog %s: columns is required", filename)
	}

	iter, err := columnsVal.Fields()
	if err != nil {
		return nil, fmt.Errorf("iterate catalog columns: %w", err)
	}

	types := make(map[string]ColumnType)
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, fmt.Errorf("catalog column %s: %w", iter.Label(), err)
		}
		types[iter.Label()] = ColumnType(s)
	}

	return New(types)
}

// Lookup returns a column's type or an UNKNOWN_COLUMN error.
func (c *Catalog) Lookup(column string) (ColumnType, error) {
	typ, ok := c.types[column]
	if !ok {
		return "", ir.NewUnknownColumn("", column, "not in schema catalog")
	}
	return typ, nil
}

// Has reports whether the column is catalogued.
func (c *Catalog) Has(column string) bool {
	_, ok := c.types[column]
	return ok
}

// Columns returns all catalogued column names, sorted.
func (c *Catalog) Columns() []string {
	cols := make([]string, 0, len(c.types))
	for col := range c.types {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// Len returns the number of catalogued columns.
func (c *Catalog) Len() int {
	return len(c.types)
}
