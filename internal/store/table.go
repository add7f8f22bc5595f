package store

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/roach88/nemhist/internal/catalog"
	"github.com/roach88/nemhist/internal/ir"
)

// identPattern restricts table and column names to the MMS naming style.
// Names are interpolated into DDL and queries, so nothing else is accepted.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateIdentifier rejects names that cannot be used as SQL identifiers.
func ValidateIdentifier(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier %q", name)
	}
	return nil
}

// TableDef declares a table: its name, ordered columns and ordered
// primary-key columns (a subset of Columns).
type TableDef struct {
	Name       string
	Columns    []string
	PrimaryKey []string
}

// HasColumn reports whether the table declares the column.
func (d TableDef) HasColumn(column string) bool {
	for _, c := range d.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Validate checks identifiers and that every primary-key column is declared.
func (d TableDef) Validate() error {
	if err := ValidateIdentifier(d.Name); err != nil {
		return fmt.Errorf("table: %w", err)
	}
	if len(d.Columns) == 0 {
		return fmt.Errorf("table %s: no columns declared", d.Name)
	}
	if len(d.PrimaryKey) == 0 {
		return fmt.Errorf("table %s: no primary key declared", d.Name)
	}
	seen := make(map[string]bool, len(d.Columns))
	for _, col := range d.Columns {
		if err := ValidateIdentifier(col); err != nil {
			return fmt.Errorf("table %s: %w", d.Name, err)
		}
		if seen[col] {
			return fmt.Errorf("table %s: column %s declared twice", d.Name, col)
		}
		seen[col] = true
	}
	for _, pk := range d.PrimaryKey {
		if !seen[pk] {
			return ir.NewUnknownColumn(d.Name, pk, "primary key column not declared")
		}
	}
	return nil
}

// createStatement renders CREATE TABLE with catalog types.
func (d TableDef) createStatement(cat *catalog.Catalog) (string, error) {
	defs := make([]string, 0, len(d.Columns))
	for _, col := range d.Columns {
		typ, err := cat.Lookup(col)
		if err != nil {
			return "", ir.NewUnknownColumn(d.Name, col, "not in schema catalog")
		}
		defs = append(defs, fmt.Sprintf("%s %s", col, typ))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s, PRIMARY KEY (%s))",
		d.Name,
		strings.Join(defs, ", "),
		strings.Join(d.PrimaryKey, ", "),
	), nil
}

// DefineTable materializes a table, dropping any existing table of the same
// name. Every column is typed through the catalog; a column the catalog does
// not know fails with UNKNOWN_COLUMN before anything is dropped.
//
// The drop and create run in one transaction.
func (s *Store) DefineTable(ctx context.Context, cat *catalog.Catalog, def TableDef) error {
	if err := def.Validate(); err != nil {
		return fmt.Errorf("define table: %w", err)
	}

	create, err := def.createStatement(cat)
	if err != nil {
		return fmt.Errorf("define table: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("define table %s: begin tx: %w", def.Name, err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+def.Name); err != nil {
		return fmt.Errorf("define table %s: drop: %w", def.Name, err)
	}
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("define table %s: create: %w", def.Name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("define table %s: commit: %w", def.Name, err)
	}

	s.logger.Debug("table defined",
		zap.String("table", def.Name),
		zap.Int("columns", len(def.Columns)))
	return nil
}
