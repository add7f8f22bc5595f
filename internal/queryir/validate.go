package queryir

import (
	"fmt"
	"slices"
)

// Columns resolves a table name to its declared columns.
// Validate uses it to check columns the strategy reads from other tables.
type Columns func(table string) ([]string, bool)

// Validate checks that a strategy only names columns its tables declare.
//
// columns are the bound table's declared columns; lookup resolves referenced
// tables (reference and usage tables). Validate is a pure function with no
// side effects.
func Validate(s Strategy, columns []string, lookup Columns) error {
	has := func(cols []string, c string) bool { return slices.Contains(cols, c) }

	switch st := s.(type) {
	case nil:
		return fmt.Errorf("nil strategy")

	case ExactTimestamp:
		if !has(columns, st.Column) {
			return fmt.Errorf("%s: column %s not declared", st.Name(), st.Column)
		}

	case MarketDay:
		if !has(columns, st.Column) {
			return fmt.Errorf("%s: column %s not declared", st.Name(), st.Column)
		}

	case ValidityRange:
		for _, c := range []string{st.Start, st.End} {
			if !has(columns, c) {
				return fmt.Errorf("%s: column %s not declared", st.Name(), c)
			}
		}

	case ReferentialMatch:
		if len(st.On) == 0 {
			return fmt.Errorf("%s: at least one column pair is required", st.Name())
		}
		refCols, ok := lookup(st.Reference)
		if !ok {
			return fmt.Errorf("%s: reference table %s not registered", st.Name(), st.Reference)
		}
		if !has(refCols, st.ReferenceTime) {
			return fmt.Errorf("%s: reference column %s.%s not declared", st.Name(), st.Reference, st.ReferenceTime)
		}
		for _, p := range st.On {
			if !has(columns, p.Column) {
				return fmt.Errorf("%s: column %s not declared", st.Name(), p.Column)
			}
			if !has(refCols, p.RefColumn) {
				return fmt.Errorf("%s: reference column %s.%s not declared", st.Name(), st.Reference, p.RefColumn)
			}
		}

	case EffectiveVersion:
		if len(st.Keys) == 0 {
			return fmt.Errorf("%s: at least one key column is required", st.Name())
		}
		for _, c := range append([]string{EffectiveDateColumn, VersionColumn}, st.Keys...) {
			if !has(columns, c) {
				return fmt.Errorf("%s: column %s not declared", st.Name(), c)
			}
		}
		if st.Usage != nil {
			usageCols, ok := lookup(st.Usage.Table)
			if !ok {
				return fmt.Errorf("%s: usage table %s not registered", st.Name(), st.Usage.Table)
			}
			for _, c := range append([]string{st.Usage.Time}, st.Keys...) {
				if !has(usageCols, c) {
					return fmt.Errorf("%s: usage column %s.%s not declared", st.Name(), st.Usage.Table, c)
				}
			}
		}

	case NoFilter:
		// Nothing to check.

	default:
		return fmt.Errorf("unsupported strategy type: %T", s)
	}

	return nil
}
