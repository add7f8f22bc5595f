package ir

import "fmt"

// Record is one row keyed by column name.
type Record map[string]Value

// Text returns the named cell rendered as text ("" when absent or Null).
func (r Record) Text(column string) string {
	return AsString(r[column])
}

// Real returns the named cell as a number (NaN when absent or Null).
func (r Record) Real(column string) float64 {
	return AsFloat(r[column])
}

// RecordSet is an ordered collection of records sharing one column list.
// Columns fixes the output order; every record has a key for each column.
type RecordSet struct {
	Columns []string `json:"columns"`
	Rows    []Record `json:"rows"`
}

// NewRecordSet creates an empty record set with the given columns.
func NewRecordSet(columns ...string) RecordSet {
	return RecordSet{Columns: append([]string(nil), columns...), Rows: []Record{}}
}

// Len returns the number of rows.
func (rs RecordSet) Len() int {
	return len(rs.Rows)
}

// HasColumn reports whether the set declares the column.
func (rs RecordSet) HasColumn(column string) bool {
	for _, c := range rs.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Append adds a row given values in column order.
func (rs *RecordSet) Append(values ...Value) error {
	if len(values) != len(rs.Columns) {
		return fmt.Errorf("append row: got %d values for %d columns", len(values), len(rs.Columns))
	}
	row := make(Record, len(values))
	for i, col := range rs.Columns {
		row[col] = values[i]
	}
	rs.Rows = append(rs.Rows, row)
	return nil
}

// Project returns a copy restricted to the given columns, in that order.
// Returns an UNKNOWN_COLUMN error naming the first column the set lacks.
func (rs RecordSet) Project(columns []string) (RecordSet, error) {
	for _, col := range columns {
		if !rs.HasColumn(col) {
			return RecordSet{}, &Error{
				Code:    CodeUnknownColumn,
				Message: "column missing from record set",
				Column:  col,
			}
		}
	}

	out := RecordSet{Columns: append([]string(nil), columns...), Rows: make([]Record, 0, len(rs.Rows))}
	for _, row := range rs.Rows {
		projected := make(Record, len(columns))
		for _, col := range columns {
			v, ok := row[col]
			if !ok {
				v = Null{}
			}
			projected[col] = v
		}
		out.Rows = append(out.Rows, projected)
	}
	return out, nil
}

// Filter returns a copy holding only the rows keep accepts.
func (rs RecordSet) Filter(keep func(Record) bool) RecordSet {
	out := RecordSet{Columns: append([]string(nil), rs.Columns...), Rows: []Record{}}
	for _, row := range rs.Rows {
		if keep(row) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// Values returns the row's cells in column order.
func (rs RecordSet) Values(row Record) []Value {
	vals := make([]Value, len(rs.Columns))
	for i, col := range rs.Columns {
		v, ok := row[col]
		if !ok {
			v = Null{}
		}
		vals[i] = v
	}
	return vals
}
