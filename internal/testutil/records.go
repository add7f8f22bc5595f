package testutil

import (
	"fmt"

	"github.com/roach88/nemhist/internal/ir"
)

// Records builds a record set from Go literals: string becomes Text,
// float64 and int become Real, nil becomes Null.
//
// Panics on any other type or on a row of the wrong width; it is meant for
// fixtures written inline in tests.
func Records(columns []string, rows ...[]any) ir.RecordSet {
	rs := ir.NewRecordSet(columns...)
	for i, row := range rows {
		vals := make([]ir.Value, len(row))
		for j, cell := range row {
			vals[j] = toValue(cell)
		}
		if err := rs.Append(vals...); err != nil {
			panic(fmt.Sprintf("testutil.Records row %d: %v", i, err))
		}
	}
	return rs
}

func toValue(cell any) ir.Value {
	switch v := cell.(type) {
	case nil:
		return ir.Null{}
	case string:
		return ir.Text(v)
	case float64:
		return ir.Real(v)
	case int:
		return ir.Real(float64(v))
	case ir.Value:
		return v
	default:
		panic(fmt.Sprintf("testutil.Records: unsupported cell type %T", cell))
	}
}

// Column returns the named column of every row rendered as text.
func Column(rs ir.RecordSet, column string) []string {
	out := make([]string, 0, rs.Len())
	for _, row := range rs.Rows {
		out = append(out, row.Text(column))
	}
	return out
}
