package ir

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Value is a sealed interface representing a single table cell.
// Only Null, Text and Real implement it.
type Value interface {
	value() // Sealed - only these types implement it
}

// Null represents an absent cell (an empty field in the archive).
type Null struct{}

func (Null) value() {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// Text is a TEXT cell.
type Text string

func (Text) value() {}

// Real is a REAL cell.
type Real float64

func (Real) value() {}

// MarshalJSON implements json.Marshaler for Real.
// NaN and infinities have no JSON form and are written as null.
func (r Real) MarshalJSON() ([]byte, error) {
	f := float64(r)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// FromDriver converts a value returned by database/sql into a Value.
// SQLite returns REAL columns as float64 and TEXT columns as string or []byte.
func FromDriver(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case float64:
		return Real(val), nil
	case int64:
		return Real(float64(val)), nil
	case string:
		return Text(val), nil
	case []byte:
		return Text(string(val)), nil
	default:
		return nil, fmt.Errorf("unsupported driver value type %T", v)
	}
}

// ToDriver converts a Value into a database/sql parameter.
func ToDriver(v Value) any {
	switch val := v.(type) {
	case Text:
		return string(val)
	case Real:
		return float64(val)
	default:
		return nil
	}
}

// AsFloat interprets a cell as a number.
// Text cells are parsed; Null and unparseable text yield NaN so that
// comparisons against them are false, never accidentally true.
func AsFloat(v Value) float64 {
	switch val := v.(type) {
	case Real:
		return float64(val)
	case Text:
		f, err := strconv.ParseFloat(string(val), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// AsString renders a cell as text. Null renders as "".
func AsString(v Value) string {
	switch val := v.(type) {
	case Text:
		return string(val)
	case Real:
		return strconv.FormatFloat(float64(val), 'f', -1, 64)
	default:
		return ""
	}
}
