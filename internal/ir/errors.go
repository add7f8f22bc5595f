package ir

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes the failures this system surfaces to callers.
type ErrorCode string

const (
	// CodeSourceUnavailable indicates the archive could not supply a period.
	CodeSourceUnavailable ErrorCode = "SOURCE_UNAVAILABLE"

	// CodeUnknownColumn indicates a column absent from the schema catalog
	// or from the data being projected.
	CodeUnknownColumn ErrorCode = "UNKNOWN_COLUMN"

	// CodeDuplicateKey indicates ingestion would break primary-key uniqueness.
	CodeDuplicateKey ErrorCode = "DUPLICATE_KEY"

	// CodeUnmappedEnumValue indicates a raw value outside a fixed vocabulary.
	CodeUnmappedEnumValue ErrorCode = "UNMAPPED_ENUM_VALUE"
)

// Sentinels for errors.Is. They match any *Error with the same code.
var (
	ErrSourceUnavailable = &Error{Code: CodeSourceUnavailable}
	ErrUnknownColumn     = &Error{Code: CodeUnknownColumn}
	ErrDuplicateKey      = &Error{Code: CodeDuplicateKey}
	ErrUnmappedEnumValue = &Error{Code: CodeUnmappedEnumValue}
)

// Error is a classified failure with enough context to locate its cause.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Table names the affected table, when known.
	Table string

	// Column names the affected column or vocabulary, when known.
	Column string

	// Value is the offending raw value (UNMAPPED_ENUM_VALUE).
	Value string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := string(e.Code)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	switch {
	case e.Table != "" && e.Column != "":
		msg += fmt.Sprintf(" (table=%s, column=%s)", e.Table, e.Column)
	case e.Table != "":
		msg += fmt.Sprintf(" (table=%s)", e.Table)
	case e.Column != "":
		msg += fmt.Sprintf(" (column=%s)", e.Column)
	}
	if e.Value != "" {
		msg += fmt.Sprintf(" value=%q", e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by code, so errors.Is(err, ErrDuplicateKey) works
// through any amount of wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsSourceUnavailable returns true if the archive could not supply data.
func IsSourceUnavailable(err error) bool {
	return errors.Is(err, ErrSourceUnavailable)
}

// IsUnknownColumn returns true for schema/catalog mismatches.
func IsUnknownColumn(err error) bool {
	return errors.Is(err, ErrUnknownColumn)
}

// IsDuplicateKey returns true if ingestion violated primary-key uniqueness.
func IsDuplicateKey(err error) bool {
	return errors.Is(err, ErrDuplicateKey)
}

// IsUnmappedEnumValue returns true for values outside a fixed vocabulary.
func IsUnmappedEnumValue(err error) bool {
	return errors.Is(err, ErrUnmappedEnumValue)
}

// NewSourceUnavailable creates a SOURCE_UNAVAILABLE error for a period.
func NewSourceUnavailable(table string, year, month int, cause error) *Error {
	return &Error{
		Code:    CodeSourceUnavailable,
		Message: fmt.Sprintf("no archive for %04d-%02d", year, month),
		Table:   table,
		Err:     cause,
	}
}

// NewUnknownColumn creates an UNKNOWN_COLUMN error.
func NewUnknownColumn(table, column, message string) *Error {
	return &Error{Code: CodeUnknownColumn, Message: message, Table: table, Column: column}
}

// NewDuplicateKey creates a DUPLICATE_KEY error for a table.
func NewDuplicateKey(table string, cause error) *Error {
	return &Error{
		Code:    CodeDuplicateKey,
		Message: "primary key already present",
		Table:   table,
		Err:     cause,
	}
}

// NewUnmappedEnumValue creates an UNMAPPED_ENUM_VALUE error.
func NewUnmappedEnumValue(vocabulary, value string) *Error {
	return &Error{
		Code:    CodeUnmappedEnumValue,
		Message: "value outside vocabulary",
		Column:  vocabulary,
		Value:   value,
	}
}
