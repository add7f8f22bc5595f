package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/nemhist/internal/ir"
	"github.com/roach88/nemhist/internal/snapshot"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation failed (archive unavailable, duplicate key, etc.)
	ExitCommandError = 2 // Command error (bad arguments, unknown table, missing database)
)

// Error codes reported in CLIError.Code.
const (
	ErrCodeCommand = "E001"
	ErrCodeFailure = "E002"
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil and ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format  string
	Writer  io.Writer
	Verbose bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002"
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// textRenderer is implemented by results that have a human-readable form.
type textRenderer interface {
	renderText(p *message.Printer, w io.Writer)
}

// newPrinter returns the printer used for text output. Numbers are
// printed with digit grouping.
func newPrinter() *message.Printer {
	return message.NewPrinter(language.English)
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	if r, ok := data.(textRenderer); ok {
		r.renderText(newPrinter(), f.Writer)
		return nil
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// errorDetails is the Details payload for failures carrying an ir error code.
type errorDetails struct {
	Kind   ir.ErrorCode `json:"kind"`
	Table  string       `json:"table,omitempty"`
	Column string       `json:"column,omitempty"`
}

// exitCodeFor maps an operation error to an exit code. Unknown tables and
// columns are caller mistakes; everything else is an operation failure.
func exitCodeFor(err error) int {
	if errors.Is(err, snapshot.ErrUnknownTable) || ir.IsUnknownColumn(err) {
		return ExitCommandError
	}
	return ExitFailure
}

// outputError reports err through the formatter and returns the ExitError
// the command should exit with.
func outputError(f *OutputFormatter, exitCode int, message string, err error) error {
	code := ErrCodeFailure
	if exitCode == ExitCommandError {
		code = ErrCodeCommand
	}

	var details any
	var irErr *ir.Error
	if errors.As(err, &irErr) {
		details = errorDetails{Kind: irErr.Code, Table: irErr.Table, Column: irErr.Column}
	}

	_ = f.Error(code, fmt.Sprintf("%s: %v", message, err), details)
	return WrapExitError(exitCode, message, err)
}

// outputSessionError reports a failure from openSession.
func outputSessionError(f *OutputFormatter, err error) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		_ = f.Error(ErrCodeCommand, exitErr.Error(), nil)
		return exitErr
	}
	return outputError(f, ExitCommandError, "command failed", err)
}

func unknownTable(table string) error {
	return fmt.Errorf("%w: %s", snapshot.ErrUnknownTable, table)
}
