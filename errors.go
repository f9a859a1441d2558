package easyexpr

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// ArgumentError is returned when a descriptor is constructed with wrong arguments:
// parameter arity, invalid names or invalid dynamic/type combination
type ArgumentError struct {
	Message string
}

func (e *ArgumentError) Error() string {
	return e.Message
}

func newArgumentError(format string, args ...any) *ArgumentError {
	return &ArgumentError{Message: fmt.Sprintf(format, args...)}
}

// ParseError is returned when expression text is not syntactically valid
type ParseError struct {
	Message     string
	Diagnostics []error
}

func (e *ParseError) Error() string {
	return e.Message
}

func (e *ParseError) Unwrap() []error {
	return e.Diagnostics
}

func newParseError(diagnostics ...error) *ParseError {
	return &ParseError{
		Message:     joinDiagnostics(diagnostics),
		Diagnostics: diagnostics,
	}
}

// SecurityError is a ParseError returned when expression violates the security access
type SecurityError struct {
	ParseError
	Name string
}

func (e *SecurityError) Unwrap() error {
	return &e.ParseError
}

// CompileError is returned when the toolchain reports semantic errors. It carries
// all diagnostics of the compile request
type CompileError struct {
	Message     string
	Diagnostics []error
}

func (e *CompileError) Error() string {
	return e.Message
}

func (e *CompileError) Unwrap() []error {
	return e.Diagnostics
}

func newCompileError(err error) *CompileError {
	diagnostics := multierr.Errors(err)
	return &CompileError{
		Message:     joinDiagnostics(diagnostics),
		Diagnostics: diagnostics,
	}
}

func joinDiagnostics(diagnostics []error) string {
	lines := make([]string, len(diagnostics))
	for i, d := range diagnostics {
		lines[i] = d.Error()
	}
	return strings.Join(lines, "\n")
}

// bodyError attributes a diagnostic to a method or a field initializer
type bodyError struct {
	body string
	err  error
	// message overrides the text of err when not empty
	message string
}

func (e *bodyError) Error() string {
	if e.message != "" {
		return fmt.Sprintf("%s: %s", e.body, e.message)
	}
	return fmt.Sprintf("%s: %v", e.body, e.err)
}

func (e *bodyError) Unwrap() error {
	return e.err
}
