// Package errors provides a lightweight structured error type (ModelgenError)
// for category-based classification of pipeline failures in the CLI.
package errors

import (
	stdErrors "errors"
	"fmt"
)

// ErrorCategory represents the category of a modelgen error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Pipeline step errors
	CategoryToolchain  ErrorCategory = "toolchain"
	CategoryCompile    ErrorCategory = "compile"
	CategoryGeneration ErrorCategory = "generation"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Runtime errors
	CategoryCanceled ErrorCategory = "canceled"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// ModelgenError is a structured error with category, severity and context
type ModelgenError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for ModelgenError
type ContextFields map[string]any

// Error implements the error interface
func (e *ModelgenError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *ModelgenError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *ModelgenError) WithContext(key string, value any) *ModelgenError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new ModelgenError
func New(category ErrorCategory, severity ErrorSeverity, message string) *ModelgenError {
	return &ModelgenError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new ModelgenError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *ModelgenError {
	return &ModelgenError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// As finds the first ModelgenError in err's chain.
func As(err error) (*ModelgenError, bool) {
	var me *ModelgenError
	if stdErrors.As(err, &me) {
		return me, true
	}
	return nil, false
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if me, ok := As(err); ok {
		return me.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a ModelgenError
func GetCategory(err error) ErrorCategory {
	if me, ok := As(err); ok {
		return me.Category
	}
	return CategoryInternal
}
