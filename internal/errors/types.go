// Package errors provides the structured error taxonomy shared by every
// EasyPaper operation.
//
// Each failure carries a category (configuration, validation, tool launch,
// I/O, not found), a stable code, a human readable message, an optional
// remediation hint and the underlying cause. The operation envelope renders
// the full error text, so messages are written for end users.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeTool       ErrorType = "tool"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeInternal   ErrorType = "internal"
)

// Error codes.
const (
	ErrCodeConfigRead      = "CONFIG_READ"
	ErrCodeConfigParse     = "CONFIG_PARSE"
	ErrCodeConfigWrite     = "CONFIG_WRITE"
	ErrCodeUnknownEngine   = "UNKNOWN_ENGINE"
	ErrCodeUnknownTemplate = "UNKNOWN_TEMPLATE"
	ErrCodeUnknownOp       = "UNKNOWN_OPERATION"
	ErrCodeInvalidParams   = "INVALID_PARAMS"
	ErrCodeToolLaunch      = "TOOL_LAUNCH"
	ErrCodeToolFailed      = "TOOL_FAILED"
	ErrCodeToolMissing     = "TOOL_MISSING"
	ErrCodeFileRead        = "FILE_READ"
	ErrCodeFileNotFound    = "FILE_NOT_FOUND"
	ErrCodeFileWrite       = "FILE_WRITE"
	ErrCodeFileDelete      = "FILE_DELETE"
	ErrCodeFileRename      = "FILE_RENAME"
	ErrCodeDirCreate       = "DIR_CREATE"
	ErrCodeDirList         = "DIR_LIST"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeNoSourceMatch   = "NO_SOURCE_MATCH"
	ErrCodeInternal        = "INTERNAL"
)

// AppError is a structured error type with context.
type AppError struct {
	Type    ErrorType
	Code    string
	Message string
	Hint    string
	Cause   error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)

	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}

	if e.Hint != "" {
		b.WriteString(". ")
		b.WriteString(e.Hint)
	}

	return b.String()
}

// Unwrap returns the underlying cause error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithHint attaches a remediation hint.
func (e *AppError) WithHint(hint string) *AppError {
	e.Hint = hint

	return e
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
	}
}

// NewToolError creates an error for an external tool that could not be run.
func NewToolError(code, message string, cause error, hint string) *AppError {
	return &AppError{
		Type:    ErrorTypeTool,
		Code:    code,
		Message: message,
		Cause:   cause,
		Hint:    hint,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewNotFoundError creates an error for something that does not exist.
func NewNotFoundError(code, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Code:    code,
		Message: message,
	}
}
