package errors

import (
	"errors"
)

// Wrap wraps an error with additional context, creating an AppError if the input is not already one
func Wrap(err error, errType ErrorType, code, message string) *AppError {
	if err == nil {
		return nil
	}

	return &AppError{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WrapIO wraps an error as an I/O error
func WrapIO(err error, code, message string) *AppError {
	return Wrap(err, ErrorTypeIO, code, message)
}

// WrapConfig wraps an error as a configuration error
func WrapConfig(err error, code, message string) *AppError {
	return Wrap(err, ErrorTypeConfig, code, message)
}

// IsType reports whether err (or anything it wraps) is an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Type == errType
	}

	return false
}

// CodeOf returns the code of the outermost AppError in the chain, or "".
func CodeOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}

	return ""
}

// HintOf returns the first remediation hint found in the chain.
func HintOf(err error) string {
	for err != nil {
		var ae *AppError
		if !errors.As(err, &ae) {
			return ""
		}
		if ae.Hint != "" {
			return ae.Hint
		}
		err = ae.Cause
	}

	return ""
}
