// Package api defines the operation envelope and the registry through which
// every externally invocable operation is dispatched by name.
package api

// Response is the uniform result of an operation. Exactly one of Data and
// Error is set, gated by OK.
type Response[T any] struct {
	OK    bool    `json:"ok"`
	Data  *T      `json:"data,omitempty"`
	Error *string `json:"error,omitempty"`
}

// Success wraps a value.
func Success[T any](v T) Response[T] {
	return Response[T]{OK: true, Data: &v}
}

// Failure wraps an error. The full error text, causes and hints included,
// becomes the message.
func Failure[T any](err error) Response[T] {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Response[T]{Error: &msg}
}
