package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	apperrors "github.com/easypaper/easypaper/internal/errors"
	"github.com/easypaper/easypaper/internal/logging"
)

// Handler executes one operation with its raw JSON parameters.
type Handler func(ctx context.Context, params json.RawMessage) (any, error)

// Registry maps operation names to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	logger   logging.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Registry{
		handlers: make(map[string]Handler),
		logger:   logger.WithComponent("api"),
	}
}

// Register adds or replaces the handler for name.
func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Operations lists the registered names, sorted.
func (r *Registry) Operations() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs operation name and wraps the outcome in an envelope. It never
// returns a Go error: every failure, an unknown name included, becomes a
// failure envelope.
func (r *Registry) Invoke(ctx context.Context, name string, params json.RawMessage) Response[any] {
	r.mu.RLock()
	h, ok := r.handlers[name]
	r.mu.RUnlock()

	if !ok {
		err := apperrors.NewValidationError(apperrors.ErrCodeUnknownOp, fmt.Sprintf("unknown operation: %s", name))
		r.logger.Warn(ctx, err, "rejected operation", "operation", name)
		return Failure[any](err)
	}

	start := time.Now()
	data, err := h(ctx, params)
	if err != nil {
		r.logger.Warn(ctx, err, "operation failed",
			"operation", name,
			"code", apperrors.CodeOf(err),
			"duration", time.Since(start))
		return Failure[any](err)
	}

	r.logger.Debug(ctx, "operation finished", "operation", name, "duration", time.Since(start))
	return Success(data)
}

// Typed adapts a function taking decoded parameters into a Handler. Missing
// or null parameters decode to the zero value of P.
func Typed[P any, R any](fn func(ctx context.Context, p P) (R, error)) Handler {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		var p P
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		return fn(ctx, p)
	}
}

func decodeParams(raw json.RawMessage, dst any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &apperrors.AppError{
			Type:    apperrors.ErrorTypeValidation,
			Code:    apperrors.ErrCodeInvalidParams,
			Message: "invalid parameters",
			Cause:   err,
		}
	}
	return nil
}

func required(fields ...string) error {
	for i := 0; i+1 < len(fields); i += 2 {
		if fields[i+1] == "" {
			return apperrors.NewValidationError(apperrors.ErrCodeInvalidParams,
				fmt.Sprintf("missing required parameter: %s", fields[i]))
		}
	}
	return nil
}
