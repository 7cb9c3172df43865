package server

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/easypaper/easypaper/internal/api"
	apperrors "github.com/easypaper/easypaper/internal/errors"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain composes middlewares. The first one added is the outermost: a
// request passes through them in order and the response in reverse.
type Chain struct {
	middlewares []Middleware
}

// NewChain creates a chain of mw.
func NewChain(mw ...Middleware) *Chain {
	c := &Chain{middlewares: make([]Middleware, 0, len(mw))}
	for _, m := range mw {
		c.Add(m)
	}
	return c
}

// Add appends mw as the innermost middleware so far.
func (c *Chain) Add(mw Middleware) {
	if mw == nil {
		panic("server: nil middleware")
	}
	c.middlewares = append(c.middlewares, mw)
}

// Len returns the number of middlewares.
func (c *Chain) Len() int {
	return len(c.middlewares)
}

// Apply wraps h with every middleware.
func (c *Chain) Apply(h http.Handler) http.Handler {
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		h = c.middlewares[i](h)
	}
	return h
}

// statusWriter records the status code. It forwards Hijack and Flush so the
// WebSocket upgrade still works behind it.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	conn, rw, err := http.NewResponseController(w.ResponseWriter).Hijack()
	if err == nil && w.status == 0 {
		w.status = http.StatusSwitchingProtocols
	}
	return conn, rw, err
}

func (w *statusWriter) Flush() {
	_ = http.NewResponseController(w.ResponseWriter).Flush()
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// requestLogger logs every request; server errors at warn level.
func (s *Server) requestLogger() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}

			next.ServeHTTP(sw, r)

			fields := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration", time.Since(start),
			}
			if sw.status >= http.StatusInternalServerError {
				s.logger.Warn(r.Context(), nil, "request failed", fields...)
				return
			}
			s.logger.Debug(r.Context(), "request", fields...)
		})
	}
}

// recoverer turns a handler panic into a 500 failure envelope.
func (s *Server) recoverer() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				err := apperrors.Wrap(fmt.Errorf("%v", rec), apperrors.ErrorTypeInternal,
					apperrors.ErrCodeInternal, "internal server error")
				s.logger.Error(r.Context(), err, "handler panicked", "path", r.URL.Path)
				writeJSON(w, http.StatusInternalServerError, api.Failure[any](err))
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// securityHeaders marks responses as non-sniffable and uncacheable.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
