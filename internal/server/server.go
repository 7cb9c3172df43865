// Package server exposes the operation registry to the UI over HTTP and
// WebSocket.
//
// POST /api/{operation} takes the operation's JSON parameters as the request
// body and answers with the envelope. GET /ws carries the same operations as
// frames {"id","op","params"} answered by {"id","response"}, and pushes
// server-side events such as watch-triggered build results.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/easypaper/easypaper/internal/api"
	"github.com/easypaper/easypaper/internal/build"
	"github.com/easypaper/easypaper/internal/config"
	apperrors "github.com/easypaper/easypaper/internal/errors"
	"github.com/easypaper/easypaper/internal/logging"
	"github.com/easypaper/easypaper/internal/version"
	ws "github.com/easypaper/easypaper/internal/websocket"
)

const maxBodySize = 16 << 20

// Frame is a WebSocket request.
type Frame struct {
	ID     string          `json:"id"`
	Op     string          `json:"op"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Reply answers a Frame.
type Reply struct {
	ID       string            `json:"id"`
	Response api.Response[any] `json:"response"`
}

// Event is pushed to every WebSocket client.
type Event struct {
	Event     string    `json:"event"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Server is the bridge between the UI and the operation registry.
type Server struct {
	config   config.ServerConfig
	registry *api.Registry
	origins  *OriginPolicy
	ws       *ws.Manager
	logger   logging.Logger
	stats    func() build.Stats

	httpServer  *http.Server
	listenAddr  net.Addr
	serverMutex sync.RWMutex
	ready       chan struct{}
}

// New creates a server for registry.
func New(cfg config.ServerConfig, registry *api.Registry, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &Server{
		config:   cfg,
		registry: registry,
		origins:  NewOriginPolicy(cfg.AllowedOrigins),
		logger:   logger.WithComponent("server"),
		ready:    make(chan struct{}),
	}
	s.ws = ws.NewManager(s.origins, s.handleFrame, logger)
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/{operation}", s.handleInvoke)
	mux.HandleFunc("OPTIONS /api/{operation}", s.handlePreflight)
	mux.HandleFunc("GET /api", s.handleOperations)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ws", s.ws.HandleWebSocket)
	return NewChain(s.requestLogger(), s.recoverer(), securityHeaders).Apply(mux)
}

// Start listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr(), err)
	}

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.listenAddr = ln.Addr()
	server := s.httpServer
	s.serverMutex.Unlock()
	close(s.ready)

	s.logger.Info(ctx, "bridge server listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.ws.Shutdown()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Ready is closed once Start is listening.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address once listening, or nil.
func (s *Server) Addr() net.Addr {
	s.serverMutex.RLock()
	defer s.serverMutex.RUnlock()
	return s.listenAddr
}

// Shutdown closes WebSocket clients and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.ws.Shutdown()

	s.serverMutex.RLock()
	server := s.httpServer
	s.serverMutex.RUnlock()

	if server == nil {
		return nil
	}
	s.logger.Info(ctx, "shutting down bridge server")
	return server.Shutdown(ctx)
}

// Notify pushes an event to every connected WebSocket client.
func (s *Server) Notify(event string, data any) {
	payload, err := json.Marshal(Event{Event: event, Data: data, Timestamp: time.Now()})
	if err != nil {
		s.logger.Error(context.Background(), err, "failed to encode event", "event", event)
		return
	}
	s.ws.Broadcast(payload)
}

// Clients returns the number of connected WebSocket clients.
func (s *Server) Clients() int {
	return s.ws.ClientCount()
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	if !s.allowCORS(w, r) {
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, api.Failure[any](
			apperrors.NewIOError(apperrors.ErrCodeInvalidParams, "failed to read request body", err)))
		return
	}
	if len(body) > maxBodySize {
		http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
		return
	}

	resp := s.registry.Invoke(r.Context(), r.PathValue("operation"), body)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePreflight(w http.ResponseWriter, r *http.Request) {
	if !s.allowCORS(w, r) {
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOperations(w http.ResponseWriter, r *http.Request) {
	if !s.allowCORS(w, r) {
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}
	writeJSON(w, http.StatusOK, api.Success(s.registry.Operations()))
}

// ReportBuildStats adds compile statistics from fn to /health.
func (s *Server) ReportBuildStats(fn func() build.Stats) {
	s.serverMutex.Lock()
	defer s.serverMutex.Unlock()
	s.stats = fn
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{
		"status":  "ok",
		"version": version.GetShortVersion(),
		"clients": s.ws.ClientCount(),
	}

	s.serverMutex.RLock()
	stats := s.stats
	s.serverMutex.RUnlock()
	if stats != nil {
		body["builds"] = stats()
	}

	writeJSON(w, http.StatusOK, body)
}

// allowCORS admits requests without an Origin (non-browser callers) and
// browser requests from an allowed origin, which also get CORS headers.
func (s *Server) allowCORS(w http.ResponseWriter, r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if !s.origins.IsAllowedOrigin(origin) {
		s.logger.Warn(r.Context(), nil, "request from disallowed origin", "origin", origin, "path", r.URL.Path)
		return false
	}

	h := w.Header()
	h.Set("Access-Control-Allow-Origin", origin)
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
	h.Add("Vary", "Origin")
	return true
}

func (s *Server) handleFrame(ctx context.Context, message []byte) []byte {
	var frame Frame
	var reply Reply

	if err := json.Unmarshal(message, &frame); err != nil || frame.Op == "" {
		if err == nil {
			err = errors.New("missing op")
		}
		reply = Reply{ID: frame.ID, Response: api.Failure[any](
			apperrors.Wrap(err, apperrors.ErrorTypeValidation, apperrors.ErrCodeInvalidParams, "invalid frame"))}
	} else {
		reply = Reply{ID: frame.ID, Response: s.registry.Invoke(ctx, frame.Op, frame.Params)}
	}

	payload, err := json.Marshal(reply)
	if err != nil {
		s.logger.Error(ctx, err, "failed to encode reply", "id", frame.ID, "op", frame.Op)
		payload, _ = json.Marshal(Reply{ID: frame.ID, Response: api.Failure[any](err)})
	}
	return payload
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
