// Package websocket manages the bridge's WebSocket clients: origin checks,
// per-client read and write pumps, request dispatch and broadcast of
// server-initiated events such as watch-triggered build results.
package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/easypaper/easypaper/internal/logging"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Send pings to peer with this period.
	pingPeriod = 30 * time.Second

	// Maximum message size allowed from peer. Frames carry whole files.
	maxMessageSize = 16 << 20

	sendBuffer = 64
)

// Manager handles all WebSocket connection management and broadcasting.
//
// Registration, removal and broadcast go through a single hub goroutine;
// the clients map is additionally guarded by clientsMutex for readers.
type Manager struct {
	clients      map[*Client]struct{}
	clientsMutex sync.RWMutex

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	originValidator OriginValidator
	handler         MessageHandler
	logger          logging.Logger

	ctx          context.Context
	cancel       context.CancelFunc
	shutdownOnce sync.Once
}

// NewManager creates a manager and starts its hub. originValidator is
// required; handler may be nil for broadcast-only use.
func NewManager(originValidator OriginValidator, handler MessageHandler, logger logging.Logger) *Manager {
	if originValidator == nil {
		panic("websocket: originValidator cannot be nil")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		clients:         make(map[*Client]struct{}),
		broadcast:       make(chan []byte, 256),
		register:        make(chan *Client, 32),
		unregister:      make(chan *Client, 32),
		originValidator: originValidator,
		handler:         handler,
		logger:          logger.WithComponent("websocket"),
		ctx:             ctx,
		cancel:          cancel,
	}

	go m.runHub()
	return m
}

// HandleWebSocket upgrades r and serves the client until it disconnects.
func (m *Manager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin == "" || !m.originValidator.IsAllowedOrigin(origin) {
		m.logger.Warn(r.Context(), nil, "websocket connection rejected", "origin", origin, "remote", r.RemoteAddr)
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Origins were validated above against the configured list.
		OriginPatterns:  []string{"*"},
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		m.logger.Warn(r.Context(), err, "websocket upgrade failed", "remote", r.RemoteAddr)
		return
	}
	conn.SetReadLimit(maxMessageSize)

	ctx, cancel := context.WithCancel(m.ctx)
	client := &Client{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		ctx:    ctx,
		cancel: cancel,
	}

	select {
	case m.register <- client:
	case <-m.ctx.Done():
		client.close(websocket.StatusServiceRestart, "Server shutting down")
		return
	}

	go m.writeToClient(client)
	m.readFromClient(client)
}

// Broadcast queues message for every connected client. Clients whose buffer
// is full are dropped.
func (m *Manager) Broadcast(message []byte) {
	select {
	case m.broadcast <- message:
	case <-m.ctx.Done():
	}
}

// ClientCount returns the number of connected clients.
func (m *Manager) ClientCount() int {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()
	return len(m.clients)
}

// Shutdown closes every connection and stops the hub.
func (m *Manager) Shutdown() {
	m.shutdownOnce.Do(func() {
		m.cancel()

		m.clientsMutex.Lock()
		for client := range m.clients {
			client.close(websocket.StatusGoingAway, "Server shutdown")
		}
		m.clients = make(map[*Client]struct{})
		m.clientsMutex.Unlock()
	})
}

func (m *Manager) runHub() {
	for {
		select {
		case client := <-m.register:
			m.clientsMutex.Lock()
			m.clients[client] = struct{}{}
			total := len(m.clients)
			m.clientsMutex.Unlock()
			m.logger.Debug(m.ctx, "websocket client connected", "clients", total)

		case client := <-m.unregister:
			m.removeClient(client)

		case message := <-m.broadcast:
			m.clientsMutex.RLock()
			var stalled []*Client
			for client := range m.clients {
				if !client.offer(message) {
					stalled = append(stalled, client)
				}
			}
			m.clientsMutex.RUnlock()

			for _, client := range stalled {
				m.removeClient(client)
			}

		case <-m.ctx.Done():
			return
		}
	}
}

func (m *Manager) removeClient(client *Client) {
	m.clientsMutex.Lock()
	_, exists := m.clients[client]
	delete(m.clients, client)
	total := len(m.clients)
	m.clientsMutex.Unlock()

	client.close(websocket.StatusNormalClosure, "")
	if exists {
		m.logger.Debug(m.ctx, "websocket client disconnected", "clients", total)
	}
}

func (m *Manager) readFromClient(client *Client) {
	defer func() {
		select {
		case m.unregister <- client:
		case <-m.ctx.Done():
			client.close(websocket.StatusGoingAway, "")
		}
	}()

	for {
		_, message, err := client.conn.Read(client.ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && client.ctx.Err() == nil {
				m.logger.Debug(m.ctx, "websocket read ended", "error", err.Error())
			}
			return
		}

		if m.handler == nil {
			continue
		}

		// Requests run concurrently so a long compile does not hold up
		// quick queries; replies carry the request id for correlation.
		go func(message []byte) {
			if reply := m.handler(client.ctx, message); reply != nil {
				client.deliver(reply)
			}
		}(message)
	}
}

func (m *Manager) writeToClient(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message := <-client.send:
			ctx, cancel := context.WithTimeout(client.ctx, writeWait)
			err := client.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				client.close(websocket.StatusInternalError, "write failed")
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(client.ctx, writeWait)
			err := client.conn.Ping(ctx)
			cancel()
			if err != nil {
				client.close(websocket.StatusGoingAway, "ping failed")
				return
			}

		case <-client.ctx.Done():
			return
		}
	}
}
