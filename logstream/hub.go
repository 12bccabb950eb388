// Package logstream broadcasts pipeline progress lines to every connected
// browser client so the UI can show a live log of a running search.
package logstream

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Entry is one progress line. Status mirrors the HTTP-ish codes the pipeline
// emits: 102 while working, 200 when done, 404 for no connections, 500 for a
// failure.
type Entry struct {
	Time    string `json:"time"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Hub fans Entry messages out to the connected websocket clients. Delivery is
// fire-and-forget: a client that cannot be written to is dropped, and the
// pipeline never depends on a broadcast succeeding.
//
// gorilla/websocket allows at most one concurrent writer per connection, so
// the hub keeps a write mutex per client and every write to a registered
// connection must go through Emit or Send.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]*sync.Mutex
	log     *logrus.Logger
}

// NewHub creates an empty hub.
func NewHub(log *logrus.Logger) *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*sync.Mutex), log: log}
}

// Register adds a client connection to the broadcast set.
func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = &sync.Mutex{}
	h.mu.Unlock()
}

// Unregister removes a client connection.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Emit broadcasts a progress message to all clients and mirrors it to the
// server log. Satisfies the pipeline's progress sink.
func (h *Hub) Emit(message string, status int) {
	entry := Entry{
		Time:    time.Now().Format(time.RFC3339),
		Status:  status,
		Message: message,
	}
	h.log.WithField("status", status).Info(message)

	h.mu.Lock()
	conns := make(map[*websocket.Conn]*sync.Mutex, len(h.clients))
	for conn, wmu := range h.clients {
		conns[conn] = wmu
	}
	h.mu.Unlock()

	for conn, wmu := range conns {
		wmu.Lock()
		err := conn.WriteJSON(entry)
		wmu.Unlock()
		if err != nil {
			h.log.WithError(err).Debug("dropping unreachable log client")
			conn.Close()
			h.Unregister(conn)
		}
	}
}

// Send writes one entry to a single registered client, serialized against
// concurrent broadcasts on the same connection.
func (h *Hub) Send(conn *websocket.Conn, message string, status int) error {
	h.mu.Lock()
	wmu, ok := h.clients[conn]
	h.mu.Unlock()
	if !ok {
		return errors.New("logstream: client is not registered")
	}

	entry := Entry{
		Time:    time.Now().Format(time.RFC3339),
		Status:  status,
		Message: message,
	}
	wmu.Lock()
	defer wmu.Unlock()
	return conn.WriteJSON(entry)
}
