// Package testbackend runs an in-process wind tunnel backend for
// integration tests.
//
// The backend speaks the real websocket protocol: it sends a status
// message on accept, reacts to commands by broadcasting the matching
// state messages, answers pings, and can emit scripted readings.
package testbackend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// Backend is a scriptable windlab backend bound to a loopback port.
type Backend struct {
	server   *httptest.Server
	upgrader websocket.Upgrader
	accepted atomic.Int32

	mu        sync.Mutex
	conns     map[*websocket.Conn]struct{}
	recording bool
	readings  int
}

// New starts a backend. Callers must Close it.
func New() *Backend {
	b := &Backend{
		conns: make(map[*websocket.Conn]struct{}),
	}
	b.server = httptest.NewServer(http.HandlerFunc(b.handle))
	return b
}

// URL returns the websocket endpoint.
func (b *Backend) URL() string {
	return "ws" + strings.TrimPrefix(b.server.URL, "http") + "/ws"
}

// Accepted returns the number of websocket connections accepted so
// far, across reconnects.
func (b *Backend) Accepted() int {
	return int(b.accepted.Load())
}

// EmitReading broadcasts one sensor reading and counts it when
// recording is on.
func (b *Backend) EmitReading(timestamp string, rpm, liftForce float64) {
	b.mu.Lock()
	if b.recording {
		b.readings++
	}
	b.mu.Unlock()

	b.broadcast(map[string]any{
		"timestamp":  timestamp,
		"rpm":        rpm,
		"lift_force": liftForce,
	})
}

// Broadcast sends an arbitrary JSON message to all clients.
func (b *Backend) Broadcast(msg any) {
	b.broadcast(msg)
}

// DropClients closes every client connection without shutting the
// backend down, simulating a network drop.
func (b *Backend) DropClients() {
	b.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(b.conns))
	for conn := range b.conns {
		conns = append(conns, conn)
	}
	b.conns = make(map[*websocket.Conn]struct{})
	b.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
}

// Close shuts the backend down.
func (b *Backend) Close() {
	b.DropClients()
	b.server.Close()
}

func (b *Backend) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	b.accepted.Add(1)

	b.mu.Lock()
	b.conns[conn] = struct{}{}
	b.mu.Unlock()

	// The backend greets every client with its current status.
	b.sendTo(conn, b.statusMessage())

	go b.readLoop(conn)
}

func (b *Backend) readLoop(conn *websocket.Conn) {
	defer func() {
		b.mu.Lock()
		delete(b.conns, conn)
		b.mu.Unlock()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg struct {
			Type   string `json:"type"`
			Action string `json:"action"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		if msg.Type == "ping" {
			b.sendTo(conn, map[string]any{"type": "pong"})
			continue
		}

		switch msg.Action {
		case "start_recording":
			b.mu.Lock()
			b.recording = true
			b.mu.Unlock()
			b.broadcast(map[string]any{"type": "recording_started"})

		case "stop_recording":
			b.mu.Lock()
			b.recording = false
			b.mu.Unlock()
			b.broadcast(map[string]any{"type": "recording_stopped"})

		case "clear":
			b.mu.Lock()
			b.readings = 0
			b.mu.Unlock()
			b.broadcast(map[string]any{"type": "readings_cleared"})

		case "get_status":
			b.sendTo(conn, b.statusMessage())
		}
	}
}

func (b *Backend) statusMessage() map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return map[string]any{
		"type": "status",
		"data": map[string]any{
			"arduino_connected": true,
			"websocket_clients": len(b.conns),
			"is_recording":      b.recording,
			"readings_count":    b.readings,
		},
	}
}

func (b *Backend) broadcast(msg any) {
	b.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(b.conns))
	for conn := range b.conns {
		conns = append(conns, conn)
	}
	b.mu.Unlock()

	for _, conn := range conns {
		b.sendTo(conn, msg)
	}
}

func (b *Backend) sendTo(conn *websocket.Conn, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	// Writer side only; the read loop owns the other half.
	b.mu.Lock()
	defer b.mu.Unlock()
	conn.WriteMessage(websocket.TextMessage, data)
}
