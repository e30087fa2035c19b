package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"glidecore/pkg/computer"
	"glidecore/pkg/sim"
)

const (
	streamBuffer       = 8
	streamWriteTimeout = 5 * time.Second
)

// TelemetryResponse is the API response structure.
type TelemetryResponse struct {
	computer.Derived
	SimState string `json:"sim_state"`
}

// TelemetryHandler keeps the latest derived state and fans it out to
// websocket subscribers.
type TelemetryHandler struct {
	mu       sync.RWMutex
	derived  computer.Derived
	simState sim.State

	clientsMu sync.Mutex
	clients   map[*streamClient]struct{}
	upgrader  websocket.Upgrader
}

type streamClient struct {
	ws   *websocket.Conn
	send chan []byte
	once sync.Once
}

func NewTelemetryHandler() *TelemetryHandler {
	return &TelemetryHandler{
		simState: sim.StateDisconnected,
		derived:  computer.Derived{GroundAlt: -1},
		clients:  make(map[*streamClient]struct{}),
		upgrader: websocket.Upgrader{EnableCompression: false},
	}
}

// Update implements core.TelemetrySink.
func (h *TelemetryHandler) Update(d *computer.Derived) {
	h.mu.Lock()
	h.derived = *d
	resp := TelemetryResponse{Derived: *d, SimState: string(h.simState)}
	h.mu.Unlock()

	h.broadcast(resp)
}

// UpdateState updates the fix source state.
func (h *TelemetryHandler) UpdateState(s sim.State) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.simState = s
}

func (h *TelemetryHandler) snapshot() TelemetryResponse {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return TelemetryResponse{Derived: h.derived, SimState: string(h.simState)}
}

func (h *TelemetryHandler) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	resp := h.snapshot()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode telemetry response", "error", err)
	}
}

// handleStream upgrades to a websocket and pushes every derived update.
// A subscriber that cannot keep up loses updates rather than stalling the
// fix loop.
func (h *TelemetryHandler) handleStream(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Stream upgrade failed", "error", err)
		return
	}

	c := &streamClient{ws: ws, send: make(chan []byte, streamBuffer)}
	h.clientsMu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.clientsMu.Unlock()
	slog.Debug("Stream client connected", "remote", r.RemoteAddr, "clients", n)

	// current state first so a new client does not wait for the next fix
	if msg, err := json.Marshal(h.snapshot()); err == nil {
		select {
		case c.send <- msg:
		default:
		}
	}

	go h.writeLoop(c)
	h.readLoop(c)
}

// readLoop drains control frames until the peer goes away.
func (h *TelemetryHandler) readLoop(c *streamClient) {
	defer h.drop(c)
	for {
		if _, _, err := c.ws.NextReader(); err != nil {
			return
		}
	}
}

func (h *TelemetryHandler) writeLoop(c *streamClient) {
	defer func() { _ = c.ws.Close() }()
	for msg := range c.send {
		_ = c.ws.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		wr, err := c.ws.NextWriter(websocket.TextMessage)
		if err != nil {
			h.drop(c)
			return
		}
		if _, err := wr.Write(msg); err != nil {
			h.drop(c)
			return
		}
		if err := wr.Close(); err != nil {
			h.drop(c)
			return
		}
	}
}

func (h *TelemetryHandler) drop(c *streamClient) {
	c.once.Do(func() {
		h.clientsMu.Lock()
		delete(h.clients, c)
		h.clientsMu.Unlock()
		close(c.send)
	})
}

func (h *TelemetryHandler) broadcast(resp TelemetryResponse) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	if len(h.clients) == 0 {
		return
	}
	msg, err := json.Marshal(resp)
	if err != nil {
		slog.Error("Failed to encode stream update", "error", err)
		return
	}
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

// Subscribers returns the number of connected stream clients.
func (h *TelemetryHandler) Subscribers() int {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	return len(h.clients)
}
