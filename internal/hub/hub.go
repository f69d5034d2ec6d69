// Package hub fans named events out to Server-Sent Events clients.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"netlens/internal/logging"
)

// KeepAlive is the interval between comment lines on idle streams
var KeepAlive = 30 * time.Second

// Client represents a connected SSE client
type Client struct {
	id     string
	events chan []byte
}

type message struct {
	event   string
	payload any
}

// Hub manages SSE client connections
type Hub struct {
	log logging.Logger

	mu         sync.RWMutex
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	done       chan struct{}

	onChange func(int)

	// owned by Run
	seq  uint64
	last map[string][32]byte
}

// New creates a new Hub
func New(log logging.Logger) *Hub {
	if log == nil {
		log = logging.Noop()
	}
	return &Hub{
		log:        log,
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 256),
		done:       make(chan struct{}),
		last:       make(map[string][32]byte),
	}
}

// OnClientsChanged registers fn to be called with the client count after
// every connect and disconnect. Call it before Run.
func (h *Hub) OnClientsChanged(fn func(int)) {
	h.onChange = fn
}

// Run starts the hub's event loop and blocks until ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.events)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Info(ctx, "SSE client connected", logging.String("client", client.id), logging.Int("total", n))
			h.changed(n)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.events)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Info(ctx, "SSE client disconnected", logging.String("client", client.id), logging.Int("total", n))
			h.changed(n)

		case m := <-h.broadcast:
			h.send(ctx, m)
		}
	}
}

func (h *Hub) changed(n int) {
	if h.onChange != nil {
		h.onChange(n)
	}
}

// send encodes m once and queues it on every client. A payload identical to
// the previous one for the same event name is dropped.
func (h *Hub) send(ctx context.Context, m message) {
	data, err := json.Marshal(m.payload)
	if err != nil {
		h.log.Error(ctx, "failed to marshal event", logging.String("event", m.event), logging.Err(err))
		return
	}

	sum := blake2b.Sum256(data)
	if prev, ok := h.last[m.event]; ok && prev == sum {
		return
	}
	h.last[m.event] = sum

	h.seq++
	msg := []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", h.seq, m.event, data))

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.events <- msg:
		default:
			h.log.Debug(ctx, "SSE client is slow, skipping message", logging.String("client", client.id))
		}
	}
}

// Broadcast queues a named event for all connected clients
func (h *Hub) Broadcast(event string, payload any) {
	select {
	case h.broadcast <- message{event: event, payload: payload}:
	default:
		h.log.Warn(context.Background(), "broadcast channel full, dropping event", logging.String("event", event))
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP handles SSE connections
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	// streams outlive the server's write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	client := &Client{
		id:     uuid.NewString(),
		events: make(chan []byte, 64),
	}

	select {
	case h.register <- client:
	case <-h.done:
		http.Error(w, "event stream closed", http.StatusServiceUnavailable)
		return
	case <-r.Context().Done():
		return
	}
	defer func() {
		select {
		case h.unregister <- client:
		case <-h.done:
		}
	}()

	fmt.Fprintf(w, ": connected %s\n\n", client.id)
	flusher.Flush()

	ticker := time.NewTicker(KeepAlive)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-client.events:
			if !ok {
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := fmt.Fprintf(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
