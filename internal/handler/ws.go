package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"netlens/internal/domain"
	"netlens/internal/logging"
	"netlens/internal/render"
	"netlens/internal/service"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = (wsPongWait * 9) / 10
	wsMaxMessageSize = 4096
)

// WSMessage is sent in both directions on /ws.
//
// Clients send "pointer" (x, y), "pause" (paused), "toggle" and "frame".
// The server sends "hello", "frame", "selection", "animation" and "error".
type WSMessage struct {
	Type       string        `json:"type"`
	ID         string        `json:"id,omitempty"`
	X          float64       `json:"x,omitempty"`
	Y          float64       `json:"y,omitempty"`
	Paused     *bool         `json:"paused,omitempty"`
	AnimateAll *bool         `json:"animate_all,omitempty"`
	Selected   *string       `json:"selected,omitempty"`
	Frame      *FramePayload `json:"frame,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// WSHandler runs interactive sessions: pointer input in, frames out
type WSHandler struct {
	svc      *service.TopologyService
	log      logging.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a websocket handler
func NewWSHandler(svc *service.TopologyService, log logging.Logger) *WSHandler {
	if log == nil {
		log = logging.Noop()
	}
	return &WSHandler{
		svc: svc,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// wsConn serializes writes to a websocket.Conn
type wsConn struct {
	c       *websocket.Conn
	writeMu sync.Mutex
}

func (s *wsConn) send(msg WSMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.c.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return s.c.WriteMessage(websocket.TextMessage, data)
}

func (s *wsConn) ping() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.c.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait))
}

// ServeHTTP upgrades the connection and runs the session until either side
// closes it
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(r.Context(), "websocket upgrade failed", logging.Err(err))
		return
	}
	defer c.Close()

	id := uuid.NewString()
	log := h.log.With(logging.String("session", id))
	conn := &wsConn{c: c}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng := h.svc.Engine()
	frames := make(chan render.Frame, 1)
	unsubscribe := eng.Subscribe(func(f render.Frame) {
		// keep only the newest frame
		select {
		case frames <- f:
		default:
			select {
			case <-frames:
			default:
			}
			select {
			case frames <- f:
			default:
			}
		}
	})
	defer unsubscribe()

	log.Info(ctx, "websocket session started")
	defer log.Info(ctx, "websocket session ended")

	if err := conn.send(WSMessage{Type: "hello", ID: id}); err != nil {
		return
	}
	h.sendFrame(conn, eng.Frame())

	go h.writeLoop(ctx, conn, frames, log)

	c.SetReadLimit(wsMaxMessageSize)
	c.SetReadDeadline(time.Now().Add(wsPongWait))
	c.SetPongHandler(func(string) error {
		c.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn(ctx, "websocket read failed", logging.Err(err))
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			conn.send(WSMessage{Type: "error", Error: "invalid message: " + err.Error()})
			continue
		}
		if err := h.handle(conn, msg); err != nil {
			return
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *wsConn, frames <-chan render.Frame, log logging.Logger) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case f := <-frames:
			if err := h.sendFrame(conn, f); err != nil {
				log.Debug(ctx, "frame write failed", logging.Err(err))
				conn.c.Close()
				return
			}
		case <-ticker.C:
			if err := conn.ping(); err != nil {
				conn.c.Close()
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (h *WSHandler) sendFrame(conn *wsConn, f render.Frame) error {
	p := NewFramePayload(f)
	return conn.send(WSMessage{Type: "frame", Frame: &p})
}

func (h *WSHandler) handle(conn *wsConn, msg WSMessage) error {
	switch msg.Type {
	case "pointer":
		sel := h.svc.Click(domain.Position{X: msg.X, Y: msg.Y})
		resp := WSMessage{Type: "selection"}
		if id, ok := sel.ID(); ok {
			resp.Selected = &id
		}
		return conn.send(resp)
	case "pause":
		if msg.Paused == nil {
			return conn.send(WSMessage{Type: "error", Error: "pause requires paused"})
		}
		h.svc.SetPaused(*msg.Paused)
		return h.sendAnimation(conn)
	case "toggle":
		h.svc.TogglePaused()
		return h.sendAnimation(conn)
	case "animate_all":
		if msg.AnimateAll == nil {
			return conn.send(WSMessage{Type: "error", Error: "animate_all requires animate_all"})
		}
		h.svc.SetAnimateAll(*msg.AnimateAll)
		return h.sendAnimation(conn)
	case "frame":
		return h.sendFrame(conn, h.svc.Engine().Frame())
	default:
		return conn.send(WSMessage{Type: "error", Error: "unknown message type " + msg.Type})
	}
}

func (h *WSHandler) sendAnimation(conn *wsConn) error {
	eng := h.svc.Engine()
	paused, all := eng.Paused(), eng.AnimateAll()
	return conn.send(WSMessage{Type: "animation", Paused: &paused, AnimateAll: &all})
}
