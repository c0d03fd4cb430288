package websocket

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	// Cross-origin policy is enforced by the CORS layer in front of the router.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Event is a push message addressed to a single user. A user may hold
// several connections (multiple tabs); the hub fans the event out to all.
type Event struct {
	UserID int64  `json:"user_id,omitempty"`
	Type   string `json:"type"`
	Data   any    `json:"data"`
}

// Hub tracks websocket connections per user and delivers Events to them.
type Hub struct {
	connections map[int64]map[*connection]bool

	register   chan *connection
	unregister chan *connection
	events     chan *Event

	mu sync.RWMutex
}

type connection struct {
	ws     *websocket.Conn
	userID int64
	send   chan *Event
	hub    *Hub
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[int64]map[*connection]bool),
		register:    make(chan *connection),
		unregister:  make(chan *connection),
		events:      make(chan *Event, 256),
	}
}

// Run owns the connection table until ctx is cancelled. On shutdown it
// closes the underlying sockets so the pumps error out and unregister
// themselves.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.RLock()
			var conns []*connection
			for _, set := range h.connections {
				for c := range set {
					conns = append(conns, c)
				}
			}
			h.mu.RUnlock()

			// Close outside the lock so unregister can still acquire it.
			for _, c := range conns {
				_ = c.ws.Close()
			}
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.connections[conn.userID] == nil {
				h.connections[conn.userID] = make(map[*connection]bool)
			}
			h.connections[conn.userID][conn] = true
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.connections[conn.userID]; ok {
				if _, exists := set[conn]; exists {
					delete(set, conn)
					close(conn.send)
					if len(set) == 0 {
						delete(h.connections, conn.userID)
					}
				}
			}
			h.mu.Unlock()

		case ev := <-h.events:
			h.mu.Lock()
			if set, ok := h.connections[ev.UserID]; ok {
				for conn := range set {
					select {
					case conn.send <- ev:
					default:
						// Slow consumer: drop the connection, not the hub.
						close(conn.send)
						delete(set, conn)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues an event for the given user. When the hub is saturated the
// event is dropped rather than blocking the caller.
func (h *Hub) Publish(userID int64, ev *Event) {
	ev.UserID = userID
	select {
	case h.events <- ev:
	default:
		log.Printf("[WS] event queue full, dropping %q for user %d", ev.Type, userID)
	}
}

// HandleWebSocket upgrades the request and starts the read/write pumps for
// an already-authenticated user.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request, userID int64) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] upgrade error: %v", err)
		return
	}

	conn := &connection{
		ws:     ws,
		userID: userID,
		send:   make(chan *Event, 256),
		hub:    h,
	}

	h.register <- conn

	go conn.writePump()
	go conn.readPump()
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// readPump discards client frames (nothing but pongs is expected) and keeps
// the read deadline fresh until the peer goes away.
func (c *connection) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.ws.Close()
	}()

	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] read error: %v", err)
			}
			break
		}
	}
}

func (c *connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.ws.WriteJSON(ev); err != nil {
				log.Printf("[WS] write error: %v", err)
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
