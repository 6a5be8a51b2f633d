package live

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"command-center-backend/internal/events"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboards are same-site; cross-origin policy is enforced by the CORS
	// layer in front of the router.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub relays bus events to every connected staff dashboard so open tabs
// can refetch without waiting for their poll tick.
type Hub struct {
	bus *events.Bus

	mu    sync.Mutex
	conns map[*dashboardConn]bool
}

type dashboardConn struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a dashboard relay hub.
func NewHub(bus *events.Bus) *Hub {
	return &Hub{
		bus:   bus,
		conns: make(map[*dashboardConn]bool),
	}
}

// Run forwards bus events to connected dashboards until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	updates, unsubscribe := h.bus.Subscribe(16)
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case ev := <-updates:
			h.broadcast(ev)
		}
	}
}

func (h *Hub) broadcast(ev events.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("ws: marshal error: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for dc := range h.conns {
		select {
		case dc.send <- data:
		default:
			// A dashboard that stopped draining gets cut loose; it will
			// reconnect and resync on its own.
			delete(h.conns, dc)
			close(dc.send)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for dc := range h.conns {
		delete(h.conns, dc)
		close(dc.send)
	}
}

func (h *Hub) add(dc *dashboardConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[dc] = true
}

// remove reports whether the conn was still registered, so only one of the
// pumps closes the send channel.
func (h *Hub) remove(dc *dashboardConn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.conns[dc] {
		return false
	}
	delete(h.conns, dc)
	close(dc.send)
	return true
}

func (h *Hub) clientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// ServeWS upgrades a dashboard connection and starts its pumps.
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws: upgrade failed: %v", err)
		return
	}

	dc := &dashboardConn{
		conn: conn,
		send: make(chan []byte, 16),
	}
	h.add(dc)

	go h.writePump(dc)
	go h.readPump(dc)
}

// readPump discards inbound frames; dashboards only listen. It exists to
// answer pings and to notice the disconnect.
func (h *Hub) readPump(dc *dashboardConn) {
	defer func() {
		h.remove(dc)
		dc.conn.Close()
	}()

	dc.conn.SetReadLimit(maxMessageSize)
	_ = dc.conn.SetReadDeadline(time.Now().Add(pongWait))
	dc.conn.SetPongHandler(func(string) error {
		return dc.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := dc.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(dc *dashboardConn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		dc.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-dc.send:
			_ = dc.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = dc.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := dc.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = dc.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := dc.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
