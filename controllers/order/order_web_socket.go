package orderControllers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/junaidrashid-git/storefront/models"
	"go.uber.org/zap"
)

const (
	// writeWait bounds a single write to a dashboard.
	writeWait = 5 * time.Second
	// sendBuffer is how many orders may queue for a slow dashboard before it
	// is dropped.
	sendBuffer = 16
)

// dashboard is one connected admin socket. Only its writer goroutine writes
// to conn.
type dashboard struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans newly placed orders out to connected admin dashboards.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*dashboard]struct{}
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[*dashboard]struct{}),
	}
}

// GET /admin/orders/ws
func (h *Hub) OrderWebSocketHandler(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	d := &dashboard{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[d] = struct{}{}
	h.mu.Unlock()

	go d.writeLoop()

	// Dashboards only listen; reading detects the disconnect.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.drop(d)
}

func (d *dashboard) writeLoop() {
	for data := range d.send {
		_ = d.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := d.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			zap.L().Debug("dropping order feed client", zap.Error(err))
			d.conn.Close()
			// Keep draining until the hub closes send.
			for range d.send {
			}
			return
		}
	}
}

// drop unregisters d once; closing send ends its writer.
func (h *Hub) drop(d *dashboard) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[d]; !ok {
		return
	}
	delete(h.clients, d)
	close(d.send)
}

// Broadcast queues order for every connected client without waiting on the
// network. A client whose queue is full is disconnected.
func (h *Hub) Broadcast(order *models.Order) {
	data, err := json.Marshal(order)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for d := range h.clients {
		select {
		case d.send <- data:
		default:
			zap.L().Warn("order feed client too slow, disconnecting")
			delete(h.clients, d)
			close(d.send)
			d.conn.Close()
		}
	}
}

// Clients reports the number of connected dashboards.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
