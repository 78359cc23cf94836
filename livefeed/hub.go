package livefeed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/imjustneko/Travel-web/mq"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	sendBuffer = 64
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Client is one connected dashboard.
type Client struct {
	Conn   *websocket.Conn
	Send   chan []byte
	UserID string
}

// Hub fans domain events out to every registered client.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	quit       chan struct{}
	stopOnce   sync.Once
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if h.clients[c] {
				delete(h.clients, c)
				close(c.Send)
			}
			h.mu.Unlock()

		case data := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.Send <- data:
				default:
					// slow consumer
					close(c.Send)
					delete(h.clients, c)
				}
			}
			h.mu.Unlock()

		case <-h.quit:
			h.mu.Lock()
			for c := range h.clients {
				close(c.Send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop ends Run and closes every client's send channel.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

// Count reports the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast queues data for all clients. It drops the message when the hub
// is stopped or saturated.
func (h *Hub) Broadcast(data []byte) {
	select {
	case h.broadcast <- data:
	case <-h.quit:
	default:
		log.Warn("livefeed: broadcast queue full, dropping event")
	}
}

// Forward returns an mq handler that relays every event to the hub.
func (h *Hub) Forward() mq.Handler {
	return func(_ context.Context, ev mq.Event) error {
		data, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		h.Broadcast(data)
		return nil
	}
}

func (h *Hub) add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.quit:
		return false
	}
}

func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}
