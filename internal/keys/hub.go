package keys

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const writeWait = time.Second

// Hub broadcasts key events to connected game pages over WebSocket.
// Each event is written as one JSON text message.
type Hub struct {
	log      logrus.FieldLogger
	upgrader websocket.Upgrader
	origins  map[string]struct{}
	clients  map[*client]struct{}
	mu       sync.RWMutex
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

// NewHub creates an empty Hub.
func NewHub(log logrus.FieldLogger) *Hub {
	h := &Hub{
		log:     log.WithField("component", "keys"),
		origins: make(map[string]struct{}),
		clients: make(map[*client]struct{}),
	}
	h.upgrader.CheckOrigin = h.checkOrigin
	return h
}

// AllowOrigins lets pages served from other origins, such as
// "http://localhost:3000", subscribe. Same-host pages and clients that send
// no Origin header are always allowed.
func (h *Hub) AllowOrigins(origins ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, o := range origins {
		if o = strings.TrimRight(strings.ToLower(strings.TrimSpace(o)), "/"); o != "" {
			h.origins[o] = struct{}{}
		}
	}
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.origins[strings.ToLower(u.Scheme+"://"+u.Host)]
	return ok
}

// ServeHTTP upgrades the request and holds the connection until the client
// goes away. Incoming messages are ignored.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	c := &client{conn: conn}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.log.WithField("remote", r.RemoteAddr).Debug("key client connected")

	defer h.remove(c)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Emit writes every event to every client. Clients that fail a write are
// closed and dropped; Emit itself only fails on encoding errors.
func (h *Hub) Emit(ctx context.Context, events []Event) error {
	msgs := make([][]byte, 0, len(events))
	for _, ev := range events {
		msg, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		for _, msg := range msgs {
			if err := c.write(msg); err != nil {
				h.log.WithError(err).Debug("dropping key client")
				c.conn.Close()
				h.remove(c)
				break
			}
		}
	}
	return nil
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}
