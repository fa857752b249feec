package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/goalline/internal/metrics"
	"github.com/yourusername/goalline/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientBuffer   = 8
	maxInboundSize = 512

	feedMessageType = "daily_recommendations"
)

// FeedMessage is the envelope pushed to feed subscribers
type FeedMessage struct {
	Type        string                       `json:"type"`
	PublishedAt time.Time                    `json:"published_at"`
	Data        *models.DailyRecommendations `json:"data"`
}

type feedClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans daily recommendation sets out to websocket subscribers. New subscribers
// receive the most recent set on connect.
type Hub struct {
	upgrader websocket.Upgrader
	clients  map[*feedClient]struct{}
	latest   []byte
	logger   *logrus.Entry
	mu       sync.RWMutex
}

// NewHub creates an empty feed hub.
func NewHub(log *logrus.Logger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*feedClient]struct{}),
		logger:  log.WithField("component", "feed"),
	}
}

// Publish pushes recs to every subscriber. Subscribers whose buffer is full are dropped.
func (h *Hub) Publish(_ context.Context, recs *models.DailyRecommendations) error {
	if recs == nil {
		return fmt.Errorf("%w: nil recommendations", models.ErrInsufficientData)
	}
	payload, err := json.Marshal(FeedMessage{
		Type:        feedMessageType,
		PublishedAt: time.Now().UTC(),
		Data:        recs,
	})
	if err != nil {
		return fmt.Errorf("failed to encode feed message: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest = payload
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			h.logger.Warn("Dropping slow feed subscriber")
			h.removeLocked(c)
		}
	}
	return nil
}

// Subscribers returns the number of connected clients.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and registers the connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Debug("Feed upgrade failed")
		return
	}

	c := &feedClient{conn: conn, send: make(chan []byte, clientBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	if h.latest != nil {
		c.send <- h.latest
	}
	n := len(h.clients)
	h.mu.Unlock()

	metrics.UpdateFeedSubscribers(n)
	h.logger.WithField("subscribers", n).Info("Feed subscriber connected")

	go h.writePump(c)
	h.readPump(c)
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
}

func (h *Hub) remove(c *feedClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *feedClient) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	metrics.UpdateFeedSubscribers(len(h.clients))
}

// readPump only watches for close and pong frames; subscribers never send data.
func (h *Hub) readPump(c *feedClient) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxInboundSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.WithError(err).Debug("Feed subscriber read error")
			}
			return
		}
	}
}

func (h *Hub) writePump(c *feedClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
