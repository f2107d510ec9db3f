// internal/server/handlers/websocket.go

package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"creatorpulse/internal/adapter/events"
)

// Subscriber is the subset of *nats.Conn used by the websocket relay
type Subscriber interface {
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
}

var _ Subscriber = (*nats.Conn)(nil)

// WebSocketClient represents a connected WebSocket client
type WebSocketClient struct {
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	userID string
	sub    *nats.Subscription
	config WebSocketConfig
	logger *logrus.Entry
}

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 4096,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origins are enforced by the CORS layer in front of the API
		return true
	},
}

// RecommendationWebSocketHandler relays the caller's recommendation events
// from NATS to a WebSocket connection
func RecommendationWebSocketHandler(subscriber Subscriber, topic string, logger *logrus.Entry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			code, message := userIDError(err)
			http.Error(w, message, code)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.WithError(err).Warn("Failed to upgrade to WebSocket")
			return
		}

		client := &WebSocketClient{
			conn:   conn,
			send:   make(chan []byte, 16),
			done:   make(chan struct{}),
			userID: userID,
			config: DefaultWebSocketConfig(),
			logger: logger.WithField("user_id", userID),
		}

		subject := events.UserGeneratedSubject(topic, userID)
		client.sub, err = subscriber.Subscribe(subject, func(msg *nats.Msg) {
			client.enqueue(msg.Data)
		})
		if err != nil {
			client.logger.WithError(err).Error("Failed to subscribe to recommendation events")
			client.closeConnection()
			return
		}

		go client.writePump()
		go client.readPump()

		welcome, _ := json.Marshal(map[string]interface{}{
			"type":   "welcome",
			"userId": userID,
			"time":   time.Now().UTC(),
		})
		client.enqueue(welcome)

		client.logger.Info("WebSocket connection opened")
	}
}

// enqueue hands a message to the write pump, dropping it if the client is
// gone or too slow
func (c *WebSocketClient) enqueue(message []byte) {
	select {
	case <-c.done:
	case c.send <- message:
	default:
		c.logger.Warn("WebSocket send buffer full, dropping message")
	}
}

// readPump drains the connection so pongs and close frames are processed
func (c *WebSocketClient) readPump() {
	defer c.closeConnection()

	c.conn.SetReadLimit(c.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.WithError(err).Warn("WebSocket error")
			}
			return
		}
	}
}

// writePump pumps queued messages to the WebSocket connection
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(c.config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for {
		select {
		case <-c.done:
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// closeConnection unsubscribes and closes the connection once
func (c *WebSocketClient) closeConnection() {
	c.once.Do(func() {
		close(c.done)

		if c.sub != nil {
			c.sub.Unsubscribe()
		}

		c.conn.Close()

		c.logger.Info("WebSocket connection closed")
	})
}
