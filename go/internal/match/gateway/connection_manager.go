package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mcdev12/codeduel/go/internal/match"
	"github.com/mcdev12/codeduel/go/internal/match/events"
	"github.com/rs/zerolog/log"
)

// MatchHandler receives the inbound events of every connection.
type MatchHandler interface {
	Join(ctx context.Context, p match.Participant) error
	Progress(ctx context.Context, update match.ProgressUpdate)
	Disconnect(connectionID string)
}

// ConnectionManager manages player WebSocket connections
type ConnectionManager struct {
	connections map[string]*Connection
	mu          sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig

	handler     MatchHandler
	broadcastCh chan BroadcastMessage
}

// Connection represents a WebSocket connection to a player
type Connection struct {
	ID      string
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager

	ConnectedAt time.Time
	LastPing    time.Time
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	HandlerTimeout  time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// BroadcastMessage is an encoded message addressed to one connection
type BroadcastMessage struct {
	ConnectionID string
	Data         []byte
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		HandlerTimeout:  10 * time.Second,
		MaxMessageSize:  4096,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// Origins are enforced by the CORS layer in front of the server
			return true
		},
	}
}

// NewConnectionManager creates a new WebSocket connection manager
func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*Connection),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan BroadcastMessage, 1000),
	}
}

// SetHandler wires the receiver of inbound events. It must be called before
// the first connection is accepted.
func (cm *ConnectionManager) SetHandler(h MatchHandler) {
	cm.handler = h
}

// Start delivers queued messages until ctx is cancelled.
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			return
		case message := <-cm.broadcastCh:
			cm.deliver(message)
		}
	}
}

// UpgradeConnection upgrades an HTTP connection to WebSocket
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request) error {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		Conn:        conn,
		Send:        make(chan []byte, 256),
		Manager:     cm,
		ConnectedAt: time.Now(),
		LastPing:    time.Now(),
	}

	cm.registerConnection(connection)

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("remote_addr", r.RemoteAddr).
		Msg("WebSocket connection established")

	return nil
}

func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.connections[conn.ID] = conn

	log.Debug().
		Str("connection_id", conn.ID).
		Int("total_connections", len(cm.connections)).
		Msg("connection registered")
}

// unregisterConnection removes a connection and reports the disconnect once.
func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	if _, exists := cm.connections[conn.ID]; !exists {
		cm.mu.Unlock()
		return
	}
	delete(cm.connections, conn.ID)
	close(conn.Send)
	cm.mu.Unlock()

	log.Info().
		Str("connection_id", conn.ID).
		Dur("connected_for", time.Since(conn.ConnectedAt)).
		Msg("connection unregistered")

	if cm.handler != nil {
		cm.handler.Disconnect(conn.ID)
	}
}

// Send queues a notification for one connection. It never blocks; when the
// delivery buffer is full the message is dropped.
func (cm *ConnectionManager) Send(connectionID string, n events.Notification) {
	data, err := encodeNotification(n)
	if err != nil {
		log.Error().Err(err).Str("type", string(n.Type)).Msg("failed to marshal notification")
		return
	}

	select {
	case cm.broadcastCh <- BroadcastMessage{ConnectionID: connectionID, Data: data}:
	default:
		log.Warn().
			Str("connection_id", connectionID).
			Str("type", string(n.Type)).
			Msg("broadcast channel full, dropping message")
	}
}

func encodeNotification(n events.Notification) ([]byte, error) {
	payload, err := json.Marshal(n.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(OutboundMessage{
		ID:        uuid.New().String(),
		Type:      n.Type,
		SessionID: n.SessionID,
		Timestamp: time.Now().UTC(),
		Data:      payload,
	})
}

func (cm *ConnectionManager) deliver(message BroadcastMessage) {
	cm.mu.RLock()
	conn, exists := cm.connections[message.ConnectionID]
	if !exists {
		cm.mu.RUnlock()
		log.Debug().Str("connection_id", message.ConnectionID).Msg("dropping message for closed connection")
		return
	}

	select {
	case conn.Send <- message.Data:
		cm.mu.RUnlock()
	default:
		cm.mu.RUnlock()
		// Connection is slow/dead, close it
		log.Warn().
			Str("connection_id", conn.ID).
			Msg("connection send buffer full, closing connection")
		cm.unregisterConnection(conn)
		conn.Conn.Close()
	}
}

// GetConnectionStats returns statistics about active connections
func (cm *ConnectionManager) GetConnectionStats() map[string]interface{} {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	return map[string]interface{}{
		"total_connections": len(cm.connections),
		"queued_messages":   len(cm.broadcastCh),
	}
}

// writePump handles sending messages to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				// Channel was closed
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				c.Manager.unregisterConnection(c)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				c.Manager.unregisterConnection(c)
				return
			}
		}
	}
}

// readPump handles reading messages from the WebSocket connection
func (c *Connection) readPump() {
	defer func() {
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		c.LastPing = time.Now()
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			break
		}

		c.handleClientMessage(message)
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}

// handleClientMessage validates a client message and hands it to the match handler.
func (c *Connection) handleClientMessage(message []byte) {
	parsed, err := ParseInbound(message)
	if err != nil {
		log.Debug().
			Err(err).
			Str("connection_id", c.ID).
			Msg("rejected client message")
		c.Manager.Send(c.ID, events.Notification{
			Type:    events.TypeError,
			Payload: events.ErrorPayload{Message: err.Error()},
		})
		return
	}

	handler := c.Manager.handler
	if handler == nil {
		log.Error().Str("connection_id", c.ID).Msg("no match handler configured")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.Manager.config.HandlerTimeout)
	defer cancel()

	switch payload := parsed.(type) {
	case JoinQueuePayload:
		// rejections are reported to the client by the handler
		_ = handler.Join(ctx, match.Participant{
			PlayerID:     payload.PlayerID,
			ConnectionID: c.ID,
			DisplayName:  payload.PlayerName,
		})
	case SubmitResultPayload:
		handler.Progress(ctx, match.ProgressUpdate{
			SessionID:   payload.MatchID,
			PlayerID:    payload.PlayerID,
			TestsPassed: *payload.TestsPassed,
		})
	}
}
