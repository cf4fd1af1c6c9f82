package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/dennisdiepolder/livedesk/internal/config"
	"github.com/dennisdiepolder/livedesk/internal/dispatch"
	"github.com/dennisdiepolder/livedesk/internal/types"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// EventSink receives validated inbound events for sequential processing
type EventSink interface {
	Push(ev dispatch.Event)
}

// CustomerClient represents one customer WebSocket connection
type CustomerClient struct {
	// Transport connection id, 1:1 with this socket
	id string

	hub  *CustomerHub
	conn *websocket.Conn
	sink EventSink
	cfg  *config.Config

	// Buffered channel of outbound messages
	send chan []byte

	logger zerolog.Logger

	// done channel to signal client shutdown
	done chan struct{}

	// closeOnce ensures send channel is closed only once
	closeOnce sync.Once
}

// NewCustomerClient creates a new CustomerClient
func NewCustomerClient(id string, hub *CustomerHub, conn *websocket.Conn, sink EventSink, cfg *config.Config, logger zerolog.Logger) *CustomerClient {
	return &CustomerClient{
		id:     id,
		hub:    hub,
		conn:   conn,
		sink:   sink,
		cfg:    cfg,
		send:   make(chan []byte, 64),
		logger: logger.With().Str("conn_id", id).Logger(),
		done:   make(chan struct{}),
	}
}

// readPump pumps messages from the websocket connection to the dispatcher
func (c *CustomerClient) readPump() {
	defer func() {
		close(c.done)
		c.hub.remove(c)
		c.sink.Push(dispatch.CustomerDisconnected{Conn: c.id})
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug().Err(err).Msg("customer websocket read error")
			}
			break
		}

		c.handleMessage(message)
	}
}

// handleMessage validates an inbound frame and enqueues the typed event.
// Malformed frames are answered locally and never reach the dispatcher.
func (c *CustomerClient) handleMessage(message []byte) {
	var msgType struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(message, &msgType); err != nil {
		c.sendError("invalid message format")
		return
	}

	switch msgType.Type {
	case "chat_message":
		var m types.ChatMessage
		if err := json.Unmarshal(message, &m); err != nil || m.Message == "" {
			c.sendError("message is required")
			return
		}
		c.sink.Push(dispatch.CustomerChat{Conn: c.id, Message: m.Message})

	case "typing":
		var m types.CustomerTyping
		if err := json.Unmarshal(message, &m); err != nil {
			c.sendError("invalid typing event")
			return
		}
		c.sink.Push(dispatch.CustomerTyping{Conn: c.id, IsTyping: m.IsTyping})

	default:
		c.logger.Debug().Str("type", msgType.Type).Msg("unknown message type")
		c.sendError("unknown message type")
	}
}

func (c *CustomerClient) sendError(msg string) {
	if data, err := json.Marshal(types.ErrorEvent{Type: "error", Message: msg}); err == nil {
		c.safeSend(data)
	}
}

// writePump pumps messages to the websocket connection
func (c *CustomerClient) writePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start starts the client's read and write pumps
func (c *CustomerClient) Start() {
	go c.writePump()
	go c.readPump()
}

// Close safely closes the client's send channel (idempotent)
func (c *CustomerClient) Close() {
	c.closeOnce.Do(func() {
		defer func() {
			recover() // absorb panic if channel was already closed
		}()
		close(c.send)
	})
}

// safeSend attempts to send a message, recovering from panic if channel is closed
func (c *CustomerClient) safeSend(data []byte) (sent bool) {
	defer func() {
		if r := recover(); r != nil {
			sent = false
		}
	}()

	select {
	case c.send <- data:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}
