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

// AgentClient represents one agent WebSocket connection. The connection is
// unauthenticated until the dispatcher accepts an authenticate event for it.
type AgentClient struct {
	// Transport connection id; the agent's stable identity is bound to it
	// only after authentication
	id string

	hub  *AgentHub
	conn *websocket.Conn
	sink EventSink
	cfg  *config.Config

	send chan []byte

	logger zerolog.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// NewAgentClient creates a new AgentClient
func NewAgentClient(id string, hub *AgentHub, conn *websocket.Conn, sink EventSink, cfg *config.Config, logger zerolog.Logger) *AgentClient {
	return &AgentClient{
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
func (c *AgentClient) readPump() {
	defer func() {
		close(c.done)
		c.hub.remove(c)
		c.sink.Push(dispatch.AgentDisconnected{Conn: c.id})
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
				c.logger.Debug().Err(err).Msg("agent websocket read error")
			}
			break
		}

		c.handleMessage(message)
	}
}

// handleMessage validates an inbound frame and enqueues the typed event
func (c *AgentClient) handleMessage(message []byte) {
	var msgType struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(message, &msgType); err != nil {
		c.sendError("invalid message format")
		return
	}

	switch msgType.Type {
	case "authenticate":
		var m types.AgentAuthenticate
		if err := json.Unmarshal(message, &m); err != nil {
			c.sendError("invalid authenticate message")
			return
		}
		c.sink.Push(dispatch.AgentAuth{
			Conn:       c.id,
			AgentID:    m.AgentID,
			Name:       m.AgentName,
			Department: m.Department,
		})

	case "send_message":
		var m types.AgentSendMessage
		if err := json.Unmarshal(message, &m); err != nil || m.TicketID == "" || m.Message == "" {
			c.sendError("ticketId and message are required")
			return
		}
		c.sink.Push(dispatch.AgentMessage{Conn: c.id, TicketID: m.TicketID, Message: m.Message})

	case "typing":
		var m types.AgentTyping
		if err := json.Unmarshal(message, &m); err != nil || m.TicketID == "" {
			c.sendError("ticketId is required")
			return
		}
		c.sink.Push(dispatch.AgentTyping{Conn: c.id, TicketID: m.TicketID, IsTyping: m.IsTyping})

	case "update_ticket_status":
		var m types.AgentUpdateTicketStatus
		if err := json.Unmarshal(message, &m); err != nil || m.TicketID == "" || m.Status == "" {
			c.sendError("ticketId and status are required")
			return
		}
		c.sink.Push(dispatch.AgentTicketStatus{Conn: c.id, TicketID: m.TicketID, Status: m.Status})

	case "update_status":
		var m types.AgentUpdateStatus
		if err := json.Unmarshal(message, &m); err != nil || m.Status == "" {
			c.sendError("status is required")
			return
		}
		c.sink.Push(dispatch.AgentStatus{Conn: c.id, Status: m.Status})

	case "get_ticket_details":
		var m types.AgentGetTicketDetails
		if err := json.Unmarshal(message, &m); err != nil || m.TicketID == "" {
			c.sendError("ticketId is required")
			return
		}
		c.sink.Push(dispatch.AgentTicketDetails{Conn: c.id, TicketID: m.TicketID})

	default:
		c.logger.Debug().Str("type", msgType.Type).Msg("unknown message type")
		c.sendError("unknown message type")
	}
}

func (c *AgentClient) sendError(msg string) {
	if data, err := json.Marshal(types.ErrorEvent{Type: "error", Message: msg}); err == nil {
		c.safeSend(data)
	}
}

// writePump pumps messages to the websocket connection
func (c *AgentClient) writePump() {
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
func (c *AgentClient) Start() {
	go c.writePump()
	go c.readPump()
}

// Close safely closes the client's send channel (idempotent)
func (c *AgentClient) Close() {
	c.closeOnce.Do(func() {
		defer func() {
			recover() // absorb panic if channel was already closed
		}()
		close(c.send)
	})
}

// safeSend attempts to send a message, recovering from panic if channel is closed
func (c *AgentClient) safeSend(data []byte) (sent bool) {
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
