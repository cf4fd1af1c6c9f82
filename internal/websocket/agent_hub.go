package websocket

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// AgentHub maintains the set of active agent connections, keyed by transport
// connection id. Identity (agent id) lives in the dispatcher's session map
// and the connection registry; the hub only moves bytes.
type AgentHub struct {
	clients map[string]*AgentClient // connID -> client
	mu      sync.RWMutex
	logger  zerolog.Logger
}

// NewAgentHub creates a new AgentHub
func NewAgentHub(logger zerolog.Logger) *AgentHub {
	return &AgentHub{
		clients: make(map[string]*AgentClient),
		logger:  logger,
	}
}

func (h *AgentHub) add(client *AgentClient) {
	h.mu.Lock()
	h.clients[client.id] = client
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().
		Str("conn_id", client.id).
		Int("total_agent_conns", total).
		Msg("agent connection opened")
}

func (h *AgentHub) remove(client *AgentClient) {
	h.mu.Lock()
	if existing, ok := h.clients[client.id]; ok && existing == client {
		delete(h.clients, client.id)
		client.Close()
	}
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().
		Str("conn_id", client.id).
		Int("total_agent_conns", total).
		Msg("agent connection closed")
}

// Send delivers a payload to one agent connection
func (h *AgentHub) Send(connID string, v any) bool {
	h.mu.RLock()
	client, ok := h.clients[connID]
	h.mu.RUnlock()

	if !ok {
		return false
	}

	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to marshal agent payload")
		return false
	}
	return client.safeSend(data)
}

// Broadcast delivers a payload to every agent connection except one.
// Pass an empty exceptConnID to reach all connections.
func (h *AgentHub) Broadcast(v any, exceptConnID string) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to marshal broadcast payload")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, client := range h.clients {
		if id == exceptConnID {
			continue
		}
		client.safeSend(data)
	}
}

// CloseConn tears down one agent connection, if present
func (h *AgentHub) CloseConn(connID string) {
	h.mu.Lock()
	client, ok := h.clients[connID]
	if ok {
		delete(h.clients, connID)
	}
	h.mu.Unlock()

	if ok {
		client.Close()
		client.conn.Close()
	}
}

// ClientCount returns the number of open agent connections
func (h *AgentHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
