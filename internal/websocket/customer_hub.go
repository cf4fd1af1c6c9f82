package websocket

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// CustomerHub maintains the set of active customer connections, keyed by
// transport connection id. It implements the dispatcher's customer gateway:
// delivery is best-effort and reports whether the payload reached a live
// connection's send buffer.
type CustomerHub struct {
	clients map[string]*CustomerClient // connID -> client
	mu      sync.RWMutex
	logger  zerolog.Logger
}

// NewCustomerHub creates a new CustomerHub
func NewCustomerHub(logger zerolog.Logger) *CustomerHub {
	return &CustomerHub{
		clients: make(map[string]*CustomerClient),
		logger:  logger,
	}
}

func (h *CustomerHub) add(client *CustomerClient) {
	h.mu.Lock()
	h.clients[client.id] = client
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().
		Str("conn_id", client.id).
		Int("total_customers", total).
		Msg("customer connected")
}

func (h *CustomerHub) remove(client *CustomerClient) {
	h.mu.Lock()
	if existing, ok := h.clients[client.id]; ok && existing == client {
		delete(h.clients, client.id)
		client.Close()
	}
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().
		Str("conn_id", client.id).
		Int("total_customers", total).
		Msg("customer disconnected")
}

// Send delivers a payload to one customer connection. Returns false when
// the connection is absent or its send buffer is full.
func (h *CustomerHub) Send(connID string, v any) bool {
	h.mu.RLock()
	client, ok := h.clients[connID]
	h.mu.RUnlock()

	if !ok {
		return false
	}

	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to marshal customer payload")
		return false
	}
	return client.safeSend(data)
}

// ClientCount returns the number of connected customers
func (h *CustomerHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
