package websocket

import (
	"net/http"

	"github.com/dennisdiepolder/livedesk/internal/config"
	"github.com/dennisdiepolder/livedesk/internal/dispatch"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin filtering happens in the CORS middleware for the REST
		// surface; websocket upgrades accept all origins.
		return true
	},
}

// CustomerHandler upgrades customer-channel connections
type CustomerHandler struct {
	hub    *CustomerHub
	sink   EventSink
	cfg    *config.Config
	logger zerolog.Logger
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(hub *CustomerHub, sink EventSink, cfg *config.Config, logger zerolog.Logger) *CustomerHandler {
	return &CustomerHandler{
		hub:    hub,
		sink:   sink,
		cfg:    cfg,
		logger: logger,
	}
}

// ServeHTTP handles WebSocket upgrade requests on the customer channel
func (h *CustomerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to upgrade customer connection")
		return
	}

	connID := uuid.New().String()
	info := customerInfo(r)

	client := NewCustomerClient(connID, h.hub, conn, h.sink, h.cfg, h.logger)
	h.hub.add(client)
	h.sink.Push(dispatch.CustomerConnected{Conn: connID, Info: info})
	client.Start()
}

// customerInfo collects optional customer metadata from the upgrade request
func customerInfo(r *http.Request) map[string]string {
	info := make(map[string]string)
	for _, key := range []string{"name", "email"} {
		if v := r.URL.Query().Get(key); v != "" {
			info[key] = v
		}
	}
	if ua := r.UserAgent(); ua != "" {
		info["userAgent"] = ua
	}
	return info
}

// AgentHandler upgrades agent-channel connections
type AgentHandler struct {
	hub    *AgentHub
	sink   EventSink
	cfg    *config.Config
	logger zerolog.Logger
}

// NewAgentHandler creates a new AgentHandler
func NewAgentHandler(hub *AgentHub, sink EventSink, cfg *config.Config, logger zerolog.Logger) *AgentHandler {
	return &AgentHandler{
		hub:    hub,
		sink:   sink,
		cfg:    cfg,
		logger: logger,
	}
}

// ServeHTTP handles WebSocket upgrade requests on the agent channel
func (h *AgentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to upgrade agent connection")
		return
	}

	client := NewAgentClient(uuid.New().String(), h.hub, conn, h.sink, h.cfg, h.logger)
	h.hub.add(client)
	client.Start()
}
