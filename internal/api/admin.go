package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/dennisdiepolder/livedesk/internal/archive"
	"github.com/dennisdiepolder/livedesk/internal/registry"
	"github.com/dennisdiepolder/livedesk/internal/stats"
	"github.com/dennisdiepolder/livedesk/internal/ticketstore"
	"github.com/dennisdiepolder/livedesk/internal/types"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// AdminHandler exposes read-only projections over core state. It never
// mutates tickets, agents, or assignments.
type AdminHandler struct {
	store   *ticketstore.Store
	reg     *registry.ConnectionRegistry
	stats   *stats.Aggregator
	archive archive.Store
	logger  zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(store *ticketstore.Store, reg *registry.ConnectionRegistry, agg *stats.Aggregator, arch archive.Store, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		store:   store,
		reg:     reg,
		stats:   agg,
		archive: arch,
		logger:  logger.With().Str("component", "api").Logger(),
	}
}

// ListTickets handles GET /api/tickets?status=&agentId=&limit=
func (h *AdminHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	filter := ticketstore.Filter{
		Status:  types.TicketStatus(r.URL.Query().Get("status")),
		AgentID: r.URL.Query().Get("agentId"),
	}
	if filter.Status != "" && !types.ValidTicketStatus(filter.Status) {
		writeError(w, http.StatusBadRequest, "invalid status filter")
		return
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = limit
	}

	tickets := h.store.List(filter)
	writeJSON(w, map[string]any{
		"tickets": tickets,
		"count":   len(tickets),
	})
}

// GetTicket handles GET /api/tickets/{ticketId}
func (h *AdminHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketId")
	ticket, ok := h.store.Get(ticketID)
	if !ok {
		writeError(w, http.StatusNotFound, "ticket not found")
		return
	}
	writeJSON(w, ticket)
}

// ListAgents handles GET /api/agents
func (h *AdminHandler) ListAgents(w http.ResponseWriter, r *http.Request) {
	agents := h.reg.AllAgents()
	writeJSON(w, map[string]any{
		"agents": agents,
		"count":  len(agents),
	})
}

// GetStats handles GET /api/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.stats.Compute())
}

// GetArchivedTickets handles GET /api/archive/tickets?date=
// The archive is empty unless DynamoDB archiving is enabled.
func (h *AdminHandler) GetArchivedTickets(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	records, err := h.archive.GetTicketRecords(date)
	if err != nil {
		h.logger.Error().Err(err).Str("date", date).Msg("failed to query ticket archive")
		writeError(w, http.StatusInternalServerError, "archive query failed")
		return
	}
	if records == nil {
		records = []archive.TicketRecord{}
	}
	writeJSON(w, map[string]any{
		"date":    date,
		"records": records,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
