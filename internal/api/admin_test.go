package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dennisdiepolder/livedesk/internal/archive"
	"github.com/dennisdiepolder/livedesk/internal/registry"
	"github.com/dennisdiepolder/livedesk/internal/stats"
	"github.com/dennisdiepolder/livedesk/internal/ticketstore"
	"github.com/dennisdiepolder/livedesk/internal/types"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

func newTestServer() (*httptest.Server, *ticketstore.Store, *registry.ConnectionRegistry) {
	store := ticketstore.New()
	reg := registry.New()
	agg := stats.NewAggregator(store, reg)
	handler := NewAdminHandler(store, reg, agg, archive.NewNoopStore(), zerolog.Nop())

	r := chi.NewRouter()
	r.Get("/api/tickets", handler.ListTickets)
	r.Get("/api/tickets/{ticketId}", handler.GetTicket)
	r.Get("/api/agents", handler.ListAgents)
	r.Get("/api/stats", handler.GetStats)
	r.Get("/api/archive/tickets", handler.GetArchivedTickets)

	return httptest.NewServer(r), store, reg
}

func getJSON(t *testing.T, url string, into any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.StatusCode
}

func TestListTickets(t *testing.T) {
	srv, store, _ := newTestServer()
	defer srv.Close()

	t1 := store.Create("cconn-1", "a", nil)
	t2 := store.Create("cconn-2", "b", nil)
	store.SetAssignment(t2.ID, "agent-1")
	store.Close(t1.ID, "agent-1")

	var body struct {
		Tickets []types.Ticket `json:"tickets"`
		Count   int            `json:"count"`
	}

	if code := getJSON(t, srv.URL+"/api/tickets", &body); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body.Count != 2 {
		t.Errorf("expected 2 tickets, got %d", body.Count)
	}

	if code := getJSON(t, srv.URL+"/api/tickets?status=assigned", &body); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body.Count != 1 || body.Tickets[0].ID != t2.ID {
		t.Errorf("expected only %s for status=assigned, got %+v", t2.ID, body.Tickets)
	}

	if code := getJSON(t, srv.URL+"/api/tickets?agentId=agent-1", &body); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body.Count != 1 {
		t.Errorf("expected 1 ticket for agent-1, got %d", body.Count)
	}

	if code := getJSON(t, srv.URL+"/api/tickets?limit=1", &body); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body.Count != 1 {
		t.Errorf("expected limit to cap the result, got %d", body.Count)
	}
}

func TestListTicketsInvalidFilters(t *testing.T) {
	srv, _, _ := newTestServer()
	defer srv.Close()

	var body map[string]string
	if code := getJSON(t, srv.URL+"/api/tickets?status=archived", &body); code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid status, got %d", code)
	}
	if code := getJSON(t, srv.URL+"/api/tickets?limit=nope", &body); code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid limit, got %d", code)
	}
	if code := getJSON(t, srv.URL+"/api/tickets?limit=-1", &body); code != http.StatusBadRequest {
		t.Errorf("expected 400 for negative limit, got %d", code)
	}
}

func TestGetTicket(t *testing.T) {
	srv, store, _ := newTestServer()
	defer srv.Close()

	created := store.Create("cconn-1", "Hello", nil)

	var ticket types.Ticket
	if code := getJSON(t, srv.URL+"/api/tickets/"+created.ID, &ticket); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if ticket.ID != created.ID {
		t.Errorf("expected ticket %s, got %s", created.ID, ticket.ID)
	}
	if len(ticket.Messages) != 1 {
		t.Errorf("expected full message history, got %d messages", len(ticket.Messages))
	}

	var errBody map[string]string
	if code := getJSON(t, srv.URL+"/api/tickets/TKT-missing", &errBody); code != http.StatusNotFound {
		t.Errorf("expected 404 for an unknown ticket, got %d", code)
	}
}

func TestListAgents(t *testing.T) {
	srv, _, reg := newTestServer()
	defer srv.Close()

	reg.RegisterAgent("agent-1", "Dana", "support", "aconn-1")
	reg.RegisterAgent("agent-2", "Eli", "billing", "aconn-2")

	var body struct {
		Agents []types.AgentInfo `json:"agents"`
		Count  int               `json:"count"`
	}
	if code := getJSON(t, srv.URL+"/api/agents", &body); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body.Count != 2 {
		t.Errorf("expected 2 agents, got %d", body.Count)
	}
}

func TestGetStats(t *testing.T) {
	srv, store, reg := newTestServer()
	defer srv.Close()

	reg.RegisterAgent("agent-1", "Dana", "support", "aconn-1")
	store.Create("cconn-1", "a", nil)

	var got types.Stats
	if code := getJSON(t, srv.URL+"/api/stats", &got); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if got.TotalTickets != 1 || got.OpenTickets != 1 {
		t.Errorf("expected 1 open ticket in stats, got %+v", got)
	}
	if got.TotalAgents != 1 || got.ActiveAgents != 1 {
		t.Errorf("expected 1 active agent in stats, got %+v", got)
	}
}

func TestGetArchivedTicketsWithNoopStore(t *testing.T) {
	srv, _, _ := newTestServer()
	defer srv.Close()

	var body struct {
		Date    string                 `json:"date"`
		Records []archive.TicketRecord `json:"records"`
	}
	if code := getJSON(t, srv.URL+"/api/archive/tickets?date=2026-08-01", &body); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body.Date != "2026-08-01" {
		t.Errorf("expected echoed date, got %s", body.Date)
	}
	if body.Records == nil || len(body.Records) != 0 {
		t.Errorf("expected an empty record list, got %v", body.Records)
	}
}
