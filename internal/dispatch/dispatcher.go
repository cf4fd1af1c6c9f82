package dispatch

import (
	"context"

	"github.com/dennisdiepolder/livedesk/internal/archive"
	"github.com/dennisdiepolder/livedesk/internal/assignment"
	"github.com/dennisdiepolder/livedesk/internal/registry"
	"github.com/dennisdiepolder/livedesk/internal/stats"
	"github.com/dennisdiepolder/livedesk/internal/ticketstore"
	"github.com/dennisdiepolder/livedesk/internal/types"
	"github.com/rs/zerolog"
)

// CustomerGateway delivers outbound payloads to customer connections.
// Delivery is best-effort: the return value reports whether the payload was
// handed to a live connection's send buffer.
type CustomerGateway interface {
	Send(connID string, v any) bool
}

// AgentGateway delivers outbound payloads to agent connections
type AgentGateway interface {
	Send(connID string, v any) bool
	Broadcast(v any, exceptConnID string)
	CloseConn(connID string)
}

// Dispatcher consumes inbound events from both channel groups on a single
// goroutine. Each event runs to completion before the next is processed, so
// the ticket/agent/assignment state sees no interleaved mutation. A recover
// boundary scopes any handler fault to the one event that caused it.
type Dispatcher struct {
	events chan Event

	reg       *registry.ConnectionRegistry
	store     *ticketstore.Store
	engine    *assignment.Engine
	stats     *stats.Aggregator
	customers CustomerGateway
	agents    AgentGateway

	// authenticated agent sessions: transport connID -> agentID
	sessions map[string]string

	archive archive.Store
	logger  zerolog.Logger
}

// New creates a Dispatcher over its collaborators
func New(reg *registry.ConnectionRegistry, store *ticketstore.Store, engine *assignment.Engine,
	agg *stats.Aggregator, customers CustomerGateway, agents AgentGateway, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		events:    make(chan Event, 256),
		reg:       reg,
		store:     store,
		engine:    engine,
		stats:     agg,
		customers: customers,
		agents:    agents,
		sessions:  make(map[string]string),
		logger:    logger.With().Str("component", "dispatch").Logger(),
	}
}

// SetArchive wires the closed-ticket archive store
func (d *Dispatcher) SetArchive(store archive.Store) {
	d.archive = store
}

// Push enqueues an inbound event for sequential processing
func (d *Dispatcher) Push(ev Event) {
	d.events <- ev
}

// Run processes events until the context is cancelled
func (d *Dispatcher) Run(ctx context.Context) {
	d.logger.Info().Msg("dispatcher started")
	for {
		select {
		case <-ctx.Done():
			d.logger.Info().Msg("dispatcher stopped")
			return
		case ev := <-d.events:
			d.dispatch(ev)
		}
	}
}

// dispatch runs one event to completion behind the recover boundary
func (d *Dispatcher) dispatch(ev Event) {
	defer func() {
		if r := recover(); r != nil {
			channel, connID := ev.Origin()
			d.logger.Error().
				Interface("panic", r).
				Str("conn_id", connID).
				Msg("handler fault, event dropped")
			errEvent := types.ErrorEvent{Type: "error", Message: "internal error"}
			if channel == ChannelCustomer {
				d.customers.Send(connID, errEvent)
			} else {
				d.agents.Send(connID, errEvent)
			}
		}
	}()

	switch e := ev.(type) {
	case CustomerConnected:
		d.handleCustomerConnected(e)
	case CustomerDisconnected:
		d.handleCustomerDisconnected(e)
	case CustomerChat:
		d.handleCustomerChat(e)
	case CustomerTyping:
		d.handleCustomerTyping(e)
	case AgentAuth:
		d.handleAgentAuth(e)
	case AgentMessage:
		d.handleAgentMessage(e)
	case AgentTyping:
		d.handleAgentTyping(e)
	case AgentTicketStatus:
		d.handleAgentTicketStatus(e)
	case AgentStatus:
		d.handleAgentStatus(e)
	case AgentTicketDetails:
		d.handleAgentTicketDetails(e)
	case AgentDisconnected:
		d.handleAgentDisconnected(e)
	default:
		d.logger.Warn().Interface("event", ev).Msg("unknown event variant")
	}
}

// agentSession resolves the authenticated agent behind a connection. An
// unauthenticated connection gets an error reply and false.
func (d *Dispatcher) agentSession(connID string) (string, bool) {
	agentID, ok := d.sessions[connID]
	if !ok {
		d.agents.Send(connID, types.ErrorEvent{Type: "error", Message: "not authenticated"})
		return "", false
	}
	return agentID, true
}

// requireAssignment checks that the ticket is currently assigned to the
// acting agent. Failures produce a generic error event and no mutation.
func (d *Dispatcher) requireAssignment(connID, ticketID, agentID string) bool {
	assigned, ok := d.engine.AgentFor(ticketID)
	if !ok || assigned != agentID {
		d.agents.Send(connID, types.ErrorEvent{Type: "error", Message: "ticket not assigned to you"})
		return false
	}
	return true
}

// sendToAgent delivers a payload to an agent's current live connection.
// Returns false when the agent has no live connection.
func (d *Dispatcher) sendToAgent(agentID string, v any) bool {
	agent, ok := d.reg.GetAgent(agentID)
	if !ok || agent.ConnID == "" {
		return false
	}
	return d.agents.Send(agent.ConnID, v)
}

// archiveClosed hands a closed ticket to the archive store. The write runs
// on its own goroutine so it can never interleave with event handling.
func (d *Dispatcher) archiveClosed(t types.Ticket) {
	if d.archive == nil {
		return
	}
	record := archive.RecordFromTicket(t)
	go func() {
		if err := d.archive.SaveTicketRecord(record); err != nil {
			d.logger.Error().Err(err).Str("ticket_id", t.ID).Msg("failed to archive ticket")
		}
	}()
}
