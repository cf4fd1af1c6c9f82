package dispatch

import (
	"time"

	"github.com/dennisdiepolder/livedesk/internal/metrics"
	"github.com/dennisdiepolder/livedesk/internal/types"
)

// handleAgentAuth binds a connection to an agent identity. A returning
// agent keeps its existing assignments; only the live connection reference
// is replaced, and any previous socket for the same id is closed.
func (d *Dispatcher) handleAgentAuth(ev AgentAuth) {
	if ev.AgentID == "" || ev.Name == "" {
		d.agents.Send(ev.Conn, types.AuthError{
			Type:    "auth_error",
			Message: "agentId and agentName are required",
		})
		return
	}

	if prev, ok := d.reg.GetAgent(ev.AgentID); ok && prev.ConnID != "" && prev.ConnID != ev.Conn {
		delete(d.sessions, prev.ConnID)
		d.agents.CloseConn(prev.ConnID)
	}

	d.sessions[ev.Conn] = ev.AgentID
	d.reg.RegisterAgent(ev.AgentID, ev.Name, ev.Department, ev.Conn)
	metrics.Get().RecordAgentConnect()

	d.agents.Send(ev.Conn, types.AuthSuccess{
		Type:    "auth_success",
		AgentID: ev.AgentID,
		Name:    ev.Name,
		Tickets: d.store.SummariesFor(d.engine.TicketsFor(ev.AgentID)),
		Stats:   d.stats.Compute(),
	})
	d.agents.Broadcast(types.AgentStatusChange{
		Type:    "agent_status_change",
		AgentID: ev.AgentID,
		Name:    ev.Name,
		Status:  types.AgentAvailable,
	}, ev.Conn)

	d.logger.Info().
		Str("agent_id", ev.AgentID).
		Str("department", ev.Department).
		Msg("agent authenticated")
}

// handleAgentMessage appends an agent reply and forwards it live to the
// customer when the connection is still up
func (d *Dispatcher) handleAgentMessage(ev AgentMessage) {
	agentID, ok := d.agentSession(ev.Conn)
	if !ok {
		return
	}
	if !d.requireAssignment(ev.Conn, ev.TicketID, agentID) {
		return
	}

	msg, ok := d.store.AppendMessage(ev.TicketID, ev.Message, types.SenderAgent, agentID)
	if !ok {
		return
	}
	d.reg.TouchAgent(agentID)
	metrics.Get().RecordMessage()

	ticket, _ := d.store.Get(ev.TicketID)
	delivered := d.customers.Send(ticket.CustomerID, types.ChatResponse{
		Type:        "chat_response",
		Message:     msg.Content,
		Timestamp:   msg.Timestamp,
		MessageID:   msg.ID,
		Sender:      types.SenderAgent,
		MessageType: types.MessageTypeText,
	})

	d.agents.Send(ev.Conn, types.MessageSent{
		Type:      "message_sent",
		TicketID:  ev.TicketID,
		MessageID: msg.ID,
		Delivered: delivered,
		Timestamp: msg.Timestamp,
	})
}

func (d *Dispatcher) handleAgentTyping(ev AgentTyping) {
	agentID, ok := d.agentSession(ev.Conn)
	if !ok {
		return
	}
	assigned, ok := d.engine.AgentFor(ev.TicketID)
	if !ok || assigned != agentID {
		return
	}

	if ticket, ok := d.store.Get(ev.TicketID); ok {
		d.customers.Send(ticket.CustomerID, types.TypingIndicator{
			Type:     "typing",
			IsTyping: ev.IsTyping,
		})
	}
}

// handleAgentTicketStatus updates an assigned ticket's status. Closing goes
// through the store's close path, which releases the assignment slot and
// notifies the customer with a closing system message.
func (d *Dispatcher) handleAgentTicketStatus(ev AgentTicketStatus) {
	agentID, ok := d.agentSession(ev.Conn)
	if !ok {
		return
	}
	if !d.requireAssignment(ev.Conn, ev.TicketID, agentID) {
		return
	}
	if !types.ValidTicketStatus(ev.Status) {
		d.agents.Send(ev.Conn, types.ErrorEvent{Type: "error", Message: "invalid ticket status"})
		return
	}

	if ev.Status == types.TicketClosed {
		d.store.AppendMessage(ev.TicketID, "This conversation has been closed by the support agent.", types.SenderSystem, "")
		closed, ok := d.store.Close(ev.TicketID, agentID)
		if !ok {
			return
		}
		metrics.Get().RecordTicketClosed()

		d.customers.Send(closed.CustomerID, types.ChatResponse{
			Type:        "chat_response",
			Message:     "This conversation has been closed by the support agent.",
			Timestamp:   time.Now(),
			Sender:      types.SenderSystem,
			MessageType: types.MessageTypeClosed,
		})
		d.agents.Send(ev.Conn, types.TicketUpdated{
			Type:     "ticket_updated",
			TicketID: ev.TicketID,
			Status:   types.TicketClosed,
		})
		d.archiveClosed(closed)

		d.logger.Info().
			Str("ticket_id", ev.TicketID).
			Str("agent_id", agentID).
			Msg("ticket closed")
		return
	}

	d.store.SetStatus(ev.TicketID, ev.Status)
	if ev.Status != types.TicketAssigned {
		// Leaving the assigned state frees the agent's slot so the
		// status<->index invariant holds.
		d.engine.Release(ev.TicketID)
	}
	d.agents.Send(ev.Conn, types.TicketUpdated{
		Type:     "ticket_updated",
		TicketID: ev.TicketID,
		Status:   ev.Status,
	})
}

// handleAgentStatus updates the agent's own availability and tells peers
func (d *Dispatcher) handleAgentStatus(ev AgentStatus) {
	agentID, ok := d.agentSession(ev.Conn)
	if !ok {
		return
	}
	if !types.ValidAgentStatus(ev.Status) {
		d.agents.Send(ev.Conn, types.ErrorEvent{Type: "error", Message: "invalid agent status"})
		return
	}

	d.reg.SetAgentStatus(agentID, ev.Status)
	agent, _ := d.reg.GetAgent(agentID)
	d.agents.Broadcast(types.AgentStatusChange{
		Type:    "agent_status_change",
		AgentID: agentID,
		Name:    agent.Name,
		Status:  ev.Status,
	}, ev.Conn)
}

// handleAgentTicketDetails returns the full ticket history and marks all
// customer-authored messages as read
func (d *Dispatcher) handleAgentTicketDetails(ev AgentTicketDetails) {
	agentID, ok := d.agentSession(ev.Conn)
	if !ok {
		return
	}
	if !d.requireAssignment(ev.Conn, ev.TicketID, agentID) {
		return
	}

	ticket, ok := d.store.MarkRead(ev.TicketID)
	if !ok {
		return
	}
	d.reg.TouchAgent(agentID)
	d.agents.Send(ev.Conn, types.TicketDetails{Type: "ticket_details", Ticket: ticket})
}

// handleAgentDisconnected marks the agent offline but keeps its ticket
// assignments; they stay bound until reconnection or explicit closure.
func (d *Dispatcher) handleAgentDisconnected(ev AgentDisconnected) {
	agentID, ok := d.sessions[ev.Conn]
	if !ok {
		return
	}
	delete(d.sessions, ev.Conn)

	// A stale socket closing after a re-authentication must not knock the
	// fresh connection offline.
	agent, ok := d.reg.GetAgent(agentID)
	if !ok || agent.ConnID != ev.Conn {
		return
	}

	d.reg.SetAgentOffline(agentID)
	metrics.Get().RecordAgentDisconnect()
	d.agents.Broadcast(types.AgentStatusChange{
		Type:    "agent_status_change",
		AgentID: agentID,
		Name:    agent.Name,
		Status:  types.AgentOffline,
	}, ev.Conn)

	d.logger.Info().Str("agent_id", agentID).Msg("agent disconnected")
}
