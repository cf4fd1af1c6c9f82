package dispatch

import (
	"time"

	"github.com/dennisdiepolder/livedesk/internal/metrics"
	"github.com/dennisdiepolder/livedesk/internal/types"
)

func (d *Dispatcher) handleCustomerConnected(ev CustomerConnected) {
	d.reg.AddCustomer(ev.Conn, ev.Info)
	metrics.Get().RecordCustomerConnect()
}

// handleCustomerChat resolves or creates the customer's ticket, records the
// message, and either routes the ticket to an agent or forwards the message
// to the existing assignee.
func (d *Dispatcher) handleCustomerChat(ev CustomerChat) {
	d.reg.TouchCustomer(ev.Conn)
	metrics.Get().RecordMessage()

	ticket, found := d.store.GetOpenForCustomer(ev.Conn)
	var msg types.Message
	if !found {
		cust, _ := d.reg.GetCustomer(ev.Conn)
		ticket = d.store.Create(ev.Conn, ev.Message, cust.Info)
		msg = ticket.Messages[len(ticket.Messages)-1]
		metrics.Get().RecordTicketCreated()
		d.logger.Info().
			Str("ticket_id", ticket.ID).
			Str("customer_id", ev.Conn).
			Msg("ticket created")
	} else {
		msg, _ = d.store.AppendMessage(ticket.ID, ev.Message, types.SenderCustomer, "")
	}

	d.customers.Send(ev.Conn, types.MessageAck{
		Type:      "message_ack",
		Status:    "received",
		MessageID: msg.ID,
		Timestamp: msg.Timestamp,
		TicketID:  ticket.ID,
	})

	if ticket.Status == types.TicketAssigned {
		// Live forward to the assignee; dropped if the agent is offline.
		d.sendToAgent(ticket.AssignedAgent, types.CustomerMessage{
			Type:     "customer_message",
			TicketID: ticket.ID,
			Message:  msg,
		})
		return
	}

	// Open and unassigned: try to route it now. No retry loop; the next
	// customer message triggers another attempt.
	agentID, ok := d.engine.PickAgent()
	if !ok {
		d.customers.Send(ev.Conn, types.ChatResponse{
			Type:        "chat_response",
			Message:     "All our agents are currently busy. You are in the queue and will be connected shortly.",
			Timestamp:   time.Now(),
			Sender:      types.SenderSystem,
			MessageType: types.MessageTypeNoAgents,
		})
		return
	}

	d.engine.Assign(ticket.ID, agentID)
	metrics.Get().RecordTicketAssigned()

	assigned, _ := d.store.Get(ticket.ID)
	notify := types.NewTicket{Type: "new_ticket", Ticket: assigned.Summary()}
	if len(assigned.Messages) > 0 {
		notify.Message = &assigned.Messages[0]
	}
	d.sendToAgent(agentID, notify)

	d.customers.Send(ev.Conn, types.ChatResponse{
		Type:        "chat_response",
		Message:     "An agent is connecting to assist you.",
		Timestamp:   time.Now(),
		Sender:      types.SenderSystem,
		MessageType: types.MessageTypeConnecting,
	})
}

// handleCustomerTyping forwards the indicator only when an assignment exists
func (d *Dispatcher) handleCustomerTyping(ev CustomerTyping) {
	ticket, ok := d.store.GetOpenForCustomer(ev.Conn)
	if !ok || ticket.Status != types.TicketAssigned {
		return
	}
	d.sendToAgent(ticket.AssignedAgent, types.CustomerTypingEvent{
		Type:     "customer_typing",
		TicketID: ticket.ID,
		IsTyping: ev.IsTyping,
	})
}

// handleCustomerDisconnected removes the connection and tells the assignee.
// The ticket itself is left open or assigned; the customer may reconnect.
func (d *Dispatcher) handleCustomerDisconnected(ev CustomerDisconnected) {
	ticket, hasTicket := d.store.GetOpenForCustomer(ev.Conn)
	d.reg.RemoveCustomer(ev.Conn)
	metrics.Get().RecordCustomerDisconnect()

	if hasTicket && ticket.Status == types.TicketAssigned {
		d.sendToAgent(ticket.AssignedAgent, types.CustomerDisconnected{
			Type:     "customer_disconnected",
			TicketID: ticket.ID,
		})
	}
}
