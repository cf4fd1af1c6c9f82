package types

import "time"

// TicketStatus represents the lifecycle state of a support ticket
type TicketStatus string

const (
	TicketOpen     TicketStatus = "open"
	TicketAssigned TicketStatus = "assigned"
	TicketResolved TicketStatus = "resolved"
	TicketClosed   TicketStatus = "closed"
)

// ValidTicketStatus reports whether s is a known ticket status
func ValidTicketStatus(s TicketStatus) bool {
	switch s {
	case TicketOpen, TicketAssigned, TicketResolved, TicketClosed:
		return true
	}
	return false
}

// TicketPriority represents the urgency of a ticket. It is stored and
// reported but does not influence routing.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityNormal TicketPriority = "normal"
	PriorityHigh   TicketPriority = "high"
	PriorityUrgent TicketPriority = "urgent"
)

// MessageSender identifies who authored a message
type MessageSender string

const (
	SenderCustomer MessageSender = "customer"
	SenderAgent    MessageSender = "agent"
	SenderSystem   MessageSender = "system"
)

// Message is a single entry in a ticket's append-only conversation log
type Message struct {
	ID        string        `json:"id"`
	Content   string        `json:"content"`
	Sender    MessageSender `json:"sender"`
	SenderID  string        `json:"senderId,omitempty"` // set for agent-authored messages
	Timestamp time.Time     `json:"timestamp"`
	Read      bool          `json:"read"`
}

// Ticket is one customer's tracked support conversation
type Ticket struct {
	ID            string            `json:"id"`
	CustomerID    string            `json:"customerId"` // customer connection id
	Status        TicketStatus      `json:"status"`
	Priority      TicketPriority    `json:"priority"`
	AssignedAgent string            `json:"assignedAgent,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
	ClosedAt      *time.Time        `json:"closedAt,omitempty"`
	ClosedBy      string            `json:"closedBy,omitempty"`
	Messages      []Message         `json:"messages"`
	CustomerInfo  map[string]string `json:"customerInfo,omitempty"`
}

// UnreadCount returns the number of unread customer-authored messages
func (t *Ticket) UnreadCount() int {
	n := 0
	for _, m := range t.Messages {
		if m.Sender == SenderCustomer && !m.Read {
			n++
		}
	}
	return n
}

// LastMessage returns the most recent message, or nil for an empty log
func (t *Ticket) LastMessage() *Message {
	if len(t.Messages) == 0 {
		return nil
	}
	return &t.Messages[len(t.Messages)-1]
}

// TicketSummary is the compact ticket view sent to agents
type TicketSummary struct {
	ID            string         `json:"id"`
	CustomerID    string         `json:"customerId"`
	Status        TicketStatus   `json:"status"`
	Priority      TicketPriority `json:"priority"`
	AssignedAgent string         `json:"assignedAgent,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	UnreadCount   int            `json:"unreadCount"`
	LastMessage   string         `json:"lastMessage,omitempty"`
	MessageCount  int            `json:"messageCount"`
}

// Summary builds the compact view of a ticket
func (t *Ticket) Summary() TicketSummary {
	s := TicketSummary{
		ID:            t.ID,
		CustomerID:    t.CustomerID,
		Status:        t.Status,
		Priority:      t.Priority,
		AssignedAgent: t.AssignedAgent,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		UnreadCount:   t.UnreadCount(),
		MessageCount:  len(t.Messages),
	}
	if last := t.LastMessage(); last != nil {
		s.LastMessage = last.Content
	}
	return s
}
