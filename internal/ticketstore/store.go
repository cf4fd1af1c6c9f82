package ticketstore

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dennisdiepolder/livedesk/internal/types"
)

// Releaser detaches a ticket from its assigned agent. Implemented by the
// assignment engine; closing a ticket must always release its slot.
type Releaser interface {
	Release(ticketID string)
}

// Store owns all ticket entities and their append-only message logs.
// Tickets are never deleted; closed tickets stay in memory for the process
// lifetime. Reads return deep copies so callers cannot mutate owned state.
type Store struct {
	tickets  map[string]*types.Ticket
	order    []string // creation order, for stable listings
	releaser Releaser
	seq      uint64
	msgSeq   uint64
	mu       sync.RWMutex
}

// New creates an empty Store
func New() *Store {
	return &Store{
		tickets: make(map[string]*types.Ticket),
	}
}

// SetReleaser wires the assignment engine's release hook
func (s *Store) SetReleaser(r Releaser) {
	s.releaser = r
}

// Create generates a new open ticket for a customer connection. The initial
// message, when non-empty, is appended as the first customer message.
func (s *Store) Create(customerID, initialMessage string, info map[string]string) types.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.seq++
	t := &types.Ticket{
		ID:           fmt.Sprintf("TKT-%d-%d", now.UnixMilli(), s.seq),
		CustomerID:   customerID,
		Status:       types.TicketOpen,
		Priority:     types.PriorityNormal,
		CreatedAt:    now,
		UpdatedAt:    now,
		CustomerInfo: info,
	}
	if initialMessage != "" {
		t.Messages = append(t.Messages, s.newMessage(initialMessage, types.SenderCustomer, ""))
	}

	s.tickets[t.ID] = t
	s.order = append(s.order, t.ID)
	return copyTicket(t)
}

// GetOpenForCustomer returns the customer's single open or assigned ticket.
// At most one such ticket exists per customer connection.
func (s *Store) GetOpenForCustomer(customerID string) (types.Ticket, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tickets {
		if t.CustomerID == customerID && (t.Status == types.TicketOpen || t.Status == types.TicketAssigned) {
			return copyTicket(t), true
		}
	}
	return types.Ticket{}, false
}

// AppendMessage appends a message to a ticket's log and bumps UpdatedAt.
// Unknown tickets are a silent no-op.
func (s *Store) AppendMessage(ticketID, content string, sender types.MessageSender, senderID string) (types.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[ticketID]
	if !ok {
		return types.Message{}, false
	}

	msg := s.newMessage(content, sender, senderID)
	t.Messages = append(t.Messages, msg)
	t.UpdatedAt = msg.Timestamp
	return msg, true
}

// Close stamps ClosedAt/ClosedBy, sets status closed, and releases the
// ticket's assignment slot
func (s *Store) Close(ticketID, closedBy string) (types.Ticket, bool) {
	s.mu.Lock()
	t, ok := s.tickets[ticketID]
	if !ok {
		s.mu.Unlock()
		return types.Ticket{}, false
	}

	now := time.Now()
	t.Status = types.TicketClosed
	t.ClosedAt = &now
	t.ClosedBy = closedBy
	t.UpdatedAt = now
	closed := copyTicket(t)
	s.mu.Unlock()

	// Release outside the store lock; the engine takes its own lock and may
	// call back into the store.
	if s.releaser != nil {
		s.releaser.Release(ticketID)
	}
	return closed, true
}

// SetStatus updates a ticket's status without lifecycle side effects.
// Used for non-terminal transitions; closing goes through Close.
func (s *Store) SetStatus(ticketID string, status types.TicketStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[ticketID]
	if !ok {
		return false
	}
	t.Status = status
	t.UpdatedAt = time.Now()
	return true
}

// SetAssignment records an agent binding on the ticket itself. Called only
// by the assignment engine as part of its paired mutation.
func (s *Store) SetAssignment(ticketID, agentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[ticketID]
	if !ok {
		return false
	}
	t.AssignedAgent = agentID
	t.Status = types.TicketAssigned
	t.UpdatedAt = time.Now()
	return true
}

// ClearAssignment removes the agent binding from a ticket. Tickets already
// in a terminal status keep it; an open release reverts to open.
func (s *Store) ClearAssignment(ticketID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[ticketID]
	if !ok {
		return
	}
	t.AssignedAgent = ""
	if t.Status == types.TicketAssigned {
		t.Status = types.TicketOpen
	}
}

// MarkRead marks all customer-authored messages as read and returns the
// full ticket
func (s *Store) MarkRead(ticketID string) (types.Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[ticketID]
	if !ok {
		return types.Ticket{}, false
	}
	for i := range t.Messages {
		if t.Messages[i].Sender == types.SenderCustomer {
			t.Messages[i].Read = true
		}
	}
	return copyTicket(t), true
}

// Get returns a copy of a ticket by id
func (s *Store) Get(ticketID string) (types.Ticket, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tickets[ticketID]
	if !ok {
		return types.Ticket{}, false
	}
	return copyTicket(t), true
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Status  types.TicketStatus
	AgentID string
	Limit   int
}

// List returns tickets in creation order, newest first, honoring the filter
func (s *Store) List(f Filter) []types.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]types.Ticket, 0)
	for i := len(s.order) - 1; i >= 0; i-- {
		t := s.tickets[s.order[i]]
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.AgentID != "" && t.AssignedAgent != f.AgentID {
			continue
		}
		result = append(result, copyTicket(t))
		if f.Limit > 0 && len(result) >= f.Limit {
			break
		}
	}
	return result
}

// SummariesFor returns compact views of the agent's non-closed tickets,
// oldest first
func (s *Store) SummariesFor(ticketIDs []string) []types.TicketSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]types.TicketSummary, 0, len(ticketIDs))
	for _, id := range ticketIDs {
		if t, ok := s.tickets[id]; ok {
			summaries = append(summaries, t.Summary())
		}
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.Before(summaries[j].CreatedAt)
	})
	return summaries
}

// CountByStatus returns ticket counts per status
func (s *Store) CountByStatus() map[types.TicketStatus]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[types.TicketStatus]int)
	for _, t := range s.tickets {
		counts[t.Status]++
	}
	return counts
}

// Total returns the number of tickets ever created
func (s *Store) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tickets)
}

// newMessage builds a generation-ordered message. Caller holds the lock.
func (s *Store) newMessage(content string, sender types.MessageSender, senderID string) types.Message {
	s.msgSeq++
	now := time.Now()
	return types.Message{
		ID:        fmt.Sprintf("msg-%d-%d", now.UnixMilli(), s.msgSeq),
		Content:   content,
		Sender:    sender,
		SenderID:  senderID,
		Timestamp: now,
	}
}

func copyTicket(t *types.Ticket) types.Ticket {
	c := *t
	c.Messages = make([]types.Message, len(t.Messages))
	copy(c.Messages, t.Messages)
	if t.CustomerInfo != nil {
		c.CustomerInfo = make(map[string]string, len(t.CustomerInfo))
		for k, v := range t.CustomerInfo {
			c.CustomerInfo[k] = v
		}
	}
	return c
}
