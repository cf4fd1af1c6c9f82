package archive

import (
	"time"

	"github.com/dennisdiepolder/livedesk/internal/types"
)

// TicketRecord is the flattened form of a closed ticket written to the
// archive. Core routing state stays in memory; these records only exist so
// closed conversations can be looked up after the fact.
type TicketRecord struct {
	DateKey      string `dynamodbav:"DateKey" json:"dateKey"` // close date, YYYY-MM-DD
	TicketID     string `dynamodbav:"TicketID" json:"ticketId"`
	CustomerID   string `dynamodbav:"CustomerID" json:"customerId"`
	AgentID      string `dynamodbav:"AgentID" json:"agentId"`
	Priority     string `dynamodbav:"Priority" json:"priority"`
	MessageCount int    `dynamodbav:"MessageCount" json:"messageCount"`
	ClosedBy     string `dynamodbav:"ClosedBy" json:"closedBy"`
	CreatedAt    string `dynamodbav:"CreatedAt" json:"createdAt"`
	ClosedAt     string `dynamodbav:"ClosedAt" json:"closedAt"`
}

// RecordFromTicket converts a closed ticket to its archive record
func RecordFromTicket(t types.Ticket) TicketRecord {
	record := TicketRecord{
		TicketID:     t.ID,
		CustomerID:   t.CustomerID,
		AgentID:      t.AssignedAgent,
		Priority:     string(t.Priority),
		MessageCount: len(t.Messages),
		ClosedBy:     t.ClosedBy,
		CreatedAt:    t.CreatedAt.Format(time.RFC3339),
	}
	if t.ClosedAt != nil {
		record.DateKey = t.ClosedAt.Format("2006-01-02")
		record.ClosedAt = t.ClosedAt.Format(time.RFC3339)
	} else {
		record.DateKey = time.Now().Format("2006-01-02")
	}
	return record
}

// Store defines the archive interface
type Store interface {
	SaveTicketRecord(record TicketRecord) error
	GetTicketRecords(dateKey string) ([]TicketRecord, error)
}

// NoopStore is a no-op implementation when archiving is disabled
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (s *NoopStore) SaveTicketRecord(_ TicketRecord) error               { return nil }
func (s *NoopStore) GetTicketRecords(_ string) ([]TicketRecord, error)   { return nil, nil }
