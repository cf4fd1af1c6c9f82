package stats

import (
	"github.com/dennisdiepolder/livedesk/internal/registry"
	"github.com/dennisdiepolder/livedesk/internal/ticketstore"
	"github.com/dennisdiepolder/livedesk/internal/types"
)

// Aggregator produces read-only projections over ticket and connection
// state. It never mutates its collaborators.
type Aggregator struct {
	store *ticketstore.Store
	reg   *registry.ConnectionRegistry
}

// NewAggregator creates a stats aggregator
func NewAggregator(store *ticketstore.Store, reg *registry.ConnectionRegistry) *Aggregator {
	return &Aggregator{store: store, reg: reg}
}

// Compute returns the current aggregate snapshot. Pure O(n) scan.
func (a *Aggregator) Compute() types.Stats {
	counts := a.store.CountByStatus()
	total, active := a.reg.AgentCounts()

	return types.Stats{
		TotalTickets:    a.store.Total(),
		OpenTickets:     counts[types.TicketOpen],
		AssignedTickets: counts[types.TicketAssigned],
		ClosedTickets:   counts[types.TicketClosed],
		ActiveAgents:    active,
		TotalAgents:     total,
		ActiveCustomers: a.reg.CustomerCount(),
	}
}
