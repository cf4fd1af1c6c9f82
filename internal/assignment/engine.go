package assignment

import (
	"sync"

	"github.com/dennisdiepolder/livedesk/internal/registry"
	"github.com/dennisdiepolder/livedesk/internal/ticketstore"
	"github.com/rs/zerolog"
)

// Engine binds tickets to agents and owns the two-way ticket<->agent index.
// Both directions are mutated only through Assign/Release pairs; the raw
// maps are never exposed, so the directions cannot drift apart.
type Engine struct {
	ticketToAgent map[string]string              // ticketID -> agentID
	agentTickets  map[string]map[string]struct{} // agentID -> set of ticketIDs
	store         *ticketstore.Store
	reg           *registry.ConnectionRegistry
	mu            sync.RWMutex
	logger        zerolog.Logger
}

// NewEngine creates an assignment engine over the given store and registry
func NewEngine(store *ticketstore.Store, reg *registry.ConnectionRegistry, logger zerolog.Logger) *Engine {
	return &Engine{
		ticketToAgent: make(map[string]string),
		agentTickets:  make(map[string]map[string]struct{}),
		store:         store,
		reg:           reg,
		logger:        logger.With().Str("component", "assignment").Logger(),
	}
}

// PickAgent selects the available agent with the fewest currently assigned
// tickets. Returns the agent id and false when no agent is available.
// Ties between equally loaded agents break arbitrarily.
func (e *Engine) PickAgent() (string, bool) {
	available := e.reg.AvailableAgents()
	if len(available) == 0 {
		return "", false
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	best := ""
	bestLoad := -1
	for _, a := range available {
		load := len(e.agentTickets[a.AgentID])
		if bestLoad < 0 || load < bestLoad {
			best = a.AgentID
			bestLoad = load
		}
	}
	return best, true
}

// Assign binds a ticket to an agent, updating both index directions and the
// ticket itself. A ticket already assigned elsewhere is released first so
// the prior agent's slot is freed before the forward mapping is rewritten.
func (e *Engine) Assign(ticketID, agentID string) bool {
	if _, ok := e.store.Get(ticketID); !ok {
		return false
	}
	if _, ok := e.reg.GetAgent(agentID); !ok {
		return false
	}

	e.mu.Lock()
	if prev, ok := e.ticketToAgent[ticketID]; ok {
		e.removeLocked(ticketID, prev)
	}
	e.ticketToAgent[ticketID] = agentID
	if e.agentTickets[agentID] == nil {
		e.agentTickets[agentID] = make(map[string]struct{})
	}
	e.agentTickets[agentID][ticketID] = struct{}{}
	e.mu.Unlock()

	e.store.SetAssignment(ticketID, agentID)

	e.logger.Debug().
		Str("ticket_id", ticketID).
		Str("agent_id", agentID).
		Msg("ticket assigned")
	return true
}

// Release removes a ticket from both index directions and clears the
// binding on the ticket. Idempotent; releasing an unassigned ticket is a
// no-op.
func (e *Engine) Release(ticketID string) {
	e.mu.Lock()
	agentID, ok := e.ticketToAgent[ticketID]
	if ok {
		e.removeLocked(ticketID, agentID)
	}
	e.mu.Unlock()

	if !ok {
		return
	}

	e.store.ClearAssignment(ticketID)

	e.logger.Debug().
		Str("ticket_id", ticketID).
		Str("agent_id", agentID).
		Msg("ticket released")
}

// AgentFor returns the agent a ticket is assigned to
func (e *Engine) AgentFor(ticketID string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	agentID, ok := e.ticketToAgent[ticketID]
	return agentID, ok
}

// TicketsFor returns the ids of all tickets assigned to an agent
func (e *Engine) TicketsFor(agentID string) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ids := make([]string, 0, len(e.agentTickets[agentID]))
	for id := range e.agentTickets[agentID] {
		ids = append(ids, id)
	}
	return ids
}

// Load returns the number of tickets currently assigned to an agent
func (e *Engine) Load(agentID string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.agentTickets[agentID])
}

// removeLocked deletes both directions for one binding. Caller holds the lock.
func (e *Engine) removeLocked(ticketID, agentID string) {
	delete(e.ticketToAgent, ticketID)
	if set, ok := e.agentTickets[agentID]; ok {
		delete(set, ticketID)
		if len(set) == 0 {
			delete(e.agentTickets, agentID)
		}
	}
}
