package registry

import (
	"sync"
	"time"

	"github.com/dennisdiepolder/livedesk/internal/types"
)

// ConnectionRegistry tracks live customer and agent connections. Customer
// entries are 1:1 with the underlying socket and vanish on disconnect; agent
// entries are keyed by the agent-chosen id and survive reconnects, only the
// live connection reference changes.
//
// All operations are total: removal or lookup of an absent id is a no-op.
type ConnectionRegistry struct {
	customers map[string]*types.CustomerConn // connID -> connection
	agents    map[string]*types.AgentInfo    // agentID -> agent
	mu        sync.RWMutex
}

// New creates an empty ConnectionRegistry
func New() *ConnectionRegistry {
	return &ConnectionRegistry{
		customers: make(map[string]*types.CustomerConn),
		agents:    make(map[string]*types.AgentInfo),
	}
}

// AddCustomer registers a new customer connection
func (r *ConnectionRegistry) AddCustomer(connID string, info map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.customers[connID] = &types.CustomerConn{
		ConnID:       connID,
		ConnectedAt:  now,
		LastActivity: now,
		Info:         info,
	}
}

// RemoveCustomer drops a customer connection
func (r *ConnectionRegistry) RemoveCustomer(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.customers, connID)
}

// GetCustomer returns a copy of the customer connection state
func (r *ConnectionRegistry) GetCustomer(connID string) (types.CustomerConn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.customers[connID]
	if !ok {
		return types.CustomerConn{}, false
	}
	return *c, true
}

// TouchCustomer bumps a customer's last activity timestamp
func (r *ConnectionRegistry) TouchCustomer(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.customers[connID]; ok {
		c.LastActivity = time.Now()
	}
}

// RegisterAgent registers an agent or overwrites the live connection
// reference of an existing one. The ConnectedAt of a returning agent is
// preserved so presence history survives reconnects.
func (r *ConnectionRegistry) RegisterAgent(agentID, name, department, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if existing, ok := r.agents[agentID]; ok {
		existing.ConnID = connID
		existing.Name = name
		existing.Department = department
		existing.Status = types.AgentAvailable
		existing.LastActivity = now
		return
	}

	r.agents[agentID] = &types.AgentInfo{
		AgentID:      agentID,
		ConnID:       connID,
		Name:         name,
		Department:   department,
		Status:       types.AgentAvailable,
		ConnectedAt:  now,
		LastActivity: now,
	}
}

// SetAgentStatus updates an agent's availability
func (r *ConnectionRegistry) SetAgentStatus(agentID string, status types.AgentStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a, ok := r.agents[agentID]; ok {
		a.Status = status
		a.LastActivity = time.Now()
	}
}

// SetAgentOffline marks an agent offline and clears the live connection
// reference. The agent entry itself is kept so assignments stay resolvable.
func (r *ConnectionRegistry) SetAgentOffline(agentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a, ok := r.agents[agentID]; ok {
		a.Status = types.AgentOffline
		a.ConnID = ""
		a.LastActivity = time.Now()
	}
}

// GetAgent returns a copy of an agent's state
func (r *ConnectionRegistry) GetAgent(agentID string) (types.AgentInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.agents[agentID]
	if !ok {
		return types.AgentInfo{}, false
	}
	return *a, true
}

// TouchAgent bumps an agent's last activity timestamp
func (r *ConnectionRegistry) TouchAgent(agentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a, ok := r.agents[agentID]; ok {
		a.LastActivity = time.Now()
	}
}

// AvailableAgents returns all agents whose status is available
func (r *ConnectionRegistry) AvailableAgents() []types.AgentInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agents := make([]types.AgentInfo, 0, len(r.agents))
	for _, a := range r.agents {
		if a.Status == types.AgentAvailable {
			agents = append(agents, *a)
		}
	}
	return agents
}

// AllAgents returns copies of every known agent
func (r *ConnectionRegistry) AllAgents() []types.AgentInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agents := make([]types.AgentInfo, 0, len(r.agents))
	for _, a := range r.agents {
		agents = append(agents, *a)
	}
	return agents
}

// CustomerCount returns the number of live customer connections
func (r *ConnectionRegistry) CustomerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.customers)
}

// AgentCounts returns the number of known agents and how many are active
// (any status other than offline)
func (r *ConnectionRegistry) AgentCounts() (total, active int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.agents {
		total++
		if a.Status != types.AgentOffline {
			active++
		}
	}
	return
}
