package types

import "time"

// AgentStatus represents an agent's availability
type AgentStatus string

const (
	AgentAvailable AgentStatus = "available"
	AgentBusy      AgentStatus = "busy"
	AgentAway      AgentStatus = "away"
	AgentOffline   AgentStatus = "offline"
)

// ValidAgentStatus reports whether s is a known agent status
func ValidAgentStatus(s AgentStatus) bool {
	switch s {
	case AgentAvailable, AgentBusy, AgentAway, AgentOffline:
		return true
	}
	return false
}

// AgentInfo is the current state of a support agent. The AgentID is chosen
// by the agent and stable across reconnects; ConnID is the current live
// transport connection and is empty while the agent is offline.
type AgentInfo struct {
	AgentID      string      `json:"agentId"`
	ConnID       string      `json:"-"`
	Name         string      `json:"name"`
	Department   string      `json:"department"`
	Status       AgentStatus `json:"status"`
	ConnectedAt  time.Time   `json:"connectedAt"`
	LastActivity time.Time   `json:"lastActivity"`
}

// CustomerConn is one live customer channel, 1:1 with the underlying socket
type CustomerConn struct {
	ConnID       string            `json:"connId"`
	ConnectedAt  time.Time         `json:"connectedAt"`
	LastActivity time.Time         `json:"lastActivity"`
	Info         map[string]string `json:"info,omitempty"`
}

// Stats is the aggregate snapshot over ticket and connection state
type Stats struct {
	TotalTickets    int `json:"totalTickets"`
	OpenTickets     int `json:"openTickets"`
	AssignedTickets int `json:"assignedTickets"`
	ClosedTickets   int `json:"closedTickets"`
	ActiveAgents    int `json:"activeAgents"`
	TotalAgents     int `json:"totalAgents"`
	ActiveCustomers int `json:"activeCustomers"`
}
