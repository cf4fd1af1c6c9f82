package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Metrics holds all application counters
type Metrics struct {
	mu sync.RWMutex

	// Connection metrics
	CustomerConnectionsTotal    int64
	CustomerDisconnectionsTotal int64
	AgentConnectionsTotal       int64
	AgentDisconnectionsTotal    int64

	// Conversation metrics
	MessagesTotal        int64
	TicketsCreatedTotal  int64
	TicketsAssignedTotal int64
	TicketsClosedTotal   int64

	startTime time.Time
}

// Global metrics instance
var instance *Metrics
var once sync.Once

// Get returns the singleton metrics instance
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{startTime: time.Now()}
	})
	return instance
}

// RecordCustomerConnect increments the customer connection counter
func (m *Metrics) RecordCustomerConnect() {
	m.mu.Lock()
	m.CustomerConnectionsTotal++
	m.mu.Unlock()
}

// RecordCustomerDisconnect increments the customer disconnection counter
func (m *Metrics) RecordCustomerDisconnect() {
	m.mu.Lock()
	m.CustomerDisconnectionsTotal++
	m.mu.Unlock()
}

// RecordAgentConnect increments the agent connection counter
func (m *Metrics) RecordAgentConnect() {
	m.mu.Lock()
	m.AgentConnectionsTotal++
	m.mu.Unlock()
}

// RecordAgentDisconnect increments the agent disconnection counter
func (m *Metrics) RecordAgentDisconnect() {
	m.mu.Lock()
	m.AgentDisconnectionsTotal++
	m.mu.Unlock()
}

// RecordMessage increments the message counter
func (m *Metrics) RecordMessage() {
	m.mu.Lock()
	m.MessagesTotal++
	m.mu.Unlock()
}

// RecordTicketCreated increments the ticket creation counter
func (m *Metrics) RecordTicketCreated() {
	m.mu.Lock()
	m.TicketsCreatedTotal++
	m.mu.Unlock()
}

// RecordTicketAssigned increments the ticket assignment counter
func (m *Metrics) RecordTicketAssigned() {
	m.mu.Lock()
	m.TicketsAssignedTotal++
	m.mu.Unlock()
}

// RecordTicketClosed increments the ticket closed counter
func (m *Metrics) RecordTicketClosed() {
	m.mu.Lock()
	m.TicketsClosedTotal++
	m.mu.Unlock()
}

// Handler returns an HTTP handler exposing counters in text format
func (m *Metrics) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.RLock()
		defer m.mu.RUnlock()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		write := func(name string, value int64) {
			w.Write([]byte(name + " " + strconv.FormatInt(value, 10) + "\n"))
		}

		write("livedesk_customer_connections_total", m.CustomerConnectionsTotal)
		write("livedesk_customer_disconnections_total", m.CustomerDisconnectionsTotal)
		write("livedesk_agent_connections_total", m.AgentConnectionsTotal)
		write("livedesk_agent_disconnections_total", m.AgentDisconnectionsTotal)
		write("livedesk_messages_total", m.MessagesTotal)
		write("livedesk_tickets_created_total", m.TicketsCreatedTotal)
		write("livedesk_tickets_assigned_total", m.TicketsAssignedTotal)
		write("livedesk_tickets_closed_total", m.TicketsClosedTotal)
		write("livedesk_uptime_seconds", int64(time.Since(m.startTime).Seconds()))
	}
}
