package types

import "time"

// Inbound customer-channel messages

// ChatMessage is sent by a customer to start or continue a conversation
type ChatMessage struct {
	Type    string `json:"type"` // "chat_message"
	Message string `json:"message"`
}

// CustomerTyping is a customer typing indicator
type CustomerTyping struct {
	Type     string `json:"type"` // "typing"
	IsTyping bool   `json:"isTyping"`
}

// Inbound agent-channel messages

// AgentAuthenticate binds a connection to an agent identity
type AgentAuthenticate struct {
	Type       string `json:"type"` // "authenticate"
	AgentID    string `json:"agentId"`
	AgentName  string `json:"agentName"`
	Department string `json:"department"`
}

// AgentSendMessage is an agent reply on an assigned ticket
type AgentSendMessage struct {
	Type     string `json:"type"` // "send_message"
	TicketID string `json:"ticketId"`
	Message  string `json:"message"`
}

// AgentTyping is an agent typing indicator for a ticket
type AgentTyping struct {
	Type     string `json:"type"` // "typing"
	TicketID string `json:"ticketId"`
	IsTyping bool   `json:"isTyping"`
}

// AgentUpdateTicketStatus changes the status of an assigned ticket
type AgentUpdateTicketStatus struct {
	Type     string       `json:"type"` // "update_ticket_status"
	TicketID string       `json:"ticketId"`
	Status   TicketStatus `json:"status"`
}

// AgentUpdateStatus changes the agent's own availability
type AgentUpdateStatus struct {
	Type   string      `json:"type"` // "update_status"
	Status AgentStatus `json:"status"`
}

// AgentGetTicketDetails requests the full history of an assigned ticket
type AgentGetTicketDetails struct {
	Type     string `json:"type"` // "get_ticket_details"
	TicketID string `json:"ticketId"`
}

// Outbound customer-channel messages

// MessageAck confirms receipt of a customer chat_message
type MessageAck struct {
	Type      string    `json:"type"` // "message_ack"
	Status    string    `json:"status"`
	MessageID string    `json:"messageId"`
	Timestamp time.Time `json:"timestamp"`
	TicketID  string    `json:"ticketId"`
}

// ChatResponse is a message delivered to the customer channel
type ChatResponse struct {
	Type        string        `json:"type"` // "chat_response"
	Message     string        `json:"message"`
	Timestamp   time.Time     `json:"timestamp"`
	MessageID   string        `json:"messageId,omitempty"`
	Sender      MessageSender `json:"sender"`
	MessageType string        `json:"messageType"`
}

// Customer-facing message types carried in ChatResponse.MessageType
const (
	MessageTypeText       = "text"
	MessageTypeNoAgents   = "no_agents_available"
	MessageTypeConnecting = "agent_connecting"
	MessageTypeClosed     = "session_closed"
)

// TypingIndicator is forwarded to the customer while the agent types
type TypingIndicator struct {
	Type     string `json:"type"` // "typing"
	IsTyping bool   `json:"isTyping"`
}

// Outbound agent-channel messages

// NewTicket notifies an agent of a freshly assigned ticket
type NewTicket struct {
	Type    string        `json:"type"` // "new_ticket"
	Ticket  TicketSummary `json:"ticket"`
	Message *Message      `json:"message,omitempty"` // first customer message
}

// CustomerMessage forwards a live customer message to the assigned agent
type CustomerMessage struct {
	Type     string  `json:"type"` // "customer_message"
	TicketID string  `json:"ticketId"`
	Message  Message `json:"message"`
}

// CustomerTypingEvent forwards a customer typing indicator to the agent
type CustomerTypingEvent struct {
	Type     string `json:"type"` // "customer_typing"
	TicketID string `json:"ticketId"`
	IsTyping bool   `json:"isTyping"`
}

// CustomerDisconnected notifies the assigned agent of a customer disconnect
type CustomerDisconnected struct {
	Type     string `json:"type"` // "customer_disconnected"
	TicketID string `json:"ticketId"`
}

// AuthSuccess is the reply to a successful agent authentication
type AuthSuccess struct {
	Type    string          `json:"type"` // "auth_success"
	AgentID string          `json:"agentId"`
	Name    string          `json:"name"`
	Tickets []TicketSummary `json:"tickets"`
	Stats   Stats           `json:"stats"`
}

// AuthError is the reply to a failed agent authentication
type AuthError struct {
	Type    string `json:"type"` // "auth_error"
	Message string `json:"message"`
}

// AgentStatusChange broadcasts an agent presence change to peers
type AgentStatusChange struct {
	Type    string      `json:"type"` // "agent_status_change"
	AgentID string      `json:"agentId"`
	Name    string      `json:"name"`
	Status  AgentStatus `json:"status"`
}

// TicketUpdated confirms a ticket status change to the acting agent
type TicketUpdated struct {
	Type     string       `json:"type"` // "ticket_updated"
	TicketID string       `json:"ticketId"`
	Status   TicketStatus `json:"status"`
}

// MessageSent confirms delivery of an agent message
type MessageSent struct {
	Type      string    `json:"type"` // "message_sent"
	TicketID  string    `json:"ticketId"`
	MessageID string    `json:"messageId"`
	Delivered bool      `json:"delivered"` // false when the customer is offline
	Timestamp time.Time `json:"timestamp"`
}

// TicketDetails carries the full ticket including message history
type TicketDetails struct {
	Type   string `json:"type"` // "ticket_details"
	Ticket Ticket `json:"ticket"`
}

// ErrorEvent is a generic error reply on either channel
type ErrorEvent struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

// StatsUpdate is the periodic stats snapshot pushed to agent dashboards
type StatsUpdate struct {
	Type      string    `json:"type"` // "stats_update"
	Timestamp time.Time `json:"timestamp"`
	Stats     Stats     `json:"stats"`
}
