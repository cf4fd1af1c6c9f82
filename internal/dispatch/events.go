package dispatch

import "github.com/dennisdiepolder/livedesk/internal/types"

// Channel identifies which connection group an event arrived on
type Channel int

const (
	ChannelCustomer Channel = iota
	ChannelAgent
)

// Event is one inbound occurrence from either channel group. The set of
// variants is closed; the transport layer validates and constructs them, so
// malformed frames never reach the handlers.
type Event interface {
	Origin() (Channel, string)
}

// CustomerConnected signals a new customer socket
type CustomerConnected struct {
	Conn string
	Info map[string]string
}

// CustomerDisconnected signals a customer socket going away
type CustomerDisconnected struct {
	Conn string
}

// CustomerChat is an inbound customer chat_message
type CustomerChat struct {
	Conn    string
	Message string
}

// CustomerTyping is an inbound customer typing indicator
type CustomerTyping struct {
	Conn     string
	IsTyping bool
}

// AgentDisconnected signals an agent socket going away
type AgentDisconnected struct {
	Conn string
}

// AgentAuth is an inbound agent authenticate request
type AgentAuth struct {
	Conn       string
	AgentID    string
	Name       string
	Department string
}

// AgentMessage is an inbound agent send_message
type AgentMessage struct {
	Conn     string
	TicketID string
	Message  string
}

// AgentTyping is an inbound agent typing indicator
type AgentTyping struct {
	Conn     string
	TicketID string
	IsTyping bool
}

// AgentTicketStatus is an inbound update_ticket_status
type AgentTicketStatus struct {
	Conn     string
	TicketID string
	Status   types.TicketStatus
}

// AgentStatus is an inbound update_status
type AgentStatus struct {
	Conn   string
	Status types.AgentStatus
}

// AgentTicketDetails is an inbound get_ticket_details
type AgentTicketDetails struct {
	Conn     string
	TicketID string
}

func (e CustomerConnected) Origin() (Channel, string)    { return ChannelCustomer, e.Conn }
func (e CustomerDisconnected) Origin() (Channel, string) { return ChannelCustomer, e.Conn }
func (e CustomerChat) Origin() (Channel, string)         { return ChannelCustomer, e.Conn }
func (e CustomerTyping) Origin() (Channel, string)       { return ChannelCustomer, e.Conn }
func (e AgentDisconnected) Origin() (Channel, string)    { return ChannelAgent, e.Conn }
func (e AgentAuth) Origin() (Channel, string)            { return ChannelAgent, e.Conn }
func (e AgentMessage) Origin() (Channel, string)         { return ChannelAgent, e.Conn }
func (e AgentTyping) Origin() (Channel, string)          { return ChannelAgent, e.Conn }
func (e AgentTicketStatus) Origin() (Channel, string)    { return ChannelAgent, e.Conn }
func (e AgentStatus) Origin() (Channel, string)          { return ChannelAgent, e.Conn }
func (e AgentTicketDetails) Origin() (Channel, string)   { return ChannelAgent, e.Conn }
