package registry

import (
	"testing"

	"github.com/dennisdiepolder/livedesk/internal/types"
)

func TestCustomerLifecycle(t *testing.T) {
	r := New()

	r.AddCustomer("conn-1", map[string]string{"name": "Ada"})
	c, ok := r.GetCustomer("conn-1")
	if !ok {
		t.Fatal("expected customer to be registered")
	}
	if c.Info["name"] != "Ada" {
		t.Errorf("expected customer info to be kept, got %v", c.Info)
	}
	if r.CustomerCount() != 1 {
		t.Errorf("expected 1 customer, got %d", r.CustomerCount())
	}

	r.RemoveCustomer("conn-1")
	if _, ok := r.GetCustomer("conn-1"); ok {
		t.Error("expected customer to be removed")
	}

	// Removing an absent customer is a no-op
	r.RemoveCustomer("conn-404")
	if r.CustomerCount() != 0 {
		t.Errorf("expected 0 customers, got %d", r.CustomerCount())
	}
}

func TestRegisterAgentOverwritesLiveReference(t *testing.T) {
	r := New()

	r.RegisterAgent("agent-1", "Dana", "support", "conn-a")
	first, _ := r.GetAgent("agent-1")

	r.SetAgentStatus("agent-1", types.AgentBusy)
	r.RegisterAgent("agent-1", "Dana", "support", "conn-b")

	a, ok := r.GetAgent("agent-1")
	if !ok {
		t.Fatal("expected agent to exist")
	}
	if a.ConnID != "conn-b" {
		t.Errorf("expected live reference conn-b, got %s", a.ConnID)
	}
	if a.Status != types.AgentAvailable {
		t.Errorf("expected re-registration to reset status to available, got %s", a.Status)
	}
	if !a.ConnectedAt.Equal(first.ConnectedAt) {
		t.Error("expected ConnectedAt to be preserved across re-registration")
	}
}

func TestSetAgentOfflineClearsConnection(t *testing.T) {
	r := New()

	r.RegisterAgent("agent-1", "Dana", "support", "conn-a")
	r.SetAgentOffline("agent-1")

	a, ok := r.GetAgent("agent-1")
	if !ok {
		t.Fatal("expected agent entry to survive going offline")
	}
	if a.Status != types.AgentOffline {
		t.Errorf("expected offline status, got %s", a.Status)
	}
	if a.ConnID != "" {
		t.Errorf("expected live reference cleared, got %s", a.ConnID)
	}
}

func TestAvailableAgents(t *testing.T) {
	r := New()

	r.RegisterAgent("agent-1", "Dana", "support", "conn-a")
	r.RegisterAgent("agent-2", "Eli", "support", "conn-b")
	r.RegisterAgent("agent-3", "Finn", "billing", "conn-c")
	r.SetAgentStatus("agent-2", types.AgentAway)
	r.SetAgentOffline("agent-3")

	available := r.AvailableAgents()
	if len(available) != 1 {
		t.Fatalf("expected 1 available agent, got %d", len(available))
	}
	if available[0].AgentID != "agent-1" {
		t.Errorf("expected agent-1, got %s", available[0].AgentID)
	}
}

func TestAgentCounts(t *testing.T) {
	r := New()

	r.RegisterAgent("agent-1", "Dana", "support", "conn-a")
	r.RegisterAgent("agent-2", "Eli", "support", "conn-b")
	r.SetAgentStatus("agent-1", types.AgentBusy)
	r.SetAgentOffline("agent-2")

	total, active := r.AgentCounts()
	if total != 2 {
		t.Errorf("expected 2 total agents, got %d", total)
	}
	if active != 1 {
		t.Errorf("expected 1 active agent, got %d", active)
	}
}
