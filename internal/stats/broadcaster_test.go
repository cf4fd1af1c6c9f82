package stats

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dennisdiepolder/livedesk/internal/registry"
	"github.com/dennisdiepolder/livedesk/internal/ticketstore"
	"github.com/dennisdiepolder/livedesk/internal/types"
	"github.com/rs/zerolog"
)

type recordingHub struct {
	mu       sync.Mutex
	payloads []any
}

func (h *recordingHub) Broadcast(v any, _ string) {
	h.mu.Lock()
	h.payloads = append(h.payloads, v)
	h.mu.Unlock()
}

func (h *recordingHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.payloads)
}

func (h *recordingHub) last() any {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.payloads) == 0 {
		return nil
	}
	return h.payloads[len(h.payloads)-1]
}

func TestBroadcasterPushesSnapshots(t *testing.T) {
	store := ticketstore.New()
	reg := registry.New()
	store.Create("cconn-1", "hi", nil)

	hub := &recordingHub{}
	b := NewBroadcaster(NewAggregator(store, reg), hub, 20*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		b.Start(ctx)
		close(done)
	}()
	<-done

	if hub.count() == 0 {
		t.Fatal("expected at least one broadcast")
	}
	update, ok := hub.last().(types.StatsUpdate)
	if !ok {
		t.Fatalf("expected a StatsUpdate, got %+v", hub.last())
	}
	if update.Type != "stats_update" {
		t.Errorf("expected stats_update type, got %s", update.Type)
	}
	if update.Stats.TotalTickets != 1 || update.Stats.OpenTickets != 1 {
		t.Errorf("expected the open ticket in the snapshot, got %+v", update.Stats)
	}
}

func TestBroadcasterStopsOnContextCancel(t *testing.T) {
	hub := &recordingHub{}
	b := NewBroadcaster(NewAggregator(ticketstore.New(), registry.New()), hub, 50*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		b.Start(ctx)
		close(done)
	}()

	time.Sleep(120 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("broadcaster did not stop after context cancel")
	}
}
