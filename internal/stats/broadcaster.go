package stats

import (
	"context"
	"time"

	"github.com/dennisdiepolder/livedesk/internal/types"
	"github.com/rs/zerolog"
)

// AgentBroadcaster pushes a payload to every connected agent
type AgentBroadcaster interface {
	Broadcast(v any, exceptConnID string)
}

// Broadcaster periodically pushes a stats snapshot to all agent dashboards
type Broadcaster struct {
	agg      *Aggregator
	hub      AgentBroadcaster
	interval time.Duration
	logger   zerolog.Logger
}

// NewBroadcaster creates a stats broadcaster
func NewBroadcaster(agg *Aggregator, hub AgentBroadcaster, interval time.Duration, logger zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		agg:      agg,
		hub:      hub,
		interval: interval,
		logger:   logger.With().Str("component", "stats").Logger(),
	}
}

// Start begins broadcasting until the context is cancelled
func (b *Broadcaster) Start(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	b.logger.Info().Dur("interval", b.interval).Msg("stats broadcaster started")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("stats broadcaster stopped")
			return

		case now := <-ticker.C:
			b.hub.Broadcast(types.StatsUpdate{
				Type:      "stats_update",
				Timestamp: now,
				Stats:     b.agg.Compute(),
			}, "")
		}
	}
}
