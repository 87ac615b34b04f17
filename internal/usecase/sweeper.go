package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/registry"
)

// Sweeper periodically purges rooms older than a fixed time-to-live. The age
// is measured from creation and deliberately does not reset on activity; this
// is a coarse safety net, not an LRU policy. Purging is silent and goes
// through the registry's public deletion only.
type Sweeper struct {
	logger   *slog.Logger
	registry *registry.Registry

	ttl      time.Duration
	interval time.Duration
}

func NewSweeper(logger *slog.Logger, reg *registry.Registry, ttl, interval time.Duration) *Sweeper {
	return &Sweeper{
		logger:   logger,
		registry: reg,
		ttl:      ttl,
		interval: interval,
	}
}

// Start - runs the sweep loop until the context is canceled.
func (that *Sweeper) Start(ctx context.Context) {
	log := that.logger.With("component", "sweeper")

	ticker := time.NewTicker(that.interval)
	defer ticker.Stop()

	log.Info("sweeper started", "ttl", that.ttl, "interval", that.interval)

	for {
		select {
		case <-ctx.Done():
			log.Info("sweeper stopped")
			return
		case now := <-ticker.C:
			if purged := that.Sweep(now); purged > 0 {
				log.Info("purged expired rooms", "count", purged)
			}
		}
	}
}

// Sweep - deletes every room whose creation time is further in the past than
// the TTL, regardless of phase. Returns how many rooms were purged.
func (that *Sweeper) Sweep(now time.Time) int {
	purged := 0

	for _, code := range that.registry.Codes() {
		room, err := that.registry.Get(code)
		if err != nil {
			continue
		}

		// CreatedAt is immutable after construction, safe to read unlocked.
		if now.Sub(room.CreatedAt) > that.ttl {
			that.registry.Delete(code)
			purged++
		}
	}

	return purged
}
