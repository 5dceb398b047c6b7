// internal/tracker/sweeper.go
package tracker

import (
	"context"
	"time"

	"bondpacket/internal/common/config"
	"bondpacket/internal/common/logger"
)

// Sweeper periodically expires trackers that never completed: invites
// the provider has long since let lapse.
type Sweeper struct {
	store *Store
	cfg   config.TrackerConfig
	log   logger.Logger
}

func NewSweeper(store *Store, cfg config.TrackerConfig, log logger.Logger) *Sweeper {
	return &Sweeper{store: store, cfg: cfg, log: log}
}

// Run sweeps on the configured interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	interval := time.Duration(s.cfg.SweepIntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce expires everything older than the configured horizon.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	cutoff := time.Now().Add(-time.Duration(s.cfg.ExpireAfterHours) * time.Hour)
	if _, err := s.store.ExpireStale(ctx, cutoff); err != nil {
		s.log.WithError(err).Error("tracker expiry sweep failed", nil)
	}
}
