package syncer

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Scheduler runs syncs on a fixed interval and on demand. Runs never
// overlap: one loop owns the orchestrator.
type Scheduler struct {
	orch     *Orchestrator
	interval time.Duration
	trigger  chan struct{}
}

// NewScheduler wraps the orchestrator. An interval of zero disables
// periodic runs; Trigger still works.
func NewScheduler(orch *Orchestrator, interval time.Duration) *Scheduler {
	return &Scheduler{
		orch:     orch,
		interval: interval,
		trigger:  make(chan struct{}, 1),
	}
}

// Trigger requests a run as soon as the loop is free. Requests arriving
// while one is already pending coalesce into it.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Start blocks until ctx is cancelled, running one sync immediately and
// then on every tick or trigger. A failed run is logged and the loop
// keeps going; the next interval gets a fresh chance.
func (s *Scheduler) Start(ctx context.Context) error {
	var tick <-chan time.Time
	if s.interval > 0 {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	s.runOnce(ctx)

	for {
		select {
		case <-tick:
			s.runOnce(ctx)
		case <-s.trigger:
			s.runOnce(ctx)
		case <-ctx.Done():
			log.Info().Msg("scheduler stopped")
			return nil
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.orch.Run(ctx); err != nil {
		log.Error().Err(err).Msg("scheduled sync failed")
	}
}
