package monitor

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler periodically evaluates every registered monitor and persists the
// resulting decisions. Monitors that are still warming up are skipped.
type Scheduler struct {
	cron     *cron.Cron
	registry *Registry
	repo     *HistoryRepository // optional
	log      zerolog.Logger
}

// NewScheduler creates a sweep scheduler. repo may be nil when decisions only
// need to live in the in-memory history.
func NewScheduler(registry *Registry, repo *HistoryRepository, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		registry: registry,
		repo:     repo,
		log:      log.With().Str("component", "drift_sweep").Logger(),
	}
}

// Start begins sweeping on the given cron spec (e.g. "@every 5m").
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.Sweep); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}
	s.cron.Start()
	s.log.Info().Str("schedule", spec).Msg("Drift sweep scheduler started")
	return nil
}

// Stop halts the scheduler. Running sweeps finish first.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Drift sweep scheduler stopped")
}

// Sweep evaluates every registered monitor once.
func (s *Scheduler) Sweep() {
	for _, key := range s.registry.Keys() {
		s.registry.WithMonitor(key, func(m *Monitor) {
			rec, ready := m.Evaluate()
			if !ready {
				s.log.Debug().Str("monitor", key).Strs("notes", rec.Decision.Notes).Msg("Monitor not ready, skipping")
				return
			}
			s.log.Info().
				Str("monitor", key).
				Str("level", rec.Decision.Level.String()).
				Float64("size_multiplier", rec.Decision.SizeMultiplier).
				Msg("Sweep decision")
			if s.repo != nil {
				if err := s.repo.Append(key, rec); err != nil {
					s.log.Error().Err(err).Str("monitor", key).Msg("Failed to persist drift decision")
				}
			}
		})
	}
}
