// Package scheduler runs the background refresh jobs:
// a nightly full re-ingestion of each live season, and a polling ticker
// that keeps the active week of live seasons fresh while games are on.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"laliga/ingestion/internal/config"
	"laliga/ingestion/internal/ingest"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler manages background ingestion tasks.
type Scheduler struct {
	cfg        *config.Config
	pipeline   *ingest.Pipeline
	activeWeek func(season int) int
	cron       *cron.Cron
	ticker     *time.Ticker
	stopChan   chan struct{}
}

// NewScheduler creates a new scheduler instance. activeWeek reports the
// week currently being played for a season, 0 when none is.
func NewScheduler(cfg *config.Config, pipeline *ingest.Pipeline, activeWeek func(season int) int) *Scheduler {
	return &Scheduler{
		cfg:        cfg,
		pipeline:   pipeline,
		activeWeek: activeWeek,
		cron:       cron.New(),
		stopChan:   make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	// Nightly refresh keeps every live season's full history converged
	// even when the polling path missed a correction.
	if _, err := s.cron.AddFunc(s.cfg.NightlyRefreshCron, func() {
		log.Info().Msg("Running nightly refresh...")
		if err := s.refreshLiveSeasons(ctx); err != nil {
			log.Error().Err(err).Msg("Nightly refresh failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule nightly refresh: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.NightlyRefreshCron).
		Msg("Nightly refresh scheduled")

	s.ticker = time.NewTicker(s.cfg.WeeklyPollInterval)
	log.Info().
		Dur("interval", s.cfg.WeeklyPollInterval).
		Msg("Active week polling started")

	go s.pollActiveWeeks(ctx)

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		s.cron.Stop()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}

	close(s.stopChan)
	log.Info().Msg("Scheduler stopped")
}

// pollActiveWeeks re-ingests the active week of each live season on
// every tick, so cache-served requests during game windows stay close
// to live scores.
func (s *Scheduler) pollActiveWeeks(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Context cancelled, stopping active week polling")
			return
		case <-s.stopChan:
			log.Info().Msg("Stop signal received, stopping active week polling")
			return
		case <-s.ticker.C:
			if err := s.refreshActiveWeeks(ctx); err != nil {
				log.Error().Err(err).Msg("Active week refresh failed")
			}
		}
	}
}

func (s *Scheduler) refreshActiveWeeks(ctx context.Context) error {
	start := time.Now()

	refreshed := 0
	for _, season := range s.cfg.LiveSeasons {
		week := s.activeWeek(season)
		if week == 0 {
			log.Debug().Int("season", season).Msg("No active week, skipping poll")
			continue
		}

		if err := s.pipeline.IngestWeek(ctx, season, week); err != nil {
			log.Error().Err(err).
				Int("season", season).
				Int("week", week).
				Msg("Failed to refresh active week")
			continue
		}
		refreshed++
	}

	log.Info().
		Int("seasons_refreshed", refreshed).
		Dur("duration", time.Since(start)).
		Msg("Active week refresh complete")

	return nil
}

func (s *Scheduler) refreshLiveSeasons(ctx context.Context) error {
	for _, season := range s.cfg.LiveSeasons {
		summary, err := s.pipeline.ForceRefresh(ctx, season)
		if err != nil {
			log.Error().Err(err).Int("season", season).Msg("Nightly season refresh failed")
			continue
		}
		log.Info().
			Int("season", season).
			Int("weeks_ok", summary.WeeksSucceeded).
			Int("weeks_failed", summary.WeeksFailed).
			Msg("Nightly season refresh complete")
	}
	return nil
}
