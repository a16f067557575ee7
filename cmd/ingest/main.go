// One-shot season ingestion. Pulls a full season from ESPN into the
// database and exits; useful for backfilling history without running
// the worker.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"laliga/ingestion/internal/client"
	"laliga/ingestion/internal/config"
	"laliga/ingestion/internal/ingest"
	"laliga/ingestion/internal/repository"
	"laliga/ingestion/internal/retry"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	season := flag.Int("season", 0, "season year to ingest (required)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	if *season < 2000 || *season > 2100 {
		log.Fatal().Int("season", *season).Msg("A valid -season is required")
	}

	cfg := config.MustLoad()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("Interrupted, stopping ingestion...")
		cancel()
	}()

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database schema")
	}

	espn := client.NewClient(client.Config{
		BaseURL:       cfg.ESPNBaseURL,
		LeagueID:      cfg.ESPNLeagueID,
		ESPNS2:        cfg.ESPNS2,
		SWID:          cfg.ESPNSWID,
		HistoryCutoff: cfg.HistoryCutoffYear,
		Timeout:       cfg.ESPNTimeout,
	})

	pipeline := ingest.New(espn, db, ingest.Config{
		WeeksPerSeason: cfg.WeeksPerSeason,
		Retry: retry.Config{
			MaxAttempts: cfg.RetryMaxAttempts,
			BaseDelay:   cfg.RetryBaseDelay,
			Retryable:   client.Retryable,
		},
	})

	summary, err := pipeline.IngestSeason(ctx, *season)
	if err != nil {
		log.Fatal().Err(err).Int("season", *season).Msg("Ingestion failed")
	}

	log.Info().
		Int("season", summary.Season).
		Int("teams", summary.Teams).
		Int("matchups", summary.Matchups).
		Int("weeks_ok", summary.WeeksSucceeded).
		Int("weeks_failed", summary.WeeksFailed).
		Msg("Ingestion complete")
}
