package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"laliga/ingestion/internal/api"
	"laliga/ingestion/internal/cache"
	"laliga/ingestion/internal/client"
	"laliga/ingestion/internal/config"
	"laliga/ingestion/internal/ingest"
	"laliga/ingestion/internal/metrics"
	"laliga/ingestion/internal/repository"
	"laliga/ingestion/internal/retry"
	"laliga/ingestion/internal/router"
	"laliga/ingestion/internal/scheduler"
	"laliga/ingestion/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	setupLogger()

	log.Info().Msg("Starting La Liga del Fuego data worker")

	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Ints("live_seasons", cfg.LiveSeasons).
		Msg("Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	// Database
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

	// Redis response cache; the service degrades to uncached reads
	// when it is unreachable.
	respCache, err := cache.New(ctx, cache.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, cfg.StandingsCacheTTL)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without response cache")
		respCache = nil
	} else {
		defer respCache.Close()
	}

	// ESPN client
	espn := client.NewClient(client.Config{
		BaseURL:       cfg.ESPNBaseURL,
		LeagueID:      cfg.ESPNLeagueID,
		ESPNS2:        cfg.ESPNS2,
		SWID:          cfg.ESPNSWID,
		HistoryCutoff: cfg.HistoryCutoffYear,
		Timeout:       cfg.ESPNTimeout,
	})
	log.Info().Str("league_id", cfg.ESPNLeagueID).Msg("ESPN client initialized")

	retryCfg := retry.Config{
		MaxAttempts: cfg.RetryMaxAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
		Retryable:   client.Retryable,
	}

	pipeline := ingest.New(espn, db, ingest.Config{
		WeeksPerSeason: cfg.WeeksPerSeason,
		LiveSeasons:    cfg.LiveSeasons,
		Retry:          retryCfg,
	})

	activeWeek := router.DefaultActiveWeek(nil)
	dataRouter := router.New(espn, db, pipeline, router.Config{
		LiveSeasons: cfg.LiveSeasons,
		Retry:       retryCfg,
		ActiveWeek:  activeWeek,
	})

	svc := service.New(dataRouter, db, pipeline, db, respCache, cfg.WeeksPerSeason)

	// Metrics server
	if cfg.EnableMetrics {
		go startMetricsServer(cfg.MetricsPort)
	}

	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
			case <-ctx.Done():
				return
			}
		}
	}()

	// Scheduler
	sched := scheduler.NewScheduler(cfg, pipeline, activeWeek)
	if cfg.EnableScheduler {
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	// API server
	apiServer := api.NewServer(cfg.APIPort, svc, defaultSeason(cfg))
	go func() {
		log.Info().Int("port", cfg.APIPort).Msg("Starting API server")
		if err := apiServer.Start(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("API server failed")
			cancel()
		}
	}()

	<-ctx.Done()

	log.Info().Msg("Shutting down...")
	if cfg.EnableScheduler {
		sched.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("API server shutdown failed")
	}

	log.Info().Msg("Worker shutdown complete")
}

// defaultSeason is what requests without a season parameter resolve to:
// the most recent live season, or the calendar year when none are
// configured.
func defaultSeason(cfg *config.Config) int {
	season := 0
	for _, s := range cfg.LiveSeasons {
		if s > season {
			season = s
		}
	}
	if season == 0 {
		season = time.Now().Year()
	}
	return season
}

// setupLogger configures the zerolog logger
func setupLogger() {
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	log.Info().Int("port", port).Msg("Starting metrics server")

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}
