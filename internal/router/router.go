// Package router decides, per request, whether teams and matchups are
// served from the live ESPN API or the persisted cache, and applies the
// fallback chain between the two. Upstream failures never escape to the
// caller: every request ends in data, an explicit empty outcome, or
// ErrBothSourcesExhausted.
package router

import (
	"context"
	"errors"
	"fmt"

	"laliga/ingestion/internal/client"
	"laliga/ingestion/internal/metrics"
	"laliga/ingestion/internal/models"
	"laliga/ingestion/internal/retry"

	"github.com/rs/zerolog/log"
)

// Source identifies which backend served a request.
type Source string

const (
	SourceLive  Source = "live"
	SourceCache Source = "cache"
	// SourceNone marks the explicit empty outcome: both paths were
	// consulted and neither has data. Not an error.
	SourceNone Source = "none"
)

// ErrBothSourcesExhausted is the only terminal failure the router
// surfaces: the live fetch failed and the cache holds nothing.
var ErrBothSourcesExhausted = errors.New("both live and cached sources exhausted")

// Upstream is the slice of the ESPN client the router consumes.
type Upstream interface {
	FetchTeams(ctx context.Context, season, week int) ([]models.TeamPayload, error)
	FetchMatchups(ctx context.Context, season, week int) ([]models.SchedulePayload, error)
}

// Store is the persisted cache the router reads. Absent keys yield
// empty slices, never errors.
type Store interface {
	GetTeamStats(ctx context.Context, season, week int) ([]models.TeamSeasonStat, error)
	GetMatchups(ctx context.Context, season, week int) ([]models.MatchupRecord, error)
	TeamDirectory(ctx context.Context) (map[int]string, error)
	LatestStatsWeek(ctx context.Context, season int) (int, error)
}

// Ingestor backfills the cache for seasons that are already over.
type Ingestor interface {
	EnsureSeason(ctx context.Context, season int) error
}

// Config parameterizes routing. LiveSeasons is injected rather than
// hardcoded so eligibility rules are testable and environment-specific.
type Config struct {
	LiveSeasons []int
	Retry       retry.Config
	// ActiveWeek reports the week currently being played for a season,
	// 0 when none is. Nil defaults to the calendar-based resolver.
	ActiveWeek func(season int) int
}

// Router routes data requests between the live upstream and the cache.
type Router struct {
	upstream   Upstream
	store      Store
	ingestor   Ingestor
	live       map[int]bool
	retry      retry.Config
	activeWeek func(season int) int
}

// TeamsResult is the outcome of a teams request.
type TeamsResult struct {
	Teams  []models.TeamSeasonStat
	Source Source
}

// MatchupsResult is the outcome of a matchups request.
type MatchupsResult struct {
	Matchups []models.MatchupRecord
	Source   Source
}

// Status labels a (season, week) with its serving source. Computed from
// eligibility rules only; never performs I/O.
type Status struct {
	Season      int    `json:"season"`
	Week        int    `json:"week"`
	Source      Source `json:"source"`
	Status      string `json:"status"`
	Refreshable bool   `json:"refreshable"`
}

// New creates a Router. The ingestor may be nil, in which case the
// cache path serves whatever is already persisted.
func New(upstream Upstream, store Store, ingestor Ingestor, cfg Config) *Router {
	live := make(map[int]bool, len(cfg.LiveSeasons))
	for _, season := range cfg.LiveSeasons {
		live[season] = true
	}

	activeWeek := cfg.ActiveWeek
	if activeWeek == nil {
		activeWeek = DefaultActiveWeek(nil)
	}

	retryCfg := cfg.Retry
	if retryCfg.MaxAttempts == 0 {
		retryCfg = retry.DefaultConfig(client.Retryable)
	}

	return &Router{
		upstream:   upstream,
		store:      store,
		ingestor:   ingestor,
		live:       live,
		retry:      retryCfg,
		activeWeek: activeWeek,
	}
}

// ShouldUseLive reports whether a teams request for the season goes to
// the upstream first. forceLive always wins.
func (r *Router) ShouldUseLive(season int, forceLive bool) bool {
	if forceLive {
		return true
	}
	return r.live[season]
}

// shouldUseLiveMatchups additionally requires the requested week to be
// the one currently being played; every other week of a live season is
// served from cache.
func (r *Router) shouldUseLiveMatchups(season, week int, forceLive bool) bool {
	if forceLive {
		return true
	}
	return r.live[season] && week == r.activeWeek(season)
}

// GetTeams resolves team standings for (season, week).
//
// The live path is read-only: results are returned without being
// persisted, keeping request latency free of write side effects.
// Caching is the ingestion pipeline's job.
func (r *Router) GetTeams(ctx context.Context, season, week int, forceLive bool) (*TeamsResult, error) {
	useLive := r.ShouldUseLive(season, forceLive)

	log.Debug().
		Int("season", season).
		Int("week", week).
		Bool("live", useLive).
		Msg("Routing teams request")

	var upstreamErr error
	if useLive {
		teams, err := r.liveTeams(ctx, season, week)
		if err == nil && len(teams) > 0 {
			metrics.RecordRouterRequest("teams", string(SourceLive))
			return &TeamsResult{Teams: teams, Source: SourceLive}, nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !client.IsNotFound(err) {
				upstreamErr = err
			}
			log.Warn().Err(err).
				Int("season", season).
				Msg("Live teams fetch failed, falling back to cache")
		}
		metrics.RecordRouterFallback("teams")
	}

	// Cache path. Backfill is only triggered for seasons that are over;
	// ingesting a season still in progress would persist partial data.
	if !useLive && !r.live[season] && r.ingestor != nil {
		if err := r.ingestor.EnsureSeason(ctx, season); err != nil {
			log.Warn().Err(err).Int("season", season).Msg("Cache backfill failed")
		}
	}

	var storeErr error
	readWeek, werr := r.resolveWeek(ctx, season, week)
	if werr != nil {
		storeErr = werr
		log.Error().Err(werr).Int("season", season).Msg("Latest week resolution failed")
	} else {
		stats, err := r.store.GetTeamStats(ctx, season, readWeek)
		if err != nil {
			storeErr = err
			log.Error().Err(err).Int("season", season).Int("week", readWeek).Msg("Cache read failed for teams")
		} else if len(stats) > 0 {
			metrics.RecordRouterRequest("teams", string(SourceCache))
			return &TeamsResult{Teams: stats, Source: SourceCache}, nil
		}
	}

	if upstreamErr != nil || storeErr != nil {
		cause := upstreamErr
		if cause == nil {
			cause = storeErr
		}
		return nil, fmt.Errorf("%w: teams %d week %d: %v", ErrBothSourcesExhausted, season, week, cause)
	}

	metrics.RecordRouterRequest("teams", string(SourceNone))
	return &TeamsResult{Teams: []models.TeamSeasonStat{}, Source: SourceNone}, nil
}

// GetMatchups resolves matchups for (season, week). Only the active
// week of a live season is fetched live.
func (r *Router) GetMatchups(ctx context.Context, season, week int, forceLive bool) (*MatchupsResult, error) {
	useLive := r.shouldUseLiveMatchups(season, week, forceLive)

	log.Debug().
		Int("season", season).
		Int("week", week).
		Bool("live", useLive).
		Msg("Routing matchups request")

	var upstreamErr error
	if useLive {
		matchups, err := r.liveMatchups(ctx, season, week)
		if err == nil && len(matchups) > 0 {
			metrics.RecordRouterRequest("matchups", string(SourceLive))
			return &MatchupsResult{Matchups: matchups, Source: SourceLive}, nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !client.IsNotFound(err) {
				upstreamErr = err
			}
			log.Warn().Err(err).
				Int("season", season).
				Int("week", week).
				Msg("Live matchups fetch failed, falling back to cache")
		}
		metrics.RecordRouterFallback("matchups")
	}

	if !useLive && !r.live[season] && r.ingestor != nil {
		if err := r.ingestor.EnsureSeason(ctx, season); err != nil {
			log.Warn().Err(err).Int("season", season).Msg("Cache backfill failed")
		}
	}

	var storeErr error
	readWeek, werr := r.resolveWeek(ctx, season, week)
	if werr != nil {
		storeErr = werr
		log.Error().Err(werr).Int("season", season).Msg("Latest week resolution failed")
	} else {
		matchups, err := r.store.GetMatchups(ctx, season, readWeek)
		if err != nil {
			storeErr = err
			log.Error().Err(err).Int("season", season).Int("week", readWeek).Msg("Cache read failed for matchups")
		} else if len(matchups) > 0 {
			metrics.RecordRouterRequest("matchups", string(SourceCache))
			return &MatchupsResult{Matchups: matchups, Source: SourceCache}, nil
		}
	}

	if !useLive && r.live[season] {
		live, err := r.liveMatchups(ctx, season, week)
		if err == nil && len(live) > 0 {
			metrics.RecordRouterRequest("matchups", string(SourceLive))
			return &MatchupsResult{Matchups: live, Source: SourceLive}, nil
		}
		if err != nil && !client.IsNotFound(err) {
			upstreamErr = err
		}
	}

	if upstreamErr != nil || storeErr != nil {
		cause := upstreamErr
		if cause == nil {
			cause = storeErr
		}
		return nil, fmt.Errorf("%w: matchups %d week %d: %v", ErrBothSourcesExhausted, season, week, cause)
	}

	metrics.RecordRouterRequest("matchups", string(SourceNone))
	return &MatchupsResult{Matchups: []models.MatchupRecord{}, Source: SourceNone}, nil
}

// DataSourceStatus labels a (season, week) for callers that decorate
// results. Pure function of the eligibility rules; performs no I/O.
func (r *Router) DataSourceStatus(season, week int) Status {
	isLive := r.live[season] && (week == 0 || week == r.activeWeek(season))

	status := "FINAL"
	source := SourceCache
	if isLive {
		status = "LIVE"
		source = SourceLive
	}

	return Status{
		Season:      season,
		Week:        week,
		Source:      source,
		Status:      status,
		Refreshable: isLive,
	}
}

// resolveWeek maps a week-omitted request (week 0) to the latest
// ingested week before a cache read. The live path needs no mapping:
// the upstream treats week 0 as the current scoring period.
func (r *Router) resolveWeek(ctx context.Context, season, week int) (int, error) {
	if week != 0 {
		return week, nil
	}
	latest, err := r.store.LatestStatsWeek(ctx, season)
	if err != nil {
		return 0, err
	}
	return latest, nil
}

func (r *Router) liveTeams(ctx context.Context, season, week int) ([]models.TeamSeasonStat, error) {
	payloads, err := retry.Do(ctx, r.retry, func(ctx context.Context) ([]models.TeamPayload, error) {
		return r.upstream.FetchTeams(ctx, season, week)
	})
	if err != nil {
		return nil, err
	}

	stats := make([]models.TeamSeasonStat, 0, len(payloads))
	for i := range payloads {
		stats = append(stats, *payloads[i].ToSeasonStat(season, week))
	}
	return stats, nil
}

func (r *Router) liveMatchups(ctx context.Context, season, week int) ([]models.MatchupRecord, error) {
	payloads, err := retry.Do(ctx, r.retry, func(ctx context.Context) ([]models.SchedulePayload, error) {
		return r.upstream.FetchMatchups(ctx, season, week)
	})
	if err != nil {
		return nil, err
	}

	// Name resolution is best-effort; placeholder names are acceptable
	// on the live read path.
	names, err := r.store.TeamDirectory(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("Team directory unavailable, using placeholder names")
		names = nil
	}

	matchups := make([]models.MatchupRecord, 0, len(payloads))
	for i := range payloads {
		if m := payloads[i].ToMatchup(season, week, names); m != nil {
			matchups = append(matchups, *m)
		}
	}
	return matchups, nil
}
