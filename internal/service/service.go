// Package service composes the data router, ranking engine, and
// response cache into the operations the HTTP layer exposes. Every
// response carries metadata describing which source served it.
package service

import (
	"context"
	"errors"
	"time"

	"laliga/ingestion/internal/cache"
	"laliga/ingestion/internal/ingest"
	"laliga/ingestion/internal/models"
	"laliga/ingestion/internal/ranking"
	"laliga/ingestion/internal/router"

	"github.com/rs/zerolog/log"
)

// ErrNoData marks a request for a (season, week) neither source has
// anything for. Distinct from exhaustion: nothing failed, the data
// just does not exist.
var ErrNoData = errors.New("no data available for requested season and week")

// DataRouter is the routing surface the service consumes.
type DataRouter interface {
	GetTeams(ctx context.Context, season, week int, forceLive bool) (*router.TeamsResult, error)
	GetMatchups(ctx context.Context, season, week int, forceLive bool) (*router.MatchupsResult, error)
	DataSourceStatus(season, week int) router.Status
}

// Directory exposes the persisted team directory and league metadata.
type Directory interface {
	ListTeams(ctx context.Context) ([]models.Team, error)
	GetLeague(ctx context.Context, season int) (*models.League, error)
}

// Refresher triggers a full re-ingestion of a season.
type Refresher interface {
	ForceRefresh(ctx context.Context, season int) (*ingest.Summary, error)
}

// Pinger is anything with connection health, the database pool here.
type Pinger interface {
	Health(ctx context.Context) error
}

// Service wires the read path together. The response cache may be nil;
// every cache operation degrades to a miss.
type Service struct {
	router    DataRouter
	directory Directory
	refresher Refresher
	db        Pinger
	cache     *cache.Cache
	weeks     int
	started   time.Time
}

// New creates a Service. weeksPerSeason bounds cache invalidation on
// refresh; zero defaults to 17.
func New(dr DataRouter, dir Directory, refresher Refresher, db Pinger, respCache *cache.Cache, weeksPerSeason int) *Service {
	if weeksPerSeason <= 0 {
		weeksPerSeason = 17
	}
	return &Service{
		router:    dr,
		directory: dir,
		refresher: refresher,
		db:        db,
		cache:     respCache,
		weeks:     weeksPerSeason,
		started:   time.Now(),
	}
}

// Metadata describes how a response was produced.
type Metadata struct {
	Season      int           `json:"season"`
	Week        int           `json:"week"`
	Source      router.Source `json:"source"`
	Status      string        `json:"status"`
	Refreshable bool          `json:"refreshable"`
}

// TeamsResponse is the standings-records view for one (season, week).
type TeamsResponse struct {
	Teams []models.TeamSeasonStat `json:"teams"`
	Meta  Metadata                `json:"meta"`
}

// MatchupsResponse is the head-to-head view for one (season, week).
type MatchupsResponse struct {
	Matchups []models.MatchupRecord `json:"matchups"`
	Meta     Metadata               `json:"meta"`
}

// StandingsEntry is one ranked team decorated with directory info.
type StandingsEntry struct {
	ranking.Result
	Name   string `json:"name"`
	Owner  string `json:"owner,omitempty"`
	Record string `json:"record"`
}

// StandingsResponse is the Liga Bucks table for one (season, week).
type StandingsResponse struct {
	Standings []StandingsEntry `json:"standings"`
	League    *models.League   `json:"league,omitempty"`
	Meta      Metadata         `json:"meta"`
}

// HealthResponse reports component health.
type HealthResponse struct {
	Status        string `json:"status"`
	Database      string `json:"database"`
	Cache         string `json:"cache"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
}

func (s *Service) meta(season, week int, source router.Source) Metadata {
	status := s.router.DataSourceStatus(season, week)
	return Metadata{
		Season:      season,
		Week:        week,
		Source:      source,
		Status:      status.Status,
		Refreshable: status.Refreshable,
	}
}

// Teams returns team standings records. An empty result is a valid
// response, not an error.
func (s *Service) Teams(ctx context.Context, season, week int, forceLive bool) (*TeamsResponse, error) {
	result, err := s.router.GetTeams(ctx, season, week, forceLive)
	if err != nil {
		return nil, err
	}
	return &TeamsResponse{
		Teams: result.Teams,
		Meta:  s.meta(season, week, result.Source),
	}, nil
}

// Matchups returns head-to-head matchups.
func (s *Service) Matchups(ctx context.Context, season, week int, forceLive bool) (*MatchupsResponse, error) {
	result, err := s.router.GetMatchups(ctx, season, week, forceLive)
	if err != nil {
		return nil, err
	}
	return &MatchupsResponse{
		Matchups: result.Matchups,
		Meta:     s.meta(season, week, result.Source),
	}, nil
}

// Standings computes the Liga Bucks table for (season, week).
//
// Cache-served inputs are memoized in Redis under a short TTL since the
// underlying records cannot change; live results are never memoized.
// No-data outcomes surface as ErrNoData.
func (s *Service) Standings(ctx context.Context, season, week int, forceLive bool) (*StandingsResponse, error) {
	key := cache.StandingsKey(season, week)

	if !forceLive {
		var cached StandingsResponse
		hit, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Standings cache read failed")
		}
		if hit {
			return &cached, nil
		}
	}

	result, err := s.router.GetTeams(ctx, season, week, forceLive)
	if err != nil {
		return nil, err
	}
	if result.Source == router.SourceNone || len(result.Teams) == 0 {
		return nil, ErrNoData
	}

	table, err := ranking.Compute(result.Teams, rankingMode(result.Teams))
	if err != nil {
		return nil, err
	}

	teams, err := s.directory.ListTeams(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Team directory unavailable, standings use placeholder names")
		teams = nil
	}
	byID := make(map[int]models.Team, len(teams))
	for _, t := range teams {
		byID[t.ESPNID] = t
	}

	entries := make([]StandingsEntry, len(table))
	for i, row := range table {
		entry := StandingsEntry{Result: row}
		if t, ok := byID[row.TeamID]; ok {
			entry.Name = t.Name
			entry.Owner = t.Owner
		} else {
			entry.Name = models.PlaceholderTeamName(row.TeamID)
		}
		entry.Record = (&models.TeamSeasonStat{Wins: row.Wins, Losses: row.Losses, Ties: row.Ties}).Record()
		entries[i] = entry
	}

	league, err := s.directory.GetLeague(ctx, season)
	if err != nil {
		log.Debug().Err(err).Int("season", season).Msg("League metadata unavailable")
		league = nil
	}

	response := &StandingsResponse{
		Standings: entries,
		League:    league,
		Meta:      s.meta(season, week, result.Source),
	}

	if result.Source == router.SourceCache {
		if err := s.cache.SetJSON(ctx, key, response); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Standings cache write failed")
		}
	}

	return response, nil
}

// Refresh force re-ingests a season and invalidates its memoized
// standings.
func (s *Service) Refresh(ctx context.Context, season int) (*ingest.Summary, error) {
	summary, err := s.refresher.ForceRefresh(ctx, season)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, s.weeks)
	for week := 1; week <= s.weeks; week++ {
		keys = append(keys, cache.StandingsKey(season, week))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		log.Warn().Err(err).Int("season", season).Msg("Standings cache invalidation failed")
	}

	return summary, nil
}

// Status labels a (season, week) with its serving source without
// touching either backend.
func (s *Service) Status(season, week int) router.Status {
	return s.router.DataSourceStatus(season, week)
}

// Health checks the database and cache. The service is degraded, not
// down, when only the cache is unreachable.
func (s *Service) Health(ctx context.Context) *HealthResponse {
	resp := &HealthResponse{
		Status:        "healthy",
		Database:      "up",
		Cache:         "up",
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
	}

	if err := s.db.Health(ctx); err != nil {
		resp.Status = "unhealthy"
		resp.Database = "down"
	}
	if err := s.cache.Health(ctx); err != nil {
		resp.Cache = "down"
		if resp.Status == "healthy" {
			resp.Status = "degraded"
		}
	}

	return resp
}

// rankingMode selects seeded ranking when every team carries a
// provider seed, falling back to record-based ranking otherwise.
func rankingMode(teams []models.TeamSeasonStat) ranking.Mode {
	for _, t := range teams {
		if t.ExternalRank <= 0 {
			return ranking.ModeRecord
		}
	}
	return ranking.ModeSeed
}
