// Package ingest walks completed (or completing) seasons week by week,
// pulling standings and matchups from ESPN and persisting them. One bad
// week never aborts a run: failures are logged, counted, and skipped.
package ingest

import (
	"context"
	"fmt"
	"sync"

	"laliga/ingestion/internal/metrics"
	"laliga/ingestion/internal/models"
	"laliga/ingestion/internal/retry"

	"github.com/rs/zerolog/log"
)

// Upstream is the slice of the ESPN client the pipeline consumes.
type Upstream interface {
	FetchTeams(ctx context.Context, season, week int) ([]models.TeamPayload, error)
	FetchMatchups(ctx context.Context, season, week int) ([]models.SchedulePayload, error)
	FetchLeague(ctx context.Context, season int) (*models.League, error)
}

// Store is the persistence surface the pipeline writes to.
type Store interface {
	UpsertTeam(ctx context.Context, team *models.Team) error
	UpsertTeamStats(ctx context.Context, stats []models.TeamSeasonStat) error
	UpsertMatchups(ctx context.Context, matchups []models.MatchupRecord) error
	UpsertLeague(ctx context.Context, league *models.League) error
	LatestStatsWeek(ctx context.Context, season int) (int, error)
}

// Config parameterizes a Pipeline.
type Config struct {
	// WeeksPerSeason bounds the week walk; zero defaults to 17.
	WeeksPerSeason int
	// LiveSeasons are never auto-backfilled; a season in progress would
	// persist partial standings as if they were final.
	LiveSeasons []int
	Retry       retry.Config
}

// Summary reports the outcome of one season run.
type Summary struct {
	Season         int `json:"season"`
	Teams          int `json:"teams"`
	Matchups       int `json:"matchups"`
	Leagues        int `json:"leagues"`
	WeeksSucceeded int `json:"weeksSucceeded"`
	WeeksFailed    int `json:"weeksFailed"`
}

// Pipeline ingests season data. Runs for the same season are
// serialized; different seasons may run concurrently.
type Pipeline struct {
	upstream Upstream
	store    Store
	weeks    int
	live     map[int]bool
	retry    retry.Config

	mu      sync.Mutex
	seasons map[int]*sync.Mutex
}

// New creates a Pipeline.
func New(upstream Upstream, store Store, cfg Config) *Pipeline {
	weeks := cfg.WeeksPerSeason
	if weeks <= 0 {
		weeks = 17
	}

	live := make(map[int]bool, len(cfg.LiveSeasons))
	for _, season := range cfg.LiveSeasons {
		live[season] = true
	}

	return &Pipeline{
		upstream: upstream,
		store:    store,
		weeks:    weeks,
		live:     live,
		retry:    cfg.Retry,
		seasons:  make(map[int]*sync.Mutex),
	}
}

// seasonLock returns the mutex serializing runs for one season.
func (p *Pipeline) seasonLock(season int) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()

	lock, ok := p.seasons[season]
	if !ok {
		lock = &sync.Mutex{}
		p.seasons[season] = lock
	}
	return lock
}

// EnsureSeason backfills a season only when it is safe and necessary:
// live seasons are skipped, and a season that already has persisted
// standings is left alone.
func (p *Pipeline) EnsureSeason(ctx context.Context, season int) error {
	if p.live[season] {
		log.Debug().Int("season", season).Msg("Skipping backfill for live season")
		return nil
	}

	week, err := p.store.LatestStatsWeek(ctx, season)
	if err != nil {
		return fmt.Errorf("checking season %d: %w", season, err)
	}
	if week > 0 {
		return nil
	}

	log.Info().Int("season", season).Msg("Season has no persisted data, backfilling")
	_, err = p.IngestSeason(ctx, season)
	return err
}

// ForceRefresh re-ingests a season unconditionally, live or not. Used
// by the manual refresh endpoint.
func (p *Pipeline) ForceRefresh(ctx context.Context, season int) (*Summary, error) {
	return p.IngestSeason(ctx, season)
}

// IngestSeason pulls every week of a season and persists standings,
// matchups, the team directory, and league metadata. Individual week
// failures are skipped and counted; the run fails outright only when
// no week succeeds at all.
func (p *Pipeline) IngestSeason(ctx context.Context, season int) (*Summary, error) {
	lock := p.seasonLock(season)
	lock.Lock()
	defer lock.Unlock()

	log.Info().Int("season", season).Int("weeks", p.weeks).Msg("Starting season ingestion")

	summary := &Summary{Season: season}

	names, err := p.ingestDirectory(ctx, season, summary)
	if err != nil {
		metrics.RecordIngestRun("error")
		return nil, fmt.Errorf("ingest season %d: %w", season, err)
	}

	if err := p.ingestLeague(ctx, season, summary); err != nil {
		// Metadata is decoration; its absence doesn't block standings.
		log.Warn().Err(err).Int("season", season).Msg("League metadata ingestion failed")
	}

	for week := 1; week <= p.weeks; week++ {
		if ctx.Err() != nil {
			metrics.RecordIngestRun("cancelled")
			return summary, ctx.Err()
		}

		before := summary.Matchups
		if err := p.ingestWeekLocked(ctx, season, week, names, summary); err != nil {
			summary.WeeksFailed++
			metrics.RecordIngestWeek("error", 0)
			log.Warn().Err(err).
				Int("season", season).
				Int("week", week).
				Msg("Week ingestion failed, continuing")
			continue
		}
		summary.WeeksSucceeded++
		metrics.RecordIngestWeek("success", summary.Matchups-before)
	}

	if summary.WeeksSucceeded == 0 {
		metrics.RecordIngestRun("error")
		return summary, fmt.Errorf("ingest season %d: all %d weeks failed", season, p.weeks)
	}

	metrics.RecordIngestRun("success")
	log.Info().
		Int("season", season).
		Int("teams", summary.Teams).
		Int("matchups", summary.Matchups).
		Int("weeks_ok", summary.WeeksSucceeded).
		Int("weeks_failed", summary.WeeksFailed).
		Msg("Season ingestion complete")

	return summary, nil
}

// IngestWeek pulls one week of a season. Used by the scheduler to keep
// the active week of a live season fresh without a full season walk.
func (p *Pipeline) IngestWeek(ctx context.Context, season, week int) error {
	lock := p.seasonLock(season)
	lock.Lock()
	defer lock.Unlock()

	summary := &Summary{Season: season}
	names, err := p.ingestDirectory(ctx, season, summary)
	if err != nil {
		return fmt.Errorf("ingest week %d/%d: %w", season, week, err)
	}
	if err := p.ingestWeekLocked(ctx, season, week, names, summary); err != nil {
		metrics.RecordIngestWeek("error", 0)
		return fmt.Errorf("ingest week %d/%d: %w", season, week, err)
	}
	metrics.RecordIngestWeek("success", summary.Matchups)
	return nil
}

// ingestDirectory fetches the season's teams once, persists the team
// directory, and returns the id-to-name map used for matchup naming.
func (p *Pipeline) ingestDirectory(ctx context.Context, season int, summary *Summary) (map[int]string, error) {
	payloads, err := retry.Do(ctx, p.retry, func(ctx context.Context) ([]models.TeamPayload, error) {
		return p.upstream.FetchTeams(ctx, season, 0)
	})
	if err != nil {
		return nil, fmt.Errorf("fetching team directory: %w", err)
	}

	names := make(map[int]string, len(payloads))
	for i := range payloads {
		team := payloads[i].ToTeam()
		names[team.ESPNID] = team.Name
		if err := p.store.UpsertTeam(ctx, team); err != nil {
			return nil, fmt.Errorf("saving team %d: %w", team.ESPNID, err)
		}
		summary.Teams++
	}

	log.Debug().Int("season", season).Int("teams", len(names)).Msg("Team directory ingested")
	return names, nil
}

func (p *Pipeline) ingestLeague(ctx context.Context, season int, summary *Summary) error {
	league, err := retry.Do(ctx, p.retry, func(ctx context.Context) (*models.League, error) {
		return p.upstream.FetchLeague(ctx, season)
	})
	if err != nil {
		return err
	}
	if err := p.store.UpsertLeague(ctx, league); err != nil {
		return err
	}
	summary.Leagues++
	return nil
}

// ingestWeekLocked persists one week's standings and matchups. Caller
// holds the season lock.
func (p *Pipeline) ingestWeekLocked(ctx context.Context, season, week int, names map[int]string, summary *Summary) error {
	teams, err := retry.Do(ctx, p.retry, func(ctx context.Context) ([]models.TeamPayload, error) {
		return p.upstream.FetchTeams(ctx, season, week)
	})
	if err != nil {
		return fmt.Errorf("fetching teams: %w", err)
	}

	stats := make([]models.TeamSeasonStat, 0, len(teams))
	for i := range teams {
		stats = append(stats, *teams[i].ToSeasonStat(season, week))
	}
	if err := p.store.UpsertTeamStats(ctx, stats); err != nil {
		return fmt.Errorf("saving standings: %w", err)
	}

	schedule, err := retry.Do(ctx, p.retry, func(ctx context.Context) ([]models.SchedulePayload, error) {
		return p.upstream.FetchMatchups(ctx, season, week)
	})
	if err != nil {
		return fmt.Errorf("fetching matchups: %w", err)
	}

	matchups := make([]models.MatchupRecord, 0, len(schedule))
	for i := range schedule {
		if m := schedule[i].ToMatchup(season, week, names); m != nil {
			matchups = append(matchups, *m)
		}
	}
	if err := p.store.UpsertMatchups(ctx, matchups); err != nil {
		return fmt.Errorf("saving matchups: %w", err)
	}

	summary.Matchups += len(matchups)
	return nil
}
