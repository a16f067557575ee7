package service

import (
	"context"
	"errors"
	"testing"

	"laliga/ingestion/internal/ingest"
	"laliga/ingestion/internal/models"
	"laliga/ingestion/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRouter struct {
	teams    *router.TeamsResult
	matchups *router.MatchupsResult
	err      error
	live     bool
}

func (s *stubRouter) GetTeams(ctx context.Context, season, week int, forceLive bool) (*router.TeamsResult, error) {
	return s.teams, s.err
}

func (s *stubRouter) GetMatchups(ctx context.Context, season, week int, forceLive bool) (*router.MatchupsResult, error) {
	return s.matchups, s.err
}

func (s *stubRouter) DataSourceStatus(season, week int) router.Status {
	status := "FINAL"
	source := router.SourceCache
	if s.live {
		status = "LIVE"
		source = router.SourceLive
	}
	return router.Status{Season: season, Week: week, Source: source, Status: status, Refreshable: s.live}
}

type stubDirectory struct {
	teams  []models.Team
	league *models.League
}

func (s *stubDirectory) ListTeams(ctx context.Context) ([]models.Team, error) {
	return s.teams, nil
}

func (s *stubDirectory) GetLeague(ctx context.Context, season int) (*models.League, error) {
	return s.league, nil
}

type stubRefresher struct {
	summary *ingest.Summary
	err     error
	seasons []int
}

func (s *stubRefresher) ForceRefresh(ctx context.Context, season int) (*ingest.Summary, error) {
	s.seasons = append(s.seasons, season)
	return s.summary, s.err
}

type stubPinger struct{ err error }

func (s *stubPinger) Health(ctx context.Context) error { return s.err }

func cachedTeams(stats ...models.TeamSeasonStat) *router.TeamsResult {
	return &router.TeamsResult{Teams: stats, Source: router.SourceCache}
}

func newTestService(dr DataRouter, dir Directory, refresher Refresher, db Pinger) *Service {
	return New(dr, dir, refresher, db, nil, 17)
}

func TestStandings_DecoratedAndOrdered(t *testing.T) {
	dr := &stubRouter{teams: cachedTeams(
		models.TeamSeasonStat{TeamID: 1, Season: 2019, Week: 17, Wins: 10, PointsFor: 1500, PointsAgainst: 1200},
		models.TeamSeasonStat{TeamID: 2, Season: 2019, Week: 17, Wins: 4, PointsFor: 1100, PointsAgainst: 1400},
	)}
	dir := &stubDirectory{
		teams:  []models.Team{{ESPNID: 1, Name: "Casa del Fuego", Owner: "Ana"}},
		league: &models.League{Season: 2019, Name: "La Liga del Fuego"},
	}

	svc := newTestService(dr, dir, &stubRefresher{}, &stubPinger{})
	resp, err := svc.Standings(context.Background(), 2019, 17, false)
	require.NoError(t, err)

	require.Len(t, resp.Standings, 2)
	assert.Equal(t, 1, resp.Standings[0].TeamID)
	assert.Equal(t, 1, resp.Standings[0].FinalRank)
	assert.Equal(t, "Casa del Fuego", resp.Standings[0].Name)
	assert.Equal(t, "Ana", resp.Standings[0].Owner)
	assert.Equal(t, "10-0", resp.Standings[0].Record)

	// Teams missing from the directory still rank, with placeholders.
	assert.Equal(t, "Team 2", resp.Standings[1].Name)

	assert.Equal(t, "La Liga del Fuego", resp.League.Name)
	assert.Equal(t, router.SourceCache, resp.Meta.Source)
	assert.Equal(t, "FINAL", resp.Meta.Status)
}

func TestStandings_NoDataIsExplicit(t *testing.T) {
	dr := &stubRouter{teams: &router.TeamsResult{Teams: []models.TeamSeasonStat{}, Source: router.SourceNone}}
	svc := newTestService(dr, &stubDirectory{}, &stubRefresher{}, &stubPinger{})

	_, err := svc.Standings(context.Background(), 2012, 3, false)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestStandings_RouterErrorPropagates(t *testing.T) {
	dr := &stubRouter{err: router.ErrBothSourcesExhausted}
	svc := newTestService(dr, &stubDirectory{}, &stubRefresher{}, &stubPinger{})

	_, err := svc.Standings(context.Background(), 2025, 5, false)
	assert.ErrorIs(t, err, router.ErrBothSourcesExhausted)
}

func TestStandings_SeedModeWhenAllSeeded(t *testing.T) {
	// Seeds contradict the records; seeded input must be ranked by seed.
	dr := &stubRouter{teams: cachedTeams(
		models.TeamSeasonStat{TeamID: 1, Wins: 2, PointsFor: 900, PointsAgainst: 1100, ExternalRank: 1},
		models.TeamSeasonStat{TeamID: 2, Wins: 11, PointsFor: 1000, PointsAgainst: 1000, ExternalRank: 2},
	)}
	svc := newTestService(dr, &stubDirectory{}, &stubRefresher{}, &stubPinger{})

	resp, err := svc.Standings(context.Background(), 2019, 17, false)
	require.NoError(t, err)

	byTeam := map[int]int{}
	for _, e := range resp.Standings {
		byTeam[e.TeamID] = e.ESPNComponent
	}
	assert.Equal(t, 2, byTeam[1])
	assert.Equal(t, 1, byTeam[2])
}

func TestTeams_EmptyResultIsValid(t *testing.T) {
	dr := &stubRouter{teams: &router.TeamsResult{Teams: []models.TeamSeasonStat{}, Source: router.SourceNone}}
	svc := newTestService(dr, &stubDirectory{}, &stubRefresher{}, &stubPinger{})

	resp, err := svc.Teams(context.Background(), 2012, 3, false)
	require.NoError(t, err)
	assert.Empty(t, resp.Teams)
	assert.Equal(t, router.SourceNone, resp.Meta.Source)
}

func TestMatchups_MetadataAttached(t *testing.T) {
	dr := &stubRouter{
		matchups: &router.MatchupsResult{
			Matchups: []models.MatchupRecord{{Season: 2025, Week: 8, Team1ID: 1, Team2ID: 2, Status: models.MatchupLive}},
			Source:   router.SourceLive,
		},
		live: true,
	}
	svc := newTestService(dr, &stubDirectory{}, &stubRefresher{}, &stubPinger{})

	resp, err := svc.Matchups(context.Background(), 2025, 8, false)
	require.NoError(t, err)
	assert.Equal(t, router.SourceLive, resp.Meta.Source)
	assert.Equal(t, "LIVE", resp.Meta.Status)
	assert.True(t, resp.Meta.Refreshable)
}

func TestRefresh_DelegatesToRefresher(t *testing.T) {
	ref := &stubRefresher{summary: &ingest.Summary{Season: 2025, WeeksSucceeded: 17}}
	svc := newTestService(&stubRouter{}, &stubDirectory{}, ref, &stubPinger{})

	summary, err := svc.Refresh(context.Background(), 2025)
	require.NoError(t, err)
	assert.Equal(t, 17, summary.WeeksSucceeded)
	assert.Equal(t, []int{2025}, ref.seasons)
}

func TestRefresh_FailurePropagates(t *testing.T) {
	ref := &stubRefresher{err: errors.New("upstream down")}
	svc := newTestService(&stubRouter{}, &stubDirectory{}, ref, &stubPinger{})

	_, err := svc.Refresh(context.Background(), 2025)
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	// Healthy database, no cache configured: degraded but serving.
	svc := newTestService(&stubRouter{}, &stubDirectory{}, &stubRefresher{}, &stubPinger{})
	health := svc.Health(context.Background())
	assert.Equal(t, "degraded", health.Status)
	assert.Equal(t, "up", health.Database)
	assert.Equal(t, "down", health.Cache)

	// Database down dominates.
	svc = newTestService(&stubRouter{}, &stubDirectory{}, &stubRefresher{}, &stubPinger{err: errors.New("no route")})
	health = svc.Health(context.Background())
	assert.Equal(t, "unhealthy", health.Status)
	assert.Equal(t, "down", health.Database)
}
