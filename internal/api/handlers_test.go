package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"laliga/ingestion/internal/ingest"
	"laliga/ingestion/internal/models"
	"laliga/ingestion/internal/router"
	"laliga/ingestion/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRouter struct {
	teams *router.TeamsResult
	err   error
}

func (f *fakeRouter) GetTeams(ctx context.Context, season, week int, forceLive bool) (*router.TeamsResult, error) {
	return f.teams, f.err
}

func (f *fakeRouter) GetMatchups(ctx context.Context, season, week int, forceLive bool) (*router.MatchupsResult, error) {
	return &router.MatchupsResult{Matchups: []models.MatchupRecord{}, Source: router.SourceCache}, f.err
}

func (f *fakeRouter) DataSourceStatus(season, week int) router.Status {
	return router.Status{Season: season, Week: week, Source: router.SourceCache, Status: "FINAL"}
}

type fakeDirectory struct{}

func (fakeDirectory) ListTeams(ctx context.Context) ([]models.Team, error) { return nil, nil }
func (fakeDirectory) GetLeague(ctx context.Context, season int) (*models.League, error) {
	return nil, nil
}

type fakeRefresher struct{ summary *ingest.Summary }

func (f *fakeRefresher) ForceRefresh(ctx context.Context, season int) (*ingest.Summary, error) {
	return f.summary, nil
}

type fakePinger struct{}

func (fakePinger) Health(ctx context.Context) error { return nil }

func newTestServer(dr service.DataRouter) *Server {
	svc := service.New(dr, fakeDirectory{}, &fakeRefresher{summary: &ingest.Summary{Season: 2019}}, fakePinger{}, nil, 17)
	return NewServer(0, svc, 2025)
}

func doRequest(t *testing.T, srv *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestGetTeams_OK(t *testing.T) {
	dr := &fakeRouter{teams: &router.TeamsResult{
		Teams:  []models.TeamSeasonStat{{TeamID: 1, Season: 2019, Week: 4, Wins: 3}},
		Source: router.SourceCache,
	}}
	srv := newTestServer(dr)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/teams?season=2019&week=4")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp service.TeamsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Teams, 1)
	assert.Equal(t, router.SourceCache, resp.Meta.Source)
}

func TestGetTeams_InvalidParams(t *testing.T) {
	srv := newTestServer(&fakeRouter{})

	assert.Equal(t, http.StatusBadRequest, doRequest(t, srv, http.MethodGet, "/api/v1/teams?season=abc").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(t, srv, http.MethodGet, "/api/v1/teams?week=99").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(t, srv, http.MethodGet, "/api/v1/teams?season=1500").Code)
}

func TestGetStandings_NoDataIs404(t *testing.T) {
	dr := &fakeRouter{teams: &router.TeamsResult{Teams: []models.TeamSeasonStat{}, Source: router.SourceNone}}
	srv := newTestServer(dr)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/standings?season=2012")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetStandings_ExhaustedIs502(t *testing.T) {
	dr := &fakeRouter{err: router.ErrBothSourcesExhausted}
	srv := newTestServer(dr)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/standings?season=2025")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGetStandings_OK(t *testing.T) {
	dr := &fakeRouter{teams: &router.TeamsResult{
		Teams: []models.TeamSeasonStat{
			{TeamID: 1, Wins: 8, PointsFor: 1200, PointsAgainst: 1000},
			{TeamID: 2, Wins: 5, PointsFor: 1100, PointsAgainst: 1150},
		},
		Source: router.SourceCache,
	}}
	srv := newTestServer(dr)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/standings?season=2019&week=17")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp service.StandingsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Standings, 2)
	assert.Equal(t, 1, resp.Standings[0].FinalRank)
}

func TestGetDataSourceStatus(t *testing.T) {
	srv := newTestServer(&fakeRouter{})

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/status?season=2019&week=3")
	require.Equal(t, http.StatusOK, rec.Code)

	var status router.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, 2019, status.Season)
	assert.Equal(t, "FINAL", status.Status)
}

func TestTriggerIngest(t *testing.T) {
	srv := newTestServer(&fakeRouter{})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/ingest/2019")
	require.Equal(t, http.StatusOK, rec.Code)

	var summary ingest.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 2019, summary.Season)

	assert.Equal(t, http.StatusBadRequest, doRequest(t, srv, http.MethodPost, "/api/v1/ingest/abc").Code)
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(&fakeRouter{})

	rec := doRequest(t, srv, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var health service.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "up", health.Database)
}
