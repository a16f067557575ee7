package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"laliga/ingestion/internal/metrics"
	"laliga/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// View selects which slices of league data the ESPN API returns.
type View string

const (
	ViewTeam      View = "mTeam"
	ViewMatchup   View = "mMatchup"
	ViewStandings View = "mStandings"
	ViewSettings  View = "mSettings"
)

// Config holds the ESPN fantasy API connection settings. ESPNS2 and
// SWID are the two opaque cookie credentials supplied out of band.
type Config struct {
	BaseURL       string
	LeagueID      string
	ESPNS2        string
	SWID          string
	HistoryCutoff int
	Timeout       time.Duration
}

// Client is the ESPN fantasy API client. It performs single attempts
// only; callers wrap calls in a retry policy where retries are wanted.
type Client struct {
	baseURL       string
	leagueID      string
	espnS2        string
	swid          string
	historyCutoff int
	httpClient    *http.Client
}

// NewClient creates a new ESPN fantasy API client.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:       cfg.BaseURL,
		leagueID:      cfg.LeagueID,
		espnS2:        cfg.ESPNS2,
		swid:          cfg.SWID,
		historyCutoff: cfg.HistoryCutoff,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// seasonEnvelope is the league response body. Seasons at or below the
// history cutoff come back as an array of these from the leagueHistory
// endpoint; later seasons as a single object.
type seasonEnvelope struct {
	ScoringPeriodID int                      `json:"scoringPeriodId"`
	Teams           []models.TeamPayload     `json:"teams"`
	Schedule        []models.SchedulePayload `json:"schedule"`
	Settings        *struct {
		Name string `json:"name"`
	} `json:"settings"`
}

// get performs a single GET against the league endpoint for the season,
// translating HTTP failures into the APIError taxonomy.
func (c *Client) get(ctx context.Context, season int, params map[string]string) ([]byte, error) {
	var url string
	if season <= c.historyCutoff {
		// League history endpoint; the season is selected via seasonId.
		url = fmt.Sprintf("%s/leagueHistory/%s", c.baseURL, c.leagueID)
		if params == nil {
			params = map[string]string{}
		}
		params["seasonId"] = strconv.Itoa(season)
	} else {
		url = fmt.Sprintf("%s/seasons/%d/segments/0/leagues/%s", c.baseURL, season, c.leagueID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &APIError{Kind: KindFatal, URL: url, Message: "failed to create request", Err: err}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cookie", fmt.Sprintf("espn_s2=%s; SWID=%s", c.espnS2, c.swid))

	q := req.URL.Query()
	for key, value := range params {
		q.Add(key, value)
	}
	req.URL.RawQuery = q.Encode()

	log.Debug().
		Str("url", url).
		Int("season", season).
		Msg("Making ESPN API request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		metrics.RecordUpstreamCall("league", "network_error", time.Since(start).Seconds())
		return nil, &APIError{Kind: KindTransient, URL: url, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordUpstreamCall("league", "read_error", time.Since(start).Seconds())
		return nil, &APIError{Kind: KindTransient, URL: url, Message: "failed to read response body", Err: err}
	}

	metrics.RecordUpstreamCall("league", strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())

	switch {
	case resp.StatusCode == http.StatusOK:
		log.Debug().
			Str("url", url).
			Int("size", len(body)).
			Msg("ESPN API request successful")
		return body, nil

	case resp.StatusCode == http.StatusNotFound:
		return nil, &APIError{Kind: KindNotFound, StatusCode: resp.StatusCode, URL: url,
			Message: fmt.Sprintf("season %d not found or access restricted", season)}

	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &APIError{Kind: KindRateLimited, StatusCode: resp.StatusCode, URL: url,
			Message: trim(body)}

	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, &APIError{Kind: KindTransient, StatusCode: resp.StatusCode, URL: url,
			Message: trim(body)}

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &APIError{Kind: KindFatal, StatusCode: resp.StatusCode, URL: url,
			Message: "authentication failed"}

	default:
		return nil, &APIError{Kind: KindFatal, StatusCode: resp.StatusCode, URL: url,
			Message: trim(body)}
	}
}

// fetchSeason fetches the league envelope for a season with the given
// view, unwrapping the history-endpoint array shape when needed.
func (c *Client) fetchSeason(ctx context.Context, season, week int, view View) (*seasonEnvelope, error) {
	params := map[string]string{"view": string(view)}
	if week > 0 {
		params["scoringPeriodId"] = strconv.Itoa(week)
	}

	body, err := c.get(ctx, season, params)
	if err != nil {
		return nil, err
	}

	if season <= c.historyCutoff {
		var envelopes []seasonEnvelope
		if err := json.Unmarshal(body, &envelopes); err != nil {
			return nil, &APIError{Kind: KindFatal, Message: "failed to unmarshal league history", Err: err}
		}
		if len(envelopes) == 0 {
			return nil, &APIError{Kind: KindNotFound,
				Message: fmt.Sprintf("league history empty for season %d", season)}
		}
		return &envelopes[0], nil
	}

	var envelope seasonEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &APIError{Kind: KindFatal, Message: "failed to unmarshal league response", Err: err}
	}
	return &envelope, nil
}

// FetchTeams fetches the league's teams with cumulative records as of
// the given week. Week 0 means the provider's current scoring period.
func (c *Client) FetchTeams(ctx context.Context, season, week int) ([]models.TeamPayload, error) {
	envelope, err := c.fetchSeason(ctx, season, week, ViewTeam)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch teams: %w", err)
	}
	return envelope.Teams, nil
}

// FetchStandings fetches the teams with provider seeding populated.
func (c *Client) FetchStandings(ctx context.Context, season int) ([]models.TeamPayload, error) {
	envelope, err := c.fetchSeason(ctx, season, 0, ViewStandings)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch standings: %w", err)
	}
	return envelope.Teams, nil
}

// FetchMatchups fetches the raw schedule for a season, scoped to a week
// when one is given. The schedule still spans the whole season; callers
// filter entries by matchup period.
func (c *Client) FetchMatchups(ctx context.Context, season, week int) ([]models.SchedulePayload, error) {
	envelope, err := c.fetchSeason(ctx, season, week, ViewMatchup)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch matchups: %w", err)
	}
	return envelope.Schedule, nil
}

// FetchLeague fetches per-season league metadata.
func (c *Client) FetchLeague(ctx context.Context, season int) (*models.League, error) {
	envelope, err := c.fetchSeason(ctx, season, 0, ViewSettings)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch league: %w", err)
	}

	league := &models.League{
		Season:       season,
		ESPNLeagueID: c.leagueID,
		CurrentWeek:  envelope.ScoringPeriodID,
	}
	if envelope.Settings != nil {
		league.Name = envelope.Settings.Name
	}
	return league, nil
}

func trim(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max])
	}
	return string(body)
}
