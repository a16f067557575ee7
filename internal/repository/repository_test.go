//go:build integration

package repository

import (
	"context"
	"testing"

	"laliga/ingestion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests for database operations
// Run with: go test -v -tags=integration ./internal/repository/...

func setupTestDB(t *testing.T) (*Database, context.Context) {
	ctx := context.Background()

	cfg := Config{
		Host:     "localhost",
		Port:     "5432",
		Database: "laliga_test",
		User:     "laliga_user",
		Password: "laliga_password",
		SSLMode:  "disable",
	}

	db, err := NewDatabase(ctx, cfg)
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, db.InitSchema(ctx))

	return db, ctx
}

func teardownTestDB(t *testing.T, db *Database) {
	db.Close()
}

func TestDatabaseConnection(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	assert.NoError(t, db.Health(ctx))

	stats := db.PoolStats()
	assert.NotNil(t, stats)
}

func TestTeamRepository_UpsertAndDirectory(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	team := &models.Team{ESPNID: 9001, Name: "Casa del Fuego", Abbrev: "CDF", Owner: "Ana"}
	require.NoError(t, db.Teams.Upsert(ctx, team))

	// Upsert with a rename must update in place.
	team.Name = "Casa del Fuego Reborn"
	require.NoError(t, db.Teams.Upsert(ctx, team))

	got, err := db.Teams.GetByESPNID(ctx, 9001)
	require.NoError(t, err)
	assert.Equal(t, "Casa del Fuego Reborn", got.Name)

	names, err := db.Teams.Directory(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Casa del Fuego Reborn", names[9001])
}

func TestStatsRepository_UpsertAndGet(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	require.NoError(t, db.Teams.Upsert(ctx, &models.Team{ESPNID: 9002, Name: "Stats Team"}))

	stat := models.TeamSeasonStat{
		TeamID: 9002, Season: 2019, Week: 4,
		Wins: 3, Losses: 1, PointsFor: 412.6, PointsAgainst: 377.2, ExternalRank: 2,
	}
	require.NoError(t, db.Stats.Upsert(ctx, &stat))

	got, err := db.Stats.GetBySeasonWeek(ctx, 2019, 4)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 412.6, got[0].PointsFor)
	assert.Equal(t, 2, got[0].ExternalRank)

	// Re-upsert with updated values lands on the same row.
	stat.Wins = 4
	require.NoError(t, db.Stats.Upsert(ctx, &stat))
	got, err = db.Stats.GetBySeasonWeek(ctx, 2019, 4)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].Wins)

	week, err := db.Stats.LatestWeek(ctx, 2019)
	require.NoError(t, err)
	assert.Equal(t, 4, week)
}

func TestStatsRepository_AbsentKeyIsEmptySlice(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	got, err := db.Stats.GetBySeasonWeek(ctx, 1999, 1)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	week, err := db.Stats.LatestWeek(ctx, 1999)
	require.NoError(t, err)
	assert.Zero(t, week)
}

func TestMatchupRepository_UpsertAndGet(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	m := models.MatchupRecord{
		Season: 2019, Week: 7,
		Team1ID: 1, Team1Name: "Away Side", Team1Score: 101.2,
		Team2ID: 2, Team2Name: "Home Side", Team2Score: 95.6,
		Status: models.MatchupFinal, ESPNMatchupID: 55,
	}
	require.NoError(t, db.Matchups.Upsert(ctx, &m))

	// Same pairing again with corrected scores.
	m.Team1Score = 102.0
	require.NoError(t, db.Matchups.Upsert(ctx, &m))

	got, err := db.Matchups.GetBySeasonWeek(ctx, 2019, 7)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 102.0, got[0].Team1Score)
	assert.Equal(t, models.MatchupFinal, got[0].Status)

	count, err := db.Matchups.CountBySeason(ctx, 2019)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLeagueRepository_AbsentSeasonIsNil(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	league, err := db.Leagues.Get(ctx, 1998)
	require.NoError(t, err)
	assert.Nil(t, league)

	require.NoError(t, db.Leagues.Upsert(ctx, &models.League{
		Season: 1998, Name: "La Liga del Fuego", ESPNLeagueID: "12345",
		CurrentWeek: 17, TotalWeeks: 17, RegularSeasonWeeks: 14, PlayoffStart: 15,
	}))

	league, err = db.Leagues.Get(ctx, 1998)
	require.NoError(t, err)
	require.NotNil(t, league)
	assert.Equal(t, "La Liga del Fuego", league.Name)
}
