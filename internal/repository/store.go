package repository

import (
	"context"

	"laliga/ingestion/internal/models"
)

// Flat accessors so *Database satisfies the router and pipeline store
// interfaces without the callers reaching into individual repositories.

// GetTeamStats returns all standings for a (season, week)
func (db *Database) GetTeamStats(ctx context.Context, season, week int) ([]models.TeamSeasonStat, error) {
	return db.Stats.GetBySeasonWeek(ctx, season, week)
}

// GetMatchups returns all matchups for a (season, week)
func (db *Database) GetMatchups(ctx context.Context, season, week int) ([]models.MatchupRecord, error) {
	return db.Matchups.GetBySeasonWeek(ctx, season, week)
}

// TeamDirectory returns the team id-to-name mapping
func (db *Database) TeamDirectory(ctx context.Context) (map[int]string, error) {
	return db.Teams.Directory(ctx)
}

// ListTeams returns every team directory entry
func (db *Database) ListTeams(ctx context.Context) ([]models.Team, error) {
	return db.Teams.List(ctx)
}

// LatestStatsWeek returns the highest week with standings for a season,
// 0 when none exist
func (db *Database) LatestStatsWeek(ctx context.Context, season int) (int, error) {
	return db.Stats.LatestWeek(ctx, season)
}

// UpsertTeam saves one team directory entry
func (db *Database) UpsertTeam(ctx context.Context, team *models.Team) error {
	return db.Teams.Upsert(ctx, team)
}

// UpsertTeamStats saves a batch of standings
func (db *Database) UpsertTeamStats(ctx context.Context, stats []models.TeamSeasonStat) error {
	return db.Stats.UpsertBatch(ctx, stats)
}

// UpsertMatchups saves a batch of matchups
func (db *Database) UpsertMatchups(ctx context.Context, matchups []models.MatchupRecord) error {
	return db.Matchups.UpsertBatch(ctx, matchups)
}

// UpsertLeague saves a season's league metadata
func (db *Database) UpsertLeague(ctx context.Context, league *models.League) error {
	return db.Leagues.Upsert(ctx, league)
}

// GetLeague returns a season's league metadata, nil when absent
func (db *Database) GetLeague(ctx context.Context, season int) (*models.League, error) {
	return db.Leagues.Get(ctx, season)
}
