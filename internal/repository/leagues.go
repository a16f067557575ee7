package repository

import (
	"context"
	"fmt"

	"laliga/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
)

// LeagueRepository handles per-season league metadata.
type LeagueRepository struct {
	db *Database
}

// Upsert inserts or updates a season's league record
func (r *LeagueRepository) Upsert(ctx context.Context, league *models.League) error {
	query := `
		INSERT INTO leagues (
			season, name, espn_league_id, current_week,
			total_weeks, regular_season_weeks, playoff_start
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (season) DO UPDATE SET
			name = EXCLUDED.name,
			espn_league_id = EXCLUDED.espn_league_id,
			current_week = EXCLUDED.current_week,
			total_weeks = EXCLUDED.total_weeks,
			regular_season_weeks = EXCLUDED.regular_season_weeks,
			playoff_start = EXCLUDED.playoff_start,
			updated_at = NOW()
	`

	_, err := r.db.Pool.Exec(ctx, query,
		league.Season, league.Name, league.ESPNLeagueID, league.CurrentWeek,
		league.TotalWeeks, league.RegularSeasonWeeks, league.PlayoffStart,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert league: %w", err)
	}

	return nil
}

// Get retrieves a season's league record. Absence is a valid state:
// it returns (nil, nil) rather than an error.
func (r *LeagueRepository) Get(ctx context.Context, season int) (*models.League, error) {
	query := `
		SELECT season, name, espn_league_id, current_week,
		       total_weeks, regular_season_weeks, playoff_start
		FROM leagues
		WHERE season = $1
	`

	var league models.League
	err := r.db.Pool.QueryRow(ctx, query, season).Scan(
		&league.Season, &league.Name, &league.ESPNLeagueID, &league.CurrentWeek,
		&league.TotalWeeks, &league.RegularSeasonWeeks, &league.PlayoffStart,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get league: %w", err)
	}

	return &league, nil
}
