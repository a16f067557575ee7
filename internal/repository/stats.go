package repository

import (
	"context"
	"fmt"

	"laliga/ingestion/internal/metrics"
	"laliga/ingestion/internal/models"
)

// StatsRepository handles per-week cumulative team standings.
type StatsRepository struct {
	db *Database
}

// Upsert inserts or updates one standing, keyed by (team, season, week).
// Last write wins; concurrent upserts for the same key are safe.
func (r *StatsRepository) Upsert(ctx context.Context, stat *models.TeamSeasonStat) error {
	query := `
		INSERT INTO team_season_stats (
			team_id, season, week, wins, losses, ties,
			points_for, points_against, external_rank
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (team_id, season, week) DO UPDATE SET
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses,
			ties = EXCLUDED.ties,
			points_for = EXCLUDED.points_for,
			points_against = EXCLUDED.points_against,
			external_rank = EXCLUDED.external_rank,
			updated_at = NOW()
	`

	_, err := r.db.Pool.Exec(ctx, query,
		stat.TeamID, stat.Season, stat.Week,
		stat.Wins, stat.Losses, stat.Ties,
		stat.PointsFor, stat.PointsAgainst, stat.ExternalRank,
	)
	if err != nil {
		metrics.RecordDBQuery("upsert", "team_season_stats", "error")
		return fmt.Errorf("failed to upsert team season stat: %w", err)
	}

	metrics.RecordDBQuery("upsert", "team_season_stats", "success")
	return nil
}

// UpsertBatch upserts a batch of standings
func (r *StatsRepository) UpsertBatch(ctx context.Context, stats []models.TeamSeasonStat) error {
	for i := range stats {
		if err := r.Upsert(ctx, &stats[i]); err != nil {
			return err
		}
	}
	return nil
}

// GetBySeasonWeek retrieves all standings for a (season, week).
// An absent key returns an empty slice, never an error.
func (r *StatsRepository) GetBySeasonWeek(ctx context.Context, season, week int) ([]models.TeamSeasonStat, error) {
	query := `
		SELECT team_id, season, week, wins, losses, ties,
		       points_for, points_against, external_rank
		FROM team_season_stats
		WHERE season = $1 AND week = $2
		ORDER BY team_id
	`

	rows, err := r.db.Pool.Query(ctx, query, season, week)
	if err != nil {
		metrics.RecordDBQuery("select", "team_season_stats", "error")
		return nil, fmt.Errorf("failed to get team season stats: %w", err)
	}
	defer rows.Close()

	stats := []models.TeamSeasonStat{}
	for rows.Next() {
		var stat models.TeamSeasonStat
		err := rows.Scan(
			&stat.TeamID, &stat.Season, &stat.Week,
			&stat.Wins, &stat.Losses, &stat.Ties,
			&stat.PointsFor, &stat.PointsAgainst, &stat.ExternalRank,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team season stat: %w", err)
		}
		stats = append(stats, stat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team season stats: %w", err)
	}

	metrics.RecordDBQuery("select", "team_season_stats", "success")
	return stats, nil
}

// LatestWeek returns the highest ingested week for a season, 0 when the
// season has no data.
func (r *StatsRepository) LatestWeek(ctx context.Context, season int) (int, error) {
	var week int
	query := `SELECT COALESCE(MAX(week), 0) FROM team_season_stats WHERE season = $1`
	if err := r.db.Pool.QueryRow(ctx, query, season).Scan(&week); err != nil {
		return 0, fmt.Errorf("failed to get latest week: %w", err)
	}
	return week, nil
}
