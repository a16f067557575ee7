package repository

import (
	"context"
	"fmt"

	"laliga/ingestion/internal/metrics"
	"laliga/ingestion/internal/models"
)

// MatchupRepository handles head-to-head matchup records.
type MatchupRepository struct {
	db *Database
}

// Upsert inserts or updates one matchup. The transform keeps the
// away/home pair order stable across re-ingestion, so repeated runs
// land on the same (season, week, team1, team2) row.
func (r *MatchupRepository) Upsert(ctx context.Context, m *models.MatchupRecord) error {
	query := `
		INSERT INTO matchups (
			season, week,
			team1_id, team1_name, team1_score, team1_projected,
			team2_id, team2_name, team2_score, team2_projected,
			status, is_playoff, espn_matchup_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (season, week, team1_id, team2_id) DO UPDATE SET
			team1_name = EXCLUDED.team1_name,
			team1_score = EXCLUDED.team1_score,
			team1_projected = EXCLUDED.team1_projected,
			team2_name = EXCLUDED.team2_name,
			team2_score = EXCLUDED.team2_score,
			team2_projected = EXCLUDED.team2_projected,
			status = EXCLUDED.status,
			is_playoff = EXCLUDED.is_playoff,
			espn_matchup_id = EXCLUDED.espn_matchup_id,
			updated_at = NOW()
	`

	_, err := r.db.Pool.Exec(ctx, query,
		m.Season, m.Week,
		m.Team1ID, m.Team1Name, m.Team1Score, m.Team1Projected,
		m.Team2ID, m.Team2Name, m.Team2Score, m.Team2Projected,
		string(m.Status), m.IsPlayoff, m.ESPNMatchupID,
	)
	if err != nil {
		metrics.RecordDBQuery("upsert", "matchups", "error")
		return fmt.Errorf("failed to upsert matchup: %w", err)
	}

	metrics.RecordDBQuery("upsert", "matchups", "success")
	return nil
}

// UpsertBatch upserts a batch of matchups
func (r *MatchupRepository) UpsertBatch(ctx context.Context, matchups []models.MatchupRecord) error {
	for i := range matchups {
		if err := r.Upsert(ctx, &matchups[i]); err != nil {
			return err
		}
	}
	return nil
}

// GetBySeasonWeek retrieves all matchups for a (season, week).
// An absent key returns an empty slice, never an error.
func (r *MatchupRepository) GetBySeasonWeek(ctx context.Context, season, week int) ([]models.MatchupRecord, error) {
	query := `
		SELECT season, week,
		       team1_id, team1_name, team1_score, team1_projected,
		       team2_id, team2_name, team2_score, team2_projected,
		       status, is_playoff, espn_matchup_id
		FROM matchups
		WHERE season = $1 AND week = $2
		ORDER BY espn_matchup_id, team1_id
	`

	rows, err := r.db.Pool.Query(ctx, query, season, week)
	if err != nil {
		metrics.RecordDBQuery("select", "matchups", "error")
		return nil, fmt.Errorf("failed to get matchups: %w", err)
	}
	defer rows.Close()

	matchups := []models.MatchupRecord{}
	for rows.Next() {
		var m models.MatchupRecord
		var status string
		err := rows.Scan(
			&m.Season, &m.Week,
			&m.Team1ID, &m.Team1Name, &m.Team1Score, &m.Team1Projected,
			&m.Team2ID, &m.Team2Name, &m.Team2Score, &m.Team2Projected,
			&status, &m.IsPlayoff, &m.ESPNMatchupID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan matchup: %w", err)
		}
		m.Status = models.MatchupStatus(status)
		matchups = append(matchups, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matchups: %w", err)
	}

	metrics.RecordDBQuery("select", "matchups", "success")
	return matchups, nil
}

// CountBySeason returns the number of matchups stored for a season
func (r *MatchupRepository) CountBySeason(ctx context.Context, season int) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM matchups WHERE season = $1`
	if err := r.db.Pool.QueryRow(ctx, query, season).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matchups: %w", err)
	}
	return count, nil
}
