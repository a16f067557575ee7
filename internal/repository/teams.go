package repository

import (
	"context"
	"fmt"

	"laliga/ingestion/internal/metrics"
	"laliga/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// TeamRepository handles the team directory: the mapping from stable
// ESPN team ids to display names and owners.
type TeamRepository struct {
	db *Database
}

// Upsert inserts or updates a directory entry
func (r *TeamRepository) Upsert(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (espn_id, name, abbrev, owner)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (espn_id) DO UPDATE SET
			name = EXCLUDED.name,
			abbrev = EXCLUDED.abbrev,
			owner = EXCLUDED.owner,
			updated_at = NOW()
	`

	_, err := r.db.Pool.Exec(ctx, query, team.ESPNID, team.Name, team.Abbrev, team.Owner)
	if err != nil {
		metrics.RecordDBQuery("upsert", "teams", "error")
		return fmt.Errorf("failed to upsert team: %w", err)
	}

	metrics.RecordDBQuery("upsert", "teams", "success")
	log.Debug().
		Int("espn_id", team.ESPNID).
		Str("name", team.Name).
		Msg("Team directory entry saved")

	return nil
}

// GetByESPNID retrieves a directory entry by its ESPN team id
func (r *TeamRepository) GetByESPNID(ctx context.Context, espnID int) (*models.Team, error) {
	query := `SELECT espn_id, name, abbrev, owner FROM teams WHERE espn_id = $1`

	var team models.Team
	err := r.db.Pool.QueryRow(ctx, query, espnID).Scan(
		&team.ESPNID, &team.Name, &team.Abbrev, &team.Owner,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("team not found: espn_id=%d", espnID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &team, nil
}

// List retrieves all directory entries
func (r *TeamRepository) List(ctx context.Context) ([]models.Team, error) {
	query := `SELECT espn_id, name, abbrev, owner FROM teams ORDER BY name`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	teams := []models.Team{}
	for rows.Next() {
		var team models.Team
		if err := rows.Scan(&team.ESPNID, &team.Name, &team.Abbrev, &team.Owner); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}

	return teams, nil
}

// Directory returns the id-to-name mapping consulted by the matchup
// transform. An empty directory is a valid state, not an error.
func (r *TeamRepository) Directory(ctx context.Context) (map[int]string, error) {
	teams, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[int]string, len(teams))
	for _, team := range teams {
		names[team.ESPNID] = team.Name
	}
	return names, nil
}

// Count returns the total number of directory entries
func (r *TeamRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM teams`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count teams: %w", err)
	}
	return count, nil
}
