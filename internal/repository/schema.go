package repository

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS teams (
	espn_id     INTEGER PRIMARY KEY,
	name        TEXT NOT NULL,
	abbrev      TEXT NOT NULL DEFAULT '',
	owner       TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS team_season_stats (
	team_id        INTEGER NOT NULL,
	season         INTEGER NOT NULL,
	week           INTEGER NOT NULL,
	wins           INTEGER NOT NULL DEFAULT 0,
	losses         INTEGER NOT NULL DEFAULT 0,
	ties           INTEGER NOT NULL DEFAULT 0,
	points_for     DOUBLE PRECISION NOT NULL DEFAULT 0,
	points_against DOUBLE PRECISION NOT NULL DEFAULT 0,
	external_rank  INTEGER NOT NULL DEFAULT 0,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (team_id, season, week)
);

CREATE TABLE IF NOT EXISTS matchups (
	season           INTEGER NOT NULL,
	week             INTEGER NOT NULL,
	team1_id         INTEGER NOT NULL,
	team1_name       TEXT NOT NULL DEFAULT '',
	team1_score      DOUBLE PRECISION NOT NULL DEFAULT 0,
	team1_projected  DOUBLE PRECISION NOT NULL DEFAULT 0,
	team2_id         INTEGER NOT NULL,
	team2_name       TEXT NOT NULL DEFAULT '',
	team2_score      DOUBLE PRECISION NOT NULL DEFAULT 0,
	team2_projected  DOUBLE PRECISION NOT NULL DEFAULT 0,
	status           TEXT NOT NULL DEFAULT 'scheduled',
	is_playoff       BOOLEAN NOT NULL DEFAULT FALSE,
	espn_matchup_id  INTEGER NOT NULL DEFAULT 0,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CHECK (team1_id <> team2_id),
	PRIMARY KEY (season, week, team1_id, team2_id)
);

CREATE TABLE IF NOT EXISTS leagues (
	season               INTEGER PRIMARY KEY,
	name                 TEXT NOT NULL DEFAULT '',
	espn_league_id       TEXT NOT NULL DEFAULT '',
	current_week         INTEGER NOT NULL DEFAULT 0,
	total_weeks          INTEGER NOT NULL DEFAULT 17,
	regular_season_weeks INTEGER NOT NULL DEFAULT 14,
	playoff_start        INTEGER NOT NULL DEFAULT 15,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// InitSchema creates the tables if they do not exist yet. Safe to run
// on every startup.
func (db *Database) InitSchema(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
