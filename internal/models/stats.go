package models

import "fmt"

// TeamSeasonStat is one team's cumulative standing for a (season, week).
// Exactly one row exists per (TeamID, Season, Week); re-ingestion
// overwrites in place.
type TeamSeasonStat struct {
	TeamID int `json:"teamId"`
	Season int `json:"season"`
	Week   int `json:"week"`

	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Ties   int `json:"ties"`

	PointsFor     float64 `json:"totalPointsFor"`
	PointsAgainst float64 `json:"totalPointsAgainst"`

	// ExternalRank is ESPN's own ordinal ranking (playoff seed), 1..N.
	// Zero means the provider did not supply one.
	ExternalRank int `json:"externalRank,omitempty"`
}

// Record formats the win-loss-tie record for display.
func (s *TeamSeasonStat) Record() string {
	if s.Ties > 0 {
		return fmt.Sprintf("%d-%d-%d", s.Wins, s.Losses, s.Ties)
	}
	return fmt.Sprintf("%d-%d", s.Wins, s.Losses)
}
