package models

import "fmt"

// Team is one entry in the league's team directory. The directory maps
// stable ESPN team identifiers to display names and owners; it persists
// independently of per-week statistics and is consulted, not mutated,
// by the matchup transform.
type Team struct {
	ESPNID int    `json:"espnId"`
	Name   string `json:"name"`
	Abbrev string `json:"abbrev"`
	Owner  string `json:"owner"`
}

// TeamPayload is the raw team object returned by the ESPN fantasy API
// (views mTeam and mStandings). Historical and live seasons arrive in
// this same shape; normalization into TeamSeasonStat happens in one
// explicit step so downstream code only ever sees one form.
type TeamPayload struct {
	ID           int    `json:"id"`
	Location     string `json:"location"`
	Nickname     string `json:"nickname"`
	Name         string `json:"name"`
	Abbrev       string `json:"abbrev"`
	PrimaryOwner string `json:"primaryOwner"`
	PlayoffSeed  int    `json:"playoffSeed"`
	Record       struct {
		Overall struct {
			Wins          int     `json:"wins"`
			Losses        int     `json:"losses"`
			Ties          int     `json:"ties"`
			PointsFor     float64 `json:"pointsFor"`
			PointsAgainst float64 `json:"pointsAgainst"`
		} `json:"overall"`
	} `json:"record"`
}

// DisplayName builds a human-readable team name. Older seasons populate
// location/nickname, newer ones a single name field; a synthetic
// placeholder covers teams the API no longer describes.
func (tp *TeamPayload) DisplayName() string {
	if tp.Location != "" || tp.Nickname != "" {
		if tp.Location != "" && tp.Nickname != "" {
			return tp.Location + " " + tp.Nickname
		}
		return tp.Location + tp.Nickname
	}
	if tp.Name != "" {
		return tp.Name
	}
	return PlaceholderTeamName(tp.ID)
}

// ToTeam converts the payload into a directory entry.
func (tp *TeamPayload) ToTeam() *Team {
	return &Team{
		ESPNID: tp.ID,
		Name:   tp.DisplayName(),
		Abbrev: tp.Abbrev,
		Owner:  tp.PrimaryOwner,
	}
}

// ToSeasonStat normalizes the payload into the internal per-week
// cumulative standing for (season, week).
func (tp *TeamPayload) ToSeasonStat(season, week int) *TeamSeasonStat {
	return &TeamSeasonStat{
		TeamID:        tp.ID,
		Season:        season,
		Week:          week,
		Wins:          tp.Record.Overall.Wins,
		Losses:        tp.Record.Overall.Losses,
		Ties:          tp.Record.Overall.Ties,
		PointsFor:     tp.Record.Overall.PointsFor,
		PointsAgainst: tp.Record.Overall.PointsAgainst,
		ExternalRank:  tp.PlayoffSeed,
	}
}

// PlaceholderTeamName is the synthetic fallback for team ids that have
// no directory entry. Ingestion must not fail a whole batch over one
// unknown id.
func PlaceholderTeamName(teamID int) string {
	return fmt.Sprintf("Team %d", teamID)
}
