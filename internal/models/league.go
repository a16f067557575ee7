package models

// League is the per-season league metadata record.
type League struct {
	Season             int    `json:"season"`
	Name               string `json:"name"`
	ESPNLeagueID       string `json:"espnLeagueId"`
	CurrentWeek        int    `json:"currentWeek"`
	TotalWeeks         int    `json:"totalWeeks"`
	RegularSeasonWeeks int    `json:"regularSeasonWeeks"`
	PlayoffStart       int    `json:"playoffStart"`
}
