package models

import "strconv"

// MatchupStatus is the lifecycle state of a head-to-head pairing.
type MatchupStatus string

const (
	MatchupScheduled MatchupStatus = "scheduled"
	MatchupLive      MatchupStatus = "live"
	MatchupFinal     MatchupStatus = "final"
)

// PlayoffStartWeek is the first playoff week; weeks above the regular
// season are bracket play.
const PlayoffStartWeek = 15

// MatchupRecord is one head-to-head pairing for a (season, week).
// Team1 is ESPN's away side, Team2 the home side; the pair order is
// stable across re-ingestion so upserts land on the same row.
type MatchupRecord struct {
	Season int `json:"season"`
	Week   int `json:"week"`

	Team1ID        int     `json:"team1Id"`
	Team1Name      string  `json:"team1Name"`
	Team1Score     float64 `json:"team1Score"`
	Team1Projected float64 `json:"team1Projected"`

	Team2ID        int     `json:"team2Id"`
	Team2Name      string  `json:"team2Name"`
	Team2Score     float64 `json:"team2Score"`
	Team2Projected float64 `json:"team2Projected"`

	Status        MatchupStatus `json:"status"`
	IsPlayoff     bool          `json:"isPlayoff"`
	ESPNMatchupID int           `json:"espnMatchupId"`
}

// WinnerID returns the winning team id for a final matchup. A final
// matchup with equal scores is a tie: a valid terminal state with no
// winner.
func (m *MatchupRecord) WinnerID() (int, bool) {
	if m.Status != MatchupFinal || m.Team1Score == m.Team2Score {
		return 0, false
	}
	if m.Team1Score > m.Team2Score {
		return m.Team1ID, true
	}
	return m.Team2ID, true
}

// SchedulePayload is a raw schedule entry from the ESPN mMatchup view.
// A season's schedule contains every week; callers filter by
// MatchupPeriodID.
type SchedulePayload struct {
	ID              int                 `json:"id"`
	MatchupPeriodID int                 `json:"matchupPeriodId"`
	Winner          string              `json:"winner"`
	Away            *MatchupSidePayload `json:"away"`
	Home            *MatchupSidePayload `json:"home"`
}

// MatchupSidePayload is one side of a raw schedule entry.
type MatchupSidePayload struct {
	TeamID                int                `json:"teamId"`
	TotalPoints           float64            `json:"totalPoints"`
	ProjectedScore        float64            `json:"projectedScore"`
	PointsByScoringPeriod map[string]float64 `json:"pointsByScoringPeriod"`
}

func (s *MatchupSidePayload) score(week int) float64 {
	if s.TotalPoints != 0 {
		return s.TotalPoints
	}
	if pts, ok := s.PointsByScoringPeriod[strconv.Itoa(week)]; ok {
		return pts
	}
	return 0
}

// ToMatchup normalizes the schedule entry into a MatchupRecord for the
// given week. It returns nil when the entry belongs to another week or
// is missing either side. Team names are resolved through the directory
// map; unknown ids get a synthetic placeholder instead of failing.
func (sp *SchedulePayload) ToMatchup(season, week int, names map[int]string) *MatchupRecord {
	if sp.MatchupPeriodID != week {
		return nil
	}
	if sp.Away == nil || sp.Home == nil || sp.Away.TeamID == 0 || sp.Home.TeamID == 0 {
		return nil
	}

	awayScore := sp.Away.score(week)
	homeScore := sp.Home.score(week)

	status := MatchupScheduled
	switch {
	case sp.Winner != "" && sp.Winner != "UNDECIDED":
		status = MatchupFinal
	case awayScore > 0 || homeScore > 0:
		status = MatchupLive
	}

	return &MatchupRecord{
		Season:         season,
		Week:           week,
		Team1ID:        sp.Away.TeamID,
		Team1Name:      resolveName(names, sp.Away.TeamID),
		Team1Score:     awayScore,
		Team1Projected: sp.Away.ProjectedScore,
		Team2ID:        sp.Home.TeamID,
		Team2Name:      resolveName(names, sp.Home.TeamID),
		Team2Score:     homeScore,
		Team2Projected: sp.Home.ProjectedScore,
		Status:         status,
		IsPlayoff:      week >= PlayoffStartWeek,
		ESPNMatchupID:  sp.ID,
	}
}

func resolveName(names map[int]string, teamID int) string {
	if name, ok := names[teamID]; ok && name != "" {
		return name
	}
	return PlaceholderTeamName(teamID)
}
