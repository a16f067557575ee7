// Package ranking computes Liga Bucks standings: a composite score
// built from two independently-ranked components. All functions are
// pure; inputs are never mutated and repeated calls over the same input
// produce the same ordering.
package ranking

import (
	"errors"
	"sort"

	"laliga/ingestion/internal/models"
)

// Mode selects how the ESPN component is derived.
type Mode int

const (
	// ModeRecord ranks teams by (wins desc, points-for desc). Used when
	// raw records arrive without provider seeding.
	ModeRecord Mode = iota
	// ModeSeed uses the provider's own ordinal ranking (playoff seed)
	// directly. Used when standings data carries ExternalRank.
	ModeSeed
)

// ErrNoTeams is returned for an empty input set. Empty input indicates
// a data-integrity bug upstream of the engine, not a rankable state.
var ErrNoTeams = errors.New("ranking: no teams to rank")

// Result is one team's Liga Bucks line. Component scores are integers
// in [1, N]; Total is in [2, 2N].
type Result struct {
	TeamID int `json:"teamId"`

	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Ties          int     `json:"ties"`
	PointsFor     float64 `json:"totalPointsFor"`
	PointsAgainst float64 `json:"totalPointsAgainst"`

	ESPNRank            int `json:"espnRank"`
	ESPNComponent       int `json:"espnComponent"`
	CumulativeComponent int `json:"cumulativeComponent"`
	Total               int `json:"total"`
	FinalRank           int `json:"finalRank"`
}

// Compute derives Liga Bucks for one season's team statistics. The
// returned slice is ordered by FinalRank, which is always a strict
// permutation of 1..N: total is tie-broken by points-against ascending,
// and beyond that by stable input order. That last resort is arbitrary
// but reproducible.
//
// Point comparisons use full float precision; only the component values
// are integers. A missing points-for value is treated as zero rather
// than rejected, matching the quality of real upstream data.
func Compute(teams []models.TeamSeasonStat, mode Mode) ([]Result, error) {
	n := len(teams)
	if n == 0 {
		return nil, ErrNoTeams
	}

	espnRanks := espnRankings(teams, mode)
	cumulativeRanks := cumulativeRankings(teams)

	results := make([]Result, n)
	for i, team := range teams {
		espnRank := espnRanks[i]
		results[i] = Result{
			TeamID:              team.TeamID,
			Wins:                team.Wins,
			Losses:              team.Losses,
			Ties:                team.Ties,
			PointsFor:           team.PointsFor,
			PointsAgainst:       team.PointsAgainst,
			ESPNRank:            espnRank,
			ESPNComponent:       clamp(n+1-espnRank, 1, n),
			CumulativeComponent: clamp(n+1-cumulativeRanks[i], 1, n),
		}
		results[i].Total = results[i].ESPNComponent + results[i].CumulativeComponent
	}

	sort.SliceStable(results, func(a, b int) bool {
		if results[a].Total != results[b].Total {
			return results[a].Total > results[b].Total
		}
		return results[a].PointsAgainst < results[b].PointsAgainst
	})
	for i := range results {
		results[i].FinalRank = i + 1
	}

	return results, nil
}

// espnRankings returns each input team's ESPN ordinal, indexed by input
// position.
func espnRankings(teams []models.TeamSeasonStat, mode Mode) []int {
	ranks := make([]int, len(teams))

	if mode == ModeSeed {
		for i, team := range teams {
			ranks[i] = team.ExternalRank
		}
		return ranks
	}

	// Wins primary, points-for as the tiebreaker.
	order := indexOrder(len(teams), func(a, b int) bool {
		if teams[a].Wins != teams[b].Wins {
			return teams[a].Wins > teams[b].Wins
		}
		return teams[a].PointsFor > teams[b].PointsFor
	})
	for pos, idx := range order {
		ranks[idx] = pos + 1
	}
	return ranks
}

// cumulativeRankings ranks by points-for descending; fewer points
// allowed breaks ties.
func cumulativeRankings(teams []models.TeamSeasonStat) []int {
	order := indexOrder(len(teams), func(a, b int) bool {
		if teams[a].PointsFor != teams[b].PointsFor {
			return teams[a].PointsFor > teams[b].PointsFor
		}
		return teams[a].PointsAgainst < teams[b].PointsAgainst
	})

	ranks := make([]int, len(teams))
	for pos, idx := range order {
		ranks[idx] = pos + 1
	}
	return ranks
}

func indexOrder(n int, less func(a, b int) bool) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return less(order[i], order[j])
	})
	return order
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
