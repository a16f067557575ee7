package router

import "time"

// weeksPerSeason is the number of scoring periods in a fantasy season.
const weeksPerSeason = 17

// DefaultActiveWeek returns a calendar-based active-week resolver. A
// season's week 1 is taken to start on September 1 of that year; the
// resolver reports which week the clock currently falls in, clamped to
// [1, 17], and 0 for seasons that have not started or are long over.
//
// now may be nil, in which case time.Now is used. Injecting the clock
// keeps week-eligibility logic deterministic under test.
func DefaultActiveWeek(now func() time.Time) func(season int) int {
	if now == nil {
		now = time.Now
	}

	return func(season int) int {
		t := now()

		start := time.Date(season, time.September, 1, 0, 0, 0, 0, time.UTC)
		if t.Before(start) {
			return 0
		}

		// A season is considered over once its final week has elapsed.
		end := start.AddDate(0, 0, weeksPerSeason*7)
		if !t.Before(end) {
			return 0
		}

		week := int(t.Sub(start).Hours()/(24*7)) + 1
		if week < 1 {
			week = 1
		}
		if week > weeksPerSeason {
			week = weeksPerSeason
		}
		return week
	}
}
