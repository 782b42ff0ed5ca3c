// Package tzshift re-projects a UTC-bucketed activity matrix into an
// arbitrary timezone offset. All stored data stays in UTC; shifted
// copies are derived fresh on every call and never mutate the source.
package tzshift

import (
	"math"
	"time"

	"github.com/tweetbeat/tweetbeat/pkg/activity"
)

// Reproject shifts stats by offsetHours (fractional offsets such as
// +5.5 for IST are allowed) and returns a new Stats in the target
// timezone. The total count is conserved exactly for any offset, an
// offset of 0 is the identity, and offsets are periodic mod 24.
//
// Quirk carried over from the reference behavior: the hourly marginal
// is an independent pass over the source hourly marginal using the
// same per-hour shift rule, while the daily marginal and both peak
// lists are recomputed from the shifted matrix. Do not unify these --
// it would change output for fractional and boundary offsets.
func Reproject(stats activity.Stats, offsetHours float64) activity.Stats {
	offset := normalize(offsetHours)

	var out activity.Stats
	for day := range 7 {
		for hour := range 24 {
			c := stats.Matrix[day][hour]
			if c == 0 {
				continue
			}
			newDay, newHour := shiftBucket(day, hour, offset)
			out.Matrix[newDay][newHour] += c
		}
	}

	// Independent pass over the source hourly marginal.
	for hour := range 24 {
		_, newHour := shiftBucket(0, hour, offset)
		out.Hourly[newHour] += stats.Hourly[hour]
	}

	// Daily marginal and peaks come from the shifted matrix.
	var colSums [24]int
	for day := range 7 {
		for hour := range 24 {
			c := out.Matrix[day][hour]
			out.Daily[day] += c
			colSums[hour] += c
			out.Total += c
		}
	}
	out.PeakHours = activity.TopHours(colSums, activity.PeakDisplayCount)
	out.PeakDays = activity.TopDays(out.Daily, activity.PeakDisplayCount)
	return out
}

// LocalClock expresses an instant as the (day, hour) bucket it falls
// into after shifting by offsetHours, using the same arithmetic as
// Reproject so "current slot" lookups always hit the right cell.
func LocalClock(t time.Time, offsetHours float64) (day, hour int) {
	utc := t.UTC()
	return shiftBucket(activity.Weekday(utc), utc.Hour(), normalize(offsetHours))
}

// normalize folds an offset into (-24, 24) so the single-day rollover
// check in shiftBucket stays valid for arbitrarily large offsets.
func normalize(offsetHours float64) float64 {
	return math.Mod(offsetHours, 24)
}

// shiftBucket maps one (day, hour) bucket to its target-timezone
// bucket. Fractional offsets truncate into the containing hour.
// The rollover check uses the unwrapped hour+offset, not the wrapped
// value: exactly 24 rolls forward, anything below 0 rolls back.
func shiftBucket(day, hour int, offset float64) (newDay, newHour int) {
	shifted := float64(hour) + offset
	newHour = int(math.Floor(math.Mod(math.Mod(shifted, 24)+24, 24)))
	switch {
	case shifted >= 24:
		newDay = (day + 1) % 7
	case shifted < 0:
		newDay = (day + 6) % 7
	default:
		newDay = day
	}
	return newDay, newHour
}
