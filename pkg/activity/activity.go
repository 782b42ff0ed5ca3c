// Package activity aggregates post timestamps into hour-of-day and
// day-of-week buckets. All aggregation happens in UTC; timezone
// re-projection is handled by the tzshift package.
package activity

import (
	"sort"
	"time"
)

// Peak list sizes: 3 for display, 5 for next-active prediction.
const (
	PeakDisplayCount    = 3
	PeakPredictionCount = 5
)

// Matrix is a 7x24 grid of post counts indexed [day][hour].
// Days are ISO-style: 0=Monday .. 6=Sunday.
type Matrix [7][24]int

// HourCount is one entry of a ranked hourly peak list.
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// DayCount is one entry of a ranked daily peak list.
type DayCount struct {
	Day   int `json:"day"`
	Count int `json:"count"`
}

// Stats bundles the activity matrix with its marginals and peak lists.
// Marginals are always derived from the matrix so the invariant
// "marginal == row/column sum" holds by construction.
type Stats struct {
	Matrix    Matrix
	Hourly    [24]int
	Daily     [7]int
	PeakHours []HourCount
	PeakDays  []DayCount
	Total     int
}

// Aggregate buckets each timestamp into its UTC day-of-week and
// hour-of-day cell. Every timestamp contributes exactly one increment;
// duplicates simply land in the same cell. An empty input yields
// all-zero stats with well-formed peak lists.
func Aggregate(times []time.Time) Stats {
	var s Stats
	for _, t := range times {
		utc := t.UTC()
		s.Matrix[Weekday(utc)][utc.Hour()]++
	}
	s.finish()
	return s
}

// FromMatrix rebuilds marginals and peaks for an existing matrix.
func FromMatrix(m Matrix) Stats {
	s := Stats{Matrix: m}
	s.finish()
	return s
}

func (s *Stats) finish() {
	for day := range 7 {
		for hour := range 24 {
			c := s.Matrix[day][hour]
			s.Hourly[hour] += c
			s.Daily[day] += c
			s.Total += c
		}
	}
	s.PeakHours = TopHours(s.Hourly, PeakDisplayCount)
	s.PeakDays = TopDays(s.Daily, PeakDisplayCount)
}

// Weekday returns the ISO-style day index for t: 0=Monday .. 6=Sunday.
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// TopHours ranks hours by count, descending, ties broken by the lower
// hour. The ordering is fully deterministic so repeated calls on the
// same marginal always produce the same list.
func TopHours(hourly [24]int, n int) []HourCount {
	ranked := make([]HourCount, 24)
	for h := range 24 {
		ranked[h] = HourCount{Hour: h, Count: hourly[h]}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Hour < ranked[j].Hour
	})
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}

// TopDays ranks days by count with the same ordering rules as TopHours.
func TopDays(daily [7]int, n int) []DayCount {
	ranked := make([]DayCount, 7)
	for d := range 7 {
		ranked[d] = DayCount{Day: d, Count: daily[d]}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Day < ranked[j].Day
	})
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}
