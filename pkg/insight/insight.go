// Package insight derives higher-order signals from a timezone-shifted
// activity matrix: an online-probability estimate, next-active-window
// prediction, best posting window, activity-pattern label, and a
// consistency score. Inputs must already be re-projected into the
// target timezone, and the current day/hour must be expressed in that
// same timezone (see tzshift.LocalClock).
package insight

import (
	"fmt"
	"math"

	"github.com/tweetbeat/tweetbeat/pkg/activity"
)

// Probability weighting and clamp bounds for the online estimate.
const (
	slotWeight = 0.6
	hourWeight = 0.4
	probFloor  = 5
	probCeil   = 95
)

// Band share thresholds for the pattern cascade. These are empirical
// tuning constants, kept named so the cascade logic can be tested
// independently of their values.
const (
	NightOwlShare  = 0.30
	EarlyBirdShare = 0.35
	WorkHoursShare = 0.60
	EveningShare   = 0.40
)

// Coefficient-of-variation cutoffs for the consistency score.
const (
	VeryConsistentCV   = 0.3
	FairlyRegularCV    = 0.5
	SomewhatVariableCV = 0.8
)

// Pattern labels an activity shape with a small icon hint for display.
type Pattern struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

// Bundle carries every derived insight for one profile.
type Bundle struct {
	OnlineProbability int     `json:"online_probability"`
	NextActive        string  `json:"next_active"`
	BestTimeWindow    string  `json:"best_time_window"`
	ActivityPattern   Pattern `json:"activity_pattern"`
	Consistency       string  `json:"consistency"`
}

// Derive computes the full insight bundle for the current (day, hour)
// in the stats' timezone.
func Derive(stats activity.Stats, day, hour int) Bundle {
	return Bundle{
		OnlineProbability: OnlineProbability(stats, day, hour),
		NextActive:        NextActiveWindow(stats.Hourly, hour),
		BestTimeWindow:    BestTimeWindow(stats.Hourly),
		ActivityPattern:   ClassifyPattern(stats.Hourly),
		Consistency:       Consistency(stats.Daily),
	}
}

// OnlineProbability estimates how likely the account is posting right
// now, as an integer percentage. The current matrix slot is weighted
// against the busiest slot, the current hour against the busiest hour.
// Returns exactly 0 when there is no activity at all; otherwise the
// result is clamped to [5, 95] so the UI never claims certainty.
func OnlineProbability(stats activity.Stats, day, hour int) int {
	if stats.Total == 0 {
		return 0
	}

	maxSlot := 0
	for d := range 7 {
		for h := range 24 {
			if stats.Matrix[d][h] > maxSlot {
				maxSlot = stats.Matrix[d][h]
			}
		}
	}
	maxHour := 0
	for h := range 24 {
		if stats.Hourly[h] > maxHour {
			maxHour = stats.Hourly[h]
		}
	}

	var slotProb, hourProb float64
	if maxSlot > 0 {
		slotProb = 100 * float64(stats.Matrix[day][hour]) / float64(maxSlot)
	}
	if maxHour > 0 {
		hourProb = 100 * float64(stats.Hourly[hour]) / float64(maxHour)
	}

	p := int(math.Round(slotWeight*slotProb + hourWeight*hourProb))
	if p < probFloor {
		p = probFloor
	}
	if p > probCeil {
		p = probCeil
	}
	return p
}

// NextActiveWindow predicts when the account will next be active by
// scanning forward from the current hour for the nearest top-5 hour.
func NextActiveWindow(hourly [24]int, hour int) string {
	top := activity.TopHours(hourly, activity.PeakPredictionCount)
	active := make(map[int]bool, len(top))
	for _, hc := range top {
		active[hc.Hour] = true
	}

	if active[hour] {
		return "right now"
	}
	for offset := 1; offset <= 24; offset++ {
		if !active[(hour+offset)%24] {
			continue
		}
		if offset == 1 {
			return "within the hour"
		}
		return fmt.Sprintf("in ~%d hours", offset)
	}
	// Unreachable when the top-5 set is non-empty, but degrade to a
	// pointer at the heatmap rather than an error.
	return "check the heatmap"
}

// BestTimeWindow reports the two-hour window starting at the single
// busiest hour. Comparison is strict, so the earliest hour wins ties
// and all-zero data deterministically yields "12am-2am".
func BestTimeWindow(hourly [24]int) string {
	best := 0
	for h := range 24 {
		if hourly[h] > hourly[best] {
			best = h
		}
	}
	return fmt.Sprintf("%s-%s", clockLabel(best), clockLabel((best+2)%24))
}

// ClassifyPattern partitions the day into four fixed bands and applies
// a priority cascade: the first matching rule wins, so a heavy night
// share is reported as "night owl" even when later rules would also
// pass. Zero activity classifies as "unknown".
func ClassifyPattern(hourly [24]int) Pattern {
	var night, morning, afternoon, evening int
	for h := range 24 {
		switch {
		case h <= 5:
			night += hourly[h]
		case h <= 11:
			morning += hourly[h]
		case h <= 17:
			afternoon += hourly[h]
		default:
			evening += hourly[h]
		}
	}
	total := night + morning + afternoon + evening
	if total == 0 {
		return Pattern{Label: "unknown", Icon: "❓"}
	}

	ft := float64(total)
	switch {
	case float64(night)/ft > NightOwlShare:
		return Pattern{Label: "night owl", Icon: "🦉"}
	case float64(morning)/ft > EarlyBirdShare:
		return Pattern{Label: "early bird", Icon: "🐦"}
	case float64(morning+afternoon)/ft > WorkHoursShare:
		return Pattern{Label: "9-to-5 pattern", Icon: "💼"}
	case float64(evening)/ft > EveningShare:
		return Pattern{Label: "evening active", Icon: "🌆"}
	default:
		return Pattern{Label: "spread out", Icon: "🔀"}
	}
}

// Consistency scores how evenly activity spreads across the week using
// the coefficient of variation of the daily totals.
func Consistency(daily [7]int) string {
	total := 0
	for d := range 7 {
		total += daily[d]
	}
	mean := float64(total) / 7
	if mean == 0 {
		return "no data"
	}

	var variance float64
	for d := range 7 {
		diff := float64(daily[d]) - mean
		variance += diff * diff
	}
	variance /= 7
	cv := math.Sqrt(variance) / mean

	switch {
	case cv < VeryConsistentCV:
		return "very consistent"
	case cv < FairlyRegularCV:
		return "fairly regular"
	case cv < SomewhatVariableCV:
		return "somewhat variable"
	default:
		return "unpredictable"
	}
}

// clockLabel formats an hour 12-hour style: 0 -> "12am", 13 -> "1pm".
func clockLabel(hour int) string {
	switch {
	case hour == 0:
		return "12am"
	case hour < 12:
		return fmt.Sprintf("%dam", hour)
	case hour == 12:
		return "12pm"
	default:
		return fmt.Sprintf("%dpm", hour-12)
	}
}
