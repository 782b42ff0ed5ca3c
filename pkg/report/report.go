// Package report assembles the JSON structure consumed by the web UI
// and the CLI's -json mode. Internally everything is fixed-size arrays;
// the string-keyed maps here exist only at the serialization boundary
// and their key format ("0".."23", "0".."6") is load-bearing for the
// frontend.
package report

import (
	"fmt"
	"strconv"

	"github.com/tweetbeat/tweetbeat/pkg/activity"
	"github.com/tweetbeat/tweetbeat/pkg/insight"
)

// Meta carries the profile-level fields that ride along with the
// aggregated numbers.
type Meta struct {
	Username     string
	DisplayName  string
	ProfileImage string
	TimezoneNote string
	Demo         bool
}

// Report is the full pipeline output.
type Report struct {
	Username          string               `json:"username"`
	DisplayName       string               `json:"display_name"`
	ProfileImage      string               `json:"profile_image"`
	TotalAnalyzed     int                  `json:"total_tweets_analyzed"`
	HourlyActivity    map[string]int       `json:"hourly_activity"`
	DailyActivity     map[string]int       `json:"daily_activity"`
	HeatmapData       [][]int              `json:"heatmap_data"`
	PeakHours         []activity.HourCount `json:"peak_hours"`
	PeakDays          []activity.DayCount  `json:"peak_days"`
	TimezoneOffset    float64              `json:"timezone_offset"`
	TimezoneNote      string               `json:"timezone_note"`
	OnlineProbability int                  `json:"online_probability"`
	NextActive        string               `json:"next_active"`
	BestTimeWindow    string               `json:"best_time_window"`
	ActivityPattern   insight.Pattern      `json:"activity_pattern"`
	Consistency       string               `json:"consistency"`
	AISummary         string               `json:"ai_summary,omitempty"`
	IsDemo            bool                 `json:"is_demo"`
}

// Build validates stats and assembles the report. Malformed stats
// (negative counts, total not matching the matrix sum) are a caller
// contract violation and fail fast rather than serializing garbage.
func Build(meta Meta, stats activity.Stats, bundle insight.Bundle, offsetHours float64) (*Report, error) {
	if err := validate(stats); err != nil {
		return nil, err
	}

	hourly := make(map[string]int, 24)
	for h := range 24 {
		hourly[strconv.Itoa(h)] = stats.Hourly[h]
	}
	daily := make(map[string]int, 7)
	for d := range 7 {
		daily[strconv.Itoa(d)] = stats.Daily[d]
	}
	heatmap := make([][]int, 7)
	for d := range 7 {
		row := make([]int, 24)
		copy(row, stats.Matrix[d][:])
		heatmap[d] = row
	}

	return &Report{
		Username:          meta.Username,
		DisplayName:       meta.DisplayName,
		ProfileImage:      meta.ProfileImage,
		TotalAnalyzed:     stats.Total,
		HourlyActivity:    hourly,
		DailyActivity:     daily,
		HeatmapData:       heatmap,
		PeakHours:         stats.PeakHours,
		PeakDays:          stats.PeakDays,
		TimezoneOffset:    offsetHours,
		TimezoneNote:      meta.TimezoneNote,
		OnlineProbability: bundle.OnlineProbability,
		NextActive:        bundle.NextActive,
		BestTimeWindow:    bundle.BestTimeWindow,
		ActivityPattern:   bundle.ActivityPattern,
		Consistency:       bundle.Consistency,
		IsDemo:            meta.Demo,
	}, nil
}

func validate(stats activity.Stats) error {
	sum := 0
	for day := range 7 {
		for hour := range 24 {
			c := stats.Matrix[day][hour]
			if c < 0 {
				return fmt.Errorf("matrix[%d][%d] is negative: %d", day, hour, c)
			}
			sum += c
		}
	}
	if sum != stats.Total {
		return fmt.Errorf("matrix sum %d does not match total %d", sum, stats.Total)
	}
	return nil
}
