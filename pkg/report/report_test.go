package report

import (
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/tweetbeat/tweetbeat/pkg/activity"
	"github.com/tweetbeat/tweetbeat/pkg/insight"
)

func TestBuildKeysAndShape(t *testing.T) {
	stats := activity.Aggregate([]time.Time{
		time.Date(2025, 6, 4, 14, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 5, 9, 30, 0, 0, time.UTC),
	})
	bundle := insight.Derive(stats, 2, 14)

	r, err := Build(Meta{Username: "someone", DisplayName: "@someone"}, stats, bundle, 0)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// Every hour and day key must be present as a stringified integer.
	if len(r.HourlyActivity) != 24 {
		t.Errorf("hourly_activity has %d keys, want 24", len(r.HourlyActivity))
	}
	for h := range 24 {
		if _, ok := r.HourlyActivity[strconv.Itoa(h)]; !ok {
			t.Errorf("hourly_activity missing key %q", strconv.Itoa(h))
		}
	}
	if len(r.DailyActivity) != 7 {
		t.Errorf("daily_activity has %d keys, want 7", len(r.DailyActivity))
	}
	if len(r.HeatmapData) != 7 || len(r.HeatmapData[0]) != 24 {
		t.Errorf("heatmap shape %dx%d, want 7x24", len(r.HeatmapData), len(r.HeatmapData[0]))
	}
	if r.HourlyActivity["14"] != 1 || r.DailyActivity["2"] != 1 {
		t.Errorf("marginal values wrong: hourly[14]=%d daily[2]=%d",
			r.HourlyActivity["14"], r.DailyActivity["2"])
	}
	if r.TotalAnalyzed != 2 {
		t.Errorf("total = %d, want 2", r.TotalAnalyzed)
	}
}

func TestBuildJSONFieldNames(t *testing.T) {
	stats := activity.Aggregate(nil)
	r, err := Build(Meta{Username: "x"}, stats, insight.Derive(stats, 0, 0), 5.5)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, field := range []string{
		"hourly_activity", "daily_activity", "heatmap_data",
		"peak_hours", "peak_days", "online_probability",
		"next_active", "best_time_window", "activity_pattern", "consistency",
	} {
		if _, ok := decoded[field]; !ok {
			t.Errorf("JSON output missing field %q", field)
		}
	}
}

func TestBuildRejectsMalformedStats(t *testing.T) {
	var m activity.Matrix
	m[0][0] = -1
	stats := activity.Stats{Matrix: m}
	if _, err := Build(Meta{}, stats, insight.Bundle{}, 0); err == nil {
		t.Error("expected error for negative count")
	}

	stats = activity.Aggregate(nil)
	stats.Total = 99 // contract violation: total no longer matches matrix
	if _, err := Build(Meta{}, stats, insight.Bundle{}, 0); err == nil {
		t.Error("expected error for mismatched total")
	}
}
