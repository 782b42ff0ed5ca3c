package report

import (
	"fmt"
	"strconv"

	"github.com/tweetbeat/tweetbeat/pkg/activity"
	"github.com/tweetbeat/tweetbeat/pkg/insight"
)

// Stats reconstructs the activity.Stats this report was built from,
// so renderers can work from a report regardless of whether it came
// out of the pipeline or the cache. The hourly marginal is restored
// from the hourly_activity map, not recomputed from the heatmap,
// preserving the reprojection quirk documented in tzshift.
func (r *Report) Stats() (activity.Stats, error) {
	if len(r.HeatmapData) != 7 {
		return activity.Stats{}, fmt.Errorf("heatmap has %d rows, want 7", len(r.HeatmapData))
	}

	var stats activity.Stats
	for d := range 7 {
		if len(r.HeatmapData[d]) != 24 {
			return activity.Stats{}, fmt.Errorf("heatmap row %d has %d columns, want 24", d, len(r.HeatmapData[d]))
		}
		for h := range 24 {
			c := r.HeatmapData[d][h]
			if c < 0 {
				return activity.Stats{}, fmt.Errorf("heatmap[%d][%d] is negative: %d", d, h, c)
			}
			stats.Matrix[d][h] = c
			stats.Daily[d] += c
			stats.Total += c
		}
	}
	for h := range 24 {
		stats.Hourly[h] = r.HourlyActivity[strconv.Itoa(h)]
	}
	stats.PeakHours = append([]activity.HourCount(nil), r.PeakHours...)
	stats.PeakDays = append([]activity.DayCount(nil), r.PeakDays...)
	return stats, nil
}

// Insights repackages the report's derived fields.
func (r *Report) Insights() insight.Bundle {
	return insight.Bundle{
		OnlineProbability: r.OnlineProbability,
		NextActive:        r.NextActive,
		BestTimeWindow:    r.BestTimeWindow,
		ActivityPattern:   r.ActivityPattern,
		Consistency:       r.Consistency,
	}
}
