// Package histogram renders activity stats and insights for the
// terminal: an hourly bar chart, day-of-week bars, a weekly heatmap
// grid, and the derived insight lines.
package histogram

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/tweetbeat/tweetbeat/pkg/activity"
	"github.com/tweetbeat/tweetbeat/pkg/insight"
)

var dayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Heat glyphs from empty to busiest.
var heatGlyphs = []rune{' ', '·', '░', '▒', '▓', '█'}

// Render produces the full terminal view for stats already shifted
// into the display timezone.
func Render(stats activity.Stats, bundle insight.Bundle, offsetHours float64) string {
	var out strings.Builder

	fmt.Fprintf(&out, "📊 Posting Activity (UTC%+g)\n", offsetHours)
	out.WriteString(strings.Repeat("─", 50) + "\n")

	if stats.Total == 0 {
		out.WriteString("No posts to analyze\n")
		return out.String()
	}
	if stats.Total < 20 {
		fmt.Fprintf(&out, "⚠️  Limited data: only %d posts analyzed\n", stats.Total)
		out.WriteString(strings.Repeat("─", 50) + "\n")
	}

	writeHourlyBars(&out, stats)
	out.WriteString("\n")
	writeDailyBars(&out, stats)
	out.WriteString("\n")
	writeHeatmap(&out, stats)
	out.WriteString("\n")
	writeInsights(&out, stats, bundle)

	return out.String()
}

func writeHourlyBars(out *strings.Builder, stats activity.Stats) {
	peak := make(map[int]bool, activity.PeakDisplayCount)
	for _, hc := range stats.PeakHours {
		if hc.Count > 0 {
			peak[hc.Hour] = true
		}
	}
	bestStart := bestWindowStart(stats.Hourly)

	maxCount := 0
	for h := range 24 {
		if stats.Hourly[h] > maxCount {
			maxCount = stats.Hourly[h]
		}
	}

	for hour := range 24 {
		count := stats.Hourly[hour]
		line := fmt.Sprintf("%02d:00 ", hour)

		// Marker column: ^ for a peak hour, * for the best-window start.
		switch {
		case hour == bestStart:
			line += color.New(color.FgGreen).Sprint("*") + " "
		case peak[hour]:
			line += color.New(color.FgYellow).Sprint("^") + " "
		default:
			line += "  "
		}

		if count > 0 {
			line += fmt.Sprintf("(%3d) ", count)
			barLength := count
			if maxCount > 40 {
				barLength = count * 40 / maxCount
				if barLength == 0 {
					barLength = 1
				}
			}
			grey := color.New(color.FgHiBlack)
			if barLength == 1 {
				line += grey.Sprint("·")
			} else {
				line += grey.Sprint(strings.Repeat("█", barLength))
			}
		} else {
			line += "      "
		}

		out.WriteString(line + "\n")
	}
}

func writeDailyBars(out *strings.Builder, stats activity.Stats) {
	out.WriteString("📅 By day of week\n")

	maxCount := 0
	for d := range 7 {
		if stats.Daily[d] > maxCount {
			maxCount = stats.Daily[d]
		}
	}

	topDay := stats.PeakDays[0].Day
	for d := range 7 {
		count := stats.Daily[d]
		barLength := 0
		if maxCount > 0 {
			barLength = count * 30 / maxCount
		}

		bar := strings.Repeat("█", barLength)
		if d == topDay && count > 0 {
			out.WriteString(fmt.Sprintf("%s (%3d) %s\n", dayNames[d], count, color.New(color.FgYellow).Sprint(bar)))
		} else {
			out.WriteString(fmt.Sprintf("%s (%3d) %s\n", dayNames[d], count, color.New(color.FgHiBlack).Sprint(bar)))
		}
	}
}

func writeHeatmap(out *strings.Builder, stats activity.Stats) {
	out.WriteString("🗓  Weekly heatmap (rows Mon..Sun, columns 00..23)\n")

	maxCell := 0
	for d := range 7 {
		for h := range 24 {
			if stats.Matrix[d][h] > maxCell {
				maxCell = stats.Matrix[d][h]
			}
		}
	}

	out.WriteString("    ")
	for h := 0; h < 24; h += 6 {
		fmt.Fprintf(out, "%-6d", h)
	}
	out.WriteString("\n")

	for d := range 7 {
		fmt.Fprintf(out, "%s ", dayNames[d])
		for h := range 24 {
			out.WriteRune(heatGlyph(stats.Matrix[d][h], maxCell))
		}
		out.WriteString("\n")
	}
}

func heatGlyph(count, maxCell int) rune {
	if count == 0 || maxCell == 0 {
		return heatGlyphs[0]
	}
	idx := 1 + count*(len(heatGlyphs)-2)/maxCell
	if idx >= len(heatGlyphs) {
		idx = len(heatGlyphs) - 1
	}
	return heatGlyphs[idx]
}

func writeInsights(out *strings.Builder, stats activity.Stats, bundle insight.Bundle) {
	out.WriteString("💡 Insights\n")
	fmt.Fprintf(out, "   online probability: %d%%\n", bundle.OnlineProbability)
	fmt.Fprintf(out, "   next active:        %s\n", bundle.NextActive)
	fmt.Fprintf(out, "   best time window:   %s\n", bundle.BestTimeWindow)
	fmt.Fprintf(out, "   pattern:            %s %s\n", bundle.ActivityPattern.Icon, bundle.ActivityPattern.Label)
	fmt.Fprintf(out, "   consistency:        %s\n", bundle.Consistency)
	fmt.Fprintf(out, "   posts analyzed:     %d\n", stats.Total)
}

// bestWindowStart mirrors the strict-max rule the insight layer uses
// so the * marker always lands on the reported window.
func bestWindowStart(hourly [24]int) int {
	best := 0
	for h := range 24 {
		if hourly[h] > hourly[best] {
			best = h
		}
	}
	return best
}
