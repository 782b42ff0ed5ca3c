package gemini

import (
	"fmt"
	"strings"

	"github.com/tweetbeat/tweetbeat/pkg/report"
)

// BuildPrompt renders an analysis report into the prompt used for the
// activity summary. Only aggregate numbers and labels go to the model,
// never raw post content.
func BuildPrompt(r *report.Report) string {
	var b strings.Builder

	b.WriteString("Describe this X/Twitter account's posting habits for a reader deciding when to engage with it.\n\n")
	fmt.Fprintf(&b, "Account: @%s (%s)\n", r.Username, r.DisplayName)
	fmt.Fprintf(&b, "Posts analyzed: %d\n", r.TotalAnalyzed)
	fmt.Fprintf(&b, "Timezone offset applied: UTC%+g\n\n", r.TimezoneOffset)

	b.WriteString("Hourly post counts (hour -> count):\n")
	for h := range 24 {
		count := r.HourlyActivity[fmt.Sprintf("%d", h)]
		if count > 0 {
			fmt.Fprintf(&b, "  %02d:00 -> %d\n", h, count)
		}
	}

	b.WriteString("\nDaily post counts (Mon..Sun):\n")
	days := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	for d := range 7 {
		fmt.Fprintf(&b, "  %s -> %d\n", days[d], r.DailyActivity[fmt.Sprintf("%d", d)])
	}

	fmt.Fprintf(&b, "\nDerived signals: pattern=%q, consistency=%q, best window=%s, next active=%s\n",
		r.ActivityPattern.Label, r.Consistency, r.BestTimeWindow, r.NextActive)

	b.WriteString("\nBe concrete about times of day and days of week. Do not invent content the account posts about.\n")
	return b.String()
}
