package cli

import (
	"fmt"
	"strings"

	"github.com/Veraticus/taxon/internal/model"
	"github.com/Veraticus/taxon/internal/report"
)

// topCategories is how many categories the run summary lists.
const topCategories = 10

// RenderSummary renders the end-of-run summary box.
func RenderSummary(stats *model.RunStats) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Total records: %d\n", stats.TotalRecords)
	fmt.Fprintf(&b, "Recategorized: %s\n", SuccessStyle.Render(fmt.Sprint(stats.Recategorized)))
	fmt.Fprintf(&b, "Unchanged: %d\n", stats.Unchanged)
	fmt.Fprintf(&b, "Flagged for manual review: %s\n", WarningStyle.Render(fmt.Sprint(stats.ReviewCount())))
	if len(stats.Skipped) > 0 {
		fmt.Fprintf(&b, "Skipped (malformed): %s\n", ErrorStyle.Render(fmt.Sprint(len(stats.Skipped))))
	}

	categories := report.NonEmpty(report.SortCounts(stats.CategoryDistribution))
	if len(categories) > 0 {
		fmt.Fprintf(&b, "\n%s\n", BoldStyle.Render(fmt.Sprintf("Top %d categories", min(topCategories, len(categories)))))
		for i, c := range categories[:min(topCategories, len(categories))] {
			fmt.Fprintf(&b, "%2d. %s: %d\n", i+1, c.Name, c.Count)
		}
	}

	groups := report.SortCounts(stats.GroupDistribution)
	if len(groups) > 0 {
		fmt.Fprintf(&b, "\n%s\n", BoldStyle.Render("Group distribution"))
		for _, g := range groups {
			fmt.Fprintf(&b, "%s: %d (%s%%)\n", g.Name, g.Count, report.Percent(g.Count, stats.TotalRecords))
		}
	}

	return RenderBox(ChartIcon+" Recategorization Summary", strings.TrimRight(b.String(), "\n"))
}
