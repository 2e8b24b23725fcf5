// Package report renders the Markdown audit document for a finished run.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/taxon/internal/classification"
	"github.com/Veraticus/taxon/internal/model"
	"github.com/Veraticus/taxon/internal/taxonomy"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultSampleChanges is how many recategorized records the report lists.
const DefaultSampleChanges = 50

const unknownGroup = "Unknown"

// Options controls report rendering.
type Options struct {
	GeneratedAt   time.Time
	SampleChanges int
}

// Count is a name with the number of records assigned to it.
type Count struct {
	Name  string
	Count int
}

// Generate renders the report. It only reads stats and table, and the same
// inputs always give the same document.
func Generate(stats *model.RunStats, table *taxonomy.Table, opts Options) string {
	if opts.SampleChanges <= 0 {
		opts.SampleChanges = DefaultSampleChanges
	}

	g := &generator{
		stats:      stats,
		table:      table,
		opts:       opts,
		groups:     SortCounts(stats.GroupDistribution),
		categories: NonEmpty(SortCounts(stats.CategoryDistribution)),
		empty:      EmptyCategories(stats, table),
	}

	g.header()
	g.executiveSummary()
	g.structure()
	g.distribution()
	g.transitions()
	g.changes()
	g.emptyCategories()
	g.manualReview()
	g.skipped()
	g.methodology()
	g.impact()
	g.footer()

	return g.b.String()
}

type generator struct {
	stats      *model.RunStats
	table      *taxonomy.Table
	groups     []Count
	categories []Count
	empty      []string
	b          strings.Builder
	opts       Options
}

func (g *generator) printf(format string, args ...any) {
	fmt.Fprintf(&g.b, format, args...)
}

func (g *generator) rule() {
	g.b.WriteString("\n---\n\n")
}

func (g *generator) pct(count int) string {
	return Percent(count, g.stats.TotalRecords)
}

func (g *generator) groupOf(category string) string {
	if group, ok := g.table.Group(category); ok {
		return group
	}
	return unknownGroup
}

func (g *generator) header() {
	s := g.stats
	legacy := g.table.LegacyLabelCount()
	canonical := len(g.table.Categories())

	g.printf("# Category Migration Report\n")
	g.printf("## Recategorization: %d → %d Categories\n\n", legacy, canonical)
	g.printf("**Date:** %s\n", g.opts.GeneratedAt.UTC().Format("2006-01-02"))
	g.printf("**Total Records Processed:** %d\n", s.TotalRecords)
	g.printf("**Records Recategorized:** %d (%s%%)\n", s.Recategorized, g.pct(s.Recategorized))
	g.printf("**Records Unchanged:** %d (%s%%)\n", s.Unchanged, g.pct(s.Unchanged))
	g.printf("**Records Flagged for Manual Review:** %d\n", s.ReviewCount())
	if len(s.Skipped) > 0 {
		g.printf("**Malformed Records Skipped:** %d\n", len(s.Skipped))
	}
	g.rule()
}

func (g *generator) executiveSummary() {
	g.printf("## Executive Summary\n\n")
	g.printf("%d records were moved from %d legacy labels onto %d canonical categories in %d groups. "+
		"Each record was scored from five evidence channels:\n\n",
		g.stats.TotalRecords, g.table.LegacyLabelCount(), len(g.table.Categories()), len(g.table.Groups()))
	g.printf("- Primary category label\n")
	g.printf("- Secondary category labels\n")
	g.printf("- Subcategories\n")
	g.printf("- Tags\n")
	g.printf("- Keyword rules over the description\n\n")
	g.printf("%d records were flagged for manual review.\n", g.stats.ReviewCount())
	g.rule()
}

func (g *generator) structure() {
	byGroup := g.table.CategoriesByGroup()

	g.printf("## Category Structure\n\n")
	g.printf("### %d Groups & %d Categories\n", len(g.table.Groups()), len(g.table.Categories()))

	for _, group := range g.groups {
		g.printf("\n#### %s\n", group.Name)
		g.printf("**%d records (%s%%)**\n\n", group.Count, g.pct(group.Count))

		for _, category := range byGroup[group.Name] {
			if n := g.stats.CategoryDistribution[category]; n > 0 {
				g.printf("- **%s**: %d records\n", category, n)
			}
		}
	}
	g.rule()
}

func (g *generator) distribution() {
	g.printf("## Detailed Category Distribution\n\n")
	g.printf("| Rank | Category | Records | Group | %% of Total |\n")
	g.printf("|------|----------|---------|-------|------------|\n")

	for i, c := range g.categories {
		g.printf("| %d | %s | %d | %s | %s%% |\n",
			i+1, cell(c.Name), c.Count, cell(g.groupOf(c.Name)), g.pct(c.Count))
	}
	g.rule()
}

func (g *generator) transitions() {
	g.printf("## Old → New Category Mapping\n\n")

	old := make([]string, 0, len(g.stats.Transitions))
	for label := range g.stats.Transitions {
		old = append(old, label)
	}
	SortLabels(old)

	for _, label := range old {
		targets := SortCounts(g.stats.Transitions[label])
		total := 0
		for _, t := range targets {
			total += t.Count
		}

		g.printf("### %s\n", label)
		g.printf("**Total records:** %d\n\n", total)
		for _, t := range targets {
			g.printf("- → **%s**: %d records (%s%%)\n", t.Name, t.Count, WholePercent(t.Count, total))
		}
		g.printf("\n")
	}
	g.rule()
}

func (g *generator) changes() {
	g.printf("## Record Changes\n\n")

	changes := g.stats.Changes
	if len(changes) == 0 {
		g.printf("*No records changed category.*\n")
		g.rule()
		return
	}

	g.printf("| Record | Old Category | New Category | Group | Confidence |\n")
	g.printf("|--------|--------------|--------------|-------|------------|\n")

	limit := min(len(changes), g.opts.SampleChanges)
	for _, c := range changes[:limit] {
		g.printf("| %s | %s | %s | %s | %s |\n",
			cell(c.Name), cell(orNA(c.OldCategory)), cell(c.NewCategory), cell(c.Group), c.Confidence)
	}
	if len(changes) > limit {
		g.printf("\n*... and %d more records recategorized.*\n", len(changes)-limit)
	}
	g.rule()
}

func (g *generator) emptyCategories() {
	g.printf("## Empty Categories\n\n")

	if len(g.empty) == 0 {
		g.printf("*All categories have at least one record assigned.*\n")
		g.rule()
		return
	}

	g.printf("These categories have no records assigned:\n\n")
	for _, category := range g.empty {
		g.printf("- **%s** (%s)\n", category, g.groupOf(category))
	}
	g.rule()
}

func (g *generator) manualReview() {
	g.printf("## Manual Review Queue\n\n")

	queue := g.stats.ManualReview
	if len(queue) == 0 {
		g.printf("**No records flagged for manual review.**\n")
		g.rule()
		return
	}

	g.printf("%d records were flagged for manual review:\n\n", len(queue))
	g.printf("| ID | Name | Old Category | New Category | Reason | Confidence |\n")
	g.printf("|----|------|--------------|--------------|--------|------------|\n")
	for _, item := range queue {
		g.printf("| %s | %s | %s | %s | %s | %s |\n",
			cell(item.ID), cell(item.Name), cell(orNA(item.OldCategory)),
			cell(item.NewCategory), cell(item.Reason), item.Confidence)
	}
	g.rule()
}

func (g *generator) skipped() {
	if len(g.stats.Skipped) == 0 {
		return
	}

	g.printf("## Skipped Records\n\n")
	g.printf("| Index | ID | Reason |\n")
	g.printf("|-------|----|--------|\n")
	for _, s := range g.stats.Skipped {
		g.printf("| %d | %s | %s |\n", s.Index, cell(orNA(s.ID)), cell(s.Reason))
	}
	g.rule()
}

func (g *generator) methodology() {
	g.printf("## Methodology\n\n")
	g.printf("### Signal Weights\n\n")
	g.printf("1. **Primary Category (Weight: %d)**\n", classification.WeightPrimaryCategory)
	g.printf("2. **Secondary Categories (Weight: %d each)**\n", classification.WeightSecondaryCategory)
	g.printf("3. **Subcategories (Weight: %d each)**\n", classification.WeightSubcategory)
	g.printf("4. **Tags (Weight: %d each)**\n", classification.WeightTag)
	g.printf("5. **Description Keyword Rules (Weight: %d per rule)**\n\n", classification.WeightDescription)

	g.printf("### Confidence Levels\n\n")
	g.printf("- **High:** score ≥ %d\n", classification.HighConfidenceScore)
	g.printf("- **Medium:** score %d-%d\n", classification.MediumConfidenceScore, classification.HighConfidenceScore-1)
	g.printf("- **Low:** score < %d (flagged for manual review)\n", classification.MediumConfidenceScore)
	g.printf("\nTies go to the category whose first signal came from the earlier channel.\n")
	g.rule()
}

func (g *generator) impact() {
	g.printf("## Impact Analysis\n\n")
	g.printf("### Group Balance\n\n")

	for _, group := range g.groups {
		g.printf("**%s:** %s%% (%d records)\n", group.Name, g.pct(group.Count), group.Count)
		g.printf("`%s`\n\n", Bar(group.Count, g.stats.TotalRecords))
	}

	g.printf("### Key Insights\n\n")
	n := 1
	if len(g.groups) > 0 {
		top := g.groups[0]
		g.printf("%d. **%s** is the largest group with %d records (%s%%).\n", n, top.Name, top.Count, g.pct(top.Count))
		n++
	}
	if len(g.groups) > 1 {
		second := g.groups[1]
		g.printf("%d. **%s** is second with %d records (%s%%).\n", n, second.Name, second.Count, g.pct(second.Count))
		n++
	}
	if len(g.groups) > 2 {
		last := g.groups[len(g.groups)-1]
		g.printf("%d. **%s** is the smallest group with %d records (%s%%).\n", n, last.Name, last.Count, g.pct(last.Count))
		n++
	}

	if len(g.categories) > 0 {
		top := g.categories[:min(3, len(g.categories))]
		sum := 0
		for _, c := range top {
			sum += c.Count
		}
		g.printf("%d. The top %d categories hold %d records (%s%%):\n", n, len(top), sum, g.pct(sum))
		for _, c := range top {
			g.printf("   - %s: %d records\n", c.Name, c.Count)
		}
		n++
	}

	legacy := g.table.LegacyLabelCount()
	canonical := len(g.table.Categories())
	g.printf("%d. **Category reduction:** %d legacy labels → %d categories (%s%% reduction).\n",
		n, legacy, canonical, Reduction(legacy, canonical))
	g.printf("%d. **Empty categories:** %d.\n", n+1, len(g.empty))
	g.rule()
}

func (g *generator) footer() {
	g.printf("*Report generated on %s*\n", g.opts.GeneratedAt.UTC().Format(time.RFC3339))
}

// SortCounts orders a distribution by count descending, then name ascending.
func SortCounts(dist map[string]int) []Count {
	out := make([]Count, 0, len(dist))
	for name, count := range dist {
		out = append(out, Count{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// NonEmpty drops zero counts.
func NonEmpty(counts []Count) []Count {
	out := make([]Count, 0, len(counts))
	for _, c := range counts {
		if c.Count > 0 {
			out = append(out, c)
		}
	}
	return out
}

// EmptyCategories lists canonical categories with no records, sorted.
func EmptyCategories(stats *model.RunStats, table *taxonomy.Table) []string {
	out := make([]string, 0)
	for _, category := range table.Categories() {
		if stats.CategoryDistribution[category] == 0 {
			out = append(out, category)
		}
	}
	return out
}

// SortLabels sorts legacy labels in English collation order.
func SortLabels(labels []string) {
	collate.New(language.English).SortStrings(labels)
}

// Percent formats count/total as a percentage with one decimal.
func Percent(count, total int) string {
	if total == 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", float64(count)*100/float64(total))
}

// WholePercent formats count/total as a whole percentage.
func WholePercent(count, total int) string {
	if total == 0 {
		return "0"
	}
	return fmt.Sprintf("%.0f", float64(count)*100/float64(total))
}

// Reduction is the percentage by which legacy shrank to canonical.
func Reduction(legacy, canonical int) string {
	if legacy == 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", float64(legacy-canonical)*100/float64(legacy))
}

// Bar draws one block per two percent of total.
func Bar(count, total int) string {
	if total == 0 {
		return ""
	}
	blocks := int(float64(count)*50/float64(total) + 0.5)
	return strings.Repeat("█", blocks)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// cell escapes text for a Markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
