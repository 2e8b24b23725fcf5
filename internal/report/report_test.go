package report

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/taxon/internal/model"
	"github.com/Veraticus/taxon/internal/taxonomy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var generatedAt = time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)

func testTable(t *testing.T) *taxonomy.Table {
	t.Helper()
	table, err := taxonomy.New(
		map[string]string{
			"chatbots": "chatbots-conversational-ai",
			"coding":   "code-generation",
			"Écoles":   "education-learning-ai",
			"zebra":    "code-generation",
		},
		map[string]string{
			"chatbots-conversational-ai": "Customer & Communication",
			"code-generation":            "Developer Tools",
			"education-learning-ai":      "Industry Solutions",
			"computer-vision":            "Data & Analytics",
		},
	)
	require.NoError(t, err)
	return table
}

func add(stats *model.RunStats, id, name, old, category, group string, confidence model.Confidence, reason string) {
	stats.Add(model.Decision{
		RecordID:    id,
		Name:        name,
		OldCategory: old,
		Result: model.Result{
			Category:    category,
			Group:       group,
			Confidence:  confidence,
			NeedsReview: confidence == model.ConfidenceLow,
			Reason:      reason,
		},
	})
}

func testStats(t *testing.T, table *taxonomy.Table) *model.RunStats {
	t.Helper()
	stats := model.NewRunStats(table.Categories(), table.Groups())
	add(stats, "p1", "Chatty", "chatbots", "chatbots-conversational-ai", "Customer & Communication", model.ConfidenceHigh, "")
	add(stats, "p2", "Coder", "coding", "code-generation", "Developer Tools", model.ConfidenceHigh, "")
	add(stats, "p3", "Pipe|Name", "coding", "code-generation", "Developer Tools", model.ConfidenceMedium, "")
	add(stats, "p4", "Tutor", "", "education-learning-ai", "Industry Solutions", model.ConfidenceLow, "low confidence score")
	add(stats, "p5", "Same", "code-generation", "code-generation", "Developer Tools", model.ConfidenceHigh, "")
	add(stats, "p6", "Art", "Écoles", "chatbots-conversational-ai", "Customer & Communication", model.ConfidenceLow, "no mapping matched any signal")
	return stats
}

func TestGenerate_Sections(t *testing.T) {
	table := testTable(t)
	out := Generate(testStats(t, table), table, Options{GeneratedAt: generatedAt})

	sections := []string{
		"# Category Migration Report",
		"## Recategorization: 4 → 4 Categories",
		"## Executive Summary",
		"## Category Structure",
		"## Detailed Category Distribution",
		"## Old → New Category Mapping",
		"## Record Changes",
		"## Empty Categories",
		"## Manual Review Queue",
		"## Methodology",
		"## Impact Analysis",
		"*Report generated on 2024-06-01T12:30:00Z*",
	}

	last := -1
	for _, section := range sections {
		i := strings.Index(out, section)
		require.GreaterOrEqual(t, i, 0, "missing section %q", section)
		assert.Greater(t, i, last, "section %q out of order", section)
		last = i
	}
	assert.NotContains(t, out, "## Skipped Records")
}

func TestGenerate_Header(t *testing.T) {
	table := testTable(t)
	out := Generate(testStats(t, table), table, Options{GeneratedAt: generatedAt})

	assert.Contains(t, out, "**Date:** 2024-06-01\n")
	assert.Contains(t, out, "**Total Records Processed:** 6\n")
	assert.Contains(t, out, "**Records Recategorized:** 5 (83.3%)\n")
	assert.Contains(t, out, "**Records Unchanged:** 1 (16.7%)\n")
	assert.Contains(t, out, "**Records Flagged for Manual Review:** 2\n")
}

func TestGenerate_Distribution(t *testing.T) {
	table := testTable(t)
	out := Generate(testStats(t, table), table, Options{GeneratedAt: generatedAt})

	assert.Contains(t, out, "| 1 | code-generation | 3 | Developer Tools | 50.0% |\n")
	assert.Contains(t, out, "| 2 | chatbots-conversational-ai | 2 | Customer & Communication | 33.3% |\n")
	assert.Contains(t, out, "| 3 | education-learning-ai | 1 | Industry Solutions | 16.7% |\n")
	assert.NotContains(t, out, "| computer-vision |", "empty categories are not ranked")
}

func TestGenerate_Transitions(t *testing.T) {
	table := testTable(t)
	out := Generate(testStats(t, table), table, Options{GeneratedAt: generatedAt})

	assert.Contains(t, out, "### coding\n**Total records:** 2\n\n- → **code-generation**: 2 records (100%)\n")
	assert.Contains(t, out, "### (none)\n")

	// Collation puts the accented label among the e's.
	assert.Less(t, strings.Index(out, "### chatbots"), strings.Index(out, "### Écoles"))
	assert.Less(t, strings.Index(out, "### coding"), strings.Index(out, "### Écoles"))
}

func TestGenerate_ManualReviewAndEscaping(t *testing.T) {
	table := testTable(t)
	out := Generate(testStats(t, table), table, Options{GeneratedAt: generatedAt})

	assert.Contains(t, out, "2 records were flagged for manual review:")
	assert.Contains(t, out, "| p4 | Tutor | N/A | education-learning-ai | low confidence score | low |\n")
	assert.Contains(t, out, "| p6 | Art | Écoles | chatbots-conversational-ai | no mapping matched any signal | low |\n")
	assert.Contains(t, out, `| Pipe\|Name | coding | code-generation | Developer Tools | medium |`)
}

func TestGenerate_EmptyCategories(t *testing.T) {
	table := testTable(t)
	out := Generate(testStats(t, table), table, Options{GeneratedAt: generatedAt})

	assert.Contains(t, out, "These categories have no records assigned:\n\n- **computer-vision** (Data & Analytics)\n")
	assert.Contains(t, out, "**Empty categories:** 1.")
}

func TestGenerate_NoReviewNoChanges(t *testing.T) {
	table := testTable(t)
	stats := model.NewRunStats(table.Categories(), table.Groups())
	for _, category := range table.Categories() {
		group, _ := table.Group(category)
		add(stats, category, category, category, category, group, model.ConfidenceHigh, "")
	}

	out := Generate(stats, table, Options{GeneratedAt: generatedAt})
	assert.Contains(t, out, "**No records flagged for manual review.**")
	assert.Contains(t, out, "*No records changed category.*")
	assert.Contains(t, out, "*All categories have at least one record assigned.*")
}

func TestGenerate_SampleLimit(t *testing.T) {
	table := testTable(t)
	stats := model.NewRunStats(table.Categories(), table.Groups())
	for i := 0; i < 60; i++ {
		add(stats, fmt.Sprintf("p%d", i), fmt.Sprintf("Record %d", i), "coding", "code-generation", "Developer Tools", model.ConfidenceHigh, "")
	}

	out := Generate(stats, table, Options{GeneratedAt: generatedAt})
	assert.Contains(t, out, "*... and 10 more records recategorized.*")
	assert.Contains(t, out, "| Record 49 |")
	assert.NotContains(t, out, "| Record 50 |")

	out = Generate(stats, table, Options{GeneratedAt: generatedAt, SampleChanges: 5})
	assert.Contains(t, out, "*... and 55 more records recategorized.*")
}

func TestGenerate_SkippedRecords(t *testing.T) {
	table := testTable(t)
	stats := testStats(t, table)
	stats.Skip(6, "", "invalid record: missing id")

	out := Generate(stats, table, Options{GeneratedAt: generatedAt})
	assert.Contains(t, out, "**Malformed Records Skipped:** 1\n")
	assert.Contains(t, out, "## Skipped Records")
	assert.Contains(t, out, "| 6 | N/A | invalid record: missing id |\n")
}

func TestGenerate_Methodology(t *testing.T) {
	table := testTable(t)
	out := Generate(testStats(t, table), table, Options{GeneratedAt: generatedAt})

	assert.Contains(t, out, "1. **Primary Category (Weight: 10)**")
	assert.Contains(t, out, "2. **Secondary Categories (Weight: 5 each)**")
	assert.Contains(t, out, "3. **Subcategories (Weight: 3 each)**")
	assert.Contains(t, out, "4. **Tags (Weight: 2 each)**")
	assert.Contains(t, out, "5. **Description Keyword Rules (Weight: 4 per rule)**")
	assert.Contains(t, out, "- **High:** score ≥ 10")
	assert.Contains(t, out, "- **Medium:** score 5-9")
	assert.Contains(t, out, "- **Low:** score < 5 (flagged for manual review)")
}

func TestGenerate_Insights(t *testing.T) {
	table := testTable(t)
	out := Generate(testStats(t, table), table, Options{GeneratedAt: generatedAt})

	assert.Contains(t, out, "1. **Developer Tools** is the largest group with 3 records (50.0%).")
	assert.Contains(t, out, "2. **Customer & Communication** is second with 2 records (33.3%).")
	assert.Contains(t, out, "3. **Data & Analytics** is the smallest group with 0 records (0.0%).")
	assert.Contains(t, out, "4. The top 3 categories hold 6 records (100.0%):")
	assert.Contains(t, out, "**Category reduction:** 4 legacy labels → 4 categories (0.0% reduction).")
	assert.Contains(t, out, "**Developer Tools:** 50.0% (3 records)\n`"+strings.Repeat("█", 25)+"`")
}

func TestGenerate_ReductionIgnoresIdentityEntries(t *testing.T) {
	table, err := taxonomy.New(
		map[string]string{
			"chatbots":                   "chatbots-conversational-ai",
			"chatbot":                    "chatbots-conversational-ai",
			"coding":                     "code-generation",
			"developer-tools":            "code-generation",
			"chatbots-conversational-ai": "chatbots-conversational-ai",
			"code-generation":            "code-generation",
		},
		map[string]string{
			"chatbots-conversational-ai": "Customer & Communication",
			"code-generation":            "Developer Tools",
		},
	)
	require.NoError(t, err)

	stats := model.NewRunStats(table.Categories(), table.Groups())
	add(stats, "p1", "Chatty", "chatbot", "chatbots-conversational-ai", "Customer & Communication", model.ConfidenceHigh, "")
	out := Generate(stats, table, Options{GeneratedAt: generatedAt})

	assert.Contains(t, out, "## Recategorization: 4 → 2 Categories")
	assert.Contains(t, out, "**Category reduction:** 4 legacy labels → 2 categories (50.0% reduction).")
}

func TestGenerate_Deterministic(t *testing.T) {
	table := testTable(t)
	stats := testStats(t, table)

	first := Generate(stats, table, Options{GeneratedAt: generatedAt})
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Generate(stats, table, Options{GeneratedAt: generatedAt}))
	}
}

func TestGenerate_EmptyRun(t *testing.T) {
	table := testTable(t)
	stats := model.NewRunStats(table.Categories(), table.Groups())

	out := Generate(stats, table, Options{GeneratedAt: generatedAt})
	assert.Contains(t, out, "**Records Recategorized:** 0 (0.0%)")
	assert.Contains(t, out, "*No records changed category.*")
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "33.3", Percent(1, 3))
	assert.Equal(t, "0.0", Percent(5, 0))
	assert.Equal(t, "67", WholePercent(2, 3))
	assert.Equal(t, "0", WholePercent(1, 0))
	assert.Equal(t, "80.0", Reduction(100, 20))
	assert.Equal(t, "0.0", Reduction(0, 5))
	assert.Equal(t, strings.Repeat("█", 50), Bar(10, 10))
	assert.Equal(t, "", Bar(0, 10))
	assert.Equal(t, "", Bar(1, 0))
	assert.Equal(t, `a\|b c`, cell("a|b\nc"))
	assert.Equal(t, "N/A", orNA(""))

	assert.Equal(t, []Count{{Name: "b", Count: 2}, {Name: "a", Count: 1}, {Name: "c", Count: 1}, {Name: "z", Count: 0}},
		SortCounts(map[string]int{"a": 1, "b": 2, "c": 1, "z": 0}))
	assert.Equal(t, []Count{{Name: "b", Count: 2}}, NonEmpty([]Count{{Name: "b", Count: 2}, {Name: "z"}}))

	labels := []string{"zebra", "Écoles", "apple"}
	SortLabels(labels)
	assert.Equal(t, []string{"apple", "Écoles", "zebra"}, labels)
}
