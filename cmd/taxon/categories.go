package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/Veraticus/taxon/internal/cli"
	"github.com/Veraticus/taxon/internal/dataset"
	"github.com/Veraticus/taxon/internal/taxonomy"
	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	var canonical bool

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List the categories currently used by the records",
		Long: `Count records per primary category, most common first. With --canonical,
print the canonical taxonomy grouped by group instead, with the number of
records in each category.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			table, err := loadTable(settings)
			if err != nil {
				return err
			}

			records, err := dataset.LoadRecords(settings.RecordsPath)
			if err != nil {
				return err
			}

			counts := dataset.CountLabels(records, table)
			if canonical {
				return printTaxonomy(cmd.OutOrStdout(), table, counts)
			}
			return printLabelCounts(cmd.OutOrStdout(), counts, len(records))
		},
	}

	cmd.Flags().BoolVar(&canonical, "canonical", false, "Show the canonical taxonomy tree")
	cmd.Flags().String("records", "", "Records file (default from paths.records)")
	cmd.Flags().String("mapping", "", "Mapping file, JSON or YAML (default from paths.mapping)")

	return cmd
}

func printLabelCounts(out io.Writer, counts []dataset.LabelCount, total int) error {
	if len(counts) == 0 {
		fmt.Fprintln(out, cli.InfoStyle.Render("No records found."))
		return nil
	}

	fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("%d categories across %d records", len(counts), total)))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, c := range counts {
		marker := cli.SuccessIcon
		if !c.Canonical {
			marker = cli.SubtleStyle.Render("·")
		}
		fmt.Fprintf(w, "%s\t%s\t%d\n", marker, c.Label, c.Count)
	}
	return w.Flush()
}

func printTaxonomy(out io.Writer, table *taxonomy.Table, counts []dataset.LabelCount) error {
	byLabel := make(map[string]int, len(counts))
	for _, c := range counts {
		byLabel[c.Label] = c.Count
	}

	tree := table.CategoriesByGroup()
	groups := make([]string, 0, len(tree))
	for group := range tree {
		groups = append(groups, group)
	}
	sort.Strings(groups)

	fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("%d canonical categories in %d groups", len(table.Categories()), len(groups))))

	for _, group := range groups {
		total := 0
		for _, category := range tree[group] {
			total += byLabel[category]
		}
		fmt.Fprintf(out, "%s (%d)\n", cli.BoldStyle.Render(group), total)

		categories := tree[group]
		for i, category := range categories {
			branch := "├──"
			if i == len(categories)-1 {
				branch = "└──"
			}
			fmt.Fprintf(out, "  %s %s (%d)\n", branch, category, byLabel[category])
		}
	}
	return nil
}
