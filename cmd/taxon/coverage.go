package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/Veraticus/taxon/internal/cli"
	"github.com/Veraticus/taxon/internal/dataset"
	"github.com/spf13/cobra"
)

func coverageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coverage",
		Short: "List record categories that are not canonical",
		Long: `Show every primary category found in the records file that is not a
canonical category of the mapping table, with how many records carry it.
After a successful run the list is empty.`,
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
			missing := dataset.NonCanonical(counts)
			out := cmd.OutOrStdout()

			if len(missing) == 0 {
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("All %d records use canonical categories", len(records))))
				return nil
			}

			total := 0
			for _, c := range missing {
				total += c.Count
			}
			fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d records in %d non-canonical categories", total, len(missing))))
			fmt.Fprintln(out)

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				cli.BoldStyle.Render("Category"),
				cli.BoldStyle.Render("Records"),
				cli.BoldStyle.Render("Maps to"))
			for _, c := range missing {
				target, ok := table.Lookup(c.Label)
				if !ok {
					target = cli.SubtleStyle.Render("(unmapped)")
				}
				fmt.Fprintf(w, "%s\t%d\t%s\n", c.Label, c.Count, target)
			}
			return w.Flush()
		},
	}

	cmd.Flags().String("records", "", "Records file (default from paths.records)")
	cmd.Flags().String("mapping", "", "Mapping file, JSON or YAML (default from paths.mapping)")

	return cmd
}
