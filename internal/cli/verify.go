package cli

import (
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/medgraph/medgraph/internal/domain/drug"
	"github.com/medgraph/medgraph/internal/graph"
)

func newVerifyCmd(app *App) *cobra.Command {
	var examples int

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify mapped medications against known interactions",
		Long:  "Joins co-medicated patients through their mapping edges and the\ninteraction graph, bucketing the hits by severity.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			driver, err := app.Connect(ctx)
			if err != nil {
				return err
			}
			defer driver.Close()
			repo := graph.NewMedicationRepository(driver, app.Log)

			stats, err := repo.VerifyInteractions(ctx)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Severity", "Patient interaction pairs"})
			table.Append([]string{string(drug.SeverityHigh), formatCount(stats.High)})
			table.Append([]string{string(drug.SeverityModerate), formatCount(stats.Moderate)})
			table.Append([]string{string(drug.SeverityLow), formatCount(stats.Low)})
			table.Append([]string{"TOTAL", formatCount(stats.Total)})
			table.Render()

			if examples > 0 {
				rows, err := repo.InteractionExamples(ctx, examples)
				if err != nil {
					return err
				}
				if len(rows) > 0 {
					sample := tablewriter.NewWriter(cmd.OutOrStdout())
					sample.SetHeader([]string{"Patient", "Medication 1", "Medication 2", "Drug 1", "Drug 2", "Severity"})
					for _, r := range rows {
						sample.Append([]string{
							r.Patient, r.Medication1, r.Medication2,
							r.Drug1, r.Drug2, string(r.Severity),
						})
					}
					sample.Render()
				}
			}

			if stats.High > 0 {
				color.Red("Found %d HIGH severity interaction pairs", stats.High)
			} else {
				color.Green("No high severity interaction pairs found")
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&examples, "examples", 10, "number of example rows to print (0 = none)")
	return cmd
}
