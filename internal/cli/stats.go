package cli

import (
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/medgraph/medgraph/internal/graph"
)

func newStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show graph population counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			driver, err := app.Connect(ctx)
			if err != nil {
				return err
			}
			defer driver.Close()

			stats, err := graph.NewDrugRepository(driver, app.Log).Stats(ctx)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Population", "Count"})
			table.Append([]string{"Patient nodes", formatCount(stats.Patients)})
			table.Append([]string{"Medication nodes", formatCount(stats.Medications)})
			table.Append([]string{"Reference drug nodes", formatCount(stats.ReferenceDrugs)})
			table.Append([]string{"TAKES_MEDICATION edges", formatCount(stats.TakesMedication)})
			table.Append([]string{"MAPPED_TO edges", formatCount(stats.MappedTo)})
			table.Append([]string{"INTERACTS_WITH edges", formatCount(stats.InteractsWith)})
			table.Append([]string{"Mapped medications", formatCount(stats.MappedMedications)})
			table.Render()
			return nil
		},
	}
}
