package cli

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/medgraph/medgraph/internal/domain/drug"
	"github.com/medgraph/medgraph/internal/graph"
	"github.com/medgraph/medgraph/internal/logging"
	"github.com/medgraph/medgraph/internal/vocabulary"
)

// drugBatchSize is the number of reference drugs merged per transaction.
const drugBatchSize = 1000

func newLoadDrugsCmd(app *App) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "load-drugs",
		Short: "Load the drug reference vocabulary into the graph",
		Long:  "Parses the reference vocabulary CSV, ensures the uniqueness constraint\non the drug id and merges the drugs in batches.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := file
			if path == "" {
				path = app.Config.Vocabulary.Path
			}

			store, err := vocabulary.NewLoader(app.Log).LoadFile(path)
			if err != nil {
				return err
			}
			stats := store.Stats()
			app.Metrics.DrugsLoaded.Set(float64(stats.TotalDrugs))

			driver, err := app.Connect(ctx)
			if err != nil {
				return err
			}
			defer driver.Close()
			repo := graph.NewDrugRepository(driver, app.Log)

			if err := repo.EnsureConstraints(ctx); err != nil {
				return err
			}

			entries := store.Entries()
			batch := make([]drug.ReferenceDrug, 0, drugBatchSize)
			for i := range entries {
				batch = append(batch, entries[i].Drug)
				if len(batch) == drugBatchSize {
					if err := repo.UpsertDrugs(ctx, batch); err != nil {
						return err
					}
					batch = batch[:0]
				}
			}
			if err := repo.UpsertDrugs(ctx, batch); err != nil {
				return err
			}
			app.Log.Info("vocabulary persisted", logging.Int("drugs", stats.TotalDrugs))

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Metric", "Count"})
			table.Append([]string{"Drugs loaded", strconv.Itoa(stats.TotalDrugs)})
			table.Append([]string{"With CAS number", strconv.Itoa(stats.WithCAS)})
			table.Append([]string{"With UNII", strconv.Itoa(stats.WithUNII)})
			table.Append([]string{"With synonyms", strconv.Itoa(stats.WithSynonyms)})
			table.Append([]string{"With InChI key", strconv.Itoa(stats.WithInChIKey)})
			table.Render()

			color.Green("Loaded %d reference drugs from %s", stats.TotalDrugs, path)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "vocabulary CSV path (overrides config)")
	return cmd
}

func formatCount(n int64) string {
	return fmt.Sprintf("%d", n)
}
