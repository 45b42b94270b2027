package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/medgraph/medgraph/internal/domain/drug"
	"github.com/medgraph/medgraph/internal/graph"
	"github.com/medgraph/medgraph/internal/interaction"
	"github.com/medgraph/medgraph/internal/logging"
)

func newLoadInteractionsCmd(app *App) *cobra.Command {
	var (
		file   string
		firstN int
	)

	cmd := &cobra.Command{
		Use:   "load-interactions",
		Short: "Stream drug-drug interactions into the graph",
		Long:  "Streams the interaction XML export, classifies each description's\nseverity and merges undirected interaction edges in batches.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := app.Config.Interactions
			path := file
			if path == "" {
				path = cfg.XMLPath
			}
			if firstN == 0 {
				firstN = cfg.FirstN
			}

			driver, err := app.Connect(ctx)
			if err != nil {
				return err
			}
			defer driver.Close()
			repo := graph.NewDrugRepository(driver, app.Log)

			parser := interaction.NewParser(app.Log)
			parser.ProgressEvery = cfg.ProgressEvery

			failedBatches := 0
			batch := make([]drug.InteractionEdge, 0, cfg.BatchSize)
			flush := func() {
				if len(batch) == 0 {
					return
				}
				if err := repo.UpsertInteractions(ctx, batch); err != nil {
					failedBatches++
					app.Log.Warn("interaction batch failed, continuing",
						logging.Int("size", len(batch)),
						logging.Err(err))
				} else {
					app.Metrics.InteractionsLoaded.Add(float64(len(batch)))
				}
				batch = batch[:0]
			}

			sum, err := parser.ParseFile(ctx, path, firstN, func(i drug.Interaction) error {
				batch = append(batch, drug.InteractionEdge{
					Interaction: i,
					Severity:    interaction.ClassifySeverity(i.Description),
				})
				if len(batch) >= cfg.BatchSize {
					flush()
				}
				return ctx.Err()
			})
			if err != nil {
				return err
			}
			flush()

			app.Log.Info("interaction load complete",
				logging.Int("drugs", sum.Drugs),
				logging.Int("interactions", sum.Interactions),
				logging.Int("failed_batches", failedBatches))
			if failedBatches > 0 {
				color.Yellow("Loaded %d interactions from %d drugs (%d batches failed, re-run to repair)",
					sum.Interactions, sum.Drugs, failedBatches)
			} else {
				color.Green("Loaded %d interactions from %d drugs", sum.Interactions, sum.Drugs)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "interaction XML path (overrides config)")
	cmd.Flags().IntVar(&firstN, "first-n", 0, "stop after N drug records (0 = all)")
	return cmd
}
