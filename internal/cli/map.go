package cli

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/medgraph/medgraph/internal/domain/drug"
	"github.com/medgraph/medgraph/internal/graph"
	"github.com/medgraph/medgraph/internal/mapping"
	"github.com/medgraph/medgraph/internal/match"
	"github.com/medgraph/medgraph/internal/vocabulary"
)

func newMapCmd(app *App) *cobra.Command {
	var (
		threshold      float64
		deleteExisting bool
		useSimple      bool
		overridesPath  string
		exportPath     string
	)

	cmd := &cobra.Command{
		Use:   "map",
		Short: "Map in-use medications to reference drugs",
		Long:  "Resolves every distinct in-use medication against the reference\nvocabulary through the strategy cascade, persists the mapping edges and\nexports unmapped medications for review.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := app.Config.Mapping

			if threshold == 0 {
				if useSimple {
					threshold = cfg.SimpleThreshold
				} else {
					threshold = cfg.Threshold
				}
			}
			if overridesPath == "" {
				overridesPath = cfg.OverridesPath
			}
			if exportPath == "" {
				exportPath = cfg.UnmappedExportPath
			}

			store, err := vocabulary.NewLoader(app.Log).LoadFile(app.Config.Vocabulary.Path)
			if err != nil {
				return err
			}
			app.Metrics.DrugsLoaded.Set(float64(store.Len()))

			var overrides map[string]drug.ManualOverride
			if overridesPath != "" {
				overrides, err = mapping.LoadOverrides(overridesPath, app.Log)
				if err != nil {
					return err
				}
			}

			driver, err := app.Connect(ctx)
			if err != nil {
				return err
			}
			defer driver.Close()

			service := mapping.NewService(
				graph.NewMedicationRepository(driver, app.Log),
				match.NewEngine(store, app.Log),
				app.Metrics,
				cfg.EdgeBatchSize,
				app.Log,
			)
			result, err := service.MapAll(ctx, mapping.Options{
				Threshold:      threshold,
				DeleteExisting: deleteExisting,
				UseSimple:      useSimple,
				Overrides:      overrides,
			})
			if err != nil {
				return err
			}

			if exportPath != "" {
				if err := mapping.ExportUnmapped(result, exportPath, app.Log); err != nil {
					return err
				}
			}

			printMappingSummary(cmd, result)
			return nil
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", 0, "fuzzy match threshold (defaults from config)")
	cmd.Flags().BoolVar(&deleteExisting, "delete-existing", false, "delete all current mapping edges first")
	cmd.Flags().BoolVar(&useSimple, "simple", false, "use the two-strategy matcher instead of the full cascade")
	cmd.Flags().StringVar(&overridesPath, "overrides", "", "manual override CSV path (overrides config)")
	cmd.Flags().StringVar(&exportPath, "export", "", "unmapped review CSV path (overrides config)")
	return cmd
}

func printMappingSummary(cmd *cobra.Command, result *drug.MappingResult) {
	out := cmd.OutOrStdout()

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Metric", "Count"})
	table.Append([]string{"Medications", strconv.Itoa(result.Total)})
	table.Append([]string{"Mapped", strconv.Itoa(result.Mapped)})
	table.Append([]string{"Manual overrides", strconv.Itoa(result.Overrides)})
	table.Append([]string{"Unmapped", strconv.Itoa(result.UnmappedCount())})
	table.Render()

	buckets := tablewriter.NewWriter(out)
	buckets.SetHeader([]string{"Confidence", "Count"})
	for _, b := range []drug.ConfidenceBucket{drug.BucketHigh, drug.BucketMedium, drug.BucketLow, drug.BucketBelow} {
		buckets.Append([]string{string(b), strconv.Itoa(result.Buckets[b])})
	}
	buckets.Render()

	methods := make([]string, 0, len(result.ByMethod))
	for m := range result.ByMethod {
		methods = append(methods, string(m))
	}
	sort.Strings(methods)
	byMethod := tablewriter.NewWriter(out)
	byMethod.SetHeader([]string{"Method", "Count"})
	for _, m := range methods {
		byMethod.Append([]string{m, strconv.Itoa(result.ByMethod[drug.MatchMethod(m)])})
	}
	byMethod.Render()

	rate := 0.0
	if result.Total > 0 {
		rate = float64(result.Mapped) / float64(result.Total) * 100
	}
	headline := fmt.Sprintf("Mapped %d/%d medications (%.1f%%), run %s took %s",
		result.Mapped, result.Total, rate, result.RunID,
		result.Completed.Sub(result.Started).Round(time.Millisecond))
	if result.UnmappedCount() > 0 {
		color.Yellow(headline)
	} else {
		color.Green(headline)
	}
}
