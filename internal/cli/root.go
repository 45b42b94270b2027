// Package cli wires the pipeline commands: vocabulary and interaction loads,
// record ingestion, mapping, verification and stats.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/medgraph/medgraph/internal/config"
	"github.com/medgraph/medgraph/internal/graph"
	"github.com/medgraph/medgraph/internal/logging"
	"github.com/medgraph/medgraph/internal/metrics"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// App carries the dependencies every subcommand needs.  PersistentPreRunE
// fills it before the first RunE fires.
type App struct {
	Config  *config.Config
	Log     logging.Logger
	Metrics *metrics.Metrics
}

// Connect opens the graph driver.  Each command connects on demand so that
// file-only operations never require a database.
func (a *App) Connect(ctx context.Context) (*graph.Driver, error) {
	return graph.NewDriver(ctx, a.Config.Neo4j, a.Log)
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	var (
		app        = &App{}
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:     "medgraph",
		Short:   "Healthcare records and drug reference graph loader",
		Long:    "medgraph loads synthetic healthcare records and a drug reference\nvocabulary into Neo4j, resolves medication names against the vocabulary\nand links patient medications to known drug-drug interactions.",
		Version: fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			log, err := logging.NewLogger(cfg.Log)
			if err != nil {
				return err
			}
			app.Config = cfg
			app.Log = log
			app.Metrics = metrics.New()
			if cfg.Metrics.Enabled {
				app.Metrics.Serve(cfg.Metrics.ListenAddr, log)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "config file path (default: env only)")
	pf.StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	cmd.AddCommand(
		newLoadDrugsCmd(app),
		newLoadInteractionsCmd(app),
		newLoadSyntheaCmd(app),
		newMapCmd(app),
		newVerifyCmd(app),
		newStatsCmd(app),
	)
	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}

// Execute runs the CLI and reports the exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}
	return 0
}
