package commands

import (
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"gep-report/internal/config"
	"gep-report/internal/logging"
	"gep-report/internal/warehouse"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig

	warehouseClient warehouse.Client
)

var rootCmd = &cobra.Command{
	Use:   "gep-report",
	Short: "gep-report automates the daily partner-growth performance report",
	Long: `A reporting pipeline that pulls partner add/lead events from the warehouse,
projects month-to-date volume against tiered targets, compares equal-length
windows month-over-month and year-over-year, and delivers the result to Slack.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		warehouseClient = warehouse.NewClient(cfg.Warehouse)

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("gep-report starting")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func snapshotPath() string {
	return filepath.Join(cfg.DataPath, "latest_metrics.json")
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}
