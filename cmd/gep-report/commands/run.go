package commands

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"gep-report/internal/notify"
	"gep-report/internal/report"
	"gep-report/internal/sheets"
	"gep-report/internal/targets"
	"gep-report/internal/taxonomy"
)

var skipSlack bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build today's report and deliver it to Slack",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, err := buildRunner(cmd, !skipSlack)
		if err != nil {
			return err
		}
		_, err = runner.Run(cmd.Context(), time.Now().UTC(), skipSlack)
		return err
	},
}

func buildRunner(cmd *cobra.Command, withNotifier bool) (*report.Runner, error) {
	book, err := taxonomy.Load(cfg.TaxonomyPath)
	if err != nil {
		return nil, err
	}

	var fetcher targets.Fetcher
	if cfg.Sheets.TargetsSpreadsheetID != "" {
		reader, err := sheets.NewGoogleReader(cmd.Context(), cfg.Sheets.CredentialsFile)
		if err != nil {
			log.Warn().Err(err).Msg("Sheets reader unavailable, relying on cached targets")
		} else {
			fetcher = sheets.TargetFetcher(reader, cfg.Sheets.TargetsSpreadsheetID, cfg.Sheets.TargetsRange)
		}
	}

	var notifier notify.Notifier
	if withNotifier {
		notifier, err = notify.NewSlackNotifier(cfg.Slack.Token, cfg.Slack.Channel)
		if err != nil {
			return nil, err
		}
	}

	return &report.Runner{
		Warehouse:    warehouseClient,
		Targets:      targets.NewBook(cfg.CacheDir, fetcher, fallbackTargets),
		Taxonomy:     book,
		Notifier:     notifier,
		SnapshotPath: snapshotPath(),
	}, nil
}

// fallbackTargets is the last-resort table used when both the sheet and
// the cache are unavailable. Keep it loosely current.
var fallbackTargets = map[string]targets.Tiers{
	"2026-01": {Forecast: 424, Stretch: 500, Low: 380},
	"2026-02": {Forecast: 440, Stretch: 520, Low: 395},
}

func init() {
	runCmd.Flags().BoolVar(&skipSlack, "skip-slack", false, "build and persist the report without posting")
	rootCmd.AddCommand(runCmd)
}
