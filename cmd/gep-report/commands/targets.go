package commands

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"gep-report/internal/sheets"
	"gep-report/internal/targets"
)

var refreshTargetsCmd = &cobra.Command{
	Use:   "refresh-targets",
	Short: "Fetch the current month's targets from the sheet and update the local cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Sheets.TargetsSpreadsheetID == "" {
			return fmt.Errorf("SHEETS_TARGETS_SPREADSHEET_ID is not configured")
		}
		reader, err := sheets.NewGoogleReader(cmd.Context(), cfg.Sheets.CredentialsFile)
		if err != nil {
			return err
		}

		book := targets.NewBook(cfg.CacheDir,
			sheets.TargetFetcher(reader, cfg.Sheets.TargetsSpreadsheetID, cfg.Sheets.TargetsRange),
			nil)

		tiers, err := book.Refresh(cmd.Context(), time.Now().UTC())
		if err != nil {
			return err
		}
		log.Info().
			Float64("forecast", tiers.Forecast).
			Float64("stretch", tiers.Stretch).
			Float64("low", tiers.Low).
			Msg("Targets cache refreshed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refreshTargetsCmd)
}
