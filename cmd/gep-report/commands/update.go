package commands

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Build today's report and persist the snapshot without posting",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, err := buildRunner(cmd, false)
		if err != nil {
			return err
		}
		rep, err := runner.Run(cmd.Context(), time.Now().UTC(), true)
		if err != nil {
			return err
		}
		log.Info().
			Int("mtd_adds", rep.MTDAdds).
			Int("run_rate", rep.RunRate).
			Msg("Snapshot updated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}
