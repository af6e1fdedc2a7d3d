package commands

import (
	"github.com/spf13/cobra"

	"gep-report/internal/dashboard"
)

var dashboardAddr string

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Serve the variance-analysis dashboard for uploaded CSVs",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := dashboardAddr
		if addr == "" {
			addr = cfg.DashboardAddr
		}
		server := dashboard.NewServer(addr, cfg.OpenBrowser)
		return server.Run(cmd.Context())
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardAddr, "addr", "", "listen address (default from DASHBOARD_ADDR)")
	rootCmd.AddCommand(dashboardCmd)
}
