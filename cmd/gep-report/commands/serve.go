package commands

import (
	"github.com/spf13/cobra"

	"gep-report/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		server := mcp.NewServer(Version, snapshotPath())
		return server.Serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
