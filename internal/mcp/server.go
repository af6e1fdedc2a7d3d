// Package mcp exposes the reporting engine over the Model Context
// Protocol, so an agent can resolve windows, project run rates and pull
// the latest snapshot without shelling out to the CLI.
package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// Server wraps the SDK server with our tool set.
type Server struct {
	impl         *sdk.Server
	snapshotPath string
}

// NewServer registers every tool on a fresh SDK server.
func NewServer(version, snapshotPath string) *Server {
	impl := sdk.NewServer(&sdk.Implementation{
		Name:    "gep-report",
		Version: version,
	}, nil)

	s := &Server{impl: impl, snapshotPath: snapshotPath}
	s.registerTools()
	return s
}

// Serve runs the stdio transport until the client disconnects.
func (s *Server) Serve(ctx context.Context) error {
	log.Info().Msg("MCP server listening on stdio")
	return s.impl.Run(ctx, &sdk.StdioTransport{})
}
