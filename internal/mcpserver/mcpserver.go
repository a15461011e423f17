// Package mcpserver exposes couplint's analysis layers as MCP tools over
// stdio, so coding agents can query coupling findings without shelling out
// to the CLI and parsing its output.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/couplint/couplint/pkg/config"
)

// Server wraps the MCP server and registers the couplint analysis tools.
type Server struct {
	server *mcp.Server
	config *config.Config
}

// NewServer creates an MCP server with all tools registered.
func NewServer(version string, cfg *config.Config) *Server {
	if version == "" {
		version = "dev"
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "couplint",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server, config: cfg}
	s.registerTools()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_connascence",
		Description: describeConnascence(),
	}, s.handleAnalyzeConnascence)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_safety",
		Description: describeSafety(),
	}, s.handleAnalyzeSafety)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_duplicates",
		Description: describeDuplicates(),
	}, s.handleAnalyzeDuplicates)
}
