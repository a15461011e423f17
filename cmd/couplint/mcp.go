package main

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/couplint/couplint/internal/mcpserver"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes couplint's
analysis layers as tools LLMs can invoke.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "couplint": {
        "command": "couplint",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - analyze_connascence  Coupling violations with 1-10 severity levels
  - analyze_safety       Ten aerospace-style safety rules
  - analyze_duplicates   Functions sharing the same control-flow shape`,
		Action: runMCP,
	}
}

func runMCP(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	server := mcpserver.NewServer(version, cfg)
	return server.Run(context.Background())
}
