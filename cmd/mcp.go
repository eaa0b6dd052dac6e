package cmd

import (
	"github.com/spf13/cobra"

	"github.com/joescharf/kan/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server",
	Long: `Start an MCP (Model Context Protocol) server on stdio, exposing
the issue collection and AI suggestions to agent clients:

  {
    "mcpServers": {
      "kan": { "command": "kan", "args": ["mcp"] }
    }
  }

Available tools: kan_list_issues, kan_create_issue, kan_move_issue,
kan_suggest`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}
		srv := mcp.NewServer(a, newOrchestrator())
		return srv.ServeStdio(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
