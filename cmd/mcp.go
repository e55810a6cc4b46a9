package cmd

import (
	"github.com/huangsam/legacylens/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the LegacyLens MCP server",
	Long: `Launch an MCP server over stdio so AI agents can ingest legacy files,
analyze them and read suggestions through standard tools.

Tools:
  ingest_file     - store content and optionally analyze it
  analyze_file    - analyze an ingested file
  get_status      - read the processing state of a file
  get_suggestions - list suggestions of an analysis
  get_history     - list every analysis of a file

Logs go to stderr (or --log-output) so the protocol stream on stdout stays clean.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, engine)
	},
}
