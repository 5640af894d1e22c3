package main

import (
	"github.com/aretw0/leadchat/internal/cli"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the conversation as MCP tools (chat_start, chat_choose,
chat_submit_lead, chat_reset, get_graph) so AI agents can walk the flow.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP on --addr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		opts := cli.MCPOptions{Options: baseOptions(cmd), Transport: transport}
		if cmd.Flags().Changed("addr") {
			opts.Config.Addr, _ = cmd.Flags().GetString("addr")
		}
		return cli.RunMCP(cmd.Context(), opts)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", cli.TransportStdio, "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on (only for SSE)")
}
