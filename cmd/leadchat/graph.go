package main

import (
	"fmt"

	"github.com/aretw0/leadchat"
	"github.com/aretw0/leadchat/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [flow]",
	Short: "Export the flow graph visualization",
	Long:  `Loads the flow and outputs a Mermaid diagram (graph TD) of nodes, options and navigation links.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flow := cfg.Flow
		if len(args) > 0 {
			flow = args[0]
		}

		bot, err := leadchat.New(flow)
		if err != nil {
			return fmt.Errorf("error initializing leadchat: %w", err)
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(bot.Graph(), nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
