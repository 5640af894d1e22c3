package main

import (
	"fmt"

	"github.com/aretw0/leadchat"
	"github.com/aretw0/leadchat/pkg/adapters/loam"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Write the flow as a Markdown directory",
	Long: `Writes one Markdown document per node plus _flow.yaml, ready to be edited
and loaded back with --flow <dir>. Without --flow the embedded portfolio flow
is exported.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bot, err := leadchat.New(cfg.Flow)
		if err != nil {
			return fmt.Errorf("error initializing leadchat: %w", err)
		}
		if err := loam.Export(args[0], bot.Graph()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d nodes to %s\n", bot.Graph().Len(), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
