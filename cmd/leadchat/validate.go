package main

import (
	"fmt"

	"github.com/aretw0/leadchat"
	"github.com/aretw0/leadchat/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [flow]",
	Short: "Check the flow for consistency",
	Long: `Loads the flow, reports dangling references and other authoring errors,
then lints it for unreachable nodes and unused navigation actions.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flow := cfg.Flow
		if len(args) > 0 {
			flow = args[0]
		}

		bot, err := leadchat.New(flow)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		out := cmd.OutOrStdout()
		warnings := validator.Lint(bot.Graph())
		if len(warnings) > 0 {
			fmt.Fprintf(out, "Flow is valid with %d warning(s):\n%s\n", len(warnings), validator.Format(warnings))
			strict, _ := cmd.Flags().GetBool("strict")
			if strict {
				return fmt.Errorf("validation failed: %d warning(s) in strict mode", len(warnings))
			}
			return nil
		}
		fmt.Fprintf(out, "Flow is valid! %d nodes ✅\n", bot.Graph().Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("strict", false, "Treat warnings as errors")
}
