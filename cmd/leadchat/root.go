package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/leadchat/internal/cli"
	"github.com/aretw0/leadchat/internal/config"
	"github.com/spf13/cobra"
)

// cfg is filled by the root command before any subcommand runs.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "leadchat",
	Short: "leadchat is a scripted lead-generation chatbot",
	Long: `leadchat runs a scripted conversation that qualifies portfolio visitors
and delivers their contact details to a form relay.

Settings come from LEADCHAT_* environment variables (optionally from a .env
file); flags override them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}

		loaded, err := config.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("flow") {
			loaded.Flow, _ = cmd.Flags().GetString("flow")
		}
		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func baseOptions(cmd *cobra.Command) cli.Options {
	debug, _ := cmd.Flags().GetBool("debug")
	return cli.Options{
		Config: cfg,
		Debug:  debug,
		In:     cmd.InOrStdin(),
		Out:    cmd.OutOrStdout(),
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("flow", "", "Flow file (.yaml/.json) or Markdown directory; embedded portfolio flow when empty")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().String("env-file", ".env", "Optional dotenv file with LEADCHAT_* settings")
}
