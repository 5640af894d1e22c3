package main

import (
	"github.com/aretw0/leadchat/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP chat API",
	Long: `Serves the chat API for the website widget: /chats for conversations,
/chats/{id}/events for SSE updates, /graph for introspection and /metrics
for Prometheus.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.ServeOptions{Options: baseOptions(cmd)}
		if cmd.Flags().Changed("addr") {
			opts.Config.Addr, _ = cmd.Flags().GetString("addr")
		}
		if cmd.Flags().Changed("store") {
			opts.Config.Store, _ = cmd.Flags().GetString("store")
			if err := opts.Config.Validate(); err != nil {
				return err
			}
		}
		return cli.RunServe(cmd.Context(), opts)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on (LEADCHAT_ADDR)")
	serveCmd.Flags().String("store", "memory", "Session store: memory, file or redis (LEADCHAT_STORE)")
}
