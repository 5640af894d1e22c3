package main

import (
	"github.com/aretw0/leadchat/internal/cli"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the bot in the terminal",
	Long: `Runs the conversation interactively. Pick options by number or label;
type 'restart' to begin again and 'exit' to leave.

With --session the conversation is saved in LEADCHAT_SESSION_DIR and resumed
on the next run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		fresh, _ := cmd.Flags().GetBool("fresh")
		plain, _ := cmd.Flags().GetBool("plain")

		return cli.RunChat(cmd.Context(), cli.ChatOptions{
			Options:   baseOptions(cmd),
			SessionID: sessionID,
			Fresh:     fresh,
			Plain:     plain,
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringP("session", "s", "", "Persist and resume the conversation under this ID")
	chatCmd.Flags().Bool("fresh", false, "Discard the saved session before starting")
	chatCmd.Flags().Bool("plain", false, "Disable the banner and markdown rendering")

	// Make 'chat' the default if no command is provided
	rootCmd.RunE = chatCmd.RunE
	rootCmd.Flags().AddFlagSet(chatCmd.Flags())
}
