package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "messenger",
	Short: "Real-time chat broadcast hub",
	Long: `Messenger is a real-time chat broadcast hub. Clients connect over
WebSocket, join the shared channel, and exchange short text messages that
are fanned out to every other connected participant.

Use "messenger serve" to start the server.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
