package cmd

import (
	"blindtest/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the blindtest server",
	Long:  `Start the HTTP/WebSocket server hosting the shared trivia room, the Deezer proxy and the stats API.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
