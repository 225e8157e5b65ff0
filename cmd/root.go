package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "blindtest",
	Short: "Blindtest is a shared real-time music trivia room.",
	Run: func(cmd *cobra.Command, args []string) {
		// Running the bare binary starts the server, same as `blindtest server`.
		serverCmd.Run(cmd, args)
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
