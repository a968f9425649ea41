package cmd

import (
	"github.com/spf13/cobra"
)

// defaultCmd is what runs when no subcommand is given.
var defaultCmd = &cobra.Command{
	Use:   "default",
	Short: "Default command when no subcommand is provided",
	Long:  `Runs the update command with default flags.`,
	Run: func(_ *cobra.Command, _ []string) {
		updateCmd.Run(updateCmd, []string{})
	},
}

func init() {
	rootCmd.AddCommand(defaultCmd)
}
