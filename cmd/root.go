package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "investment-advisor",
	Short: "Multi-agent investment advisory service",
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(consultCmd)
	rootCmd.AddCommand(migrateCmd)
}

func Execute() error {
	return rootCmd.Execute()
}
