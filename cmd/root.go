// Package cmd defines the grievanced command line interface.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "grievanced",
	Short: "Municipal grievance portal backend",
	Long: `grievanced is the backend server for the municipal citizen-grievance
portal: citizens submit complaints with photos and location, administrators
triage and assign them to employees, and employees resolve them.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
