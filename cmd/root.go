// Package cmd implements the mcpbridge command line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "mcpbridge",
	Short:         "Chat-to-tool bridge server",
	Long:          "mcpbridge connects chat channels to tool providers: it discovers tools, routes messages to the relevant ones and reports their results back.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
