package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mcpbridge/mcpbridge/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the mcpbridge version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.GetVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
