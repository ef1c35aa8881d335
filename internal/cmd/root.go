package cmd

import (
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "health-report",
		Short: "Health report - scheduled fitness report generator",
		Long:  "Builds a PDF health report from sleep and activity data with charts and LLM-written analysis",
	}

	rootCmd.AddCommand(NewRunCmd())
	rootCmd.AddCommand(NewStartCmd())
	rootCmd.AddCommand(NewPreviewCmd())
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewDaemonCmd())

	return rootCmd
}
