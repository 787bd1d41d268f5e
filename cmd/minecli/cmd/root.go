// Package cmd provides the command-line interface for inspecting mining
// pools offline.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd returns the base command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use: "minecli",
		Short: "minecli can preview halving schedules and decode mining " +
			"state entities.",
		Long: `minecli can preview halving schedules and decode mining ` +
			`state entities. It works offline and never connects to a node.`,
		SilenceUsage: true,
	}
	root.AddCommand(newScheduleCmd(), newDecodeCmd())
	return root
}

// Execute runs the root command and exits with a non zero code on failure.
func Execute() {
	err := NewRootCmd().Execute()
	if err != nil {
		os.Exit(1)
	}
}
