package app

import (
	"github.com/spf13/cobra"

	"github.com/xab-mack/smartanalyzer/internal/cli"
)

func BuildRoot() *cobra.Command {
	root := &cobra.Command{Use: "smartanalyzer", Short: "Pass-based static analyzer for smart contracts"}
	cli.AddCommands(root)
	return root
}
