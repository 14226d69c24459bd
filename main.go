package main

import (
	"os"

	"github.com/shapecheck/shapecheck/cmd"
	"github.com/spf13/cobra"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "shapecheck [subcommand]",
	Short:        "shapecheck\n structural type-compatibility checks over declared shapes",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(cmd.CheckCmd)
	rootCmd.AddCommand(cmd.SyncCmd)
}
