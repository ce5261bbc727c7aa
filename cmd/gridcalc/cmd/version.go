package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// set at build time via -ldflags
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the gridcalc version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "gridcalc", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
