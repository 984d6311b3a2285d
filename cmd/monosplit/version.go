package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"monosplit/internal/overlap"
	"monosplit/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, version.Full())
		fmt.Fprintf(out, "Java source parser: %v\n", overlap.ParserAvailable())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
