package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/summarize"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of summarize",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "summarize version %s\n", strings.TrimSpace(summarize.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
