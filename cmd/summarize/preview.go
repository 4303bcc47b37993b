package main

import (
	"github.com/aretw0/summarize/internal/cli"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview <trial.yaml>",
	Short: "Show a trial without running it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mermaid, _ := cmd.Flags().GetBool("mermaid")
		return cli.Preview(cmd.Context(), args[0], mermaid, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().Bool("mermaid", false, "Print a Mermaid flowchart instead of the questions")
}
