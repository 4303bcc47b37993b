package main

import (
	"os"

	"github.com/aretw0/summarize/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <trial.yaml>",
	Short: "Run a trial in the terminal",
	Long:  `Presents the questions of a trial file one at a time and prints the result as JSON.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		jsonMode, _ := cmd.Flags().GetBool("json")
		plain, _ := cmd.Flags().GetBool("plain")

		return cli.RunTrial(cmd.Context(), cfg, cli.RunOptions{
			TrialPath: args[0],
			JSON:      jsonMode,
			Plain:     plain,
			In:        os.Stdin,
			Out:       os.Stdout,
			Err:       os.Stderr,
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	runCmd.Flags().Bool("plain", false, "Do not render Markdown")
}
