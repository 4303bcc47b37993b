package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aretw0/summarize"
	"github.com/aretw0/summarize/internal/cli"
	"github.com/aretw0/summarize/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Serves trials as HTML forms and as a JSON API, with live updates over SSE.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.Addr, _ = cmd.Flags().GetString("addr")
		}
		if cmd.Flags().Changed("metrics-addr") {
			cfg.MetricsAddr, _ = cmd.Flags().GetString("metrics-addr")
		}
		if cmd.Flags().Changed("scoring-url") {
			cfg.ScoringURL, _ = cmd.Flags().GetString("scoring-url")
		}

		if cfg.Banner {
			tui.PrintBanner(os.Stderr, strings.TrimSpace(summarize.Version))
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return cli.Serve(ctx, cfg, os.Stderr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
	serveCmd.Flags().String("metrics-addr", "", "Separate address for /metrics (default: served on --addr)")
	serveCmd.Flags().String("scoring-url", "", "Base URL of the scoring service")
}
