package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/summarize/internal/config"
	"github.com/aretw0/summarize/internal/presentation/tui"
	"github.com/aretw0/summarize/pkg/adapters/memory"
	"github.com/aretw0/summarize/pkg/runner"
	"github.com/aretw0/summarize/pkg/schema"
)

// RunOptions configures a terminal trial.
type RunOptions struct {
	TrialPath string
	JSON      bool
	// Plain disables Markdown rendering even on a terminal.
	Plain bool
	In    io.Reader
	Out   io.Writer
	Err   io.Writer
}

// RunTrial presents the trial file in the terminal and prints the result as JSON.
func RunTrial(ctx context.Context, cfg config.Config, opts RunOptions) error {
	trial, err := schema.LoadTrialConfig(opts.TrialPath)
	if err != nil {
		return err
	}
	logger, err := createLogger(opts.Err, cfg)
	if err != nil {
		return err
	}

	rec := memory.NewRecorder()
	res, err := createEngine(ctx, cfg, logger, rec)
	if err != nil {
		return err
	}
	defer res.Close()

	signals := runner.NewSignalManager(ctx)
	defer signals.Stop()

	var handler runner.IOHandler
	if opts.JSON {
		handler = runner.NewJSONHandler(opts.In, opts.Out)
	} else {
		var textOpts []runner.TextHandlerOption
		if !opts.Plain && runner.IsTerminal(opts.Out) {
			render, err := tui.NewRenderer(0)
			if err != nil {
				return err
			}
			textOpts = append(textOpts, runner.WithTextHandlerRenderer(render))
		}
		handler = runner.NewTextHandler(opts.In, opts.Out, textOpts...)
	}

	r := runner.NewRunner(
		runner.WithInputHandler(handler),
		runner.WithLogger(logger),
		runner.WithMaxInputSize(cfg.MaxInputSize),
		runner.WithSignalManager(signals),
	)

	result, err := r.Run(signals.Context(), res.Engine, trial)
	if err != nil {
		return err
	}
	if opts.JSON {
		return json.NewEncoder(opts.Out).Encode(result)
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(opts.Out, string(data))
	return nil
}
