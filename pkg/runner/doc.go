/*
Package runner presents summarize trials outside the browser.

It drives an Engine question by question, reading answers through a pluggable
IOHandler and printing the status and result regions after every submission.

# Key Components

  - Runner: renders a trial, collects answers in display order and finishes it.
  - IOHandler: decouples how actions are shown and answers are read.
  - TextHandler: interactive terminal usage, optionally rendering Markdown with a ContentRenderer.
  - JSONHandler: JSON-lines for headless hosts.

# Usage

	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	result, err := r.Run(ctx, engine, cfg)
	if err != nil {
		log.Fatal(err)
	}
*/
package runner
