package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/summarize"
	"github.com/aretw0/summarize/internal/presentation/graph"
	"github.com/aretw0/summarize/internal/presentation/tui"
	"github.com/aretw0/summarize/pkg/markup"
	"github.com/aretw0/summarize/pkg/runner"
	"github.com/aretw0/summarize/pkg/schema"
)

// Validate loads a trial file and reports every problem at once.
func Validate(path string) error {
	_, err := schema.LoadTrialConfig(path)
	return err
}

// Preview prints the trial as Markdown (rendered on a terminal) or as a Mermaid flowchart.
// Randomized trials are shown in one sampled order.
func Preview(ctx context.Context, path string, mermaid bool, w io.Writer) error {
	trial, err := schema.LoadTrialConfig(path)
	if err != nil {
		return err
	}
	state, err := summarize.New().Start(ctx, trial)
	if err != nil {
		return err
	}

	if mermaid {
		_, err := io.WriteString(w, graph.GenerateMermaid(state))
		return err
	}

	var b strings.Builder
	if state.Config.Preamble != "" {
		b.WriteString(markup.Markdown(state.Config.Preamble) + "\n\n---\n\n")
	}
	for _, q := range state.Questions {
		fmt.Fprintf(&b, "### %d. %s\n\n%s\n\n", q.Position+1, q.Spec.Name, markup.Markdown(q.Spec.Prompt))
		if q.Spec.Placeholder != "" {
			fmt.Fprintf(&b, "> _%s_\n\n", q.Spec.Placeholder)
		}
	}
	fmt.Fprintf(&b, "**[ %s ]**\n", state.Config.ButtonLabel)

	out := b.String()
	if runner.IsTerminal(w) {
		render, err := tui.NewRenderer(0)
		if err != nil {
			return err
		}
		if out, err = render(out); err != nil {
			return err
		}
	}
	_, err = io.WriteString(w, out)
	return err
}
