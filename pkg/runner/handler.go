package runner

import (
	"context"

	"github.com/aretw0/summarize/pkg/domain"
)

// IOHandler defines the strategy for interacting with the participant.
// This allows switching between Text (terminal) and JSON (structured) modes.
type IOHandler interface {
	// Output presents the actions to the participant.
	// Returns true if any action asks for input.
	Output(ctx context.Context, actions []domain.ActionRequest) (bool, error)

	// Input reads a response from the participant.
	Input(ctx context.Context) (string, error)
}

// ContentRenderer transforms Markdown before it is written, e.g. to ANSI.
type ContentRenderer func(string) (string, error)

func needsInput(actions []domain.ActionRequest) bool {
	for _, act := range actions {
		if act.Type == domain.ActionRequestInput {
			return true
		}
	}
	return false
}
