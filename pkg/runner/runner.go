package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/summarize/internal/logging"
	"github.com/aretw0/summarize/pkg/domain"
	"github.com/aretw0/summarize/pkg/markup"
)

// Engine is the part of the summarize engine the runner drives.
type Engine interface {
	Start(ctx context.Context, cfg domain.TrialConfig) (*domain.TrialState, error)
	Submit(ctx context.Context, trialID string, position int, text string) (*domain.TrialState, error)
	Finish(ctx context.Context, trialID string) (domain.TrialResult, error)
}

// Runner presents one trial at a time through an IOHandler.
type Runner struct {
	// Handler is the strategy for IO. Defaults to a TextHandler on stdin/stdout.
	Handler IOHandler

	// Logger is used for internal debug logging.
	Logger *slog.Logger

	// MaxInputSize bounds a single response, in bytes.
	MaxInputSize int

	signals *SignalManager
}

// NewRunner creates a new Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger:       logging.NewNop(),
		MaxInputSize: MaxInputSize(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(nil, nil)
	}
	return r
}

// Run renders the trial, collects an answer for every question in display order,
// waits for the finish confirmation and returns what the host runner received.
func (r *Runner) Run(ctx context.Context, engine Engine, cfg domain.TrialConfig) (domain.TrialResult, error) {
	state, err := engine.Start(ctx, cfg)
	if err != nil {
		return domain.TrialResult{}, err
	}
	r.Logger.Debug("Trial started", "trial_id", state.TrialID, "order", state.Order)

	if state.Config.Preamble != "" {
		if err := r.output(ctx, domain.ActionRequest{Type: domain.ActionRenderContent, Payload: markup.Markdown(state.Config.Preamble)}); err != nil {
			return domain.TrialResult{}, err
		}
	}

	shown := -1
	for !state.FinishEnabled {
		q := state.Questions[state.Current]
		actions := []domain.ActionRequest{InputAction(q)}
		if q.Position != shown {
			actions = append(QuestionActions(q), actions...)
			shown = q.Position
		}
		if err := r.output(ctx, actions...); err != nil {
			return domain.TrialResult{}, err
		}

		text, err := r.input(ctx)
		if err != nil {
			return domain.TrialResult{}, fmt.Errorf("read response: %w", err)
		}
		clean, err := SanitizeInputLimit(text, r.MaxInputSize)
		if err != nil {
			msg := domain.StatusMessage{Position: q.Position, Text: err.Error(), Kind: domain.MessageError}
			if err := r.output(ctx, domain.ActionRequest{Type: domain.ActionShowStatus, Payload: msg}); err != nil {
				return domain.TrialResult{}, err
			}
			continue
		}

		next, err := engine.Submit(ctx, state.TrialID, q.Position, clean)
		var vErr *domain.ValidationError
		switch {
		case errors.As(err, &vErr):
			if err := r.output(ctx, StatusAction(next.Questions[q.Position])); err != nil {
				return domain.TrialResult{}, err
			}
			continue
		case err != nil:
			return domain.TrialResult{}, err
		}

		answered := next.Questions[q.Position]
		if err := r.output(ctx, StatusAction(answered), ResultAction(answered)); err != nil {
			return domain.TrialResult{}, err
		}
		state = next
	}

	if err := r.output(ctx, FinishAction(state)); err != nil {
		return domain.TrialResult{}, err
	}
	// A closed input still confirms, so piped answers can end a trial.
	if _, err := r.input(ctx); err != nil && !errors.Is(err, io.EOF) {
		return domain.TrialResult{}, fmt.Errorf("read confirmation: %w", err)
	}

	result, err := engine.Finish(ctx, state.TrialID)
	if err != nil {
		return result, err
	}
	r.Logger.Debug("Trial finished", "trial_id", result.TrialID, "rt", result.RT)
	return result, nil
}

func (r *Runner) output(ctx context.Context, actions ...domain.ActionRequest) error {
	if _, err := r.Handler.Output(ctx, actions); err != nil {
		return fmt.Errorf("output error: %w", err)
	}
	return nil
}

func (r *Runner) input(ctx context.Context) (string, error) {
	text, err := r.Handler.Input(ctx)
	if err != nil && r.signals != nil {
		if sErr := r.signals.CheckRace(); sErr != nil {
			return "", sErr
		}
	}
	return text, err
}
