package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/summarize/internal/logging"
	"github.com/aretw0/summarize/pkg/domain"
	"github.com/aretw0/summarize/pkg/ports"
)

// Renderer builds trial controllers and completes them.
type Renderer struct {
	scorer   ports.Scorer
	shuffler ports.Shuffler
	host     ports.HostRunner
	prompt   domain.ScoringPrompt
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithScorer sets the scoring service client.
func WithScorer(s ports.Scorer) Option {
	return func(r *Renderer) {
		r.scorer = s
	}
}

// WithShuffler replaces the default math/rand shuffler.
func WithShuffler(s ports.Shuffler) Option {
	return func(r *Renderer) {
		r.shuffler = s
	}
}

// WithHost sets the host runner that receives finished trials.
func WithHost(h ports.HostRunner) Option {
	return func(r *Renderer) {
		r.host = h
	}
}

// WithScoringPrompt sets the process-wide context and question sent with each response.
func WithScoringPrompt(p domain.ScoringPrompt) Option {
	return func(r *Renderer) {
		r.prompt = p
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Renderer) {
		r.hooks = r.hooks.Merge(hooks)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		r.now = now
	}
}

// NewRenderer creates a renderer. Without a scorer every scoring call fails softly.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		shuffler: MathShuffler{},
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render applies defaults, fixes the question order and returns the trial's controller
// with exactly the first position enabled. The start instant is captured here, before
// any submit can reach the controller.
func (r *Renderer) Render(ctx context.Context, trialID string, cfg domain.TrialConfig) (*Controller, error) {
	if len(cfg.Questions) == 0 {
		return nil, fmt.Errorf("trial %s: no questions", trialID)
	}
	cfg = cfg.WithDefaults()

	order, err := QuestionOrder(len(cfg.Questions), cfg.RandomizeQuestionOrder, r.shuffler)
	if err != nil {
		return nil, fmt.Errorf("trial %s: %w", trialID, err)
	}

	questions := make([]domain.QuestionState, len(order))
	for pos, idx := range order {
		questions[pos] = domain.QuestionState{
			Position:    pos,
			Index:       idx,
			Spec:        cfg.Questions[idx],
			Status:      domain.StatusLocked,
			Obfuscated:  true,
			Message:     domain.MessagePrompt,
			MessageKind: domain.MessageInfo,
		}
	}
	first := &questions[0]
	first.Status = domain.StatusEnabled
	first.Active = true
	first.Obfuscated = false

	c := &Controller{
		state: &domain.TrialState{
			TrialID:   trialID,
			Config:    cfg,
			Order:     order,
			Questions: questions,
			Responses: []domain.ResponseRecord{},
			StartedAt: r.now(),
		},
		scorer: r.scorer,
		prompt: r.prompt,
		hooks:  r.hooks,
		logger: r.logger.With("trial_id", trialID),
		now:    r.now,
	}

	r.logger.Info("Trial rendered", "trial_id", trialID, "questions", len(order), "order", order)
	if r.hooks.OnTrialStart != nil {
		r.hooks.OnTrialStart(ctx, &domain.TrialEvent{
			EventBase: domain.EventBase{Timestamp: c.state.StartedAt, Type: domain.EventTrialStart, TrialID: trialID},
			Questions: len(order),
		})
	}
	if r.hooks.OnQuestionEnabled != nil {
		r.hooks.OnQuestionEnabled(ctx, c.questionEvent(domain.EventQuestionEnabled, *first))
	}
	return c, nil
}

// Complete finishes the trial and hands its result to the host runner exactly once.
// It fails with domain.ErrFinishLocked until every position is answered, and with
// domain.ErrTrialFinished on any later call.
// A host runner error is returned alongside the result; the trial stays finished.
// Delivery ignores cancellation of ctx, since the result cannot be produced twice.
func (r *Renderer) Complete(ctx context.Context, c *Controller) (domain.TrialResult, error) {
	result, err := c.finish(r.now())
	if err != nil {
		return domain.TrialResult{}, fmt.Errorf("trial %s: %w", c.ID(), err)
	}

	r.logger.Info("Trial finished", "trial_id", result.TrialID, "rt", result.RT, "responses", len(result.Response))
	if r.hooks.OnTrialFinish != nil {
		r.hooks.OnTrialFinish(ctx, &domain.TrialEvent{
			EventBase: domain.EventBase{Timestamp: r.now(), Type: domain.EventTrialFinish, TrialID: result.TrialID},
			Questions: len(result.Response),
			RT:        result.RT,
		})
	}

	if r.host != nil {
		if err := r.host.FinishTrial(context.WithoutCancel(ctx), result); err != nil {
			r.logger.Error("Host runner rejected trial result", "trial_id", result.TrialID, "error", err)
			return result, fmt.Errorf("finish trial %s: %w", result.TrialID, err)
		}
	}
	return result, nil
}
