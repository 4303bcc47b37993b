package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/summarize/internal/logging"
	"github.com/aretw0/summarize/internal/runtime"
	"github.com/aretw0/summarize/pkg/domain"
	"github.com/aretw0/summarize/pkg/ports"
	"github.com/aretw0/summarize/pkg/session"
	"github.com/google/uuid"
)

// Engine is the high-level entry point for the summarize library.
// It renders trials, keeps them live until they finish and routes every
// interaction to the trial's controller.
type Engine struct {
	renderer *runtime.Renderer
	trials   *session.Manager

	scorer   ports.Scorer
	shuffler ports.Shuffler
	host     ports.HostRunner
	prompt   domain.ScoringPrompt
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	idleTTL  time.Duration
	newID    func() string
	onEvict  func(trialID string)
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithScorer sets the client of the scoring service.
func WithScorer(s ports.Scorer) Option {
	return func(e *Engine) {
		e.scorer = s
	}
}

// WithShuffler replaces the default question shuffler.
func WithShuffler(s ports.Shuffler) Option {
	return func(e *Engine) {
		e.shuffler = s
	}
}

// WithHost sets the host runner that receives finished trials.
// Several hosts can be combined with ports.MultiHost.
func WithHost(h ports.HostRunner) Option {
	return func(e *Engine) {
		e.host = h
	}
}

// WithScoringPrompt sets the context and question sent with every response,
// unless a trial overrides them.
func WithScoringPrompt(p domain.ScoringPrompt) Option {
	return func(e *Engine) {
		e.prompt = p
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithIdleTTL sets how long an untouched trial stays live. Zero disables eviction.
func WithIdleTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.idleTTL = ttl
	}
}

// WithIDGenerator replaces the UUID trial ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		e.newID = fn
	}
}

// WithEvictHook registers a callback run when a trial leaves the registry.
func WithEvictHook(fn func(trialID string)) Option {
	return func(e *Engine) {
		e.onEvict = fn
	}
}

// New initializes a new Engine.
// Without a scorer, every response is still recorded and the scoring step fails softly.
func New(opts ...Option) *Engine {
	eng := &Engine{
		idleTTL: session.DefaultIdleTTL,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	rOpts := []runtime.Option{
		runtime.WithScorer(eng.scorer),
		runtime.WithHost(eng.host),
		runtime.WithScoringPrompt(eng.prompt),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
	}
	if eng.shuffler != nil {
		rOpts = append(rOpts, runtime.WithShuffler(eng.shuffler))
	}
	eng.renderer = runtime.NewRenderer(rOpts...)

	sOpts := []session.Option{
		session.WithIdleTTL(eng.idleTTL),
		session.WithLogger(eng.logger),
	}
	if eng.onEvict != nil {
		sOpts = append(sOpts, session.WithEvictHook(eng.onEvict))
	}
	eng.trials = session.NewManager(sOpts...)

	return eng
}

// Start renders a new trial and returns its initial state.
func (e *Engine) Start(ctx context.Context, cfg domain.TrialConfig) (*domain.TrialState, error) {
	ctrl, err := e.renderer.Render(ctx, e.newID(), cfg)
	if err != nil {
		return nil, err
	}
	if err := e.trials.Add(ctrl); err != nil {
		return nil, err
	}
	return ctrl.Snapshot(), nil
}

// State returns a snapshot of a live trial.
func (e *Engine) State(ctx context.Context, trialID string) (*domain.TrialState, error) {
	var state *domain.TrialState
	err := e.trials.WithTrial(ctx, trialID, func(ctx context.Context, c *runtime.Controller) error {
		state = c.Snapshot()
		return nil
	})
	return state, err
}

// Submit answers the question at a display position.
// A too-short answer returns the updated state together with a *domain.ValidationError.
func (e *Engine) Submit(ctx context.Context, trialID string, position int, text string) (*domain.TrialState, error) {
	var state *domain.TrialState
	err := e.trials.WithTrial(ctx, trialID, func(ctx context.Context, c *runtime.Controller) error {
		var err error
		state, err = c.Submit(ctx, position, text)
		return err
	})
	return state, err
}

// Finish completes the trial, reports it to the host runner and removes it.
// The trial is removed even when the host runner fails, since a result is reported only once.
func (e *Engine) Finish(ctx context.Context, trialID string) (domain.TrialResult, error) {
	var result domain.TrialResult
	err := e.trials.WithTrial(ctx, trialID, func(ctx context.Context, c *runtime.Controller) error {
		var err error
		result, err = e.renderer.Complete(ctx, c)
		return err
	})
	if err == nil || result.TrialID != "" {
		e.trials.Delete(trialID)
	}
	return result, err
}

// Observe registers an observer for subsequent changes of a live trial.
func (e *Engine) Observe(trialID string, o domain.StateObserver) error {
	c, err := e.trials.Get(trialID)
	if err != nil {
		return err
	}
	c.Observe(o)
	return nil
}

// Trials returns the IDs of all live trials.
func (e *Engine) Trials() []string {
	return e.trials.List()
}

// Run evicts idle trials until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Debug("Trial sweeper started", "idle_ttl", e.idleTTL)
	if err := e.trials.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("trial sweeper: %w", err)
	}
	return nil
}
