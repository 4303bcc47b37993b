package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/summarize/pkg/domain"
	"github.com/aretw0/summarize/pkg/ports"
)

var errNoScorer = errors.New("no scorer configured")

// Controller owns the progression state of one trial.
// All methods are safe for concurrent use.
type Controller struct {
	mu    sync.Mutex
	state *domain.TrialState

	scorer    ports.Scorer
	prompt    domain.ScoringPrompt
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	now       func() time.Time
	observers []domain.StateObserver
}

// ID returns the trial ID.
func (c *Controller) ID() string {
	return c.state.TrialID
}

// Snapshot returns a deep copy of the current state.
func (c *Controller) Snapshot() *domain.TrialState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Snapshot()
}

// Observe registers an observer for subsequent changes.
func (c *Controller) Observe(o domain.StateObserver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, o)
}

// Submit runs the validate, record, score and advance sequence for a display position.
// A rejected response returns the updated snapshot together with a *domain.ValidationError.
// The scoring call is detached from ctx cancellation and its failure never blocks advancement.
func (c *Controller) Submit(ctx context.Context, position int, text string) (*domain.TrialState, error) {
	c.mu.Lock()

	q, err := c.submittable(position)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}

	trimmed, err := ValidateResponse(position, text)
	if err != nil {
		c.mutate(func(s *domain.TrialState) {
			q := &s.Questions[position]
			q.Draft = text
			q.Message = domain.MessageRejected
			q.MessageKind = domain.MessageError
		})
		snap := c.state.Snapshot()
		event := c.questionEvent(domain.EventResponseRejected, q)
		c.mu.Unlock()

		c.logger.Debug("Response rejected", "position", position, "error", err)
		if c.hooks.OnResponseRejected != nil {
			c.hooks.OnResponseRejected(ctx, event)
		}
		return snap, err
	}

	// Record before scoring. The record is never rolled back.
	c.mutate(func(s *domain.TrialState) {
		q := &s.Questions[position]
		s.Responses = append(s.Responses, domain.ResponseRecord{Name: q.Spec.Name, Response: trimmed})
		q.Draft = trimmed
		q.Status = domain.StatusScoring
		q.Message = domain.MessageRecorded
		q.MessageKind = domain.MessageSuccess
	})
	recorded := c.questionEvent(domain.EventResponseRecorded, q)
	req := c.scoreRequest(trimmed)
	c.mu.Unlock()

	if c.hooks.OnResponseRecorded != nil {
		c.hooks.OnResponseRecorded(ctx, recorded)
	}

	started := c.now()
	payload, scoreErr := c.score(context.WithoutCancel(ctx), req)
	elapsed := c.now().Sub(started)
	if scoreErr != nil {
		c.logger.Warn("Scoring request failed", "position", position, "error", scoreErr)
	}

	c.mu.Lock()
	var next *domain.QuestionEvent
	c.mutate(func(s *domain.TrialState) {
		q := &s.Questions[position]
		q.Status = domain.StatusAnswered
		q.Active = false
		if scoreErr != nil {
			q.ScoreError = domain.MessageScoreFail
		} else {
			q.Score = payload
		}
		next = c.advance(s, position)
	})
	snap := c.state.Snapshot()
	scored := &domain.ScoreEvent{
		QuestionEvent: *c.questionEvent(domain.EventScoreReturn, q),
		Duration:      elapsed,
		IsError:       scoreErr != nil,
	}
	c.mu.Unlock()

	if c.hooks.OnScoreReturn != nil {
		c.hooks.OnScoreReturn(ctx, scored)
	}
	if next != nil && c.hooks.OnQuestionEnabled != nil {
		c.hooks.OnQuestionEnabled(ctx, next)
	}
	return snap, nil
}

// submittable checks that position may receive a response. Caller holds c.mu.
func (c *Controller) submittable(position int) (domain.QuestionState, error) {
	s := c.state
	if s.Finished {
		return domain.QuestionState{}, domain.ErrTrialFinished
	}
	if position < 0 || position >= len(s.Questions) {
		return domain.QuestionState{}, fmt.Errorf("position %d of %d: %w", position, len(s.Questions), domain.ErrUnknownPosition)
	}
	q := s.Questions[position]
	switch {
	case q.Status.Recorded():
		return q, fmt.Errorf("position %d: %w", position, domain.ErrAlreadyAnswered)
	case q.Status != domain.StatusEnabled:
		return q, fmt.Errorf("position %d: %w", position, domain.ErrNotEnabled)
	}
	return q, nil
}

// advance moves enablement past position, by display order.
// It returns the event for the newly enabled question, or nil when the finish control was enabled.
func (c *Controller) advance(s *domain.TrialState, position int) *domain.QuestionEvent {
	nextPos := position + 1
	if nextPos >= len(s.Questions) {
		s.Current = len(s.Questions)
		s.FinishEnabled = s.AllAnswered()
		return nil
	}

	q := &s.Questions[nextPos]
	q.Status = domain.StatusEnabled
	q.Active = true
	q.Obfuscated = false
	s.Current = nextPos
	return c.questionEvent(domain.EventQuestionEnabled, *q)
}

// finish marks the trial finished and builds its result. Only the first call succeeds.
func (c *Controller) finish(at time.Time) (domain.TrialResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Finished {
		return domain.TrialResult{}, domain.ErrTrialFinished
	}
	if !c.state.FinishEnabled {
		return domain.TrialResult{}, domain.ErrFinishLocked
	}

	var result domain.TrialResult
	c.mutate(func(s *domain.TrialState) {
		s.Finished = true
		s.FinishEnabled = false
		result = domain.TrialResult{
			TrialID:  s.TrialID,
			RT:       max(at.Sub(s.StartedAt).Milliseconds(), 0),
			Response: append([]domain.ResponseRecord{}, s.Responses...),
		}
	})
	return result, nil
}

// mutate applies fn to the live state and notifies observers. Caller holds c.mu.
func (c *Controller) mutate(fn func(s *domain.TrialState)) {
	if len(c.observers) == 0 {
		fn(c.state)
		return
	}
	prev := c.state.Snapshot()
	fn(c.state)
	next := c.state.Snapshot()
	for _, o := range c.observers {
		o(prev, next)
	}
}

func (c *Controller) scoreRequest(response string) ports.ScoreRequest {
	prompt := c.prompt
	if p := c.state.Config.Scoring; p != nil && !p.IsZero() {
		prompt = *p
	}
	return ports.ScoreRequest{
		Context:         prompt.Context,
		Question:        prompt.Question,
		StudentResponse: response,
	}
}

func (c *Controller) score(ctx context.Context, req ports.ScoreRequest) ([]byte, error) {
	if c.scorer == nil {
		return nil, errNoScorer
	}
	return c.scorer.Score(ctx, req)
}

func (c *Controller) questionEvent(t domain.EventType, q domain.QuestionState) *domain.QuestionEvent {
	return &domain.QuestionEvent{
		EventBase: domain.EventBase{
			Timestamp: c.now(),
			Type:      t,
			TrialID:   c.state.TrialID,
		},
		Position: q.Position,
		Index:    q.Index,
		Name:     q.Spec.Name,
	}
}
