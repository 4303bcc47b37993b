package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTrialStart       EventType = "trial_start"
	EventQuestionEnabled  EventType = "question_enabled"
	EventResponseRejected EventType = "response_rejected"
	EventResponseRecorded EventType = "response_recorded"
	EventScoreReturn      EventType = "score_return"
	EventTrialFinish      EventType = "trial_finish"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	TrialID   string    `json:"trial_id"`
}

// TrialEvent represents the start or the end of a trial.
type TrialEvent struct {
	EventBase
	Questions int   `json:"questions"`
	RT        int64 `json:"rt,omitempty"`
}

// QuestionEvent represents a transition of a single position.
type QuestionEvent struct {
	EventBase
	Position int    `json:"position"`
	Index    int    `json:"index"`
	Name     string `json:"name"`
}

// ScoreEvent represents the outcome of a scoring call.
type ScoreEvent struct {
	QuestionEvent
	Duration time.Duration `json:"duration"`
	IsError  bool          `json:"is_error,omitempty"`
}

// LifecycleHooks defines callbacks for trial observability.
// Hooks run synchronously on the goroutine that caused the transition and must not block.
type LifecycleHooks struct {
	OnTrialStart       func(context.Context, *TrialEvent)
	OnQuestionEnabled  func(context.Context, *QuestionEvent)
	OnResponseRejected func(context.Context, *QuestionEvent)
	OnResponseRecorded func(context.Context, *QuestionEvent)
	OnScoreReturn      func(context.Context, *ScoreEvent)
	OnTrialFinish      func(context.Context, *TrialEvent)
}

// Merge combines hooks so that each callback of h runs before the one of other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTrialStart:       chain(h.OnTrialStart, other.OnTrialStart),
		OnQuestionEnabled:  chain(h.OnQuestionEnabled, other.OnQuestionEnabled),
		OnResponseRejected: chain(h.OnResponseRejected, other.OnResponseRejected),
		OnResponseRecorded: chain(h.OnResponseRecorded, other.OnResponseRecorded),
		OnScoreReturn:      chain(h.OnScoreReturn, other.OnScoreReturn),
		OnTrialFinish:      chain(h.OnTrialFinish, other.OnTrialFinish),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
