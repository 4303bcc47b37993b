package runtime_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/summarize/internal/runtime"
	"github.com/aretw0/summarize/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Render(t *testing.T) {
	ctx := context.Background()

	t.Run("Initial State", func(t *testing.T) {
		r := runtime.NewRenderer()
		c, err := r.Render(ctx, "t1", questions("q1", "q2", "q3"))
		require.NoError(t, err)

		s := c.Snapshot()
		assert.Equal(t, "t1", s.TrialID)
		assert.Equal(t, []int{0, 1, 2}, s.Order)
		assert.Equal(t, 0, s.Current)
		assert.False(t, s.FinishEnabled)
		assert.Empty(t, s.Responses)

		require.Len(t, s.Questions, 3)
		assert.Equal(t, domain.StatusEnabled, s.Questions[0].Status)
		assert.True(t, s.Questions[0].Active)
		assert.False(t, s.Questions[0].Obfuscated)
		for _, q := range s.Questions[1:] {
			assert.Equal(t, domain.StatusLocked, q.Status)
			assert.True(t, q.Obfuscated)
			assert.False(t, q.Active)
		}
		for _, q := range s.Questions {
			assert.Equal(t, domain.MessagePrompt, q.Message)
		}
	})

	t.Run("Applies Defaults", func(t *testing.T) {
		r := runtime.NewRenderer()
		cfg := questions("q1")
		cfg.Questions[0].Rows = 5
		c, err := r.Render(ctx, "t2", cfg)
		require.NoError(t, err)

		s := c.Snapshot()
		assert.Equal(t, domain.DefaultButtonLabel, s.Config.ButtonLabel)
		assert.Equal(t, 5, s.Questions[0].Spec.Rows)
		assert.Equal(t, domain.DefaultColumns, s.Questions[0].Spec.Columns)
		assert.Equal(t, 0, cfg.Questions[0].Columns, "caller config must not be mutated")
	})

	t.Run("Shuffled Order Keeps Original Index", func(t *testing.T) {
		r := runtime.NewRenderer(runtime.WithShuffler(reverseShuffler()))
		cfg := questions("a", "b", "c")
		cfg.RandomizeQuestionOrder = true
		c, err := r.Render(ctx, "t3", cfg)
		require.NoError(t, err)

		s := c.Snapshot()
		assert.Equal(t, []int{2, 1, 0}, s.Order)
		assert.Equal(t, 2, s.Questions[0].Index)
		assert.Equal(t, "c", s.Questions[0].Spec.Name)
		assert.Equal(t, domain.StatusEnabled, s.Questions[0].Status)
	})

	t.Run("No Questions", func(t *testing.T) {
		_, err := runtime.NewRenderer().Render(ctx, "t4", domain.TrialConfig{})
		assert.Error(t, err)
	})

	t.Run("Captures Start Instant", func(t *testing.T) {
		clock := newStepClock(time.Second)
		r := runtime.NewRenderer(runtime.WithClock(clock.Now))
		c, err := r.Render(ctx, "t5", questions("q1"))
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC), c.Snapshot().StartedAt)
	})
}

func TestRenderer_Complete(t *testing.T) {
	ctx := context.Background()

	t.Run("End To End Two Questions", func(t *testing.T) {
		host := &recordingHost{}
		scorer := newFakeScorer()
		r := runtime.NewRenderer(runtime.WithScorer(scorer), runtime.WithHost(host))
		c, err := r.Render(ctx, "e2e", questions("q1", "q2"))
		require.NoError(t, err)

		_, err = c.Submit(ctx, 0, validAnswer)
		require.NoError(t, err)
		s, err := c.Submit(ctx, 1, validAnswer)
		require.NoError(t, err)
		assert.True(t, s.FinishEnabled)

		result, err := r.Complete(ctx, c)
		require.NoError(t, err)
		assert.Equal(t, "e2e", result.TrialID)
		assert.GreaterOrEqual(t, result.RT, int64(0))
		assert.Equal(t, []domain.ResponseRecord{
			{Name: "q1", Response: validAnswer},
			{Name: "q2", Response: validAnswer},
		}, result.Response)
		assert.Equal(t, 1, host.count())
		assert.Equal(t, int32(2), scorer.calls.Load())
	})

	t.Run("Delivers After Caller Cancelled", func(t *testing.T) {
		host := &recordingHost{}
		r := runtime.NewRenderer(runtime.WithHost(host), runtime.WithScorer(newFakeScorer()))
		c, err := r.Render(ctx, "dropped", questions("q1"))
		require.NoError(t, err)
		_, err = c.Submit(ctx, 0, validAnswer)
		require.NoError(t, err)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		result, err := r.Complete(cancelled, c)
		require.NoError(t, err)
		assert.Equal(t, "dropped", result.TrialID)
		assert.Equal(t, 1, host.count())
	})

	t.Run("Elapsed Time From Render", func(t *testing.T) {
		host := &recordingHost{}
		clock := newStepClock(250 * time.Millisecond)
		r := runtime.NewRenderer(runtime.WithHost(host), runtime.WithClock(clock.Now), runtime.WithScorer(newFakeScorer()))
		c, err := r.Render(ctx, "rt", questions("q1"))
		require.NoError(t, err)
		_, err = c.Submit(ctx, 0, validAnswer)
		require.NoError(t, err)

		result, err := r.Complete(ctx, c)
		require.NoError(t, err)
		assert.Positive(t, result.RT)
		assert.Equal(t, int64(0), result.RT%250)
	})

	t.Run("Finish Locked Until All Answered", func(t *testing.T) {
		host := &recordingHost{}
		r := runtime.NewRenderer(runtime.WithHost(host), runtime.WithScorer(newFakeScorer()))
		c, err := r.Render(ctx, "locked", questions("q1", "q2"))
		require.NoError(t, err)

		_, err = r.Complete(ctx, c)
		assert.ErrorIs(t, err, domain.ErrFinishLocked)

		_, err = c.Submit(ctx, 0, validAnswer)
		require.NoError(t, err)
		_, err = r.Complete(ctx, c)
		assert.ErrorIs(t, err, domain.ErrFinishLocked)
		assert.Zero(t, host.count())
	})

	t.Run("Exactly Once", func(t *testing.T) {
		host := &recordingHost{}
		r := runtime.NewRenderer(runtime.WithHost(host), runtime.WithScorer(newFakeScorer()))
		c, err := r.Render(ctx, "once", questions("q1"))
		require.NoError(t, err)
		_, err = c.Submit(ctx, 0, validAnswer)
		require.NoError(t, err)

		_, err = r.Complete(ctx, c)
		require.NoError(t, err)
		_, err = r.Complete(ctx, c)
		assert.ErrorIs(t, err, domain.ErrTrialFinished)
		assert.Equal(t, 1, host.count())

		_, err = c.Submit(ctx, 0, validAnswer)
		assert.ErrorIs(t, err, domain.ErrTrialFinished)

		s := c.Snapshot()
		assert.True(t, s.Finished)
		assert.False(t, s.FinishEnabled)
	})

	t.Run("Host Error Keeps Trial Finished", func(t *testing.T) {
		host := &recordingHost{err: errors.New("runner gone")}
		r := runtime.NewRenderer(runtime.WithHost(host), runtime.WithScorer(newFakeScorer()))
		c, err := r.Render(ctx, "host-err", questions("q1"))
		require.NoError(t, err)
		_, err = c.Submit(ctx, 0, validAnswer)
		require.NoError(t, err)

		result, err := r.Complete(ctx, c)
		assert.ErrorIs(t, err, host.err)
		assert.Len(t, result.Response, 1)
		assert.True(t, c.Snapshot().Finished)
	})
}

func TestRenderer_LifecycleHooks(t *testing.T) {
	ctx := context.Background()
	var events []domain.EventType
	hooks := domain.LifecycleHooks{
		OnTrialStart:       func(_ context.Context, e *domain.TrialEvent) { events = append(events, e.Type) },
		OnQuestionEnabled:  func(_ context.Context, e *domain.QuestionEvent) { events = append(events, e.Type) },
		OnResponseRejected: func(_ context.Context, e *domain.QuestionEvent) { events = append(events, e.Type) },
		OnResponseRecorded: func(_ context.Context, e *domain.QuestionEvent) { events = append(events, e.Type) },
		OnScoreReturn:      func(_ context.Context, e *domain.ScoreEvent) { events = append(events, e.Type) },
		OnTrialFinish:      func(_ context.Context, e *domain.TrialEvent) { events = append(events, e.Type) },
	}

	r := runtime.NewRenderer(runtime.WithScorer(newFakeScorer()), runtime.WithLifecycleHooks(hooks))
	c, err := r.Render(ctx, "hooks", questions("q1", "q2"))
	require.NoError(t, err)

	_, err = c.Submit(ctx, 0, "short")
	require.Error(t, err)
	_, err = c.Submit(ctx, 0, validAnswer)
	require.NoError(t, err)
	_, err = c.Submit(ctx, 1, validAnswer)
	require.NoError(t, err)
	_, err = r.Complete(ctx, c)
	require.NoError(t, err)

	assert.Equal(t, []domain.EventType{
		domain.EventTrialStart,
		domain.EventQuestionEnabled,
		domain.EventResponseRejected,
		domain.EventResponseRecorded,
		domain.EventScoreReturn,
		domain.EventQuestionEnabled,
		domain.EventResponseRecorded,
		domain.EventScoreReturn,
		domain.EventTrialFinish,
	}, events)
}
