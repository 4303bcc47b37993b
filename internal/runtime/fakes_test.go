package runtime_test

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/summarize/pkg/domain"
	"github.com/aretw0/summarize/pkg/ports"
)

const validAnswer = "This is a sufficiently long answer."

// fakeScorer records requests and returns a fixed payload or error.
// When gate is set, each call blocks until gate is closed.
type fakeScorer struct {
	calls   atomic.Int32
	mu      sync.Mutex
	reqs    []ports.ScoreRequest
	ctxErrs []error
	payload json.RawMessage
	err     error
	gate    chan struct{}
	entered chan struct{}
}

func newFakeScorer() *fakeScorer {
	return &fakeScorer{payload: json.RawMessage(`{"Wording":"Good","Details":"Fair"}`)}
}

func (f *fakeScorer) Score(ctx context.Context, req ports.ScoreRequest) (json.RawMessage, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()

	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}

	f.mu.Lock()
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

func (f *fakeScorer) requests() []ports.ScoreRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.reqs)
}

var errScoringDown = errors.New("connection refused")

// recordingHost counts FinishTrial calls. Like a network host, it fails
// when the delivery context is already done.
type recordingHost struct {
	mu      sync.Mutex
	results []domain.TrialResult
	err     error
}

func (h *recordingHost) FinishTrial(ctx context.Context, r domain.TrialResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.results = append(h.results, r)
	return h.err
}

func (h *recordingHost) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.results)
}

// stepClock advances by step on every call.
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newStepClock(step time.Duration) *stepClock {
	return &stepClock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC), step: step}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

func reverseShuffler() ports.Shuffler {
	return ports.ShufflerFunc(func(in []int) []int {
		out := slices.Clone(in)
		slices.Reverse(out)
		return out
	})
}

func questions(names ...string) domain.TrialConfig {
	cfg := domain.TrialConfig{}
	for _, n := range names {
		cfg.Questions = append(cfg.Questions, domain.QuestionSpec{Prompt: "Summarize **" + n + "**", Name: n})
	}
	return cfg
}
