package memory

import (
	"context"
	"sync"

	"github.com/aretw0/summarize/pkg/domain"
)

// Recorder implements ports.HostRunner in memory.
// Safe for concurrent use.
type Recorder struct {
	data  map[string]domain.TrialResult
	order []string
	mu    sync.RWMutex
}

// NewRecorder creates a new in-memory recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		data: make(map[string]domain.TrialResult),
	}
}

// FinishTrial stores a copy of the result.
func (r *Recorder) FinishTrial(ctx context.Context, result domain.TrialResult) error {
	result.Response = append([]domain.ResponseRecord(nil), result.Response...)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[result.TrialID]; !ok {
		r.order = append(r.order, result.TrialID)
	}
	r.data[result.TrialID] = result
	return nil
}

// Result returns the stored result of a trial.
func (r *Recorder) Result(ctx context.Context, trialID string) (domain.TrialResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, ok := r.data[trialID]
	if !ok {
		return domain.TrialResult{}, domain.ErrTrialNotFound
	}
	// Copy on read so callers can't mutate the stored list.
	result.Response = append([]domain.ResponseRecord(nil), result.Response...)
	return result, nil
}

// Results returns every stored result in finish order.
func (r *Recorder) Results() []domain.TrialResult {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]domain.TrialResult, 0, len(r.order))
	for _, id := range r.order {
		result := r.data[id]
		result.Response = append([]domain.ResponseRecord(nil), result.Response...)
		results = append(results, result)
	}
	return results
}

// Len returns the number of finished trials.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}
