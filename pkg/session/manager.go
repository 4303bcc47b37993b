package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/summarize/internal/logging"
	"github.com/aretw0/summarize/internal/runtime"
	"github.com/aretw0/summarize/pkg/domain"
)

// DefaultIdleTTL is how long an untouched trial stays live.
const DefaultIdleTTL = 2 * time.Hour

// entry holds a live trial and the reference count of in-flight operations.
type entry struct {
	ctrl     *runtime.Controller
	refs     int
	lastSeen time.Time
}

// Manager is the registry of live trials.
// It uses Reference Counting so that trials with in-flight operations are never evicted.
// Eviction discards the trial; nothing is persisted.
type Manager struct {
	mu     sync.Mutex        // Global lock for the map
	trials map[string]*entry // Live trials by ID

	ttl     time.Duration
	now     func() time.Time
	onEvict func(trialID string)
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithIdleTTL sets how long a trial may stay untouched before it is evicted.
// A zero or negative TTL disables eviction.
func WithIdleTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.ttl = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithEvictHook registers a callback run after a trial is evicted or deleted.
func WithEvictHook(fn func(trialID string)) Option {
	return func(m *Manager) {
		m.onEvict = fn
	}
}

// NewManager creates an empty registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		trials: make(map[string]*entry),
		ttl:    DefaultIdleTTL,
		now:    time.Now,
		logger: logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Add registers a freshly rendered trial.
func (m *Manager) Add(c *runtime.Controller) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.trials[c.ID()]; exists {
		return fmt.Errorf("trial %s already registered", c.ID())
	}
	m.trials[c.ID()] = &entry{ctrl: c, lastSeen: m.now()}
	return nil
}

// Get returns the live trial and marks it as seen.
func (m *Manager) Get(trialID string) (*runtime.Controller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.trials[trialID]
	if !ok {
		return nil, fmt.Errorf("trial %s: %w", trialID, domain.ErrTrialNotFound)
	}
	e.lastSeen = m.now()
	return e.ctrl, nil
}

// acquire gets the entry and increments its reference count.
// The caller MUST call release(trialID) when done.
func (m *Manager) acquire(trialID string) (*entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.trials[trialID]
	if !ok {
		return nil, fmt.Errorf("trial %s: %w", trialID, domain.ErrTrialNotFound)
	}
	e.refs++
	e.lastSeen = m.now()
	return e, nil
}

// release decrements the reference count.
func (m *Manager) release(trialID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.trials[trialID]
	if !ok {
		return // Deleted while in use
	}
	e.refs--
	e.lastSeen = m.now()
}

// WithTrial runs fn with the live trial, keeping it safe from eviction meanwhile.
func (m *Manager) WithTrial(ctx context.Context, trialID string, fn func(context.Context, *runtime.Controller) error) error {
	e, err := m.acquire(trialID)
	if err != nil {
		return err
	}
	defer m.release(trialID)
	return fn(ctx, e.ctrl)
}

// Delete removes a trial from the registry.
func (m *Manager) Delete(trialID string) {
	m.mu.Lock()
	_, ok := m.trials[trialID]
	delete(m.trials, trialID)
	m.mu.Unlock()

	if ok && m.onEvict != nil {
		m.onEvict(trialID)
	}
}

// List returns the IDs of all live trials, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.trials))
	for id := range m.trials {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of live trials.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.trials)
}

// Sweep evicts idle trials without in-flight operations and returns how many were evicted.
func (m *Manager) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}

	m.mu.Lock()
	cutoff := m.now().Add(-m.ttl)
	var evicted []string
	for id, e := range m.trials {
		if e.refs > 0 || e.lastSeen.After(cutoff) {
			continue
		}
		delete(m.trials, id)
		evicted = append(evicted, id)
	}
	m.mu.Unlock()

	for _, id := range evicted {
		m.logger.Info("Trial evicted", "trial_id", id, "idle_ttl", m.ttl)
		if m.onEvict != nil {
			m.onEvict(id)
		}
	}
	return len(evicted)
}

// Run sweeps periodically until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	if m.ttl <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(max(m.ttl/4, time.Second))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Sweep()
		}
	}
}
