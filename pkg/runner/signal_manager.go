package runner

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// DefaultSignalGrace is how long an input error waits for a pending interrupt.
const DefaultSignalGrace = 100 * time.Millisecond

// SignalManager ties a trial run to SIGINT/SIGTERM.
// Its context is cancelled on the first signal, or when the parent is done.
type SignalManager struct {
	mu      sync.Mutex
	parent  context.Context
	ctx     context.Context
	stop    context.CancelFunc
	grace   time.Duration
	signals []os.Signal
}

// SignalOption configures a SignalManager.
type SignalOption func(*SignalManager)

// WithSignalGrace sets the wait used by CheckRace.
func WithSignalGrace(d time.Duration) SignalOption {
	return func(sm *SignalManager) {
		sm.grace = d
	}
}

// WithSignals replaces the captured signals.
func WithSignals(sigs ...os.Signal) SignalOption {
	return func(sm *SignalManager) {
		sm.signals = sigs
	}
}

// NewSignalManager starts listening immediately. A nil parent means context.Background.
func NewSignalManager(parent context.Context, opts ...SignalOption) *SignalManager {
	if parent == nil {
		parent = context.Background()
	}
	sm := &SignalManager{
		parent:  parent,
		grace:   DefaultSignalGrace,
		signals: []os.Signal{os.Interrupt, syscall.SIGTERM},
	}
	for _, opt := range opts {
		opt(sm)
	}
	sm.Reset()
	return sm
}

// Context returns the current run context.
func (sm *SignalManager) Context() context.Context {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.ctx
}

// Reset re-arms the listener after an interrupt was handled.
func (sm *SignalManager) Reset() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.stop != nil {
		sm.stop()
	}
	sm.ctx, sm.stop = signal.NotifyContext(sm.parent, sm.signals...)
}

// Stop releases the listener and cancels the context.
func (sm *SignalManager) Stop() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.stop != nil {
		sm.stop()
	}
}

// Interrupted reports whether the run context is already done.
func (sm *SignalManager) Interrupted() bool {
	return sm.Context().Err() != nil
}

// CheckRace is called after an input error. On some terminals Ctrl+C closes
// stdin slightly before the signal is delivered, so it waits up to the grace
// period and returns the context error when an interrupt follows.
func (sm *SignalManager) CheckRace() error {
	ctx := sm.Context()
	if ctx.Err() == nil && sm.grace > 0 {
		timer := time.NewTimer(sm.grace)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
	}
	return ctx.Err()
}
