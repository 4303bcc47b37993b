package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/summarize/internal/logging"
	"github.com/go-chi/chi/v5"
)

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan string]struct{} // TrialID -> Set of Channels
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a channel for the trial's messages.
// The returned function unsubscribes; it is safe to call after Close.
func (sm *StreamManager) Subscribe(trialID string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[trialID]; !ok {
		sm.subscribers[trialID] = make(map[chan string]struct{})
	}
	sm.subscribers[trialID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[trialID]; ok {
			if _, ok := subs[ch]; !ok {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, trialID)
			}
		}
	}
}

// HasSubscribers reports whether anyone listens to the trial.
func (sm *StreamManager) HasSubscribers(trialID string) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[trialID]) > 0
}

// Broadcast sends msg to every subscriber of the trial without blocking.
func (sm *StreamManager) Broadcast(trialID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[trialID] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "trial_id", trialID)
		}
	}
}

// Close ends every stream of the trial.
func (sm *StreamManager) Close(trialID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for ch := range sm.subscribers[trialID] {
		close(ch)
	}
	delete(sm.subscribers, trialID)
}

// SubscribeEvents handles GET /trials/{trialID}/events (SSE).
// The optional "watch" query parameter filters diffs by field: questions, responses, finish.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	trialID := chi.URLParam(r, "trialID")
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}
	if _, err := s.Engine.State(r.Context(), trialID); err != nil {
		s.writeEngineError(w, r, err)
		return
	}

	ch, cancel := s.Streams.Subscribe(trialID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Debug("SSE: Subscribed", "trial_id", trialID)

	var watch []string
	if v := r.URL.Query().Get("watch"); v != "" {
		watch = strings.Split(v, ",")
	}

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE: Client disconnected", "trial_id", trialID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watch) > 0 && !matchesWatch(msg, watch) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// matchesWatch checks the serialized diff for any watched field.
func matchesWatch(msg string, watch []string) bool {
	for _, field := range watch {
		var key string
		switch strings.TrimSpace(field) {
		case "questions":
			key = `"questions":`
		case "responses":
			key = `"responses":`
		case "finish":
			if strings.Contains(msg, `"finish_enabled":`) || strings.Contains(msg, `"finished":`) {
				return true
			}
			continue
		default:
			continue
		}
		if strings.Contains(msg, key) {
			return true
		}
	}
	return false
}
