package domain

import (
	"encoding/json"
	"time"
)

// QuestionStatus is the position-level step of the unlock machine.
//
//	locked -> enabled -> (rejected, back to enabled) | scoring -> answered
type QuestionStatus string

const (
	StatusLocked   QuestionStatus = "locked"   // Disabled, waiting for its turn
	StatusEnabled  QuestionStatus = "enabled"  // Focused, awaiting input
	StatusScoring  QuestionStatus = "scoring"  // Recorded, waiting for the scoring service
	StatusAnswered QuestionStatus = "answered" // Terminal, disabled for good
)

// Recorded reports whether a response was already recorded for this status.
func (s QuestionStatus) Recorded() bool {
	return s == StatusScoring || s == StatusAnswered
}

// MessageKind classifies the text shown in a question's status region.
type MessageKind string

const (
	MessageInfo    MessageKind = "info"
	MessageError   MessageKind = "error"
	MessageSuccess MessageKind = "success"
)

// Fixed user-facing texts.
const (
	MessagePrompt    = "Explain the text in your own words"
	MessageRejected  = "Please provide a longer response"
	MessageRecorded  = "Your response has been recorded. Evaluating..."
	MessageScoreFail = "Error fetching API response. Please try again."
)

// QuestionState is the explicit per-position state object.
// Index is the question's position in TrialConfig.Questions and is the source of
// every stable identifier, so it survives shuffling.
type QuestionState struct {
	Position int            `json:"position"`
	Index    int            `json:"index"`
	Spec     QuestionSpec   `json:"spec"`
	Status   QuestionStatus `json:"status"`

	// Active marks the question the participant is working on.
	Active bool `json:"active"`
	// Obfuscated questions are visually suppressed until unlocked.
	Obfuscated bool `json:"obfuscated"`

	// Status region.
	Message     string      `json:"message"`
	MessageKind MessageKind `json:"message_kind"`

	// Draft is the last text submitted for this position, kept so a rejected
	// answer is shown again for editing.
	Draft string `json:"draft,omitempty"`

	// Result region: exactly one of Score or ScoreError is set once answered.
	Score      json.RawMessage `json:"score,omitempty"`
	ScoreError string          `json:"score_error,omitempty"`
}

// Enabled reports whether the input and submit controls accept interaction.
func (q QuestionState) Enabled() bool {
	return q.Status == StatusEnabled
}

// TrialState is the progression state of a single trial.
type TrialState struct {
	TrialID string `json:"trial_id"`

	// Config is the defaulted configuration the trial was rendered from.
	Config TrialConfig `json:"config"`

	// Order maps display positions to question indices.
	Order []int `json:"order"`

	// Questions is indexed by display position.
	Questions []QuestionState `json:"questions"`

	// Current is the display position of the single enabled question,
	// or len(Questions) once every position is answered.
	Current int `json:"current"`

	// Responses grows by exactly one record per answered position, in answer order.
	Responses []ResponseRecord `json:"responses"`

	FinishEnabled bool      `json:"finish_enabled"`
	Finished      bool      `json:"finished"`
	StartedAt     time.Time `json:"started_at"`
}

// AllAnswered reports whether every position reached its terminal status.
func (s *TrialState) AllAnswered() bool {
	for _, q := range s.Questions {
		if q.Status != StatusAnswered {
			return false
		}
	}
	return true
}

// Snapshot returns a deep copy that callers may keep or mutate freely.
func (s *TrialState) Snapshot() *TrialState {
	if s == nil {
		return nil
	}
	next := *s
	next.Config.Questions = append([]QuestionSpec(nil), s.Config.Questions...)
	if s.Config.Scoring != nil {
		prompt := *s.Config.Scoring
		next.Config.Scoring = &prompt
	}
	next.Order = append([]int(nil), s.Order...)
	next.Responses = append([]ResponseRecord(nil), s.Responses...)
	next.Questions = make([]QuestionState, len(s.Questions))
	for i, q := range s.Questions {
		if q.Score != nil {
			q.Score = append(json.RawMessage(nil), q.Score...)
		}
		next.Questions[i] = q
	}
	return &next
}
