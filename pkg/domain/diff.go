package domain

import (
	"bytes"
	"reflect"
)

// TrialDiff represents the changes between two trial snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type TrialDiff struct {
	// TrialID is always present to identify the target.
	TrialID string `json:"trial_id"`

	Current       *int  `json:"current,omitempty"`
	FinishEnabled *bool `json:"finish_enabled,omitempty"`
	Finished      *bool `json:"finished,omitempty"`

	// Questions holds the full state of every position that changed.
	Questions []QuestionState `json:"questions,omitempty"`

	// Responses contains only records appended since the old snapshot.
	Responses []ResponseRecord `json:"responses,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
// It returns nil when nothing changed.
func Diff(oldState, newState *TrialState) *TrialDiff {
	if newState == nil {
		return nil
	}

	diff := &TrialDiff{TrialID: newState.TrialID}

	if oldState == nil || oldState.Current != newState.Current {
		diff.Current = &newState.Current
	}
	if oldState == nil || oldState.FinishEnabled != newState.FinishEnabled {
		diff.FinishEnabled = &newState.FinishEnabled
	}
	if oldState == nil {
		if newState.Finished {
			diff.Finished = &newState.Finished
		}
	} else if oldState.Finished != newState.Finished {
		diff.Finished = &newState.Finished
	}

	diff.Questions = diffQuestions(oldState, newState)
	diff.Responses = diffResponses(oldState, newState)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffQuestions(old, new *TrialState) []QuestionState {
	var changed []QuestionState
	for i, q := range new.Questions {
		if old == nil || i >= len(old.Questions) || !sameQuestion(old.Questions[i], q) {
			changed = append(changed, q)
		}
	}
	return changed
}

func sameQuestion(a, b QuestionState) bool {
	if !bytes.Equal(a.Score, b.Score) {
		return false
	}
	a.Score, b.Score = nil, nil
	return reflect.DeepEqual(a, b)
}

// diffResponses assumes the response list is append-only.
func diffResponses(old, new *TrialState) []ResponseRecord {
	if len(new.Responses) == 0 {
		return nil
	}
	if old == nil {
		return new.Responses
	}
	if len(new.Responses) > len(old.Responses) {
		return new.Responses[len(old.Responses):]
	}
	return nil
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *TrialDiff) IsEmpty() bool {
	return d.Current == nil &&
		d.FinishEnabled == nil &&
		d.Finished == nil &&
		len(d.Questions) == 0 &&
		len(d.Responses) == 0
}

// StateObserver receives a snapshot of the trial before and after each change.
// Observers run while the trial is locked and must not call back into it or block.
type StateObserver func(prev, next *TrialState)
